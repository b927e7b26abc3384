package domain

import "time"

// TransactionType is the ledger discriminator of a transaction.
type TransactionType string

const (
	TxDeposit           TransactionType = "Deposit"
	TxWithdrawal        TransactionType = "Withdrawal"
	TxBuy               TransactionType = "Buy"
	TxSell              TransactionType = "Sell"
	TxCreate            TransactionType = "Create"
	TxFixedTermCredit   TransactionType = "Acreditación Plazo Fijo"
	TxCaucionCredit     TransactionType = "Acreditación Caución"
	TxBondCouponPayment TransactionType = "Pago de Cupón Bono"
	TxBondAmortization  TransactionType = "Amortización Bono"
)

// DepositSource marks deposits that return principal rather than add capital.
type DepositSource string

const (
	SourceFixedTermPayout       DepositSource = "FixedTermPayout"
	SourceMutualFundLiquidation DepositSource = "MutualFundLiquidation"
)

// Transaction is an immutable ledger entry. The set of variants is closed and
// reached through TransactionVisitor.
type Transaction interface {
	TransactionID() string
	Kind() TransactionType
	OccurredAt() time.Time
	CurrencyCode() Currency
	Accept(v TransactionVisitor)
	isTransaction()
}

// TransactionVisitor has one method per transaction variant.
type TransactionVisitor interface {
	VisitDeposit(tx *DepositTransaction)
	VisitWithdrawal(tx *WithdrawalTransaction)
	VisitTrade(tx *TradeTransaction)
	VisitCreation(tx *CreationTransaction)
	VisitMaturityCredit(tx *MaturityCreditTransaction)
	VisitBondPayment(tx *BondPaymentTransaction)
}

// TxBase holds the fields every transaction carries.
type TxBase struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Currency Currency  `json:"currency"`
}

func (b *TxBase) TransactionID() string  { return b.ID }
func (b *TxBase) OccurredAt() time.Time  { return b.Date }
func (b *TxBase) CurrencyCode() Currency { return b.Currency }

// DepositTransaction adds cash.
type DepositTransaction struct {
	TxBase
	Amount float64       `json:"amount"`
	Source DepositSource `json:"source,omitempty"`
}

func (tx *DepositTransaction) Kind() TransactionType       { return TxDeposit }
func (tx *DepositTransaction) Accept(v TransactionVisitor) { v.VisitDeposit(tx) }
func (tx *DepositTransaction) isTransaction()              {}

// WithdrawalTransaction removes cash.
type WithdrawalTransaction struct {
	TxBase
	Amount float64 `json:"amount"`
}

func (tx *WithdrawalTransaction) Kind() TransactionType       { return TxWithdrawal }
func (tx *WithdrawalTransaction) Accept(v TransactionVisitor) { v.VisitWithdrawal(tx) }
func (tx *WithdrawalTransaction) isTransaction()              {}

// TradeTransaction is a Buy or Sell of a stock, bond or crypto asset.
//
// A crypto buy funded in ARS is booked in USD (Currency) and also carries the
// funding side: OriginalCurrency, OriginalAmount (fees included) and
// ConvertedAmount (the USD equivalent).
type TradeTransaction struct {
	TxBase
	Side             TransactionType `json:"type"`
	AssetType        AssetType       `json:"assetType"`
	Symbol           string          `json:"symbol"`
	Quantity         float64         `json:"quantity"`
	Price            float64         `json:"price"`
	Market           Market          `json:"market,omitempty"`
	CommissionPct    *float64        `json:"commissionPct,omitempty"`
	PurchaseFeePct   *float64        `json:"purchaseFeePct,omitempty"`
	OriginalCurrency Currency        `json:"originalCurrency,omitempty"`
	OriginalAmount   *float64        `json:"originalAmount,omitempty"`
	ConvertedAmount  *float64        `json:"convertedAmount,omitempty"`
}

func (tx *TradeTransaction) Kind() TransactionType       { return tx.Side }
func (tx *TradeTransaction) Accept(v TransactionVisitor) { v.VisitTrade(tx) }
func (tx *TradeTransaction) isTransaction()              {}

// GrossAmount is price times quantity, before fees.
func (tx *TradeTransaction) GrossAmount() float64 {
	return tx.Price * tx.Quantity
}

// CommissionRate returns the commission as a fraction; absent means zero.
func (tx *TradeTransaction) CommissionRate() float64 {
	return pctOrZero(tx.CommissionPct)
}

// PurchaseFeeRate returns the purchase fee as a fraction; absent means zero.
func (tx *TradeTransaction) PurchaseFeeRate() float64 {
	return pctOrZero(tx.PurchaseFeePct)
}

// BuyCost is the gross amount plus commission and purchase fee.
func (tx *TradeTransaction) BuyCost() float64 {
	return tx.GrossAmount() * (1 + tx.CommissionRate() + tx.PurchaseFeeRate())
}

// SellProceeds is the gross amount net of commission.
func (tx *TradeTransaction) SellProceeds() float64 {
	return tx.GrossAmount() * (1 - tx.CommissionRate())
}

// FundedIn reports the currency that paid for the trade and the amount paid in
// it. For a crypto buy funded in another currency that is the original side.
func (tx *TradeTransaction) FundedIn() (Currency, float64, bool) {
	if tx.OriginalCurrency == "" || tx.OriginalCurrency == tx.Currency || tx.OriginalAmount == nil {
		return "", 0, false
	}
	if !isFinite(*tx.OriginalAmount) {
		return "", 0, false
	}
	return tx.OriginalCurrency, *tx.OriginalAmount, true
}

// CreationTransaction opens a deposit, caución, mutual fund or real-estate position.
type CreationTransaction struct {
	TxBase
	AssetType    AssetType `json:"assetType"`
	PositionID   string    `json:"positionId"`
	Provider     string    `json:"provider,omitempty"`
	Name         string    `json:"name,omitempty"`
	Category     string    `json:"category,omitempty"`
	Amount       float64   `json:"amount"`
	AnnualRate   float64   `json:"annualRate,omitempty"`
	TermDays     int       `json:"termDays,omitempty"`
	MaturityDate *Date     `json:"maturityDate,omitempty"`
}

func (tx *CreationTransaction) Kind() TransactionType       { return TxCreate }
func (tx *CreationTransaction) Accept(v TransactionVisitor) { v.VisitCreation(tx) }
func (tx *CreationTransaction) isTransaction()              {}

// MaturityCreditTransaction credits a matured time deposit or caución.
type MaturityCreditTransaction struct {
	TxBase
	CreditType TransactionType `json:"type"`
	PositionID string          `json:"positionId"`
	Provider   string          `json:"provider,omitempty"`
	Principal  float64         `json:"principal"`
	Interest   float64         `json:"interest"`
}

func (tx *MaturityCreditTransaction) Kind() TransactionType       { return tx.CreditType }
func (tx *MaturityCreditTransaction) Accept(v TransactionVisitor) { v.VisitMaturityCredit(tx) }
func (tx *MaturityCreditTransaction) isTransaction()              {}

// Amount is principal plus interest.
func (tx *MaturityCreditTransaction) Amount() float64 {
	return tx.Principal + tx.Interest
}

// BondPaymentTransaction is a coupon or amortization cash event of a bond.
type BondPaymentTransaction struct {
	TxBase
	PaymentType TransactionType `json:"type"`
	Ticker      string          `json:"ticker"`
	Amount      float64         `json:"amount"`
	Number      int             `json:"number,omitempty"`
}

func (tx *BondPaymentTransaction) Kind() TransactionType       { return tx.PaymentType }
func (tx *BondPaymentTransaction) Accept(v TransactionVisitor) { v.VisitBondPayment(tx) }
func (tx *BondPaymentTransaction) isTransaction()              {}

func pctOrZero(p *float64) float64 {
	if p == nil || !isFinite(*p) {
		return 0
	}
	return *p / 100
}
