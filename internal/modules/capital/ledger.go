// Package capital derives invested capital and net contributions from the
// transaction ledger. Neither measure uses market prices, and the two are not
// expected to agree: invested capital tracks cost basis, net contributions
// track cash moved in and out by the owner.
package capital

import (
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
)

// CryptoAttribution selects which currency a crypto trade funded in another
// currency counts under.
type CryptoAttribution int

const (
	// AttributeToFunding counts the trade under OriginalCurrency using OriginalAmount.
	AttributeToFunding CryptoAttribution = iota
	// AttributeToSettlement counts the trade under its booking currency.
	AttributeToSettlement
)

// InvestedCapital returns cost-basis capital in currency, attributing crypto
// trades funded in another currency to the funding side.
func InvestedCapital(txs []domain.Transaction, currency domain.Currency) float64 {
	return investedCapital(txs, currency, AttributeToFunding)
}

// InvestedCapitalSettled is InvestedCapital with crypto trades counted under
// their booking currency, matching how positions are valued.
func InvestedCapitalSettled(txs []domain.Transaction, currency domain.Currency) float64 {
	return investedCapital(txs, currency, AttributeToSettlement)
}

// NetContributions returns the net cash the owner moved in, in currency.
func NetContributions(txs []domain.Transaction, currency domain.Currency) float64 {
	v := &contributionVisitor{currency: currency}
	for _, tx := range txs {
		if tx != nil {
			tx.Accept(v)
		}
	}
	return v.total
}

func investedCapital(txs []domain.Transaction, currency domain.Currency, attr CryptoAttribution) float64 {
	v := &investedVisitor{attribution: attr}
	for _, tx := range txs {
		if tx != nil {
			tx.Accept(v)
		}
	}
	return v.totals.Get(currency)
}

// investedVisitor accumulates invested capital for both currencies at once.
type investedVisitor struct {
	attribution CryptoAttribution
	totals      domain.CurrencyAmounts
}

func (v *investedVisitor) add(c domain.Currency, amount float64) {
	if c.Valid() && utils.IsFinite(amount) {
		v.totals.Add(c, amount)
	}
}

func (v *investedVisitor) VisitDeposit(tx *domain.DepositTransaction) {
	if tx.Source == domain.SourceFixedTermPayout {
		v.add(tx.Currency, -tx.Amount)
	}
}

func (v *investedVisitor) VisitWithdrawal(*domain.WithdrawalTransaction) {}

func (v *investedVisitor) VisitTrade(tx *domain.TradeTransaction) {
	sign := 1.0
	amount := tx.BuyCost()
	if tx.Side == domain.TxSell {
		sign = -1
		amount = tx.SellProceeds()
	}

	currency := tx.Currency
	if tx.AssetType == domain.AssetCrypto {
		if funded, original, ok := tx.FundedIn(); ok {
			switch v.attribution {
			case AttributeToFunding:
				currency, amount = funded, original
			case AttributeToSettlement:
				// price is quoted in the funding currency; the booking side is the conversion
				if converted, ok := utils.FinitePtr(tx.ConvertedAmount); ok {
					amount = converted
				}
			}
		}
	}
	v.add(currency, sign*amount)
}

func (v *investedVisitor) VisitCreation(tx *domain.CreationTransaction) {
	switch tx.AssetType {
	case domain.AssetFixedTermDeposit, domain.AssetCaucion:
		v.add(tx.Currency, tx.Amount)
	}
}

// VisitMaturityCredit takes the payout back out, like the proceeds of a sell.
func (v *investedVisitor) VisitMaturityCredit(tx *domain.MaturityCreditTransaction) {
	v.add(tx.Currency, -tx.Amount())
}

func (v *investedVisitor) VisitBondPayment(*domain.BondPaymentTransaction) {}

type contributionVisitor struct {
	currency domain.Currency
	total    float64
}

func (v *contributionVisitor) add(c domain.Currency, amount float64) {
	if c == v.currency && utils.IsFinite(amount) {
		v.total += amount
	}
}

func (v *contributionVisitor) VisitDeposit(tx *domain.DepositTransaction) {
	v.add(tx.Currency, tx.Amount)
}

func (v *contributionVisitor) VisitWithdrawal(tx *domain.WithdrawalTransaction) {
	v.add(tx.Currency, -tx.Amount)
}

func (v *contributionVisitor) VisitTrade(tx *domain.TradeTransaction) {
	if tx.Side == domain.TxSell {
		v.add(tx.Currency, -tx.GrossAmount())
		return
	}
	currency := tx.Currency
	if funded, _, ok := tx.FundedIn(); ok {
		currency = funded
	}
	v.add(currency, tx.GrossAmount())
}

func (v *contributionVisitor) VisitCreation(tx *domain.CreationTransaction) {
	if tx.AssetType == domain.AssetFixedTermDeposit {
		v.add(tx.Currency, tx.Amount)
	}
}

func (v *contributionVisitor) VisitMaturityCredit(*domain.MaturityCreditTransaction) {}
func (v *contributionVisitor) VisitBondPayment(*domain.BondPaymentTransaction)       {}
