package portfolio

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/events"
	"github.com/aristath/cartera/internal/modules/capital"
	"github.com/aristath/cartera/internal/modules/cash_flows"
	"github.com/aristath/cartera/internal/modules/duplicates"
	"github.com/aristath/cartera/internal/modules/gains"
	"github.com/aristath/cartera/internal/utils"
)

// TransactionAppender records a transaction in the append-only ledger.
type TransactionAppender interface {
	Append(userID string, tx domain.Transaction) error
}

// FeeDefaults are the fee percentages applied when a trade request omits them.
type FeeDefaults struct {
	CommissionPct  float64
	PurchaseFeePct float64
}

// Result is the state of a user's book after an operation.
type Result struct {
	Transaction domain.Transaction     `json:"-"`
	Positions   domain.PositionList    `json:"positions"`
	Cash        domain.CurrencyAmounts `json:"cash"`
	Warnings    []string               `json:"warnings,omitempty"`
}

// Service applies cash movements, trades and maturities to a user's book.
//
// Positions and cash balances change inside one portfolio.db transaction; the
// ledger append is the last step of that transaction, so a failed append
// leaves positions and cash untouched.
type Service struct {
	portfolioDB *sql.DB
	positions   *PositionRepository
	cash        *cash_flows.CashRepository
	ledger      TransactionAppender
	converter   domain.CurrencyConverter
	aggregator  *Aggregator
	events      *events.Manager
	fees        FeeDefaults
	dupPolicy   duplicates.Policy
	now         func() time.Time
	log         zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(
	portfolioDB *sql.DB,
	positions *PositionRepository,
	cash *cash_flows.CashRepository,
	ledger TransactionAppender,
	converter domain.CurrencyConverter,
	aggregator *Aggregator,
	eventManager *events.Manager,
	fees FeeDefaults,
	log zerolog.Logger,
) *Service {
	return &Service{
		portfolioDB: portfolioDB,
		positions:   positions,
		cash:        cash,
		ledger:      ledger,
		converter:   converter,
		aggregator:  aggregator,
		events:      eventManager,
		fees:        fees,
		now:         time.Now,
		log:         log.With().Str("service", "portfolio").Logger(),
	}
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetDuplicatePolicy selects how Valuation and NetGains treat the same
// instrument held on more than one venue. The default excludes the group.
func (s *Service) SetDuplicatePolicy(policy duplicates.Policy) {
	s.dupPolicy = policy
}

// GetPositions returns the stored positions of userID.
func (s *Service) GetPositions(userID string) ([]domain.Position, error) {
	return s.positions.GetAll(userID)
}

// GetCash returns the cash balances of userID.
func (s *Service) GetCash(userID string) (domain.CurrencyAmounts, error) {
	return s.cash.GetBalances(userID)
}

// Valuation values the current positions of userID at asOf. Duplicate
// holdings are resolved by the duplicate policy first; the keys it left out
// are listed in Excluded.
func (s *Service) Valuation(ctx context.Context, userID string, asOf time.Time) (*Valuation, error) {
	counted, dropped, err := s.countedPositions(userID)
	if err != nil {
		return nil, err
	}
	v, err := s.aggregator.Value(ctx, counted, asOf)
	if err != nil {
		return nil, err
	}
	for _, p := range dropped {
		v.Excluded = append(v.Excluded, p.Key())
	}
	return v, nil
}

// NetGains returns per-currency and per-position gains of userID at asOf,
// under the same duplicate policy as Valuation.
func (s *Service) NetGains(ctx context.Context, userID string, asOf time.Time) (*NetGains, error) {
	counted, _, err := s.countedPositions(userID)
	if err != nil {
		return nil, err
	}
	return s.aggregator.GetPortfolioNetGains(ctx, counted, asOf)
}

// CostBasis returns the cost of the open positions of userID per currency,
// under the same duplicate policy as Valuation.
func (s *Service) CostBasis(userID string) (domain.CurrencyAmounts, error) {
	counted, _, err := s.countedPositions(userID)
	if err != nil {
		return domain.CurrencyAmounts{}, err
	}
	return capital.FromPositions(counted), nil
}

func (s *Service) countedPositions(userID string) (counted, dropped []domain.Position, err error) {
	positions, err := s.positions.GetAll(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load positions: %w", err)
	}
	counted, dropped = s.dupPolicy.Apply(positions)
	if len(dropped) > 0 {
		s.log.Debug().
			Str("user", userID).
			Str("policy", string(s.dupPolicy)).
			Int("dropped", len(dropped)).
			Msg("Duplicate holdings left out of totals")
	}
	return counted, dropped, nil
}

// Duplicates reports stock and bond holdings listed on more than one venue.
func (s *Service) Duplicates(userID string) (duplicates.Result, error) {
	positions, err := s.positions.GetAll(userID)
	if err != nil {
		return duplicates.Result{}, fmt.Errorf("failed to load positions: %w", err)
	}
	return duplicates.DetectDuplicates(positions), nil
}

// DepositRequest adds cash.
type DepositRequest struct {
	Amount   float64              `json:"amount"`
	Currency domain.Currency      `json:"currency"`
	Date     *domain.Date         `json:"date,omitempty"`
	Source   domain.DepositSource `json:"source,omitempty"`
}

// Deposit credits cash and records a Deposit.
func (s *Service) Deposit(userID string, req DepositRequest) (*Result, error) {
	if err := validAmount(req.Amount, req.Currency); err != nil {
		return nil, err
	}

	tx := &domain.DepositTransaction{
		TxBase: s.txBase(req.Date, req.Currency),
		Amount: req.Amount,
		Source: req.Source,
	}

	return s.apply(userID, tx, func(book *book) error {
		return book.adjustCash(req.Currency, req.Amount)
	})
}

// WithdrawRequest removes cash.
type WithdrawRequest struct {
	Amount   float64         `json:"amount"`
	Currency domain.Currency `json:"currency"`
	Date     *domain.Date    `json:"date,omitempty"`
}

// Withdraw debits cash and records a Withdrawal.
func (s *Service) Withdraw(userID string, req WithdrawRequest) (*Result, error) {
	if err := validAmount(req.Amount, req.Currency); err != nil {
		return nil, err
	}

	tx := &domain.WithdrawalTransaction{
		TxBase: s.txBase(req.Date, req.Currency),
		Amount: req.Amount,
	}

	return s.apply(userID, tx, func(book *book) error {
		return book.adjustCash(req.Currency, -req.Amount)
	})
}

// TradeRequest buys or sells a stock, bond or crypto asset. For bonds Symbol
// is the ticker. Crypto trades default to USD; a crypto buy in ARS is
// converted and booked in USD.
type TradeRequest struct {
	AssetType      domain.AssetType `json:"assetType"`
	Symbol         string           `json:"symbol"`
	Quantity       float64          `json:"quantity"`
	Price          float64          `json:"price"`
	Currency       domain.Currency  `json:"currency"`
	Market         domain.Market    `json:"market,omitempty"`
	CommissionPct  *float64         `json:"commissionPct,omitempty"`
	PurchaseFeePct *float64         `json:"purchaseFeePct,omitempty"`
}

func (s *Service) tradeTransaction(side domain.TransactionType, req TradeRequest) (*domain.TradeTransaction, error) {
	if req.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidTransaction)
	}
	if req.Quantity <= 0 || !utils.IsFinite(req.Quantity) || req.Price <= 0 || !utils.IsFinite(req.Price) {
		return nil, fmt.Errorf("%w: quantity and price must be positive numbers", domain.ErrInvalidTransaction)
	}
	if req.AssetType == domain.AssetCrypto && req.Currency == "" {
		req.Currency = domain.CurrencyUSD
	}
	if !req.Currency.Valid() {
		return nil, domain.ErrInvalidCurrency
	}

	commission := req.CommissionPct
	if commission == nil {
		commission = utils.Float64Ptr(s.fees.CommissionPct)
	}
	tx := &domain.TradeTransaction{
		TxBase:        s.txBase(nil, req.Currency),
		Side:          side,
		AssetType:     req.AssetType,
		Symbol:        req.Symbol,
		Quantity:      req.Quantity,
		Price:         req.Price,
		Market:        req.Market,
		CommissionPct: commission,
	}
	if side == domain.TxBuy {
		tx.PurchaseFeePct = req.PurchaseFeePct
		if tx.PurchaseFeePct == nil {
			tx.PurchaseFeePct = utils.Float64Ptr(s.fees.PurchaseFeePct)
		}
	}
	return tx, nil
}

// Buy debits the total cost (gross plus fees) and folds the lot into the
// position's weighted average cost.
func (s *Service) Buy(ctx context.Context, userID string, req TradeRequest) (*Result, error) {
	tx, err := s.tradeTransaction(domain.TxBuy, req)
	if err != nil {
		return nil, err
	}
	if _, err := NewTradable(tx); err != nil {
		return nil, err
	}

	fundingCurrency := tx.Currency
	totalCost := tx.BuyCost()

	if tx.AssetType == domain.AssetCrypto && fundingCurrency != domain.CurrencyUSD {
		if s.converter == nil {
			return nil, fmt.Errorf("no currency converter configured for %s crypto purchase", fundingCurrency)
		}
		usd, err := s.converter.Convert(ctx, totalCost, fundingCurrency, domain.CurrencyUSD)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s to USD: %w", fundingCurrency, err)
		}
		if !utils.IsFinite(usd) || usd <= 0 {
			return nil, fmt.Errorf("failed to convert %s to USD: invalid converted amount %v", fundingCurrency, usd)
		}
		tx.Currency = domain.CurrencyUSD
		tx.OriginalCurrency = fundingCurrency
		tx.OriginalAmount = utils.Float64Ptr(totalCost)
		tx.ConvertedAmount = utils.Float64Ptr(usd)
	}

	var warnings []string
	result, err := s.apply(userID, tx, func(book *book) error {
		if err := book.adjustCash(fundingCurrency, -totalCost); err != nil {
			return err
		}
		positions, target, err := ApplyBuy(book.list, tx)
		if err != nil {
			return err
		}
		book.list = positions
		warnings = venueWarnings(book.list, target)
		return book.save(target)
	})
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		s.log.Warn().Str("user", userID).Strs("warnings", warnings).Msg("Bought an instrument already held on another venue")
	}
	result.Warnings = warnings
	return result, nil
}

// venueWarnings describes every other holding of the same instrument as held.
func venueWarnings(positions []domain.Position, held domain.Position) []string {
	var warnings []string
	for _, p := range positions {
		if p != held && duplicates.AreSameAsset(held, p) {
			warnings = append(warnings, fmt.Sprintf("%s is also held as %s", held.Key(), p.Key()))
		}
	}
	return warnings
}

// Sell reduces the position and credits the proceeds net of commission. The
// position is removed once only dust remains. Crypto proceeds go to USD.
func (s *Service) Sell(userID string, req TradeRequest) (*Result, error) {
	tx, err := s.tradeTransaction(domain.TxSell, req)
	if err != nil {
		return nil, err
	}
	proto, err := NewTradable(tx)
	if err != nil {
		return nil, err
	}
	if tx.AssetType == domain.AssetCrypto {
		tx.Currency = domain.CurrencyUSD
	}

	return s.apply(userID, tx, func(book *book) error {
		positions, removed, err := ApplySell(book.list, tx)
		if err != nil {
			return err
		}
		book.list = positions
		if removed {
			if err := book.remove(proto.Key()); err != nil {
				return err
			}
		} else if i := indexOf(book.list, proto.Key()); i >= 0 {
			if err := book.save(book.list[i]); err != nil {
				return err
			}
		}
		return book.adjustCash(tx.Currency, tx.SellProceeds())
	})
}

// LendingRequest opens a time deposit or caución.
type LendingRequest struct {
	Provider   string          `json:"provider"`
	Amount     float64         `json:"amount"`
	AnnualRate float64         `json:"annualRate"`
	TermDays   int             `json:"termDays"`
	Currency   domain.Currency `json:"currency"`
}

// CreateFixedTerm debits the principal and opens a time deposit starting today.
func (s *Service) CreateFixedTerm(userID string, req LendingRequest) (*Result, error) {
	return s.createLending(userID, domain.AssetFixedTermDeposit, "ftd-", req)
}

// CreateCaucion debits the principal and opens a caución starting today.
func (s *Service) CreateCaucion(userID string, req LendingRequest) (*Result, error) {
	return s.createLending(userID, domain.AssetCaucion, "caucion-", req)
}

func (s *Service) createLending(userID string, assetType domain.AssetType, prefix string, req LendingRequest) (*Result, error) {
	if err := validAmount(req.Amount, req.Currency); err != nil {
		return nil, err
	}
	if req.Provider == "" {
		return nil, fmt.Errorf("%w: provider is required", domain.ErrInvalidTransaction)
	}
	if req.TermDays <= 0 || req.AnnualRate <= 0 || !utils.IsFinite(req.AnnualRate) {
		return nil, fmt.Errorf("%w: term and annual rate must be positive", domain.ErrInvalidTransaction)
	}

	start := domain.NewDate(s.now())
	maturity := domain.NewDate(start.AddDate(0, 0, req.TermDays))
	terms := domain.LendingTerms{
		ID:           prefix + newID(),
		Provider:     req.Provider,
		Amount:       req.Amount,
		AnnualRate:   req.AnnualRate,
		StartDate:    start,
		MaturityDate: maturity,
		TermDays:     req.TermDays,
		Currency:     req.Currency,
	}

	var position domain.Position
	if assetType == domain.AssetCaucion {
		position = &domain.CaucionPosition{LendingTerms: terms}
	} else {
		position = &domain.FixedTermDepositPosition{LendingTerms: terms}
	}

	tx := &domain.CreationTransaction{
		TxBase:       s.txBase(nil, req.Currency),
		AssetType:    assetType,
		PositionID:   terms.ID,
		Provider:     req.Provider,
		Amount:       req.Amount,
		AnnualRate:   req.AnnualRate,
		TermDays:     req.TermDays,
		MaturityDate: &maturity,
	}

	return s.apply(userID, tx, func(book *book) error {
		if err := book.adjustCash(req.Currency, -req.Amount); err != nil {
			return err
		}
		book.list = append(book.list, position)
		return book.save(position)
	})
}

// MutualFundRequest subscribes to a mutual fund.
type MutualFundRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Amount       float64         `json:"amount"`
	AnnualRate   *float64        `json:"annualRate,omitempty"`
	MonthlyYield *float64        `json:"monthlyYield,omitempty"`
	Currency     domain.Currency `json:"currency"`
}

// CreateMutualFund debits the amount and opens a fund position starting today.
func (s *Service) CreateMutualFund(userID string, req MutualFundRequest) (*Result, error) {
	if err := validAmount(req.Amount, req.Currency); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: fund name is required", domain.ErrInvalidTransaction)
	}

	start := domain.NewDate(s.now())
	position := &domain.MutualFundPosition{
		ID:           "fci-" + newID(),
		Name:         req.Name,
		Category:     req.Category,
		Amount:       req.Amount,
		AnnualRate:   req.AnnualRate,
		MonthlyYield: req.MonthlyYield,
		StartDate:    &start,
		Currency:     req.Currency,
	}

	tx := &domain.CreationTransaction{
		TxBase:     s.txBase(nil, req.Currency),
		AssetType:  domain.AssetMutualFund,
		PositionID: position.ID,
		Name:       req.Name,
		Category:   req.Category,
		Amount:     req.Amount,
	}
	if rate, ok := utils.FinitePtr(req.AnnualRate); ok {
		tx.AnnualRate = rate
	}

	return s.apply(userID, tx, func(book *book) error {
		if err := book.adjustCash(req.Currency, -req.Amount); err != nil {
			return err
		}
		book.list = append(book.list, position)
		return book.save(position)
	})
}

// RealEstateRequest registers a property.
type RealEstateRequest struct {
	Name       string          `json:"name"`
	Amount     float64         `json:"amount"`
	AnnualRate float64         `json:"annualRate"`
	Currency   domain.Currency `json:"currency"`
}

// CreateRealEstate records a property at its declared amount. Cash is not
// touched: the property was not bought out of the tracked balances.
func (s *Service) CreateRealEstate(userID string, req RealEstateRequest) (*Result, error) {
	if err := validAmount(req.Amount, req.Currency); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidTransaction)
	}
	if req.AnnualRate < 0 || req.AnnualRate > 100 {
		return nil, fmt.Errorf("%w: annual rate must be between 0 and 100", domain.ErrInvalidTransaction)
	}

	position := &domain.RealEstatePosition{
		ID:         "re-" + newID(),
		Name:       req.Name,
		Amount:     req.Amount,
		AnnualRate: req.AnnualRate,
		Currency:   req.Currency,
	}
	tx := &domain.CreationTransaction{
		TxBase:     s.txBase(nil, req.Currency),
		AssetType:  domain.AssetRealEstate,
		PositionID: position.ID,
		Name:       req.Name,
		Amount:     req.Amount,
		AnnualRate: req.AnnualRate,
	}

	return s.apply(userID, tx, func(book *book) error {
		book.list = append(book.list, position)
		return book.save(position)
	})
}

// ProcessMaturities credits every time deposit and caución of userID whose
// maturity date is on or before asOf: principal plus full-term interest goes
// to cash, a credit transaction is recorded and the position is removed.
func (s *Service) ProcessMaturities(userID string, asOf time.Time) ([]*domain.MaturityCreditTransaction, error) {
	day := utils.TruncateToDay(asOf)
	var credits []*domain.MaturityCreditTransaction

	err := database.WithTransaction(s.portfolioDB, func(sqlTx *sql.Tx) error {
		b, err := s.loadBook(sqlTx, userID)
		if err != nil {
			return err
		}

		for _, p := range append([]domain.Position(nil), b.list...) {
			terms, creditType, ok := maturing(p)
			if !ok || terms.MaturityDate.IsZero() || terms.MaturityDate.After(day) {
				continue
			}

			interest := gains.FullTermInterest(terms)
			credit := &domain.MaturityCreditTransaction{
				TxBase:     domain.TxBase{ID: newID(), Date: terms.MaturityDate.Time, Currency: terms.Currency},
				CreditType: creditType,
				PositionID: terms.ID,
				Provider:   terms.Provider,
				Principal:  terms.Amount,
				Interest:   interest,
			}

			if err := b.adjustCash(terms.Currency, credit.Amount()); err != nil {
				return err
			}
			if err := b.remove(p.Key()); err != nil {
				return err
			}
			if err := s.ledger.Append(userID, credit); err != nil {
				return fmt.Errorf("failed to record maturity credit: %w", err)
			}
			credits = append(credits, credit)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process maturities for %s: %w", userID, err)
	}

	for _, c := range credits {
		s.log.Info().
			Str("user", userID).
			Str("position", c.PositionID).
			Float64("principal", c.Principal).
			Float64("interest", c.Interest).
			Msg("Credited matured position")
		s.events.EmitTyped("portfolio", &events.MaturityCreditedData{
			UserID:     userID,
			PositionID: c.PositionID,
			Currency:   string(c.Currency),
			Principal:  c.Principal,
			Interest:   c.Interest,
		})
	}
	if len(credits) > 0 {
		s.events.EmitTyped("portfolio", &events.PortfolioChangedData{UserID: userID, Reason: "maturity"})
	}

	return credits, nil
}

// ProcessAllMaturities runs ProcessMaturities for every user with a book.
// A failure for one user is logged and does not stop the others.
func (s *Service) ProcessAllMaturities(asOf time.Time) (int, error) {
	users, err := s.positions.ListUsers()
	if err != nil {
		return 0, err
	}

	total := 0
	for _, userID := range users {
		credits, err := s.ProcessMaturities(userID, asOf)
		if err != nil {
			s.log.Error().Err(err).Str("user", userID).Msg("Failed to process maturities")
			s.events.EmitError("portfolio", err, map[string]interface{}{"user_id": userID})
			continue
		}
		total += len(credits)
	}
	return total, nil
}

// ListUsers returns every user with a stored book.
func (s *Service) ListUsers() ([]string, error) {
	return s.positions.ListUsers()
}

func maturing(p domain.Position) (*domain.LendingTerms, domain.TransactionType, bool) {
	switch v := p.(type) {
	case *domain.FixedTermDepositPosition:
		return &v.LendingTerms, domain.TxFixedTermCredit, true
	case *domain.CaucionPosition:
		return &v.LendingTerms, domain.TxCaucionCredit, true
	}
	return nil, "", false
}

// book is a user's positions and cash inside one database transaction.
type book struct {
	userID    string
	list      []domain.Position
	positions *PositionRepository
	cash      *cash_flows.CashRepository
}

func (s *Service) loadBook(sqlTx *sql.Tx, userID string) (*book, error) {
	positions := s.positions.WithTx(sqlTx)
	list, err := positions.GetAll(userID)
	if err != nil {
		return nil, err
	}
	return &book{
		userID:    userID,
		list:      list,
		positions: positions,
		cash:      s.cash.WithTx(sqlTx),
	}, nil
}

func (b *book) adjustCash(currency domain.Currency, delta float64) error {
	_, err := b.cash.Adjust(b.userID, currency, delta)
	return err
}

func (b *book) save(p domain.Position) error {
	return b.positions.Upsert(b.userID, p)
}

func (b *book) remove(key string) error {
	b.list, _ = RemovePosition(b.list, key)
	return b.positions.Delete(b.userID, key)
}

// apply runs mutate and the ledger append in one portfolio.db transaction and
// returns the resulting book.
func (s *Service) apply(userID string, tx domain.Transaction, mutate func(*book) error) (*Result, error) {
	result := &Result{Transaction: tx}

	err := database.WithTransaction(s.portfolioDB, func(sqlTx *sql.Tx) error {
		b, err := s.loadBook(sqlTx, userID)
		if err != nil {
			return err
		}
		if err := mutate(b); err != nil {
			return err
		}
		if err := s.ledger.Append(userID, tx); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		cash, err := b.cash.GetBalances(userID)
		if err != nil {
			return err
		}
		result.Positions = b.list
		result.Cash = cash
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Str("type", string(tx.Kind())).Msg("Portfolio operation failed")
		return nil, err
	}

	s.log.Info().
		Str("user", userID).
		Str("type", string(tx.Kind())).
		Str("id", tx.TransactionID()).
		Msg("Recorded transaction")

	s.events.EmitTyped("portfolio", &events.TransactionRecordedData{
		UserID:        userID,
		TransactionID: tx.TransactionID(),
		Kind:          string(tx.Kind()),
		Currency:      string(tx.CurrencyCode()),
		Amount:        transactionAmount(tx),
	})
	s.events.EmitTyped("portfolio", &events.PortfolioChangedData{UserID: userID, Reason: string(tx.Kind())})

	return result, nil
}

func (s *Service) txBase(date *domain.Date, currency domain.Currency) domain.TxBase {
	when := s.now().UTC()
	if date != nil && !date.IsZero() {
		when = date.Time
	}
	return domain.TxBase{ID: newID(), Date: when, Currency: currency}
}

func transactionAmount(tx domain.Transaction) float64 {
	switch v := tx.(type) {
	case *domain.DepositTransaction:
		return v.Amount
	case *domain.WithdrawalTransaction:
		return v.Amount
	case *domain.TradeTransaction:
		return v.GrossAmount()
	case *domain.CreationTransaction:
		return v.Amount
	case *domain.MaturityCreditTransaction:
		return v.Amount()
	case *domain.BondPaymentTransaction:
		return v.Amount
	}
	return 0
}

func validAmount(amount float64, currency domain.Currency) error {
	if !currency.Valid() {
		return domain.ErrInvalidCurrency
	}
	if amount <= 0 || !utils.IsFinite(amount) {
		return fmt.Errorf("%w: amount must be a positive number", domain.ErrInvalidTransaction)
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}
