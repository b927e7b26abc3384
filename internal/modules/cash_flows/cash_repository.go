// Package cash_flows stores per-user cash balances in portfolio.db.
// Cash is tracked as one balance per bookkeeping currency, separately from positions.
package cash_flows

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/domain"
	"github.com/rs/zerolog"
)

// CashRepository handles cash balance persistence in portfolio.db.
type CashRepository struct {
	db  database.Querier // portfolio.db - cash_balances table
	log zerolog.Logger
}

// NewCashRepository creates a new cash repository.
//
// Parameters:
//   - portfolioDB: Database connection to portfolio.db
//   - log: Structured logger
func NewCashRepository(portfolioDB *sql.DB, log zerolog.Logger) *CashRepository {
	return &CashRepository{
		db:  portfolioDB,
		log: log.With().Str("repo", "cash_balance").Logger(),
	}
}

// WithTx returns a repository bound to tx.
func (r *CashRepository) WithTx(tx *sql.Tx) *CashRepository {
	return &CashRepository{db: tx, log: r.log}
}

// Get returns the balance for currency.
// Returns 0.0 if no row exists (a zero balance is valid, not an error).
func (r *CashRepository) Get(userID string, currency domain.Currency) (float64, error) {
	var balance float64
	err := r.db.QueryRow(
		"SELECT balance FROM cash_balances WHERE user_id = ? AND currency = ?",
		userID, string(currency),
	).Scan(&balance)

	if err == sql.ErrNoRows {
		return 0.0, nil
	}
	if err != nil {
		return 0.0, fmt.Errorf("failed to get cash balance for %s: %w", currency, err)
	}

	return balance, nil
}

// GetBalances returns the ARS and USD balances of a user.
func (r *CashRepository) GetBalances(userID string) (domain.CurrencyAmounts, error) {
	var out domain.CurrencyAmounts

	rows, err := r.db.Query("SELECT currency, balance FROM cash_balances WHERE user_id = ?", userID)
	if err != nil {
		return out, fmt.Errorf("failed to query cash balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var currency string
		var balance float64
		if err := rows.Scan(&currency, &balance); err != nil {
			return out, fmt.Errorf("failed to scan cash balance: %w", err)
		}
		c := domain.Currency(currency)
		if !c.Valid() {
			r.log.Warn().Str("user", userID).Str("currency", currency).Msg("Ignoring cash balance in unsupported currency")
			continue
		}
		out.Set(c, balance)
	}

	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("error iterating cash balances: %w", err)
	}

	return out, nil
}

// Upsert sets the balance for currency.
func (r *CashRepository) Upsert(userID string, currency domain.Currency, balance float64) error {
	query := `
		INSERT INTO cash_balances (user_id, currency, balance, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, currency) DO UPDATE SET
			balance = excluded.balance,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, userID, string(currency), balance, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert cash balance for %s: %w", currency, err)
	}

	r.log.Debug().
		Str("user", userID).
		Str("currency", string(currency)).
		Float64("balance", balance).
		Msg("Upserted cash balance")

	return nil
}

// Adjust adds delta to the balance for currency and returns the new balance.
// A debit that would leave the balance negative fails with
// domain.ErrInsufficientFunds and changes nothing.
func (r *CashRepository) Adjust(userID string, currency domain.Currency, delta float64) (float64, error) {
	current, err := r.Get(userID, currency)
	if err != nil {
		return 0, err
	}

	next := current + delta
	if next < 0 {
		return current, fmt.Errorf("%w: %s balance %.2f, need %.2f", domain.ErrInsufficientFunds, currency, current, -delta)
	}

	if err := r.Upsert(userID, currency, next); err != nil {
		return current, err
	}
	return next, nil
}
