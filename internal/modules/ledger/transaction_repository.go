// Package ledger persists the append-only transaction log in ledger.db.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransactionRepository appends and reads transactions. Rows are immutable:
// there is no update or delete, and the schema rejects both.
type TransactionRepository struct {
	db  database.Querier // ledger.db - transactions table
	log zerolog.Logger
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(ledgerDB *sql.DB, log zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:  ledgerDB,
		log: log.With().Str("repo", "transactions").Logger(),
	}
}

// NewID returns a fresh transaction ID.
func NewID() string {
	return uuid.New().String()
}

// Append records tx for userID. The transaction must already carry an ID;
// appending an ID twice fails.
func (r *TransactionRepository) Append(userID string, tx domain.Transaction) error {
	if tx == nil || tx.TransactionID() == "" {
		return fmt.Errorf("%w: transaction id is required", domain.ErrInvalidTransaction)
	}

	data, err := domain.EncodeTransaction(tx)
	if err != nil {
		return fmt.Errorf("failed to encode transaction %s: %w", tx.TransactionID(), err)
	}

	_, err = r.db.Exec(`
		INSERT INTO transactions (id, user_id, date, type, currency, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		tx.TransactionID(),
		userID,
		tx.OccurredAt().Unix(),
		string(tx.Kind()),
		string(tx.CurrencyCode()),
		string(data),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction %s: %w", tx.TransactionID(), err)
	}

	r.log.Debug().
		Str("user", userID).
		Str("id", tx.TransactionID()).
		Str("type", string(tx.Kind())).
		Msg("Appended transaction")

	return nil
}

// List returns every transaction of userID in date order, ties in insertion order.
func (r *TransactionRepository) List(userID string) (domain.TransactionList, error) {
	return r.query(`
		SELECT type, data FROM transactions
		WHERE user_id = ?
		ORDER BY date ASC, rowid ASC
	`, userID)
}

// ListBetween returns the transactions of userID dated in [from, to].
func (r *TransactionRepository) ListBetween(userID string, from, to time.Time) (domain.TransactionList, error) {
	return r.query(`
		SELECT type, data FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, rowid ASC
	`, userID, from.Unix(), to.Unix())
}

// ListByType returns the transactions of userID of one kind.
func (r *TransactionRepository) ListByType(userID string, kind domain.TransactionType) (domain.TransactionList, error) {
	return r.query(`
		SELECT type, data FROM transactions
		WHERE user_id = ? AND type = ?
		ORDER BY date ASC, rowid ASC
	`, userID, string(kind))
}

// GetByID returns one transaction, or nil when it does not exist.
func (r *TransactionRepository) GetByID(userID, id string) (domain.Transaction, error) {
	var kind, data string
	err := r.db.QueryRow(
		"SELECT type, data FROM transactions WHERE user_id = ? AND id = ?",
		userID, id,
	).Scan(&kind, &data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return domain.DecodeTransactionAs(domain.TransactionType(kind), []byte(data))
}

// FirstDate returns the date of the earliest transaction of userID, and false
// when the ledger is empty.
func (r *TransactionRepository) FirstDate(userID string) (time.Time, bool, error) {
	var ts sql.NullInt64
	err := r.db.QueryRow("SELECT MIN(date) FROM transactions WHERE user_id = ?", userID).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get first transaction date: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return utils.TruncateToDay(time.Unix(ts.Int64, 0).UTC()), true, nil
}

func (r *TransactionRepository) query(query string, args ...interface{}) (domain.TransactionList, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := make(domain.TransactionList, 0)
	for rows.Next() {
		var kind, data string
		if err := rows.Scan(&kind, &data); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx, err := domain.DecodeTransactionAs(domain.TransactionType(kind), []byte(data))
		if err != nil {
			r.log.Warn().Err(err).Str("type", kind).Msg("Skipping undecodable transaction")
			continue
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
