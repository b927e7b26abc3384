package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
	"github.com/rs/zerolog"
)

const recordColumns = `date, total_value_ars, total_value_usd, invested_capital_ars, invested_capital_usd,
	net_gains_ars, net_gains_usd, available_cash_ars, available_cash_usd, incomplete`

// Repository stores daily records in history.db.
type Repository struct {
	conn *sql.DB          // history.db - daily_records table
	db   database.Querier // conn or an open transaction on it
	log  zerolog.Logger
}

// NewRepository creates a new daily record repository.
func NewRepository(historyDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		conn: historyDB,
		db:   historyDB,
		log:  log.With().Str("repo", "daily_records").Logger(),
	}
}

// ListRecords returns every record of userID, oldest first.
func (r *Repository) ListRecords(userID string) ([]domain.DailyRecord, error) {
	rows, err := r.db.Query(`
		SELECT `+recordColumns+`
		FROM daily_records
		WHERE user_id = ?
		ORDER BY date ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	defer rows.Close()

	var records []domain.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily records: %w", err)
	}
	return records, nil
}

// GetRecord returns the record of userID for date, or nil when there is none.
func (r *Repository) GetRecord(userID string, date time.Time) (*domain.DailyRecord, error) {
	rows, err := r.db.Query(`
		SELECT `+recordColumns+`
		FROM daily_records
		WHERE user_id = ? AND date = ?
	`, userID, utils.DateToUnix(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	rec, err := scanRecord(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertRecord inserts rec or replaces the record already stored for its date.
func (r *Repository) UpsertRecord(userID string, rec domain.DailyRecord) error {
	_, err := r.db.Exec(`
		INSERT INTO daily_records (user_id, `+recordColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			total_value_ars = excluded.total_value_ars,
			total_value_usd = excluded.total_value_usd,
			invested_capital_ars = excluded.invested_capital_ars,
			invested_capital_usd = excluded.invested_capital_usd,
			net_gains_ars = excluded.net_gains_ars,
			net_gains_usd = excluded.net_gains_usd,
			available_cash_ars = excluded.available_cash_ars,
			available_cash_usd = excluded.available_cash_usd,
			incomplete = excluded.incomplete,
			updated_at = excluded.updated_at
	`, recordArgs(userID, rec)...)
	if err != nil {
		return fmt.Errorf("failed to upsert daily record %s: %w", rec.Date, err)
	}
	return nil
}

// ReplaceHistory atomically replaces every record of userID with records.
func (r *Repository) ReplaceHistory(userID string, records []domain.DailyRecord) error {
	err := database.WithTransaction(r.conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM daily_records WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to clear daily records: %w", err)
		}
		txRepo := &Repository{conn: r.conn, db: tx, log: r.log}
		for _, rec := range records {
			if err := txRepo.UpsertRecord(userID, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace history for %s: %w", userID, err)
	}

	r.log.Debug().Str("user", userID).Int("records", len(records)).Msg("Replaced daily history")
	return nil
}

// ListUsers returns every user with at least one record.
func (r *Repository) ListUsers() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT user_id FROM daily_records ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query history users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan history user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func recordArgs(userID string, rec domain.DailyRecord) []interface{} {
	var incomplete int
	if rec.Incomplete {
		incomplete = 1
	}
	return []interface{}{
		userID,
		utils.DateToUnix(rec.Date.Time),
		rec.TotalValue.ARS,
		rec.TotalValue.USD,
		rec.InvestedCapital.ARS,
		rec.InvestedCapital.USD,
		nullableFloat(rec.NetGains.ARS),
		nullableFloat(rec.NetGains.USD),
		rec.AvailableCash.ARS,
		rec.AvailableCash.USD,
		incomplete,
		time.Now().Unix(),
	}
}

func scanRecord(rows *sql.Rows) (domain.DailyRecord, error) {
	var (
		rec           domain.DailyRecord
		date          int64
		gARS, gUSD    sql.NullFloat64
		incompleteInt int
	)
	err := rows.Scan(
		&date,
		&rec.TotalValue.ARS,
		&rec.TotalValue.USD,
		&rec.InvestedCapital.ARS,
		&rec.InvestedCapital.USD,
		&gARS,
		&gUSD,
		&rec.AvailableCash.ARS,
		&rec.AvailableCash.USD,
		&incompleteInt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan daily record: %w", err)
	}

	rec.Date = domain.NewDate(utils.UnixToDate(date))
	rec.Incomplete = incompleteInt != 0
	if gARS.Valid {
		rec.NetGains.Set(domain.CurrencyARS, gARS.Float64)
	}
	if gUSD.Valid {
		rec.NetGains.Set(domain.CurrencyUSD, gUSD.Float64)
	}
	return rec, nil
}

func nullableFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
