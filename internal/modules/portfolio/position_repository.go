package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/domain"
	"github.com/rs/zerolog"
)

// PositionRepository handles position database operations.
// Each position is stored as its JSON encoding, keyed by user and position key.
type PositionRepository struct {
	db  database.Querier // portfolio.db - positions
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(portfolioDB *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  portfolioDB,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// WithTx returns a repository bound to tx.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{db: tx, log: r.log}
}

// GetAll returns the positions of userID in insertion order.
// Rows that fail to decode are logged and skipped.
func (r *PositionRepository) GetAll(userID string) ([]domain.Position, error) {
	rows, err := r.db.Query(`
		SELECT position_key, asset_type, data FROM positions
		WHERE user_id = ?
		ORDER BY rowid ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]domain.Position, 0)
	for rows.Next() {
		var key, assetType, data string
		if err := rows.Scan(&key, &assetType, &data); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p, err := domain.DecodePositionAs(domain.AssetType(assetType), []byte(data))
		if err != nil {
			r.log.Warn().Err(err).Str("user", userID).Str("key", key).Msg("Skipping undecodable position")
			continue
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetByKey returns one position, or nil when it does not exist.
func (r *PositionRepository) GetByKey(userID, key string) (domain.Position, error) {
	var assetType, data string
	err := r.db.QueryRow(
		"SELECT asset_type, data FROM positions WHERE user_id = ? AND position_key = ?",
		userID, key,
	).Scan(&assetType, &data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position %s: %w", key, err)
	}
	return domain.DecodePositionAs(domain.AssetType(assetType), []byte(data))
}

// Upsert inserts or replaces a position. An existing row keeps its rowid, so
// list order is stable across updates.
func (r *PositionRepository) Upsert(userID string, p domain.Position) error {
	data, err := domain.EncodePosition(p)
	if err != nil {
		return fmt.Errorf("failed to encode position %s: %w", p.Key(), err)
	}

	query := `
		INSERT INTO positions (user_id, position_key, asset_type, currency, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, position_key) DO UPDATE SET
			asset_type = excluded.asset_type,
			currency = excluded.currency,
			data = excluded.data,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query,
		userID,
		p.Key(),
		string(p.AssetType()),
		string(p.CurrencyCode()),
		string(data),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", p.Key(), err)
	}

	r.log.Debug().
		Str("user", userID).
		Str("key", p.Key()).
		Str("asset_type", string(p.AssetType())).
		Msg("Upserted position")

	return nil
}

// Delete removes a position. Deleting a missing key is not an error.
func (r *PositionRepository) Delete(userID, key string) error {
	result, err := r.db.Exec("DELETE FROM positions WHERE user_id = ? AND position_key = ?", userID, key)
	if err != nil {
		return fmt.Errorf("failed to delete position %s: %w", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		r.log.Debug().Str("user", userID).Str("key", key).Msg("Deleted position")
	}

	return nil
}

// ReplaceAll swaps the stored positions of userID for positions. Run it on a
// repository bound to a transaction so the swap is atomic.
func (r *PositionRepository) ReplaceAll(userID string, positions []domain.Position) error {
	if _, err := r.db.Exec("DELETE FROM positions WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}
	for _, p := range positions {
		if err := r.Upsert(userID, p); err != nil {
			return err
		}
	}
	return nil
}

// ListUsers returns every user with at least one position or cash balance.
func (r *PositionRepository) ListUsers() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT user_id FROM positions
		UNION
		SELECT user_id FROM cash_balances
		ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
