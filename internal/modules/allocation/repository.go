package allocation

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/utils"
	"github.com/rs/zerolog"
)

// ProfileRepository stores investor profiles in portfolio.db.
type ProfileRepository struct {
	db  *sql.DB // portfolio.db - investor_profiles table
	log zerolog.Logger
}

// NewProfileRepository creates a new investor profile repository.
func NewProfileRepository(portfolioDB *sql.DB, log zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  portfolioDB,
		log: log.With().Str("repo", "investor_profiles").Logger(),
	}
}

// Get returns the profile of userID, or ErrProfileNotFound.
func (r *ProfileRepository) Get(userID string) (*InvestorProfile, error) {
	var (
		p         InvestorProfile
		updatedAt int64
	)
	err := r.db.QueryRow(`
		SELECT user_id, risk_appetite, knowledge_level, updated_at
		FROM investor_profiles
		WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.RiskAppetite, &p.KnowledgeLevel, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investor profile: %w", err)
	}
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &p, nil
}

// Upsert creates or replaces the profile of p.UserID.
func (r *ProfileRepository) Upsert(p InvestorProfile) error {
	_, err := r.db.Exec(`
		INSERT INTO investor_profiles (user_id, risk_appetite, knowledge_level, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			risk_appetite = excluded.risk_appetite,
			knowledge_level = excluded.knowledge_level,
			updated_at = excluded.updated_at
	`, p.UserID, string(p.RiskAppetite), string(p.KnowledgeLevel), p.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert investor profile: %w", err)
	}

	r.log.Debug().Str("user", p.UserID).Str("risk", string(p.RiskAppetite)).Msg("Investor profile saved")
	return nil
}

// GoalRepository stores investment goals in portfolio.db.
type GoalRepository struct {
	db  *sql.DB // portfolio.db - investment_goals table
	log zerolog.Logger
}

// NewGoalRepository creates a new investment goal repository.
func NewGoalRepository(portfolioDB *sql.DB, log zerolog.Logger) *GoalRepository {
	return &GoalRepository{
		db:  portfolioDB,
		log: log.With().Str("repo", "investment_goals").Logger(),
	}
}

// List returns the goals of userID ordered by target date.
func (r *GoalRepository) List(userID string) ([]InvestmentGoal, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, target_amount, target_date, created_at
		FROM investment_goals
		WHERE user_id = ?
		ORDER BY target_date ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investment goals: %w", err)
	}
	defer rows.Close()

	goals := []InvestmentGoal{}
	for rows.Next() {
		var (
			g                     InvestmentGoal
			targetDate, createdAt int64
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &targetDate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan investment goal: %w", err)
		}
		g.TargetDate = domain.NewDate(utils.UnixToDate(targetDate))
		g.CreatedAt = time.Unix(createdAt, 0).UTC()
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment goals: %w", err)
	}
	return goals, nil
}

// Create stores a new goal. ID and CreatedAt must already be set.
func (r *GoalRepository) Create(g InvestmentGoal) error {
	_, err := r.db.Exec(`
		INSERT INTO investment_goals (id, user_id, name, target_amount, target_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.ID, g.UserID, g.Name, g.TargetAmount, utils.DateToUnix(g.TargetDate.Time), g.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to create investment goal: %w", err)
	}
	return nil
}

// Delete removes one goal of userID. It reports whether a row was removed.
func (r *GoalRepository) Delete(userID, id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM investment_goals WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete investment goal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
