package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/events"
	"github.com/aristath/cartera/internal/modules/portfolio"
	"github.com/aristath/cartera/internal/utils"
)

// ProfileStore persists investor profiles.
type ProfileStore interface {
	Get(userID string) (*InvestorProfile, error)
	Upsert(p InvestorProfile) error
}

// GoalStore persists investment goals.
type GoalStore interface {
	List(userID string) ([]InvestmentGoal, error)
	Create(g InvestmentGoal) error
	Delete(userID, id string) (bool, error)
}

// PortfolioReader supplies holdings and their current value.
type PortfolioReader interface {
	GetPositions(userID string) ([]domain.Position, error)
	GetCash(userID string) (domain.CurrencyAmounts, error)
	Valuation(ctx context.Context, userID string, asOf time.Time) (*portfolio.Valuation, error)
}

// ErrGoalNotFound is returned when deleting a goal that does not exist.
var ErrGoalNotFound = errors.New("investment goal not found")

// Service builds investment strategies from stored profiles and goals.
type Service struct {
	profiles  ProfileStore
	goals     GoalStore
	portfolio PortfolioReader
	converter domain.CurrencyConverter
	sets      SymbolSets
	currency  domain.Currency
	events    *events.Manager
	now       func() time.Time
	log       zerolog.Logger
}

// NewService creates a new allocation service. Current allocations are
// measured in ARS.
func NewService(
	profiles ProfileStore,
	goals GoalStore,
	portfolioReader PortfolioReader,
	converter domain.CurrencyConverter,
	sets SymbolSets,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		profiles:  profiles,
		goals:     goals,
		portfolio: portfolioReader,
		converter: converter,
		sets:      sets,
		currency:  domain.CurrencyARS,
		events:    eventManager,
		now:       time.Now,
		log:       log.With().Str("service", "allocation").Logger(),
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GetProfile returns the stored profile of userID.
func (s *Service) GetProfile(userID string) (*InvestorProfile, error) {
	return s.profiles.Get(userID)
}

// SaveProfile validates and stores a profile for userID.
func (s *Service) SaveProfile(userID string, p InvestorProfile) (*InvestorProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UserID = userID
	p.UpdatedAt = s.now().UTC()
	if err := s.profiles.Upsert(p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListGoals returns the goals of userID.
func (s *Service) ListGoals(userID string) ([]InvestmentGoal, error) {
	return s.goals.List(userID)
}

// AddGoal validates and stores a new goal for userID.
func (s *Service) AddGoal(userID string, g InvestmentGoal) (*InvestmentGoal, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.ID = uuid.New().String()
	g.UserID = userID
	g.CreatedAt = s.now().UTC()
	if err := s.goals.Create(g); err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteGoal removes a goal of userID.
func (s *Service) DeleteGoal(userID, id string) error {
	ok, err := s.goals.Delete(userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGoalNotFound
	}
	return nil
}

// Target returns the target split for the stored profile and goals.
func (s *Service) Target(userID string) (domain.AllocationTarget, error) {
	profile, goals, err := s.load(userID)
	if err != nil {
		return domain.AllocationTarget{}, err
	}
	return ComputeTarget(*profile, goals, s.now()), nil
}

// BuildStrategy derives the target split, compares it to the current
// portfolio and attaches recommendations.
//
// When the portfolio cannot be valued the strategy is still returned with
// a target and no current allocation.
func (s *Service) BuildStrategy(ctx context.Context, userID string) (*Strategy, error) {
	defer utils.OperationTimer("build_strategy", s.log)()

	profile, goals, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	asOf := s.now()

	target := ComputeTarget(*profile, goals, asOf)
	current, equities := s.current(ctx, userID, asOf)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	strategy := &Strategy{
		ID:                uuid.New().String(),
		CreatedAt:         asOf.UTC(),
		RiskLevel:         profile.RiskAppetite,
		TimeHorizon:       TimeHorizonLabel(goals, asOf),
		TargetAllocation:  target,
		CurrentAllocation: current,
		Classes:           CompareClasses(target, current),
		Recommendations: GenerateRecommendations(RecommendationInput{
			Profile:  *profile,
			Goals:    goals,
			Target:   target,
			Current:  current,
			Equities: equities,
			AsOf:     asOf,
		}, s.sets),
		Notes: StrategyNotes(*profile, goals),
	}

	s.log.Info().
		Str("user", userID).
		Str("risk", string(profile.RiskAppetite)).
		Float64("target_stocks", target.Stocks).
		Int("recommendations", len(strategy.Recommendations)).
		Msg("Strategy generated")

	s.events.EmitTyped("allocation", &events.StrategyGeneratedData{
		UserID:          userID,
		RiskAppetite:    string(profile.RiskAppetite),
		Recommendations: len(strategy.Recommendations),
	})
	return strategy, nil
}

func (s *Service) load(userID string) (*InvestorProfile, []InvestmentGoal, error) {
	profile, err := s.profiles.Get(userID)
	if err != nil {
		return nil, nil, err
	}
	goals, err := s.goals.List(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load goals: %w", err)
	}
	return profile, goals, nil
}

func (s *Service) current(ctx context.Context, userID string, asOf time.Time) (*Allocation, []string) {
	if s.portfolio == nil {
		return nil, nil
	}

	var equities []string
	positions, err := s.portfolio.GetPositions(userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("Failed to load positions, skipping rotation checks")
	} else {
		equities = HeldEquities(positions)
	}

	valuation, err := s.portfolio.Valuation(ctx, userID, asOf)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("Failed to value portfolio, no current allocation")
		return nil, equities
	}
	if !valuation.Complete() {
		s.log.Warn().Str("user", userID).Int("skipped", len(valuation.Skipped)).Msg("Current allocation excludes unpriced positions")
	}
	cash, err := s.portfolio.GetCash(userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("Failed to load cash, no current allocation")
		return nil, equities
	}

	current, err := CurrentAllocation(ctx, valuation, cash, s.converter, s.currency)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("Failed to measure current allocation")
		return nil, equities
	}
	return current, equities
}
