// Package allocation derives a target asset-class split from an investor
// profile and goals, and recommends moves toward it.
package allocation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/cartera/internal/domain"
)

// RiskAppetite is the self-declared risk tier of an investor.
type RiskAppetite string

const (
	RiskConservative RiskAppetite = "Conservador"
	RiskBalanced     RiskAppetite = "Balanceado"
	RiskAggressive   RiskAppetite = "Agresivo"
)

// Valid reports whether r is a known tier.
func (r RiskAppetite) Valid() bool {
	switch r {
	case RiskConservative, RiskBalanced, RiskAggressive:
		return true
	}
	return false
}

// KnowledgeLevel is the self-reported investing knowledge of an investor.
type KnowledgeLevel string

const (
	KnowledgeLow    KnowledgeLevel = "Bajo"
	KnowledgeMedium KnowledgeLevel = "Medio"
	KnowledgeHigh   KnowledgeLevel = "Alto"
)

// Valid reports whether k is a known level.
func (k KnowledgeLevel) Valid() bool {
	switch k {
	case KnowledgeLow, KnowledgeMedium, KnowledgeHigh:
		return true
	}
	return false
}

var (
	// ErrProfileNotFound is returned when a user has no investor profile yet.
	ErrProfileNotFound = errors.New("investor profile not found")
	// ErrInvalidProfile is returned for an unknown risk appetite or knowledge level.
	ErrInvalidProfile = errors.New("invalid investor profile")
	// ErrInvalidGoal is returned for a goal without a name or target date.
	ErrInvalidGoal = errors.New("invalid investment goal")
)

// InvestorProfile is the questionnaire outcome the target is derived from.
type InvestorProfile struct {
	UserID         string         `json:"user_id"`
	RiskAppetite   RiskAppetite   `json:"risk_appetite"`
	KnowledgeLevel KnowledgeLevel `json:"knowledge_level"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Validate checks the enumerated fields.
func (p InvestorProfile) Validate() error {
	if !p.RiskAppetite.Valid() {
		return fmt.Errorf("%w: risk appetite %q", ErrInvalidProfile, p.RiskAppetite)
	}
	if !p.KnowledgeLevel.Valid() {
		return fmt.Errorf("%w: knowledge level %q", ErrInvalidProfile, p.KnowledgeLevel)
	}
	return nil
}

// InvestmentGoal is a savings target with a date.
type InvestmentGoal struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Name         string      `json:"name"`
	TargetAmount float64     `json:"target_amount"`
	TargetDate   domain.Date `json:"target_date"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Validate checks the required fields.
func (g InvestmentGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGoal)
	}
	if g.TargetDate.IsZero() {
		return fmt.Errorf("%w: target date is required", ErrInvalidGoal)
	}
	if g.TargetAmount < 0 {
		return fmt.Errorf("%w: target amount must not be negative", ErrInvalidGoal)
	}
	return nil
}

// Action is what a recommendation asks the investor to do.
type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionRotate   Action = "rotate"
	ActionBuy      Action = "buy"
	ActionSell     Action = "sell"
)

// Priority ranks a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Impact is the expected effect of following a recommendation.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNeutral  Impact = "neutral"
)

// Class names used in recommendations.
const (
	ClassStocks   = "stocks"
	ClassBonds    = "bonds"
	ClassDeposits = "deposits"
	ClassCash     = "cash"
)

// Recommendation is one suggested portfolio move.
type Recommendation struct {
	ID             string   `json:"id"`
	Action         Action   `json:"action"`
	AssetClass     string   `json:"asset_class,omitempty"`
	Symbol         string   `json:"symbol,omitempty"`
	TargetSymbol   string   `json:"target_symbol,omitempty"`
	Reason         string   `json:"reason"`
	Priority       Priority `json:"priority"`
	ExpectedImpact Impact   `json:"expected_impact"`
}

// Strategy is a generated investment strategy.
type Strategy struct {
	ID                string                  `json:"id"`
	CreatedAt         time.Time               `json:"created_at"`
	RiskLevel         RiskAppetite            `json:"risk_level"`
	TimeHorizon       string                  `json:"time_horizon"`
	TargetAllocation  domain.AllocationTarget `json:"target_allocation"`
	CurrentAllocation *Allocation             `json:"current_allocation,omitempty"`
	Classes           []ClassAllocation       `json:"classes,omitempty"`
	Recommendations   []Recommendation        `json:"recommendations"`
	Notes             string                  `json:"notes"`
}
