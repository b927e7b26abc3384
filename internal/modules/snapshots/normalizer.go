package snapshots

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/events"
	"github.com/rs/zerolog"
)

// RecordStore is the persistence the normalizer reads from and writes back to.
type RecordStore interface {
	ListRecords(userID string) ([]domain.DailyRecord, error)
	ReplaceHistory(userID string, records []domain.DailyRecord) error
}

// NormalizeResult summarises one normalization pass.
type NormalizeResult struct {
	UserID    string `json:"user_id"`
	Strategy  string `json:"strategy"`
	Records   int    `json:"records"`
	Corrected int    `json:"corrected"`
	Persisted bool   `json:"persisted"`
}

// Normalizer re-derives stored net gains and writes the whole history back
// only when a value changed.
//
// When the write fails the corrected history is kept in memory and served by
// History until a later pass persists it.
type Normalizer struct {
	store  RecordStore
	events *events.Manager
	log    zerolog.Logger

	mu      sync.RWMutex
	pending map[string][]domain.DailyRecord
}

// NewNormalizer creates a normalizer over store.
func NewNormalizer(store RecordStore, eventManager *events.Manager, log zerolog.Logger) *Normalizer {
	return &Normalizer{
		store:   store,
		events:  eventManager,
		log:     log.With().Str("component", "normalizer").Logger(),
		pending: make(map[string][]domain.DailyRecord),
	}
}

// Normalize loads every record of userID, applies strategy in memory and
// replaces the stored history in one transaction if anything changed. A
// second run over the same data corrects nothing and does not write.
func (n *Normalizer) Normalize(ctx context.Context, userID string, strategy Strategy) (*NormalizeResult, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: no strategy given", ErrUnknownStrategy)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, err := n.store.ListRecords(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", userID, err)
	}

	records := cloneRecords(stored)
	sortRecords(records)
	corrected := strategy.Apply(records)

	result := &NormalizeResult{
		UserID:    userID,
		Strategy:  strategy.Name(),
		Records:   len(records),
		Corrected: corrected,
	}

	if corrected == 0 {
		n.dropPending(userID)
		n.log.Debug().Str("user", userID).Str("strategy", strategy.Name()).Msg("History already normalized")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		n.setPending(userID, records)
		return result, err
	}

	if err := n.store.ReplaceHistory(userID, records); err != nil {
		n.setPending(userID, records)
		n.log.Error().
			Err(err).
			Str("user", userID).
			Int("corrected", corrected).
			Msg("Failed to persist normalized history, serving from memory")
		return result, fmt.Errorf("failed to persist normalized history: %w", err)
	}

	n.dropPending(userID)
	result.Persisted = true

	n.log.Info().
		Str("user", userID).
		Str("strategy", strategy.Name()).
		Int("records", len(records)).
		Int("corrected", corrected).
		Msg("Normalized daily history")

	n.events.EmitTyped("snapshots", &events.HistoryNormalizedData{
		UserID:    userID,
		Strategy:  strategy.Name(),
		Records:   len(records),
		Corrected: corrected,
		Persisted: true,
	})

	return result, nil
}

// History returns the records of userID, oldest first, preferring a corrected
// history that could not be persisted yet.
func (n *Normalizer) History(userID string) ([]domain.DailyRecord, error) {
	n.mu.RLock()
	pending, ok := n.pending[userID]
	n.mu.RUnlock()
	if ok {
		return cloneRecords(pending), nil
	}

	records, err := n.store.ListRecords(userID)
	if err != nil {
		return nil, err
	}
	sortRecords(records)
	return records, nil
}

// Merge folds a freshly written record into the in-memory history of userID,
// if one is pending.
func (n *Normalizer) Merge(userID string, rec domain.DailyRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()

	pending, ok := n.pending[userID]
	if !ok {
		return
	}
	for i := range pending {
		if pending[i].Date.Equal(rec.Date.Time) {
			pending[i] = rec
			return
		}
	}
	pending = append(pending, rec)
	sortRecords(pending)
	n.pending[userID] = pending
}

// Pending reports whether userID has a corrected history not yet persisted.
func (n *Normalizer) Pending(userID string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.pending[userID]
	return ok
}

func (n *Normalizer) setPending(userID string, records []domain.DailyRecord) {
	n.mu.Lock()
	n.pending[userID] = records
	n.mu.Unlock()
}

func (n *Normalizer) dropPending(userID string) {
	n.mu.Lock()
	delete(n.pending, userID)
	n.mu.Unlock()
}
