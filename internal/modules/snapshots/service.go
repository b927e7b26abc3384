package snapshots

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/events"
	"github.com/aristath/cartera/internal/modules/capital"
	"github.com/aristath/cartera/internal/modules/portfolio"
	"github.com/aristath/cartera/internal/utils"
	"github.com/rs/zerolog"
)

// PortfolioReader supplies the current holdings of a user.
type PortfolioReader interface {
	Valuation(ctx context.Context, userID string, asOf time.Time) (*portfolio.Valuation, error)
	GetCash(userID string) (domain.CurrencyAmounts, error)
}

// TransactionLister reads a user's ledger.
type TransactionLister interface {
	List(userID string) (domain.TransactionList, error)
}

// RecordWriter persists single daily records.
type RecordWriter interface {
	UpsertRecord(userID string, rec domain.DailyRecord) error
}

// Service takes daily snapshots and serves the recorded history.
type Service struct {
	records    RecordWriter
	portfolio  PortfolioReader
	ledger     TransactionLister
	normalizer *Normalizer
	events     *events.Manager
	log        zerolog.Logger
}

// NewService creates a new snapshot service.
func NewService(
	records RecordWriter,
	portfolioReader PortfolioReader,
	ledger TransactionLister,
	normalizer *Normalizer,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		records:    records,
		portfolio:  portfolioReader,
		ledger:     ledger,
		normalizer: normalizer,
		events:     eventManager,
		log:        log.With().Str("service", "snapshots").Logger(),
	}
}

// TakeSnapshot values the portfolio of userID at asOf and writes the record for
// that day, replacing any earlier snapshot of the same day.
//
// A figure that cannot be computed is recorded as 0 and the record is marked
// incomplete; only a cancelled context or a failed write aborts.
func (s *Service) TakeSnapshot(ctx context.Context, userID string, asOf time.Time) (*domain.DailyRecord, error) {
	defer utils.OperationTimer("take_snapshot", s.log)()

	in := Inputs{
		TotalValue:      unknownAmounts(),
		InvestedCapital: unknownAmounts(),
		AvailableCash:   unknownAmounts(),
	}

	valuation, err := s.portfolio.Valuation(ctx, userID, asOf)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		s.log.Warn().Err(err).Str("user", userID).Msg("Failed to value portfolio for snapshot")
	default:
		in.TotalValue = valuation.Total
		if !valuation.Complete() {
			in.Partial = true
			s.log.Warn().
				Str("user", userID).
				Int("skipped", len(valuation.Skipped)).
				Msg("Snapshot excludes unpriced positions")
		}
	}

	if txs, err := s.ledger.List(userID); err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("Failed to load ledger for snapshot")
	} else {
		settled := upTo(txs, asOf)
		for _, c := range domain.Currencies {
			in.InvestedCapital.Set(c, capital.InvestedCapital(settled, c))
		}
	}

	if cash, err := s.portfolio.GetCash(userID); err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("Failed to load cash for snapshot")
	} else {
		in.AvailableCash = cash
	}

	rec := BuildRecord(domain.NewDate(asOf), in)
	if err := s.records.UpsertRecord(userID, rec); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	if s.normalizer != nil {
		s.normalizer.Merge(userID, rec)
	}

	event := s.log.Info()
	if rec.Incomplete {
		event = s.log.Warn()
	}
	event.
		Str("user", userID).
		Str("date", rec.Date.String()).
		Float64("total_ars", rec.TotalValue.ARS).
		Float64("total_usd", rec.TotalValue.USD).
		Bool("incomplete", rec.Incomplete).
		Msg("Daily snapshot recorded")

	s.events.EmitTyped("snapshots", &events.SnapshotRecordedData{
		UserID:     userID,
		Date:       rec.Date.String(),
		TotalARS:   rec.TotalValue.ARS,
		TotalUSD:   rec.TotalValue.USD,
		Incomplete: rec.Incomplete,
	})

	return &rec, nil
}

// TakeAll snapshots every user in users. A failure for one user is logged and
// does not stop the others; the count of written records is returned.
func (s *Service) TakeAll(ctx context.Context, users []string, asOf time.Time) (int, error) {
	written := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if _, err := s.TakeSnapshot(ctx, userID, asOf); err != nil {
			s.log.Error().Err(err).Str("user", userID).Msg("Snapshot failed")
			s.events.EmitError("snapshots", err, map[string]interface{}{"user_id": userID})
			continue
		}
		written++
	}
	return written, nil
}

// History returns the recorded days of userID, oldest first.
func (s *Service) History(userID string) ([]domain.DailyRecord, error) {
	return s.normalizer.History(userID)
}

// HistoryBetween returns the recorded days of userID within [from, to].
func (s *Service) HistoryBetween(userID string, from, to time.Time) ([]domain.DailyRecord, error) {
	records, err := s.History(userID)
	if err != nil {
		return nil, err
	}
	from, to = utils.TruncateToDay(from), utils.TruncateToDay(to)

	out := make([]domain.DailyRecord, 0, len(records))
	for _, r := range records {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Normalize reconciles the history of userID with strategy.
func (s *Service) Normalize(ctx context.Context, userID string, strategy Strategy) (*NormalizeResult, error) {
	return s.normalizer.Normalize(ctx, userID, strategy)
}

// Export serialises the history of userID to msgpack.
func (s *Service) Export(userID string, now time.Time) ([]byte, error) {
	records, err := s.History(userID)
	if err != nil {
		return nil, err
	}
	data, err := EncodeHistory(userID, records, now)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}

func unknownAmounts() domain.CurrencyAmounts {
	return domain.CurrencyAmounts{ARS: math.NaN(), USD: math.NaN()}
}

// upTo keeps transactions dated on or before the calendar day of asOf.
func upTo(txs []domain.Transaction, asOf time.Time) []domain.Transaction {
	end := utils.TruncateToDay(asOf).AddDate(0, 0, 1)
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.OccurredAt().Before(end) {
			out = append(out, tx)
		}
	}
	return out
}
