package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"bobina-estoque-backend/internal/store"
)

// Service periodically cross-checks every reel's used counter against the
// sum of its ledger entries. The ledger is the source of truth for audit;
// drift means a counter was edited out of band or a compensation path was
// interrupted. Drift is reported, never silently repaired: the operator
// fixes the counter through the edit-action.
type Service struct {
	store    store.Store
	interval time.Duration
}

// Drift describes one reel whose counter disagrees with its ledger.
type Drift struct {
	ReelID       string
	Code         string
	QuantityUsed int
	LedgerSum    int
}

// NewService creates a reconciler that runs every interval.
func NewService(s store.Store, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Service{store: s, interval: interval}
}

// Run executes reconciliation passes until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("starting ledger reconciler")

	s.ReconcileOnce(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("ledger reconciler shutting down")
			return
		case <-timer.C:
			s.ReconcileOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// ReconcileOnce performs a single pass and returns the drifts it found.
func (s *Service) ReconcileOnce(ctx context.Context) []Drift {
	reels, err := s.store.ListReels(ctx, store.ReelFilter{})
	if err != nil {
		log.Error().Err(err).Msg("reconciler: failed to list reels")
		return nil
	}

	var drifts []Drift
	for _, reel := range reels {
		entries, err := s.store.QueryLedger(ctx, store.LedgerFilter{ReelID: reel.ID})
		if err != nil {
			log.Error().Err(err).Str("reel_id", reel.ID).Msg("reconciler: failed to query ledger")
			continue
		}

		sum := 0
		for _, entry := range entries {
			sum += entry.QuantityUsed
		}

		if sum != reel.QuantityUsed {
			drift := Drift{
				ReelID:       reel.ID,
				Code:         reel.Code,
				QuantityUsed: reel.QuantityUsed,
				LedgerSum:    sum,
			}
			drifts = append(drifts, drift)
			log.Warn().
				Str("reel_id", drift.ReelID).
				Str("code", drift.Code).
				Int("quantity_used", drift.QuantityUsed).
				Int("ledger_sum", drift.LedgerSum).
				Msg("reconciler: reel counter disagrees with ledger")
		}
	}

	if len(drifts) == 0 {
		log.Debug().Int("reels", len(reels)).Msg("reconciler: counters consistent with ledger")
	}
	return drifts
}
