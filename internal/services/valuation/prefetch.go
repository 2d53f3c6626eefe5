package valuation

import (
	"context"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

const (
	// prefetchSpanDays: spans longer than this warm the price cache up front.
	prefetchSpanDays = 365

	// prefetchMaxLookups caps lookups per asset during prefetch.
	prefetchMaxLookups = 100

	// prefetchPauseEvery / prefetchPause throttle requests to the oracle.
	// Client-side politeness only, not a backpressure signal.
	prefetchPauseEvery = 10
	prefetchPause      = 100 * time.Millisecond
)

// prefetch pre-warms the price cache for long ranges. It replays the full
// transaction history once to discover every non-fixed-income asset that will
// appear, then fetches each asset's price at every point on the lookup grid.
// The extra replay buys us bounded, batched lookups instead of scattered
// on-demand calls in the per-sample loop.
func (s *Service) prefetch(ctx context.Context, txs []models.Transaction, axis *Axis, pr *pricer) {
	start := time.Now()

	discovery := NewLedger(txs, s.logger)
	discovery.Advance(axis.End)

	gridEnd := axis.End
	if today := midnight(s.now()); gridEnd.After(today) {
		gridEnd = today
	}

	var total, hits int
	for _, a := range discovery.Assets() {
		if a.FixedIncome != nil {
			continue // fixed-income prices come from the accrual formula, not the oracle
		}
		count := 0
		for d := axis.Start; !d.After(gridEnd) && count < prefetchMaxLookups; d = d.AddDate(0, 0, axis.LookupStepDays) {
			if _, ok := pr.LookupAnchor(ctx, a, d); ok {
				hits++
			}
			count++
			total++
			if total%prefetchPauseEvery == 0 {
				s.sleep(prefetchPause)
			}
		}
	}

	s.logger.Info().
		Int("lookups", total).
		Int("cached", hits).
		Int("step_days", axis.LookupStepDays).
		Dur("elapsed", time.Since(start)).
		Msg("Price cache prefetch complete")
}
