package valuation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/interfaces"
	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// Service implements ValuationService. One BuildSeries call is one sequential
// pass (two when prefetching kicks in); all mutable state is request-local,
// so concurrent requests need no synchronization.
type Service struct {
	store        interfaces.TransactionStore
	oracle       interfaces.PriceOracle
	baseCurrency string
	logger       *common.Logger

	now   func() time.Time     // injectable clock for testing
	sleep func(time.Duration)  // injectable prefetch throttle
}

// NewService creates a new valuation service.
func NewService(store interfaces.TransactionStore, oracle interfaces.PriceOracle, baseCurrency string, logger *common.Logger) *Service {
	return &Service{
		store:        store,
		oracle:       oracle,
		baseCurrency: baseCurrency,
		logger:       logger,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// BuildSeries reconstructs the invested and mark-to-market series for a
// user's portfolio over the requested range.
func (s *Service) BuildSeries(ctx context.Context, userID string, opts interfaces.SeriesOptions) (*models.ValuationSeries, error) {
	funcStart := time.Now()
	s.logger.Info().
		Str("user", userID).
		Str("period", opts.Period).
		Str("start", opts.StartDate).
		Str("end", opts.EndDate).
		Msg("Building valuation series")

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for user %s: %w", userID, err)
	}

	ledger := NewLedger(txs, s.logger)

	start, end, intraday, err := s.resolveRange(opts, ledger.EarliestDate())
	if err != nil {
		return nil, err
	}

	axis, err := BuildAxis(start, end, intraday)
	if err != nil {
		return nil, err
	}

	pr := newPricer(s.oracle, s.baseCurrency, axis, s.now, s.logger)

	if !axis.Intraday && axis.SpanDays() > prefetchSpanDays {
		s.prefetch(ctx, txs, axis, pr)
	}

	series := &models.ValuationSeries{
		Labels:     make([]string, 0, len(axis.Points)),
		Invested:   make([]float64, 0, len(axis.Points)),
		Current:    make([]float64, 0, len(axis.Points)),
		Categories: make(map[string]*models.CategorySeries),
		StartDate:  axis.Start.Format("2006-01-02"),
		EndDate:    axis.End.Format("2006-01-02"),
		Resolution: axis.Resolution,
	}

	for _, pt := range axis.Points {
		ledger.Advance(pt.Date)

		var totalInvested, totalCurrent float64
		catInvested := make(map[string]float64)
		catCurrent := make(map[string]float64)

		for _, a := range ledger.Assets() {
			// Every category ever seen gets an entry at every point, even
			// after full liquidation — continuity is never broken by gaps.
			if _, ok := catInvested[a.Category]; !ok {
				catInvested[a.Category] = 0
				catCurrent[a.Category] = 0
			}
			if a.IsEmpty() {
				continue
			}

			invested := a.TotalCostBasis()
			current := pr.PriceAt(ctx, a, pt.Date, axis.Intraday) * a.TotalQuantity()

			totalInvested += invested
			totalCurrent += current
			catInvested[a.Category] += invested
			catCurrent[a.Category] += current
		}

		idx := len(series.Labels)
		series.Labels = append(series.Labels, pt.Label)
		series.Invested = append(series.Invested, round2(totalInvested))
		series.Current = append(series.Current, round2(totalCurrent))

		for cat := range catInvested {
			cs, ok := series.Categories[cat]
			if !ok {
				// First appearance mid-run: backfill zeros for all prior
				// points so array lengths always match the labels.
				cs = &models.CategorySeries{
					Invested: make([]float64, idx),
					Current:  make([]float64, idx),
				}
				series.Categories[cat] = cs
			}
			cs.Invested = append(cs.Invested, round2(catInvested[cat]))
			cs.Current = append(cs.Current, round2(catCurrent[cat]))
		}
	}

	series.Points = len(series.Labels)

	s.logger.Info().
		Str("user", userID).
		Int("points", series.Points).
		Int("categories", len(series.Categories)).
		Str("resolution", series.Resolution).
		Dur("elapsed", time.Since(funcStart)).
		Msg("Valuation series complete")
	return series, nil
}

// resolveRange turns request options into a concrete (start, end, intraday)
// triple. The period token derives a start date relative to the end date;
// explicit start/end dates take precedence. A start after end is handled by
// the sampler's swap, not rejected here.
func (s *Service) resolveRange(opts interfaces.SeriesOptions, earliest time.Time) (start, end time.Time, intraday bool, err error) {
	end = midnight(s.now())
	if opts.EndDate != "" {
		end, err = parseISODate(opts.EndDate)
		if err != nil {
			return start, end, false, err
		}
	}

	intraday = opts.Period == interfaces.Period1D

	if opts.StartDate != "" {
		start, err = parseISODate(opts.StartDate)
		return start, end, intraday, err
	}

	switch opts.Period {
	case interfaces.Period1D:
		start = end
	case interfaces.Period1W:
		start = end.AddDate(0, 0, -7)
	case interfaces.Period1M:
		start = end.AddDate(0, -1, 0)
	case interfaces.Period6M:
		start = end.AddDate(0, -6, 0)
	case interfaces.PeriodYTD:
		start = time.Date(end.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	case interfaces.Period1Y:
		start = end.AddDate(-1, 0, 0)
	case interfaces.Period5Y:
		start = end.AddDate(-5, 0, 0)
	default:
		// ALL and no-period requests span the full contribution history.
		start = midnight(earliest)
		if earliest.IsZero() || start.After(end) {
			start = end
		}
	}
	return start, end, intraday, nil
}

func parseISODate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not an ISO date", ErrInvalidDate, s)
	}
	return t, nil
}

// round2 rounds to 2 decimal places (cents) for output.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ensure Service implements ValuationService
var _ interfaces.ValuationService = (*Service)(nil)
