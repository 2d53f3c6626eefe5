package valuation

import (
	"context"
	"sort"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/interfaces"
	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// anchorPoint is one cached price on the coarsened lookup grid, used as an
// interpolation endpoint.
type anchorPoint struct {
	date  time.Time
	price float64
}

// pricer resolves normalized-currency prices for asset states. All state is
// request-local: the cache and anchors die with the request.
type pricer struct {
	oracle       interfaces.PriceOracle
	logger       *common.Logger
	baseCurrency string

	gridStart  time.Time
	lookupStep int // days; 1 = direct lookups, no interpolation

	now func() time.Time

	// cache holds normalized prices keyed by symbol|category|date. Entries
	// are written only for strictly positive prices so a failed lookup is
	// retried rather than poisoning the cache.
	cache   map[string]float64
	anchors map[string][]anchorPoint // per asset key, date ascending
}

func newPricer(oracle interfaces.PriceOracle, baseCurrency string, axis *Axis, now func() time.Time, logger *common.Logger) *pricer {
	return &pricer{
		oracle:       oracle,
		logger:       logger,
		baseCurrency: baseCurrency,
		gridStart:    axis.Start,
		lookupStep:   axis.LookupStepDays,
		now:          now,
		cache:        make(map[string]float64),
		anchors:      make(map[string][]anchorPoint),
	}
}

func cacheKey(symbol, category string, at time.Time, intraday bool) string {
	if intraday {
		return symbol + "|" + category + "|" + at.Format("2006-01-02T15:04")
	}
	return symbol + "|" + category + "|" + at.Format("2006-01-02")
}

func pricerAssetKey(a *models.AssetState) string {
	return a.Category + "|" + a.Symbol
}

// PriceAt resolves the price of one unit of the asset at the given instant,
// in the normalized currency. It never fails: missing data degrades through
// lastKnownPrice, averageCost and a final current-quote attempt. Zero is
// returned only when nothing is available, which for a positive position is a
// data-integrity signal rather than a normal outcome.
func (p *pricer) PriceAt(ctx context.Context, a *models.AssetState, at time.Time, intraday bool) float64 {
	if a.FixedIncome != nil {
		return p.fixedIncomePrice(ctx, a, at)
	}
	return p.marketPrice(ctx, a, at, intraday)
}

// fixedIncomePrice values a fixed-income position through the accrual
// formula: each layer's original contribution accrued from its acquisition
// date, summed and divided by the total quantity held.
func (p *pricer) fixedIncomePrice(ctx context.Context, a *models.AssetState, at time.Time) float64 {
	qty := a.TotalQuantity()
	if qty <= 0 {
		return 0
	}

	var total float64
	for _, layer := range a.Layers {
		value, err := p.oracle.FixedIncomeValue(ctx, layer.OriginalAmount, *a.FixedIncome, layer.AcquiredAt, at)
		if err != nil {
			p.logger.Warn().Err(err).
				Str("symbol", a.Symbol).
				Time("date", at).
				Msg("Fixed-income accrual failed for layer")
			continue
		}
		total += value
	}

	price := total / qty
	if price <= 0 {
		if a.LastKnownPrice > 0 {
			return a.LastKnownPrice
		}
		return a.AverageCost()
	}

	a.LastKnownPrice = price
	return price
}

// marketPrice resolves a non-fixed-income price via the oracle, with the
// coarsened-grid interpolation and the full fallback chain.
func (p *pricer) marketPrice(ctx context.Context, a *models.AssetState, at time.Time, intraday bool) float64 {
	key := cacheKey(a.Symbol, a.Category, at, intraday)
	if price, ok := p.cache[key]; ok {
		a.LastKnownPrice = price
		return price
	}

	var price float64
	switch {
	case intraday && at.After(p.now()):
		// Never simulate forward: an instant still ahead of the clock gets
		// today's quote.
		price = p.currentQuote(ctx, a)

	case intraday:
		price = p.lookup(ctx, a, at, at)

	case at.After(p.today()):
		// Future sample dates likewise get today's quote.
		price = p.currentQuote(ctx, a)

	case p.lookupStep <= 1:
		price = p.lookup(ctx, a, at, time.Time{})

	default:
		price = p.coarsenedPrice(ctx, a, at)
	}

	if price > 0 {
		p.cache[key] = price
		a.LastKnownPrice = price
		return price
	}

	// Fallback chain: last known price, then average cost, then one final
	// attempt at a current quote.
	if a.LastKnownPrice > 0 {
		return a.LastKnownPrice
	}
	if avg := a.AverageCost(); avg > 0 {
		return avg
	}
	if price = p.currentQuote(ctx, a); price > 0 {
		a.LastKnownPrice = price
		return price
	}

	if a.TotalQuantity() > 0 {
		p.logger.Warn().
			Str("symbol", a.Symbol).
			Str("category", a.Category).
			Time("date", at).
			Msg("No price available for held asset; valuing at zero")
	}
	return 0
}

// coarsenedPrice looks up the price only at the lookup-grid date covering at,
// then linearly interpolates between the two nearest cached anchors. With a
// single cached neighbor that neighbor's price is used directly — the
// resolver never extrapolates.
func (p *pricer) coarsenedPrice(ctx context.Context, a *models.AssetState, at time.Time) float64 {
	snapped := p.floorToGrid(at)
	anchorPrice, ok := p.LookupAnchor(ctx, a, snapped)
	if ok && snapped.Equal(at) {
		return anchorPrice
	}

	prev, next, found := p.neighbors(pricerAssetKey(a), at)
	switch found {
	case 2:
		return interpolate(prev, next, at)
	case 1:
		if prev != nil {
			return prev.price
		}
		return next.price
	default:
		return 0
	}
}

// LookupAnchor fetches (or returns the cached) normalized price at a grid
// date and records it as an interpolation anchor. Used by both the resolver
// and the prefetcher.
func (p *pricer) LookupAnchor(ctx context.Context, a *models.AssetState, date time.Time) (float64, bool) {
	key := cacheKey(a.Symbol, a.Category, date, false)
	if price, ok := p.cache[key]; ok {
		return price, true
	}

	price := p.lookup(ctx, a, date, time.Time{})
	if price <= 0 {
		return 0, false
	}

	p.cache[key] = price
	p.insertAnchor(pricerAssetKey(a), anchorPoint{date: date, price: price})
	return price, true
}

// lookup performs one oracle quote and normalizes its currency. Returns 0 on
// any failure.
func (p *pricer) lookup(ctx context.Context, a *models.AssetState, date, dateTime time.Time) float64 {
	res, err := p.oracle.Quote(ctx, a.Symbol, a.Category, date, dateTime)
	if err != nil {
		p.logger.Debug().Err(err).
			Str("symbol", a.Symbol).
			Time("date", date).
			Msg("Quote lookup failed")
		return 0
	}
	if !res.Success || res.Price <= 0 {
		return 0
	}
	return p.normalize(ctx, res)
}

// currentQuote asks the oracle for the present-time price.
func (p *pricer) currentQuote(ctx context.Context, a *models.AssetState) float64 {
	return p.lookup(ctx, a, time.Time{}, time.Time{})
}

// normalize converts an oracle price into the base currency. A failed
// conversion is treated as a failed lookup: a price in the wrong currency is
// worse than no price.
func (p *pricer) normalize(ctx context.Context, res interfaces.QuoteResult) float64 {
	if res.Currency == "" || res.Currency == p.baseCurrency {
		return res.Price
	}
	rate, err := p.oracle.ExchangeRate(ctx, res.Currency, p.baseCurrency)
	if err != nil {
		p.logger.Warn().Err(err).
			Str("from", res.Currency).
			Str("to", p.baseCurrency).
			Msg("Exchange rate unavailable; discarding quote")
		return 0
	}
	return res.Price * rate
}

// floorToGrid snaps a date down to the most recent lookup-grid point.
func (p *pricer) floorToGrid(at time.Time) time.Time {
	days := int(at.Sub(p.gridStart).Hours() / 24)
	if days <= 0 {
		return p.gridStart
	}
	return p.gridStart.AddDate(0, 0, (days/p.lookupStep)*p.lookupStep)
}

// insertAnchor keeps the per-asset anchor list sorted by date.
func (p *pricer) insertAnchor(key string, a anchorPoint) {
	list := p.anchors[key]
	idx := sort.Search(len(list), func(i int) bool { return !list[i].date.Before(a.date) })
	if idx < len(list) && list[idx].date.Equal(a.date) {
		list[idx] = a
	} else {
		list = append(list, anchorPoint{})
		copy(list[idx+1:], list[idx:])
		list[idx] = a
	}
	p.anchors[key] = list
}

// neighbors finds the nearest anchors on either side of at. The int result
// counts how many were found; with one, the other pointer is nil.
func (p *pricer) neighbors(key string, at time.Time) (prev, next *anchorPoint, found int) {
	list := p.anchors[key]
	for i := range list {
		if !list[i].date.After(at) {
			prev = &list[i]
		} else {
			next = &list[i]
			break
		}
	}
	if prev != nil {
		found++
	}
	if next != nil {
		found++
	}
	return prev, next, found
}

// interpolate computes the linear interpolation between two anchors at date.
func interpolate(p1, p2 *anchorPoint, at time.Time) float64 {
	total := p2.date.Sub(p1.date).Hours()
	if total <= 0 {
		return p1.price
	}
	frac := at.Sub(p1.date).Hours() / total
	return p1.price + (p2.price-p1.price)*frac
}

// today returns the current date at midnight UTC.
func (p *pricer) today() time.Time {
	return midnight(p.now())
}
