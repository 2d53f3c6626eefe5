// Package interfaces defines service contracts for Controle-se
package interfaces

import (
	"context"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// QuoteResult is the oracle's answer for a single price lookup.
type QuoteResult struct {
	Success  bool    `json:"success"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// PriceOracle is the external market-data collaborator. Implementations own
// their internal caching and consistency; the engine treats them as opaque.
type PriceOracle interface {
	// Quote returns the price of an asset. A zero date means "now"; dateTime
	// is set only for intraday (sub-day) lookups.
	Quote(ctx context.Context, symbol, category string, date time.Time, dateTime time.Time) (QuoteResult, error)

	// ExchangeRate returns the conversion rate from one currency to another.
	ExchangeRate(ctx context.Context, from, to string) (float64, error)

	// FixedIncomeValue computes the accrued value of a fixed-income principal
	// from its acquisition date to asOf. Deterministic and monotonic in asOf
	// for positive rates.
	FixedIncomeValue(ctx context.Context, principal float64, terms models.FixedIncomeTerms, start, asOf time.Time) (float64, error)
}
