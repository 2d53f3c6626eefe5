package interfaces

import (
	"context"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// Period tokens accepted by the series endpoint. Each maps to a start-date
// rule relative to the end date; PeriodAll uses the earliest transaction date.
const (
	Period1D  = "1D"
	Period1W  = "1W"
	Period1M  = "1M"
	Period6M  = "6M"
	PeriodYTD = "YTD"
	Period1Y  = "1Y"
	Period5Y  = "5Y"
	PeriodAll = "ALL"
)

// SeriesOptions configures a valuation series request. StartDate and EndDate
// are ISO dates ("2006-01-02"); either may be empty.
type SeriesOptions struct {
	StartDate string
	EndDate   string
	Period    string
}

// ValuationService reconstructs portfolio value time series.
type ValuationService interface {
	// BuildSeries replays the user's contribution history and returns the
	// invested/current series over the requested range.
	BuildSeries(ctx context.Context, userID string, opts SeriesOptions) (*models.ValuationSeries, error)
}
