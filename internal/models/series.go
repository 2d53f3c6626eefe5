package models

// Series resolutions.
const (
	ResolutionDaily    = "1d"
	ResolutionIntraday = "2h"
)

// CategorySeries holds the per-category invested and current arrays. Both
// always have exactly as many entries as the series has labels.
type CategorySeries struct {
	Invested []float64 `json:"invested"`
	Current  []float64 `json:"current"`
}

// ValuationSeries is the full reconstructed portfolio time series.
type ValuationSeries struct {
	Labels     []string                   `json:"labels"`
	Invested   []float64                  `json:"invested"`
	Current    []float64                  `json:"current"`
	Categories map[string]*CategorySeries `json:"categories"`
	StartDate  string                     `json:"start_date"`
	EndDate    string                     `json:"end_date"`
	Resolution string                     `json:"resolution"`
	Points     int                        `json:"points"`
}
