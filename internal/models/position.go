package models

import "time"

// LayerEpsilon is the quantity below which a position layer is considered
// exhausted and evicted from its asset's lot stack.
const LayerEpsilon = 1e-6

// PositionLayer is one acquisition lot, created by a buy and consumed in FIFO
// order by subsequent sells.
type PositionLayer struct {
	Remaining      float64   `json:"remaining"`
	UnitCost       float64   `json:"unit_cost"`
	AcquiredAt     time.Time `json:"acquired_at"`
	OriginalAmount float64   `json:"original_amount"` // invested amount at acquisition, pre-sell
}

// FixedIncomeTerms carries the rate parameters of a fixed-income instrument.
type FixedIncomeTerms struct {
	InstrumentType  string    `json:"instrument_type"`
	YieldType       YieldType `json:"yield_type"`
	ReferenceIndex  string    `json:"reference_index"`
	IndexPercentage float64   `json:"index_percentage"`
	FixedRate       float64   `json:"fixed_rate"`
	MaturityDate    time.Time `json:"maturity_date"`
}

// AssetState is the per-(category, symbol) aggregate the ledger maintains.
// An AssetState with no layers is "empty" but is never deleted: its category
// must remain visible in output series after full liquidation.
type AssetState struct {
	Symbol   string `json:"symbol"`
	Category string `json:"category"`
	Currency string `json:"currency"`

	// Fixed-income metadata; the most recent transaction wins on update.
	FixedIncome *FixedIncomeTerms `json:"fixed_income,omitempty"`

	Layers []*PositionLayer `json:"layers"`

	// LastKnownPrice is the per-asset pricing memo: the most recent
	// successfully resolved price, used when later lookups fail.
	LastKnownPrice float64 `json:"last_known_price"`
}

// TotalQuantity sums remaining quantity across all layers.
func (a *AssetState) TotalQuantity() float64 {
	var total float64
	for _, l := range a.Layers {
		total += l.Remaining
	}
	return total
}

// TotalCostBasis sums remaining quantity × unit cost across all layers.
func (a *AssetState) TotalCostBasis() float64 {
	var total float64
	for _, l := range a.Layers {
		total += l.Remaining * l.UnitCost
	}
	return total
}

// AverageCost returns cost basis per held unit, or 0 for an empty position.
func (a *AssetState) AverageCost() float64 {
	qty := a.TotalQuantity()
	if qty <= 0 {
		return 0
	}
	return a.TotalCostBasis() / qty
}

// IsEmpty reports whether the position has been fully liquidated.
func (a *AssetState) IsEmpty() bool {
	return len(a.Layers) == 0
}
