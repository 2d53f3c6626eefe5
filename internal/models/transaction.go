// Package models defines the domain types for the valuation engine.
package models

import (
	"math"
	"time"
)

// YieldType classifies how a fixed-income instrument accrues.
type YieldType string

const (
	YieldPrefixed  YieldType = "prefixed"  // fixed annual rate only
	YieldPostfixed YieldType = "postfixed" // percentage of a reference index
	YieldHybrid    YieldType = "hybrid"    // fixed rate on top of an index
)

// Well-known asset categories. Category is free-form in transactions; only
// CategoryFixedIncome changes engine behavior.
const (
	CategoryStocks      = "stocks"
	CategoryFunds       = "funds"
	CategoryCrypto      = "crypto"
	CategoryFixedIncome = "fixed_income"
)

// Transaction is a single buy or sell contribution against an asset.
// Quantity is signed: positive = buy, negative = sell. Amount is the absolute
// contribution value (|Quantity| × UnitPrice) in the transaction currency.
type Transaction struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Category  string    `json:"category"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Date      time.Time `json:"date"`

	// Fixed-income fields. Each fixed-income contribution is its own
	// instrument with its own rate and maturity.
	InstrumentType  string    `json:"instrument_type,omitempty"` // e.g. "cdb", "lci", "tesouro"
	YieldType       YieldType `json:"yield_type,omitempty"`
	ReferenceIndex  string    `json:"reference_index,omitempty"` // e.g. "cdi", "ipca", "selic"
	IndexPercentage float64   `json:"index_percentage,omitempty"`
	FixedRate       float64   `json:"fixed_rate,omitempty"` // annual %
	MaturityDate    time.Time `json:"maturity_date,omitempty"`
}

// IsFixedIncome reports whether this contribution is a fixed-income instrument.
func (t *Transaction) IsFixedIncome() bool {
	return t.Category == CategoryFixedIncome || t.InstrumentType != ""
}

// Valid reports whether the record can affect ledger state.
// Zero, NaN or infinite quantities are data-entry corruption and are discarded.
func (t *Transaction) Valid() bool {
	if t.Quantity == 0 || math.IsNaN(t.Quantity) || math.IsInf(t.Quantity, 0) {
		return false
	}
	return true
}

// IsBuy reports whether the transaction adds to a position.
func (t *Transaction) IsBuy() bool { return t.Quantity > 0 }
