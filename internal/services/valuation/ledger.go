// Package valuation reconstructs portfolio cost-basis and market-value time
// series from contribution history.
package valuation

import (
	"sort"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// Ledger replays ordered contributions up to a cutoff date, maintaining FIFO
// lot stacks per asset. The cursor only moves forward: advancing twice with
// the same cutoff is a no-op the second time.
type Ledger struct {
	txs    []models.Transaction // sorted by date ascending
	cursor int
	assets map[string]*models.AssetState
	order  []string // asset keys in first-seen order, for stable iteration
	logger *common.Logger
}

// NewLedger creates a ledger over a copy of txs sorted by date ascending.
// Records with zero, NaN or infinite quantity are dropped before they can
// affect state; each drop is logged as a data-quality warning.
func NewLedger(txs []models.Transaction, logger *common.Logger) *Ledger {
	valid := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Valid() {
			logger.Warn().
				Str("symbol", tx.Symbol).
				Str("category", tx.Category).
				Float64("quantity", tx.Quantity).
				Time("date", tx.Date).
				Msg("Discarding contribution with invalid quantity")
			continue
		}
		valid = append(valid, tx)
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Date.Before(valid[j].Date) })

	return &Ledger{
		txs:    valid,
		assets: make(map[string]*models.AssetState),
		logger: logger,
	}
}

// assetKey identifies the ledger entry a contribution belongs to. Fixed-income
// contributions key by (category, transaction id): each one is its own
// instrument with its own rate and maturity. Everything else keys by
// (category, symbol).
func assetKey(tx *models.Transaction) string {
	if tx.IsFixedIncome() {
		return tx.Category + "|" + tx.ID
	}
	return tx.Category + "|" + tx.Symbol
}

// Advance consumes every not-yet-consumed transaction with date <= cutoff,
// updating asset states. The cursor never rewinds.
func (l *Ledger) Advance(cutoff time.Time) {
	for l.cursor < len(l.txs) {
		tx := &l.txs[l.cursor]
		if tx.Date.After(cutoff) {
			break
		}
		l.apply(tx)
		l.cursor++
	}
}

// apply mutates the asset state for one transaction.
func (l *Ledger) apply(tx *models.Transaction) {
	key := assetKey(tx)
	state, ok := l.assets[key]
	if !ok {
		state = &models.AssetState{
			Symbol:   tx.Symbol,
			Category: tx.Category,
		}
		l.assets[key] = state
		l.order = append(l.order, key)
	}

	// Metadata: most recent transaction wins.
	if tx.Currency != "" {
		state.Currency = tx.Currency
	}
	if tx.IsFixedIncome() {
		state.FixedIncome = &models.FixedIncomeTerms{
			InstrumentType:  tx.InstrumentType,
			YieldType:       tx.YieldType,
			ReferenceIndex:  tx.ReferenceIndex,
			IndexPercentage: tx.IndexPercentage,
			FixedRate:       tx.FixedRate,
			MaturityDate:    tx.MaturityDate,
		}
	}

	if tx.IsBuy() {
		state.Layers = append(state.Layers, &models.PositionLayer{
			Remaining:      tx.Quantity,
			UnitCost:       tx.Amount / tx.Quantity,
			AcquiredAt:     tx.Date,
			OriginalAmount: tx.Amount,
		})
		return
	}

	l.consumeFIFO(state, -tx.Quantity)
}

// consumeFIFO reduces the oldest layers first by the sold quantity. Layers are
// drained with an index pass and compacted afterwards rather than removed
// while iterating. Oversells deplete everything and stop at zero.
func (l *Ledger) consumeFIFO(state *models.AssetState, sold float64) {
	remaining := sold
	for _, layer := range state.Layers {
		if remaining <= 0 {
			break
		}
		take := layer.Remaining
		if take > remaining {
			take = remaining
		}
		layer.Remaining -= take
		remaining -= take
	}

	if remaining > models.LayerEpsilon {
		l.logger.Warn().
			Str("symbol", state.Symbol).
			Str("category", state.Category).
			Float64("unmatched", remaining).
			Msg("Sell exceeds held quantity; position floored at zero")
	}

	// Compact exhausted layers in place.
	kept := state.Layers[:0]
	for _, layer := range state.Layers {
		if layer.Remaining > models.LayerEpsilon {
			kept = append(kept, layer)
		}
	}
	state.Layers = kept
}

// Assets returns all asset states (including fully liquidated ones) in
// first-seen order.
func (l *Ledger) Assets() []*models.AssetState {
	out := make([]*models.AssetState, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.assets[key])
	}
	return out
}

// EarliestDate returns the date of the first valid transaction, or zero time
// when the ledger is empty.
func (l *Ledger) EarliestDate() time.Time {
	if len(l.txs) == 0 {
		return time.Time{}
	}
	return l.txs[0].Date
}

// Remaining reports how many transactions are still ahead of the cursor.
func (l *Ledger) Remaining() int {
	return len(l.txs) - l.cursor
}
