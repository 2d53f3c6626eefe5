package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/interfaces"
	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// fakeOracle is a deterministic PriceOracle test double. Prices are keyed by
// "symbol|2006-01-02"; the empty date key serves current quotes.
type fakeOracle struct {
	prices     map[string]float64
	rates      map[string]float64 // "USD/BRL" -> rate
	currency   string             // currency reported with every quote
	quoteCalls int
	fiFn       func(principal float64, terms models.FixedIncomeTerms, start, asOf time.Time) (float64, error)
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		prices: make(map[string]float64),
		rates:  make(map[string]float64),
	}
}

func (f *fakeOracle) setPrice(symbol string, date string, price float64) {
	f.prices[symbol+"|"+date] = price
}

func (f *fakeOracle) Quote(_ context.Context, symbol, _ string, date, dateTime time.Time) (interfaces.QuoteResult, error) {
	f.quoteCalls++
	key := symbol + "|"
	switch {
	case !dateTime.IsZero():
		key += dateTime.Format("2006-01-02T15:04")
	case !date.IsZero():
		key += date.Format("2006-01-02")
	}
	price, ok := f.prices[key]
	if !ok || price <= 0 {
		return interfaces.QuoteResult{Success: false}, nil
	}
	return interfaces.QuoteResult{Success: true, Price: price, Currency: f.currency}, nil
}

func (f *fakeOracle) ExchangeRate(_ context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	rate, ok := f.rates[from+"/"+to]
	if !ok {
		return 0, fmt.Errorf("no rate for %s/%s", from, to)
	}
	return rate, nil
}

func (f *fakeOracle) FixedIncomeValue(_ context.Context, principal float64, terms models.FixedIncomeTerms, start, asOf time.Time) (float64, error) {
	if f.fiFn != nil {
		return f.fiFn(principal, terms, start, asOf)
	}
	// Default: simple linear 10%/year accrual, plenty for engine tests.
	years := asOf.Sub(start).Hours() / 24 / 365
	if years < 0 {
		years = 0
	}
	return principal * (1 + 0.10*years), nil
}

// fakeStore serves a fixed transaction list for any user.
type fakeStore struct {
	txs []models.Transaction
	err error
}

func (f *fakeStore) ListTransactions(_ context.Context, _ string) ([]models.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeStore) SetTransactions(_ context.Context, _ string, txs []models.Transaction) error {
	f.txs = txs
	return nil
}

func (f *fakeStore) Close() error { return nil }

var _ interfaces.PriceOracle = (*fakeOracle)(nil)
var _ interfaces.TransactionStore = (*fakeStore)(nil)

// buyTx builds a buy transaction for tests.
func buyTx(symbol, category string, qty, price float64, d time.Time) models.Transaction {
	return models.Transaction{
		ID:        fmt.Sprintf("%s-%s-%f", symbol, d.Format("20060102"), qty),
		Symbol:    symbol,
		Category:  category,
		Quantity:  qty,
		UnitPrice: price,
		Amount:    qty * price,
		Currency:  "BRL",
		Date:      d,
	}
}

// sellTx builds a sell transaction for tests.
func sellTx(symbol, category string, qty, price float64, d time.Time) models.Transaction {
	tx := buyTx(symbol, category, qty, price, d)
	tx.Quantity = -qty
	tx.Amount = qty * price
	return tx
}
