// Package txdb implements TransactionStore using BadgerHold. Contribution
// histories are stored as one record per user and always read back in date
// order.
package txdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/MarcosLaine/Controle-se-sub003/internal/common"
	"github.com/MarcosLaine/Controle-se-sub003/internal/interfaces"
	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// contributionRecord is the stored unit: a user's full contribution history.
type contributionRecord struct {
	UserID       string `badgerhold:"key"`
	Transactions []models.Transaction
	Updated      time.Time
}

// Store implements interfaces.TransactionStore backed by BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens (or creates) the transaction store at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create txdb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open txdb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("Transaction store opened")
	return &Store{db: db, logger: logger}, nil
}

// ListTransactions returns the user's contributions sorted by date ascending.
// An unknown user gets an empty history, not an error.
func (s *Store) ListTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	var rec contributionRecord
	if err := s.db.Get(userID, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load transactions for user '%s': %w", userID, err)
	}

	txs := make([]models.Transaction, len(rec.Transactions))
	copy(txs, rec.Transactions)
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

// SetTransactions replaces the user's full contribution history. Transactions
// without an ID get one assigned; fixed-income instruments rely on it as
// their instrument identity.
func (s *Store) SetTransactions(_ context.Context, userID string, txs []models.Transaction) error {
	stored := make([]models.Transaction, len(txs))
	copy(stored, txs)
	for i := range stored {
		if stored[i].ID == "" {
			stored[i].ID = uuid.New().String()
		}
	}

	rec := &contributionRecord{
		UserID:       userID,
		Transactions: stored,
		Updated:      time.Now(),
	}
	if err := s.db.Upsert(userID, rec); err != nil {
		return fmt.Errorf("failed to store transactions for user '%s': %w", userID, err)
	}

	s.logger.Debug().
		Str("user", userID).
		Int("count", len(stored)).
		Msg("Contribution history replaced")
	return nil
}

// Close releases the underlying BadgerHold store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements TransactionStore
var _ interfaces.TransactionStore = (*Store)(nil)
