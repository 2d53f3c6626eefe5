package interfaces

import (
	"context"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// TransactionStore supplies the ordered contribution history per user.
// Persistence of raw transactions is owned by the surrounding application;
// the engine only requires a date-ascending read.
type TransactionStore interface {
	// ListTransactions returns all contributions for a user sorted by date
	// ascending. No pagination: the engine replays the full history.
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)

	// SetTransactions replaces the full contribution history for a user.
	SetTransactions(ctx context.Context, userID string, txs []models.Transaction) error

	// Close releases the underlying store.
	Close() error
}
