// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"splitflow/internal/domain"
)

// TransactionRepository defines the interface for transaction log storage.
type TransactionRepository interface {
	// CreateTransaction stores a record whose ID has already been assigned by the log.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByOwner returns every record owned by id, newest first.
	GetTransactionsByOwner(ctx context.Context, q DBExecutor, id domain.Identity) ([]domain.Transaction, error)
	// CountTransactions returns the number of records in the log.
	CountTransactions(ctx context.Context, q DBExecutor) (int64, error)
	// MaxTransactionID returns the highest stored ID, or -1 when the log is empty.
	MaxTransactionID(ctx context.Context, q DBExecutor) (int64, error)
}
