// internal/repository/account_repo.go
package repository

import (
	"context"

	"splitflow/internal/domain"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// CreateAccount inserts the account unless one already exists for its identity.
	// It reports whether a row was written.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) (bool, error)
	// GetAccount retrieves an account by identity, or util.ErrNotFound.
	GetAccount(ctx context.Context, q DBExecutor, id domain.Identity) (*domain.Account, error)
	// UpdateAccount overwrites policy, balance and last-activity of an existing account.
	UpdateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// CountAccounts returns the number of accounts in the ledger.
	CountAccounts(ctx context.Context, q DBExecutor) (int64, error)
}
