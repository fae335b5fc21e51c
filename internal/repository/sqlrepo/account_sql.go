// internal/repository/sqlrepo/account_sql.go
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"splitflow/internal/domain"
	"splitflow/internal/repository"
	"splitflow/internal/util"
)

// AccountRepository implements repository.AccountRepository on top of sqlx.
// It works against PostgreSQL and SQLite; queries are rebound per driver.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository() repository.AccountRepository {
	return &AccountRepository{}
}

// CreateAccount inserts a new account, leaving any existing row for the identity untouched.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) (bool, error) {
	query := q.Rebind(`INSERT INTO accounts (identity, spend_percent, save_percent, invest_percent,
	          spend, save, invest, total, created_at, last_active_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT (identity) DO NOTHING`)
	result, err := q.ExecContext(ctx, query,
		string(account.Identity),
		account.Policy.SpendPercent,
		account.Policy.SavePercent,
		account.Policy.InvestPercent,
		account.Balance.Spend,
		account.Balance.Save,
		account.Balance.Invest,
		account.Balance.Total,
		toMillis(account.CreatedAt),
		toMillis(account.LastActiveAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected after creating account: %w", err)
	}
	return rows == 1, nil
}

// GetAccount retrieves an account by identity using the provided DBExecutor.
func (r *AccountRepository) GetAccount(ctx context.Context, q repository.DBExecutor, id domain.Identity) (*domain.Account, error) {
	var row accountRow
	query := q.Rebind(`SELECT identity, spend_percent, save_percent, invest_percent,
	          spend, save, invest, total, created_at, last_active_at
	          FROM accounts WHERE identity = ?`)
	if err := q.GetContext(ctx, &row, query, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account %q: %w", id, err)
	}
	return row.toDomain(), nil
}

// UpdateAccount writes policy, balance and last activity back to an existing row.
func (r *AccountRepository) UpdateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := q.Rebind(`UPDATE accounts SET spend_percent = ?, save_percent = ?, invest_percent = ?,
	          spend = ?, save = ?, invest = ?, total = ?, last_active_at = ?
	          WHERE identity = ?`)
	result, err := q.ExecContext(ctx, query,
		account.Policy.SpendPercent,
		account.Policy.SavePercent,
		account.Policy.InvestPercent,
		account.Balance.Spend,
		account.Balance.Save,
		account.Balance.Invest,
		account.Balance.Total,
		toMillis(account.LastActiveAt),
		string(account.Identity),
	)
	if err != nil {
		return fmt.Errorf("failed to update account %q: %w", account.Identity, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating account %q: %w", account.Identity, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// CountAccounts returns the number of stored accounts.
func (r *AccountRepository) CountAccounts(ctx context.Context, q repository.DBExecutor) (int64, error) {
	var n int64
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM accounts`); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return n, nil
}
