// internal/repository/sqlrepo/transaction_sql.go
package sqlrepo

import (
	"context"
	"fmt"

	"splitflow/internal/domain"
	"splitflow/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository on top of sqlx.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a transaction record using the provided DBExecutor.
// The ID is not generated by the database; the log assigns it.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := q.Rebind(`INSERT INTO transactions (id, owner_identity, amount, kind, from_category, to_category, description, occurred_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := q.ExecContext(ctx, query,
		transaction.ID,
		string(transaction.Owner),
		transaction.Amount,
		string(transaction.Kind),
		string(transaction.From),
		string(transaction.To),
		transaction.Description,
		toMillis(transaction.OccurredAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction %d: %w", transaction.ID, err)
	}
	return nil
}

// GetTransactionsByOwner retrieves every transaction owned by id, newest first.
func (r *TransactionRepository) GetTransactionsByOwner(ctx context.Context, q repository.DBExecutor, id domain.Identity) ([]domain.Transaction, error) {
	rows := []transactionRow{}
	query := q.Rebind(`
		SELECT id, owner_identity, amount, kind, from_category, to_category, description, occurred_at
		FROM transactions
		WHERE owner_identity = ?
		ORDER BY occurred_at DESC, id DESC`)
	if err := q.SelectContext(ctx, &rows, query, string(id)); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for %q: %w", id, err)
	}

	transactions := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, row.toDomain())
	}
	return transactions, nil
}

// CountTransactions returns the number of stored transactions.
func (r *TransactionRepository) CountTransactions(ctx context.Context, q repository.DBExecutor) (int64, error) {
	var n int64
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM transactions`); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// MaxTransactionID returns the highest stored ID, or -1 for an empty log.
func (r *TransactionRepository) MaxTransactionID(ctx context.Context, q repository.DBExecutor) (int64, error) {
	var maxID int64
	if err := q.GetContext(ctx, &maxID, `SELECT COALESCE(MAX(id), -1) FROM transactions`); err != nil {
		return 0, fmt.Errorf("failed to read max transaction id: %w", err)
	}
	return maxID, nil
}
