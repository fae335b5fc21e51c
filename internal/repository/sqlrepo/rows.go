// internal/repository/sqlrepo/rows.go
package sqlrepo

import (
	"time"

	"splitflow/internal/domain"
)

// Timestamps are stored as unix milliseconds so PostgreSQL and SQLite scan them identically.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

type accountRow struct {
	Identity string `db:"identity"`
	domain.SplitPolicy
	domain.Balance
	CreatedAt    int64 `db:"created_at"`
	LastActiveAt int64 `db:"last_active_at"`
}

func (r accountRow) toDomain() *domain.Account {
	return &domain.Account{
		Identity:     domain.Identity(r.Identity),
		Policy:       r.SplitPolicy,
		Balance:      r.Balance,
		CreatedAt:    fromMillis(r.CreatedAt),
		LastActiveAt: fromMillis(r.LastActiveAt),
	}
}

type transactionRow struct {
	ID           int64  `db:"id"`
	Owner        string `db:"owner_identity"`
	Amount       int64  `db:"amount"`
	Kind         string `db:"kind"`
	FromCategory string `db:"from_category"`
	ToCategory   string `db:"to_category"`
	Description  string `db:"description"`
	OccurredAt   int64  `db:"occurred_at"`
}

func (r transactionRow) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:          r.ID,
		Owner:       domain.Identity(r.Owner),
		Amount:      r.Amount,
		Kind:        domain.TransactionKind(r.Kind),
		From:        domain.Category(r.FromCategory),
		To:          domain.Category(r.ToCategory),
		Description: r.Description,
		OccurredAt:  fromMillis(r.OccurredAt),
	}
}
