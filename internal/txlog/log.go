// internal/txlog/log.go

// Package txlog is the append-only transaction log. IDs start at 0 and grow by
// one per committed record; the counter is rebuilt from storage on start.
package txlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"splitflow/internal/domain"
	"splitflow/internal/repository"
	"splitflow/internal/util"
)

// Log assigns identifiers to transactions and persists them through a repository.
type Log struct {
	mu     sync.Mutex
	next   int64
	repo   repository.TransactionRepository
	reader repository.DBExecutor // For reads outside a transaction (e.g., *sqlx.DB)
	logger *slog.Logger
}

// Open restores the id counter to one past the highest persisted id.
func Open(ctx context.Context, reader repository.DBExecutor, repo repository.TransactionRepository, logger *slog.Logger) (*Log, error) {
	maxID, err := repo.MaxTransactionID(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("open transaction log: %w", err)
	}
	l := &Log{
		next:   maxID + 1,
		repo:   repo,
		reader: reader,
		logger: logger.With("component", "txlog"),
	}
	l.logger.Info("Transaction log restored", "next_id", l.next)
	return l, nil
}

// NextID returns the id the next committed record will receive.
func (l *Log) NextID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next
}

// Append stamps t with the next id, inserts it through q and then runs commit,
// which must commit the transaction q belongs to. The log stays locked until
// commit returns and the counter only advances when it succeeds, so ids are
// never skipped or handed out twice.
func (l *Log) Append(ctx context.Context, q repository.DBExecutor, t *domain.Transaction, commit func() error) error {
	if !t.Kind.Valid() {
		return util.ErrInvalidKind
	}
	if t.Amount <= 0 {
		return util.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t.ID = l.next
	if err := l.repo.CreateTransaction(ctx, q, t); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	if err := commit(); err != nil {
		return fmt.Errorf("append transaction: failed to commit %d: %w", t.ID, err)
	}
	l.next++

	l.logger.DebugContext(ctx, "Transaction appended", "id", t.ID, "owner", t.Owner, "kind", t.Kind, "amount", t.Amount)
	return nil
}

// ListByOwner returns every transaction owned by id, newest first with ties broken by id.
func (l *Log) ListByOwner(ctx context.Context, id domain.Identity) ([]domain.Transaction, error) {
	txs, err := l.repo.GetTransactionsByOwner(ctx, l.reader, id)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	domain.SortNewestFirst(txs)
	return txs, nil
}

// Count returns the number of committed transactions.
func (l *Log) Count(ctx context.Context) (int64, error) {
	n, err := l.repo.CountTransactions(ctx, l.reader)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
