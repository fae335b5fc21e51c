// internal/registry/registry.go

// Package registry owns every Account, keyed by identity. All balance and
// policy changes go through ApplyMutation, which serializes work per identity
// with a mutex and persists each change inside a single database transaction.
// Callers on the same identity block until the holder is done; different
// identities proceed concurrently.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"splitflow/internal/domain"
	"splitflow/internal/repository"
	"splitflow/internal/util"
	"splitflow/pkg/db"
)

// Journal records the transaction that accompanies a mutation. commit finishes
// the surrounding database transaction and must be called exactly once.
type Journal interface {
	Append(ctx context.Context, q repository.DBExecutor, t *domain.Transaction, commit func() error) error
}

// MutationFunc computes the next state of an account from the current one.
// It must not have side effects. A non-nil transaction draft is appended to
// the journal in the same unit of work; returning an error aborts the mutation
// with nothing written.
type MutationFunc func(current domain.Account) (next domain.Account, draft *domain.Transaction, err error)

// Registry maps identities to accounts.
type Registry struct {
	tx       db.TxManager
	reader   repository.DBExecutor // For reads outside a transaction
	accounts repository.AccountRepository
	journal  Journal
	locks    *keyedMutex
	now      func() time.Time
	logger   *slog.Logger
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock replaces the wall clock used for account and transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates a Registry.
func New(tx db.TxManager, reader repository.DBExecutor, accounts repository.AccountRepository, journal Journal, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		tx:       tx,
		reader:   reader,
		accounts: accounts,
		journal:  journal,
		locks:    newKeyedMutex(),
		now:      time.Now,
		logger:   logger.With("component", "registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// timestamp returns the current time at the precision storage keeps.
func (r *Registry) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// GetOrCreate returns the account for id, creating it with the default policy
// and zero balances on first use. An existing account is never modified.
// The boolean reports whether this call created it.
func (r *Registry) GetOrCreate(ctx context.Context, id domain.Identity) (*domain.Account, bool, error) {
	if err := id.Validate(); err != nil {
		return nil, false, err
	}
	unlock := r.locks.Lock(id)
	defer unlock()

	account, err := r.accounts.GetAccount(ctx, r.reader, id)
	if err == nil {
		return account, false, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, false, fmt.Errorf("get or create: failed to look up account: %w", err)
	}

	txController, err := r.tx.Begin(ctx, r.tx.Beginner)
	if err != nil {
		return nil, false, fmt.Errorf("get or create: failed to begin transaction: %w", err)
	}
	defer r.tx.Rollback(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, false, fmt.Errorf("get or create: transaction controller does not implement DBExecutor")
	}

	// Another process may have won the race; CreateAccount then writes nothing
	// and the stored row is returned unchanged.
	created, err := r.accounts.CreateAccount(ctx, txExecutor, domain.NewAccount(id, r.timestamp()))
	if err != nil {
		return nil, false, fmt.Errorf("get or create: %w", err)
	}
	account, err = r.accounts.GetAccount(ctx, txExecutor, id)
	if err != nil {
		return nil, false, fmt.Errorf("get or create: failed to re-fetch account: %w", err)
	}

	if err := r.tx.Commit(txController); err != nil {
		return nil, false, fmt.Errorf("get or create: failed to commit transaction: %w", err)
	}
	if created {
		r.logger.InfoContext(ctx, "Account created", "identity", id)
	}
	return account, created, nil
}

// Get returns the account for id or util.ErrNotFound.
func (r *Registry) Get(ctx context.Context, id domain.Identity) (*domain.Account, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	account, err := r.accounts.GetAccount(ctx, r.reader, id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Count returns the number of accounts.
func (r *Registry) Count(ctx context.Context) (int64, error) {
	return r.accounts.CountAccounts(ctx, r.reader)
}

// ApplyMutation loads id's account, runs f on it and stores the result with
// LastActiveAt bumped. When f returns a draft transaction, it is stamped with
// the owner and event time and handed to the journal, which commits.
// Identity and CreatedAt cannot be changed by f.
func (r *Registry) ApplyMutation(ctx context.Context, id domain.Identity, f MutationFunc) (*domain.Account, *domain.Transaction, error) {
	if err := id.Validate(); err != nil {
		return nil, nil, err
	}
	unlock := r.locks.Lock(id)
	defer unlock()

	txController, err := r.tx.Begin(ctx, r.tx.Beginner)
	if err != nil {
		return nil, nil, fmt.Errorf("apply mutation: failed to begin transaction: %w", err)
	}
	defer r.tx.Rollback(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("apply mutation: transaction controller does not implement DBExecutor")
	}

	current, err := r.accounts.GetAccount(ctx, txExecutor, id)
	if err != nil {
		return nil, nil, err
	}

	next, draft, err := f(*current)
	if err != nil {
		return nil, nil, err
	}
	next.Identity = current.Identity
	next.CreatedAt = current.CreatedAt

	if err := next.Policy.Validate(); err != nil {
		return nil, nil, fmt.Errorf("apply mutation: refusing to store policy %+v: %w", next.Policy, err)
	}
	if err := next.Balance.Check(); err != nil {
		return nil, nil, fmt.Errorf("apply mutation: refusing to store balance: %w", err)
	}

	now := r.timestamp()
	next.LastActiveAt = now
	if err := r.accounts.UpdateAccount(ctx, txExecutor, &next); err != nil {
		return nil, nil, fmt.Errorf("apply mutation: failed to update account: %w", err)
	}

	if draft == nil {
		if err := r.tx.Commit(txController); err != nil {
			return nil, nil, fmt.Errorf("apply mutation: failed to commit transaction: %w", err)
		}
		return &next, nil, nil
	}

	draft.Owner = id
	draft.OccurredAt = now
	commit := func() error { return r.tx.Commit(txController) }
	if err := r.journal.Append(ctx, txExecutor, draft, commit); err != nil {
		return nil, nil, fmt.Errorf("apply mutation: %w", err)
	}
	return &next, draft, nil
}
