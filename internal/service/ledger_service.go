// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"splitflow/internal/domain"
	"splitflow/internal/events"
	"splitflow/internal/registry"
	"splitflow/internal/util"
)

// LedgerService defines the interface for ledger business logic.
// Identities passed in must already be authenticated by the caller.
type LedgerService interface {
	InitializeAccount(ctx context.Context, id domain.Identity) (*domain.Account, error)
	GetAccount(ctx context.Context, id domain.Identity) (*domain.Account, error)
	SetSplitPolicy(ctx context.Context, id domain.Identity, policy domain.SplitPolicy) (*domain.Account, error)
	RecordIncome(ctx context.Context, id domain.Identity, amount int64) (domain.Balance, *domain.Transaction, error)
	Spend(ctx context.Context, id domain.Identity, amount int64, description string) (domain.Balance, *domain.Transaction, error)
	TransferBetweenCategories(ctx context.Context, id domain.Identity, from, to domain.Category, amount int64) (domain.Balance, *domain.Transaction, error)
	ListTransactions(ctx context.Context, id domain.Identity) ([]domain.Transaction, error)
	GetSystemStats(ctx context.Context) (domain.SystemStats, error)
}

// AccountRegistry is the account store the service mutates through.
// *registry.Registry implements it.
type AccountRegistry interface {
	GetOrCreate(ctx context.Context, id domain.Identity) (*domain.Account, bool, error)
	Get(ctx context.Context, id domain.Identity) (*domain.Account, error)
	ApplyMutation(ctx context.Context, id domain.Identity, f registry.MutationFunc) (*domain.Account, *domain.Transaction, error)
	Count(ctx context.Context) (int64, error)
}

// TransactionLog is the read side of the log. *txlog.Log implements it.
type TransactionLog interface {
	ListByOwner(ctx context.Context, id domain.Identity) ([]domain.Transaction, error)
	Count(ctx context.Context) (int64, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	registry  AccountRegistry
	log       TransactionLog
	publisher events.Publisher
	logger    *slog.Logger
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(accounts AccountRegistry, log TransactionLog, publisher events.Publisher, logger *slog.Logger) LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ledgerService{
		registry:  accounts,
		log:       log,
		publisher: publisher,
		logger:    logger.With("component", "ledger"),
	}
}

// InitializeAccount returns the caller's account, creating it on first use.
func (s *ledgerService) InitializeAccount(ctx context.Context, id domain.Identity) (*domain.Account, error) {
	account, _, err := s.registry.GetOrCreate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("initialize account: %w", err)
	}
	return account, nil
}

func (s *ledgerService) GetAccount(ctx context.Context, id domain.Identity) (*domain.Account, error) {
	account, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// SetSplitPolicy replaces the account's policy. The balance is left as is.
func (s *ledgerService) SetSplitPolicy(ctx context.Context, id domain.Identity, policy domain.SplitPolicy) (*domain.Account, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	account, _, err := s.registry.ApplyMutation(ctx, id, func(current domain.Account) (domain.Account, *domain.Transaction, error) {
		current.Policy = policy
		return current, nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("set split policy: %w", err)
	}

	s.logger.InfoContext(ctx, "Split policy updated",
		"identity", id,
		"spend_percent", policy.SpendPercent,
		"save_percent", policy.SavePercent,
		"invest_percent", policy.InvestPercent)
	return account, nil
}

// RecordIncome splits amount across the three categories per the account's policy.
func (s *ledgerService) RecordIncome(ctx context.Context, id domain.Identity, amount int64) (domain.Balance, *domain.Transaction, error) {
	if amount <= 0 {
		return domain.Balance{}, nil, util.ErrInvalidAmount
	}

	account, transaction, err := s.registry.ApplyMutation(ctx, id, func(current domain.Account) (domain.Account, *domain.Transaction, error) {
		allocation := current.Policy.Split(amount)
		balance, err := current.Balance.Deposit(allocation)
		if err != nil {
			return current, nil, err
		}
		current.Balance = balance
		return current, domain.NewIncomeTransaction(amount, allocation), nil
	})
	if err != nil {
		return domain.Balance{}, nil, fmt.Errorf("record income: %w", err)
	}

	s.publish(ctx, transaction, account.Balance)
	return account.Balance, transaction, nil
}

// Spend withdraws amount from the spend category.
func (s *ledgerService) Spend(ctx context.Context, id domain.Identity, amount int64, description string) (domain.Balance, *domain.Transaction, error) {
	if amount <= 0 {
		return domain.Balance{}, nil, util.ErrInvalidAmount
	}
	description, err := domain.NormalizeDescription(description)
	if err != nil {
		return domain.Balance{}, nil, err
	}

	account, transaction, err := s.registry.ApplyMutation(ctx, id, func(current domain.Account) (domain.Account, *domain.Transaction, error) {
		balance, err := current.Balance.Withdraw(amount)
		if err != nil {
			return current, nil, err
		}
		current.Balance = balance
		return current, domain.NewSpendTransaction(amount, description), nil
	})
	if err != nil {
		return domain.Balance{}, nil, fmt.Errorf("spend: %w", err)
	}

	s.publish(ctx, transaction, account.Balance)
	return account.Balance, transaction, nil
}

// TransferBetweenCategories moves amount from one category to another. The total does not change.
func (s *ledgerService) TransferBetweenCategories(ctx context.Context, id domain.Identity, from, to domain.Category, amount int64) (domain.Balance, *domain.Transaction, error) {
	if amount <= 0 {
		return domain.Balance{}, nil, util.ErrInvalidAmount
	}
	if !from.Valid() || !to.Valid() {
		return domain.Balance{}, nil, util.ErrInvalidCategory
	}
	if from == to {
		return domain.Balance{}, nil, util.ErrSameCategory
	}

	account, transaction, err := s.registry.ApplyMutation(ctx, id, func(current domain.Account) (domain.Account, *domain.Transaction, error) {
		balance, err := current.Balance.Move(from, to, amount)
		if err != nil {
			return current, nil, err
		}
		current.Balance = balance
		return current, domain.NewTransferTransaction(from, to, amount), nil
	})
	if err != nil {
		return domain.Balance{}, nil, fmt.Errorf("transfer: %w", err)
	}

	s.publish(ctx, transaction, account.Balance)
	return account.Balance, transaction, nil
}

// ListTransactions returns the caller's transactions, newest first. An identity
// without an account simply has no transactions.
func (s *ledgerService) ListTransactions(ctx context.Context, id domain.Identity) ([]domain.Transaction, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	transactions, err := s.log.ListByOwner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, nil
}

// GetSystemStats counts accounts and transactions. Access control is left to the caller.
func (s *ledgerService) GetSystemStats(ctx context.Context) (domain.SystemStats, error) {
	accounts, err := s.registry.Count(ctx)
	if err != nil {
		return domain.SystemStats{}, fmt.Errorf("system stats: %w", err)
	}
	transactions, err := s.log.Count(ctx)
	if err != nil {
		return domain.SystemStats{}, fmt.Errorf("system stats: %w", err)
	}
	return domain.SystemStats{AccountCount: accounts, TransactionCount: transactions}, nil
}

// publish announces a committed transaction. The ledger change already
// happened, so a broker failure is logged rather than returned.
func (s *ledgerService) publish(ctx context.Context, transaction *domain.Transaction, balance domain.Balance) {
	if transaction == nil {
		return
	}
	if err := s.publisher.PublishTransaction(ctx, events.NewTransactionEvent(*transaction, balance)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish transaction event", "id", transaction.ID, "error", err)
	}
}
