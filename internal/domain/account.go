// internal/domain/account.go
package domain

import "time"

// Account is the per-identity ledger record: policy, balance and activity timestamps.
type Account struct {
	Identity     Identity    `json:"identity"`
	Policy       SplitPolicy `json:"policy"`
	Balance      Balance     `json:"balance"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActiveAt time.Time   `json:"last_active_at"`
}

// NewAccount creates an Account with the default policy and zero balances.
func NewAccount(id Identity, now time.Time) *Account {
	return &Account{
		Identity:     id,
		Policy:       DefaultSplitPolicy(),
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// SystemStats is the read-only aggregate over the whole ledger.
type SystemStats struct {
	AccountCount     int64 `json:"account_count"`
	TransactionCount int64 `json:"transaction_count"`
}
