// internal/domain/transaction.go
package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"splitflow/internal/util"
)

// TransactionKind defines the type of a ledger transaction.
type TransactionKind string

const (
	TransactionKindIncome   TransactionKind = "income"
	TransactionKindSpend    TransactionKind = "spend"
	TransactionKindSave     TransactionKind = "save"
	TransactionKindInvest   TransactionKind = "invest"
	TransactionKindTransfer TransactionKind = "transfer"
)

// MaxDescriptionLength bounds caller-supplied descriptions, in runes.
const MaxDescriptionLength = 200

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionKindIncome, TransactionKindSpend, TransactionKindSave, TransactionKindInvest, TransactionKindTransfer:
		return true
	}
	return false
}

// Transaction is an immutable record in the transaction log.
type Transaction struct {
	ID          int64           `json:"id"`             // Assigned by the log: 0, 1, 2, ... without gaps
	Owner       Identity        `json:"owner"`          // Back-reference to the owning account
	Amount      int64           `json:"amount"`         // Always positive, minor units
	Kind        TransactionKind `json:"kind"`           // income, spend, save, invest or transfer
	From        Category        `json:"from,omitempty"` // Source category for transfers
	To          Category        `json:"to,omitempty"`   // Destination category for transfers
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"` // Event time, millisecond precision
}

// NewIncomeTransaction drafts the record for an income split. Owner, ID and
// OccurredAt are filled in when the draft is committed.
func NewIncomeTransaction(amount int64, a Allocation) *Transaction {
	return &Transaction{
		Amount:      amount,
		Kind:        TransactionKindIncome,
		Description: fmt.Sprintf("split spend=%d save=%d invest=%d", a.Spend, a.Save, a.Invest),
	}
}

// NewSpendTransaction drafts a withdrawal from the spend bucket.
func NewSpendTransaction(amount int64, description string) *Transaction {
	return &Transaction{
		Amount:      amount,
		Kind:        TransactionKindSpend,
		Description: description,
	}
}

// NewTransferTransaction drafts a move between two categories.
func NewTransferTransaction(from, to Category, amount int64) *Transaction {
	return &Transaction{
		Amount:      amount,
		Kind:        TransactionKindTransfer,
		From:        from,
		To:          to,
		Description: fmt.Sprintf("%s -> %s", from, to),
	}
}

// NormalizeDescription trims s and enforces MaxDescriptionLength.
func NormalizeDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return "", util.ErrDescriptionTooLong
	}
	return s, nil
}

// SortNewestFirst orders transactions by OccurredAt descending, breaking ties by ID descending.
func SortNewestFirst(txs []Transaction) {
	slices.SortFunc(txs, func(a, b Transaction) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
