// internal/events/messages.go
package events

import (
	"encoding/json"
	"time"

	"splitflow/internal/domain"
)

// TransactionEvent is published once for every committed ledger transaction.
// It carries the balance as it stood right after the transaction.
type TransactionEvent struct {
	ID          int64                  `json:"id"`
	Owner       domain.Identity        `json:"owner"`
	Kind        domain.TransactionKind `json:"kind"`
	Amount      int64                  `json:"amount"`
	From        domain.Category        `json:"from,omitempty"`
	To          domain.Category        `json:"to,omitempty"`
	Description string                 `json:"description"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Balance     domain.Balance         `json:"balance"`
}

// NewTransactionEvent builds the event for tx.
func NewTransactionEvent(tx domain.Transaction, balance domain.Balance) *TransactionEvent {
	return &TransactionEvent{
		ID:          tx.ID,
		Owner:       tx.Owner,
		Kind:        tx.Kind,
		Amount:      tx.Amount,
		From:        tx.From,
		To:          tx.To,
		Description: tx.Description,
		OccurredAt:  tx.OccurredAt,
		Balance:     balance,
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes an event published by ToJSON.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
