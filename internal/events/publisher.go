// internal/events/publisher.go
package events

import "context"

// Publisher announces committed ledger transactions to the outside world.
type Publisher interface {
	PublishTransaction(ctx context.Context, event *TransactionEvent) error
	Close() error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishTransaction(context.Context, *TransactionEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
