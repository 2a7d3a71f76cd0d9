package event

import (
	"context"

	"github.com/sicua/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Dispatcher hands the pending events of aggregates to a publisher once the
// change that raised them is stored.
type Dispatcher struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher. A nil publisher drops events.
func NewDispatcher(publisher shared.EventPublisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{publisher: publisher, logger: logger}
}

// Dispatch publishes and clears the pending events of every aggregate.
// Publish failures are logged and never undo the stored change.
func (d *Dispatcher) Dispatch(ctx context.Context, aggregates ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	d.Publish(ctx, events...)
}

// Publish sends events that do not belong to a single aggregate
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) {
	if d == nil || d.publisher == nil || len(events) == 0 {
		return
	}
	if err := d.publisher.Publish(ctx, events...); err != nil {
		d.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.String("first_type", events[0].EventType()),
			zap.Error(err))
	}
}
