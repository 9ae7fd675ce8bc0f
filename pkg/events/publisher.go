package events

import (
	"context"

	"go.uber.org/zap"
)

// Publisher defines the interface for publishing domain events
type Publisher interface {
	// Publish publishes an event to the message broker
	Publish(ctx context.Context, exchange string, event *Event, headers Headers) error

	// Close closes the publisher connection
	Close() error
}

// Emit wraps payload in a v1 event and publishes it. Failures are logged, not
// returned: the write that triggered the event has already committed.
func Emit(ctx context.Context, publisher Publisher, service, exchange, name string, payload any) {
	if publisher == nil {
		return
	}

	headers := Headers{
		TraceID:       GenerateTraceID(),
		CorrelationID: GenerateCorrelationID(),
		Service:       service,
	}

	event := NewEvent(name, EventVersionV1, payload, headers)

	if err := publisher.Publish(ctx, exchange, event, headers); err != nil {
		zap.L().Error("Failed to publish event",
			zap.String("event", name),
			zap.String("exchange", exchange),
			zap.Error(err),
		)
	}
}
