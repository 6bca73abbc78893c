package services

import (
	"context"

	"spendlog/internal/amqp"
	"spendlog/internal/log"
	"spendlog/internal/middleware/trace"
)

// Publisher delivers change events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev *amqp.ChangeEvent) error
}

// EventRecorder counts published events by type and outcome.
type EventRecorder interface {
	ObserveEvent(eventType string, err error)
}

// EventPublisher emits change events after successful writes. A nil
// *EventPublisher, or one without a Publisher, drops events silently.
type EventPublisher struct {
	publisher Publisher
	recorder  EventRecorder
	logger    *log.Logger
}

// NewEventPublisher wraps p. rec may be nil.
func NewEventPublisher(p Publisher, rec EventRecorder) *EventPublisher {
	return &EventPublisher{
		publisher: p,
		recorder:  rec,
		logger:    log.WithComponent(log.ComponentAMQP),
	}
}

// Emit publishes an event for record id. Failures are logged and never
// returned: the write has already been committed.
func (p *EventPublisher) Emit(ctx context.Context, t amqp.EventType, id int64, data any) {
	if p == nil || p.publisher == nil {
		return
	}

	ev, err := amqp.NewChangeEvent(t, id, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to build change event",
			log.FieldOperation, string(t), log.FieldID, id, log.FieldError, err)
		return
	}
	ev.RequestID = trace.GetRequestID(ctx)

	err = p.publisher.Publish(ctx, ev)
	if p.recorder != nil {
		p.recorder.ObserveEvent(string(t), err)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldOperation, string(t), log.FieldID, id, log.FieldError, err)
	}
}
