package audit

import (
	"context"
	"errors"
	"time"
)

// ErrInboxFull is returned when the async audit inbox cannot accept an event.
var ErrInboxFull = errors.New("audit inbox full")

// Worker consumes audit events from a channel and persists them. It keeps
// background processing testable without wiring queue implementations into
// domain services.
type Worker struct {
	store Store
	sinks []Sink
	inbox <-chan Event
}

// Sink receives every persisted event for fan-out (e.g. Kafka).
// Sink failures are not fatal; the store append is the durability anchor.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

func NewWorker(store Store, inbox <-chan Event, sinks ...Sink) *Worker {
	return &Worker{store: store, inbox: inbox, sinks: sinks}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
			for _, sink := range w.sinks {
				// Best effort; the store already holds the event.
				_ = sink.Publish(ctx, event)
			}
		}
	}
}

// ChannelPublisher emits events into a worker inbox without blocking the
// caller. If the inbox is full the event is dropped; safety actions must
// never wait on audit backpressure.
type ChannelPublisher struct {
	inbox chan<- Event
}

func NewChannelPublisher(inbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		return ErrInboxFull
	}
}
