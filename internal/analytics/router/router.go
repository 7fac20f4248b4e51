package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tariqmansouri/vendora-backend/internal/analytics/types"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
)

// ErrUnroutableEvent marks event types that carry no revenue fact. The worker
// acks those instead of retrying.
var ErrUnroutableEvent = errors.New("unroutable analytics event type")

// Writer delivers BigQuery rows produced by analytics handlers.
type Writer interface {
	InsertRevenue(ctx context.Context, row types.LedgerRevenueRow) error
}

// Handler receives an envelope plus a decoded event payload.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope, payload any) error
}

type handlerEntry struct {
	factory func() any
	handler Handler
}

// Router dispatches domain envelopes to the configured handler per event type.
type Router struct {
	handlers map[enums.OutboxEventType]handlerEntry
	logg     *logger.Logger
}

// NewRouter wires the default handlers and allows overrides for specific events.
func NewRouter(writer Writer, logg *logger.Logger, overrides map[enums.OutboxEventType]Handler) (*Router, error) {
	if writer == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	entries := map[enums.OutboxEventType]handlerEntry{
		enums.EventFundsLocked: {
			factory: func() any { return &payloads.FundsLockedEvent{} },
			handler: newFundsLockedHandler(writer, logg),
		},
		enums.EventFundsUnlocked: {
			factory: func() any { return &payloads.FundsUnlockedEvent{} },
			handler: newFundsUnlockedHandler(writer, logg),
		},
		enums.EventPayoutPaid: {
			factory: func() any { return &payloads.PayoutPaidEvent{} },
			handler: newPayoutPaidHandler(writer, logg),
		},
	}

	for event, custom := range overrides {
		entry, ok := entries[event]
		if !ok || custom == nil {
			continue
		}
		entry.handler = custom
		entries[event] = entry
	}

	return &Router{
		handlers: entries,
		logg:     logg,
	}, nil
}

// Handle dispatches the incoming envelope to the configured handler.
func (r *Router) Handle(ctx context.Context, envelope types.Envelope) error {
	entry, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnroutableEvent, envelope.EventType)
	}
	payload := entry.factory()
	if len(envelope.Payload) == 0 {
		return fmt.Errorf("empty payload for %s", envelope.EventType)
	}
	if err := json.Unmarshal(envelope.Payload, payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
	}

	return entry.handler.Handle(ctx, envelope, payload)
}
