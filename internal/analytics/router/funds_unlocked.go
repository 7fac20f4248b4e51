package router

import (
	"context"
	"fmt"

	"github.com/tariqmansouri/vendora-backend/internal/analytics/types"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
)

type fundsUnlockedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newFundsUnlockedHandler(writer Writer, logg *logger.Logger) Handler {
	return &fundsUnlockedHandler{writer: writer, logg: logg}
}

func (h *fundsUnlockedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.FundsUnlockedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for funds_unlocked")
	}
	fields := map[string]any{
		"event_type":  envelope.EventType,
		"order_id":    event.OrderID,
		"amount":      event.Amount,
		"unlocked_at": event.UnlockedAt,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := newRevenueRow(envelope, event.UnlockedAt, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build revenue row", err)
		return err
	}
	row.OrderID = stringPtr(event.OrderID.String())
	row.AmountCents = int64Ptr(amountCents(event.Amount))
	row.Currency = stringPtr(event.Currency.String())

	if err := h.writer.InsertRevenue(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert revenue row", err)
		return err
	}

	h.logg.Info(logCtx, "funds_unlocked handler inserted revenue row")
	return nil
}
