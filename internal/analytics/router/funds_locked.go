package router

import (
	"context"
	"fmt"

	"github.com/tariqmansouri/vendora-backend/internal/analytics/types"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
)

type fundsLockedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newFundsLockedHandler(writer Writer, logg *logger.Logger) Handler {
	return &fundsLockedHandler{writer: writer, logg: logg}
}

func (h *fundsLockedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.FundsLockedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for funds_locked")
	}
	fields := map[string]any{
		"event_type":    envelope.EventType,
		"order_id":      event.OrderID,
		"account_id":    event.VendorID,
		"vendor_amount": event.VendorAmount,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := newRevenueRow(envelope, envelope.OccurredAt, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build revenue row", err)
		return err
	}
	row.OrderID = stringPtr(event.OrderID.String())
	row.AccountID = stringPtr(event.VendorID.String())
	row.AmountCents = int64Ptr(amountCents(event.VendorAmount))
	row.PlatformShareCents = int64Ptr(amountCents(event.PlatformShare))
	row.Currency = stringPtr(event.Currency.String())

	if err := h.writer.InsertRevenue(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert revenue row", err)
		return err
	}

	h.logg.Info(logCtx, "funds_locked handler inserted revenue row")
	return nil
}
