package router

import (
	"context"
	"fmt"

	"github.com/tariqmansouri/vendora-backend/internal/analytics/types"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
)

type payoutPaidHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newPayoutPaidHandler(writer Writer, logg *logger.Logger) Handler {
	return &payoutPaidHandler{writer: writer, logg: logg}
}

func (h *payoutPaidHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.PayoutPaidEvent)
	if !ok {
		return fmt.Errorf("invalid payload for payout_paid")
	}
	fields := map[string]any{
		"event_type": envelope.EventType,
		"payout_id":  event.PayoutID,
		"account_id": event.UserID,
		"amount":     event.Amount,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := newRevenueRow(envelope, envelope.OccurredAt, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build revenue row", err)
		return err
	}
	row.PayoutID = stringPtr(event.PayoutID.String())
	row.AccountID = stringPtr(event.UserID.String())
	row.AmountCents = int64Ptr(amountCents(event.Amount))
	row.Currency = stringPtr(event.Currency.String())

	if err := h.writer.InsertRevenue(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert revenue row", err)
		return err
	}

	h.logg.Info(logCtx, "payout_paid handler inserted revenue row")
	return nil
}
