package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/api/responses"
	internalorders "github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
)

type trackingApplier interface {
	ApplyTrackingEvent(ctx context.Context, input internalorders.TrackingInput) (*models.Order, error)
}

// trackingWebhookEvent is the carrier's wire shape. Either the tracking
// number or the order ID locates the shipment.
type trackingWebhookEvent struct {
	EventID        string `json:"event_id"`
	TrackingNumber string `json:"tracking_number"`
	OrderID        string `json:"order_id"`
	EventType      string `json:"event_type"`
	Timestamp      string `json:"timestamp"`
}

// Tracking handles signed carrier scan events and maps them onto shipment
// status moves.
func Tracking(svc trackingApplier, secret string, guard replayGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "replay guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Carrier-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook signature missing"))
			return
		}
		if !validateSignature(payload, secret, sigHeader) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "invalid webhook signature"))
			return
		}

		var event trackingWebhookEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode event"))
			return
		}

		input, err := buildTrackingInput(event)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		eventID := strings.TrimSpace(event.EventID)
		if eventID == "" {
			// Carriers without delivery IDs still redeliver the same scan, so
			// the scan itself becomes the dedup key.
			eventID = fmt.Sprintf("%s|%s|%s", event.TrackingNumber+event.OrderID, event.EventType, event.Timestamp)
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		if _, err := svc.ApplyTrackingEvent(ctx, input); err != nil {
			_ = guard.Delete(ctx, eventID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("tracking event %s processed", eventID))
		}
		responses.WriteSuccess(w, nil)
	}
}

func buildTrackingInput(event trackingWebhookEvent) (internalorders.TrackingInput, error) {
	var input internalorders.TrackingInput

	trackingNumber := strings.TrimSpace(event.TrackingNumber)
	rawOrderID := strings.TrimSpace(event.OrderID)
	if trackingNumber == "" && rawOrderID == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "tracking_number or order_id is required")
	}
	input.TrackingNumber = trackingNumber
	if rawOrderID != "" {
		orderID, err := uuid.Parse(rawOrderID)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
		}
		input.OrderID = &orderID
	}

	eventType, err := enums.ParseTrackingEventType(strings.TrimSpace(event.EventType))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event_type")
	}
	input.EventType = eventType

	occurredAt, err := time.Parse(time.RFC3339, strings.TrimSpace(event.Timestamp))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timestamp")
	}
	input.OccurredAt = occurredAt

	return input, nil
}
