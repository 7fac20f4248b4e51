package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	orderviews "github.com/tariqmansouri/vendora-backend/api/controllers/orders"
	"github.com/tariqmansouri/vendora-backend/api/responses"
	"github.com/tariqmansouri/vendora-backend/api/validators"
	internalorders "github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
)

// AdminOrderStatus applies an admin transition command to one order. Any
// combination of the three axes may move in a single call; the state machine
// validates the combination atomically.
func AdminOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		adminID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := payload.toTransitionRequest()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ApplyTransition(r.Context(), internalorders.ApplyInput{
			OrderID: orderID,
			Request: request,
			Actor: internalorders.Actor{
				Type: enums.ActorAdmin,
				ID:   &adminID,
				Role: string(enums.RoleAdmin),
			},
			Note: payload.note(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderviews.NewOrderResponse(order))
	}
}

type adminStatusRequest struct {
	OrderStatus    *string `json:"order_status,omitempty"`
	PaymentStatus  *string `json:"payment_status,omitempty"`
	ShipmentStatus *string `json:"shipment_status,omitempty"`
	Note           *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// note returns the transition note trimmed and capped for the history row.
func (req adminStatusRequest) note() *string {
	if req.Note == nil {
		return nil
	}
	cleaned := validators.SanitizeString(*req.Note, 500)
	return &cleaned
}

func (req adminStatusRequest) toTransitionRequest() (internalorders.TransitionRequest, error) {
	var request internalorders.TransitionRequest

	if req.OrderStatus != nil {
		status, err := enums.ParseOrderStatus(strings.TrimSpace(*req.OrderStatus))
		if err != nil {
			return request, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_status")
		}
		request.OrderStatus = &status
	}
	if req.PaymentStatus != nil {
		status, err := enums.ParsePaymentStatus(strings.TrimSpace(*req.PaymentStatus))
		if err != nil {
			return request, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status")
		}
		request.PaymentStatus = &status
	}
	if req.ShipmentStatus != nil {
		status, err := enums.ParseShipmentStatus(strings.TrimSpace(*req.ShipmentStatus))
		if err != nil {
			return request, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment_status")
		}
		request.ShipmentStatus = &status
	}
	return request, nil
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
