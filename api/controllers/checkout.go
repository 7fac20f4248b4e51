package controllers

import (
	"net/http"

	"github.com/google/uuid"

	orderviews "github.com/tariqmansouri/vendora-backend/api/controllers/orders"
	"github.com/tariqmansouri/vendora-backend/api/responses"
	"github.com/tariqmansouri/vendora-backend/api/validators"
	checkoutsvc "github.com/tariqmansouri/vendora-backend/internal/checkout"
	"github.com/tariqmansouri/vendora-backend/internal/compliance"
	internalorders "github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/types"
)

// CheckoutEvaluate runs the pre-payment compliance check without touching the
// cart. The storefront calls it to learn how the group will be classified and
// which blockers remain.
func CheckoutEvaluate(svc compliance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "compliance service unavailable"))
			return
		}

		buyerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload evaluateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := svc.Evaluate(r.Context(), buyerID, payload.CartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, decision)
	}
}

// Checkout converts the buyer's cart into one order per vendor. Replays of an
// already converted cart return the stored group with a 200 instead of a 201.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Convert(r.Context(), checkoutsvc.ConvertInput{
			BuyerID:         buyerID,
			CartID:          payload.CartID,
			ShippingAddress: payload.ShippingAddress,
			Actor: internalorders.Actor{
				Type: enums.ActorBuyer,
				ID:   &buyerID,
				Role: string(enums.RoleBuyer),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.AlreadyConverted {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, newCheckoutResponse(result))
	}
}

type evaluateRequest struct {
	CartID uuid.UUID `json:"cart_id" validate:"required,uuid4"`
}

type checkoutRequest struct {
	CartID          uuid.UUID      `json:"cart_id" validate:"required,uuid4"`
	ShippingAddress *types.Address `json:"shipping_address,omitempty"`
}

type checkoutResponse struct {
	GroupNumber      string                     `json:"group_number"`
	AlreadyConverted bool                       `json:"already_converted"`
	Orders           []orderviews.OrderResponse `json:"orders"`
}

func newCheckoutResponse(result *checkoutsvc.ConvertResult) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}
	view := orderviews.NewListResponse(result.Orders, "")
	return checkoutResponse{
		GroupNumber:      result.GroupNumber,
		AlreadyConverted: result.AlreadyConverted,
		Orders:           view.Orders,
	}
}
