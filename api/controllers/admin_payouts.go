package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	walletviews "github.com/tariqmansouri/vendora-backend/api/controllers/wallet"
	"github.com/tariqmansouri/vendora-backend/api/responses"
	"github.com/tariqmansouri/vendora-backend/api/validators"
	"github.com/tariqmansouri/vendora-backend/internal/payouts"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

// AdminPayoutList returns the payout queue across all vendors, with optional
// user and status filters.
func AdminPayoutList(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		adminID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters payouts.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			userID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid user_id"))
				return
			}
			filters.UserID = &userID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParsePayoutStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			filters.Status = &status
		}

		scope := payouts.ListScope{UserID: adminID, Role: enums.RoleAdmin}
		list, err := svc.List(r.Context(), scope, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, walletviews.NewPayoutListResponse(list.Payouts, list.NextCursor))
	}
}

// AdminPayoutApprove greenlights a pending payout for execution.
func AdminPayoutApprove(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return payoutDecision(svc, logg, func(r *http.Request, svc payouts.Service, payoutID, adminID uuid.UUID) (any, error) {
		var payload payoutDecisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		payout, err := svc.Approve(r.Context(), payoutID, adminID, payload.note())
		if err != nil {
			return nil, err
		}
		return walletviews.NewPayoutResponse(payout), nil
	})
}

// AdminPayoutReject closes a payout without moving funds.
func AdminPayoutReject(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return payoutDecision(svc, logg, func(r *http.Request, svc payouts.Service, payoutID, adminID uuid.UUID) (any, error) {
		var payload payoutDecisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		payout, err := svc.Reject(r.Context(), payoutID, adminID, payload.note())
		if err != nil {
			return nil, err
		}
		return walletviews.NewPayoutResponse(payout), nil
	})
}

// AdminPayoutPay records the executed bank transfer and debits the wallet.
func AdminPayoutPay(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return payoutDecision(svc, logg, func(r *http.Request, svc payouts.Service, payoutID, adminID uuid.UUID) (any, error) {
		var payload payoutPayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		payout, err := svc.Pay(r.Context(), payoutID, adminID, strings.TrimSpace(payload.TransactionReference))
		if err != nil {
			return nil, err
		}
		return walletviews.NewPayoutResponse(payout), nil
	})
}

type payoutDecisionRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// note returns the decision note trimmed and capped for storage.
func (req payoutDecisionRequest) note() *string {
	if req.Note == nil {
		return nil
	}
	cleaned := validators.SanitizeString(*req.Note, 500)
	return &cleaned
}

type payoutPayRequest struct {
	TransactionReference string `json:"transaction_reference" validate:"required,max=128"`
}

func payoutDecision(svc payouts.Service, logg *logger.Logger, apply func(*http.Request, payouts.Service, uuid.UUID, uuid.UUID) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		adminID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payoutID, err := payoutIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := apply(r, svc, payoutID, adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func payoutIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "payoutId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id is required")
	}
	payoutID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payout id")
	}
	return payoutID, nil
}
