// Package invoices exposes invoice reads: the authenticated listing and the
// tokenized public fetch printed on the documents themselves.
package invoices

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/api/middleware"
	"github.com/tariqmansouri/vendora-backend/api/responses"
	"github.com/tariqmansouri/vendora-backend/api/validators"
	internalinvoices "github.com/tariqmansouri/vendora-backend/internal/invoices"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

// List returns the invoices visible to the caller: buyers see their group
// invoices, vendors their per-order invoices, admins everything.
func List(svc internalinvoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		scope, err := listScope(r)
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

		filters, err := buildFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), scope, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListResponse(list.Invoices, list.NextCursor))
	}
}

// ByAccessToken fetches one invoice through its unguessable share token. No
// authentication: the token itself is the credential.
func ByAccessToken(svc internalinvoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		token := strings.TrimSpace(chi.URLParam(r, "accessToken"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "access token is required"))
			return
		}

		invoice, err := svc.GetByAccessToken(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInvoiceResponse(invoice))
	}
}

type invoiceResponse struct {
	ID               uuid.UUID       `json:"id"`
	GroupNumber      string          `json:"group_number"`
	Type             string          `json:"type"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	OrderIDs         []uuid.UUID     `json:"order_ids"`
	InvoiceNumber    string          `json:"invoice_number"`
	AccessToken      string          `json:"access_token"`
	PaymentStatus    string          `json:"payment_status"`
	SubtotalBase     decimal.Decimal `json:"subtotal_base"`
	ShippingTotal    decimal.Decimal `json:"shipping_total"`
	PackingTotal     decimal.Decimal `json:"packing_total"`
	VATAmount        decimal.Decimal `json:"vat_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Currency         string          `json:"currency"`
	IssuedAt         time.Time       `json:"issued_at"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type listResponse struct {
	Invoices   []invoiceResponse `json:"invoices"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newInvoiceResponse(invoice *models.Invoice) invoiceResponse {
	if invoice == nil {
		return invoiceResponse{}
	}
	return invoiceResponse{
		ID:               invoice.ID,
		GroupNumber:      invoice.GroupNumber,
		Type:             string(invoice.Type),
		OrderID:          invoice.OrderID,
		OrderIDs:         invoice.OrderIDs,
		InvoiceNumber:    invoice.InvoiceNumber,
		AccessToken:      invoice.AccessToken,
		PaymentStatus:    string(invoice.PaymentStatus),
		SubtotalBase:     invoice.SubtotalBase,
		ShippingTotal:    invoice.ShippingTotal,
		PackingTotal:     invoice.PackingTotal,
		VATAmount:        invoice.VATAmount,
		CommissionAmount: invoice.CommissionAmount,
		TotalAmount:      invoice.TotalAmount,
		Currency:         string(invoice.Currency),
		IssuedAt:         invoice.IssuedAt,
		PaidAt:           invoice.PaidAt,
		CreatedAt:        invoice.CreatedAt,
	}
}

func newListResponse(invoices []models.Invoice, nextCursor string) listResponse {
	mapped := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		mapped = append(mapped, newInvoiceResponse(&invoices[i]))
	}
	return listResponse{Invoices: mapped, NextCursor: nextCursor}
}

func listScope(r *http.Request) (internalinvoices.ListScope, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return internalinvoices.ListScope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return internalinvoices.ListScope{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return internalinvoices.ListScope{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown role")
	}
	return internalinvoices.ListScope{UserID: userID, Role: role}, nil
}

func buildFilters(r *http.Request) (internalinvoices.ListFilters, error) {
	var filters internalinvoices.ListFilters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("group_number")); raw != "" {
		filters.GroupNumber = &raw
	}
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		invoiceType, err := enums.ParseInvoiceType(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
		}
		filters.Type = &invoiceType
	}
	if raw := strings.TrimSpace(query.Get("payment_status")); raw != "" {
		status, err := enums.ParseInvoicePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status")
		}
		filters.PaymentStatus = &status
	}
	return filters, nil
}
