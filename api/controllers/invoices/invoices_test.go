package invoices

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/api/middleware"
	internalinvoices "github.com/tariqmansouri/vendora-backend/internal/invoices"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

type stubInvoiceService struct {
	invoice  *models.Invoice
	err      error
	gotToken string

	list       *internalinvoices.InvoiceList
	listErr    error
	gotScope   *internalinvoices.ListScope
	gotFilters *internalinvoices.ListFilters
}

func (s *stubInvoiceService) Evaluate(prev, next *models.Order) []internalinvoices.Action {
	return nil
}

func (s *stubInvoiceService) Apply(ctx context.Context, tx *gorm.DB, order *models.Order, actions []internalinvoices.Action) error {
	return pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubInvoiceService) GetByAccessToken(ctx context.Context, token string) (*models.Invoice, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.invoice, nil
}

func (s *stubInvoiceService) List(ctx context.Context, scope internalinvoices.ListScope, params pagination.Params, filters internalinvoices.ListFilters) (*internalinvoices.InvoiceList, error) {
	s.gotScope = &scope
	s.gotFilters = &filters
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list, nil
}

func listRequest(target string, userID uuid.UUID, role enums.UserRole) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func tokenRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/token/"+token, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("accessToken", token)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleInvoice(token string) *models.Invoice {
	return &models.Invoice{
		ID:            uuid.New(),
		GroupNumber:   "G-20250401-0001",
		Type:          enums.InvoiceTypeAdminToCustomer,
		InvoiceNumber: "INV-0001",
		AccessToken:   token,
		PaymentStatus: enums.InvoicePaymentStatusUnpaid,
		SubtotalBase:  decimal.RequireFromString("100.00"),
		TotalAmount:   decimal.RequireFromString("121.00"),
		Currency:      enums.CurrencyAED,
		IssuedAt:      time.Now(),
		CreatedAt:     time.Now(),
	}
}

func TestListScopedToCaller(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	svc := &stubInvoiceService{list: &internalinvoices.InvoiceList{
		Invoices:   []models.Invoice{*sampleInvoice("tok-1")},
		NextCursor: "cursor-3",
	}}
	handler := List(svc, nil)

	req := listRequest("/api/v1/invoices?limit=10", buyerID, enums.RoleBuyer)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.gotScope == nil || svc.gotScope.UserID != buyerID || svc.gotScope.Role != enums.RoleBuyer {
		t.Fatalf("unexpected scope: %+v", svc.gotScope)
	}

	var envelope struct {
		Data listResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Invoices) != 1 {
		t.Fatalf("expected 1 invoice got %d", len(envelope.Data.Invoices))
	}
	if envelope.Data.NextCursor != "cursor-3" {
		t.Fatalf("unexpected cursor: %s", envelope.Data.NextCursor)
	}
}

func TestListForwardsTypeFilter(t *testing.T) {
	svc := &stubInvoiceService{list: &internalinvoices.InvoiceList{}}
	handler := List(svc, nil)

	req := listRequest("/api/v1/invoices?type=vendor_to_admin&payment_status=unpaid", uuid.New(), enums.RoleAdmin)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.gotFilters == nil || svc.gotFilters.Type == nil || *svc.gotFilters.Type != enums.InvoiceTypeVendorToAdmin {
		t.Fatalf("type filter missing: %+v", svc.gotFilters)
	}
	if svc.gotFilters.PaymentStatus == nil || *svc.gotFilters.PaymentStatus != enums.InvoicePaymentStatusUnpaid {
		t.Fatalf("payment_status filter missing: %+v", svc.gotFilters)
	}
}

func TestListRejectsUnknownType(t *testing.T) {
	handler := List(&stubInvoiceService{}, nil)

	req := listRequest("/api/v1/invoices?type=proforma", uuid.New(), enums.RoleAdmin)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListRequiresAuthContext(t *testing.T) {
	handler := List(&stubInvoiceService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestByAccessTokenReturnsInvoice(t *testing.T) {
	token := "f3a9c2d845b14e6f9c1b"
	svc := &stubInvoiceService{invoice: sampleInvoice(token)}
	handler := ByAccessToken(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, tokenRequest(token))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.gotToken != token {
		t.Fatalf("token was not forwarded: %s", svc.gotToken)
	}

	var envelope struct {
		Data invoiceResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != token {
		t.Fatalf("unexpected access token: %s", envelope.Data.AccessToken)
	}
	if envelope.Data.InvoiceNumber != "INV-0001" {
		t.Fatalf("unexpected invoice number: %s", envelope.Data.InvoiceNumber)
	}
}

func TestByAccessTokenMapsUnknownToken(t *testing.T) {
	svc := &stubInvoiceService{err: pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")}
	handler := ByAccessToken(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, tokenRequest("unknown-token"))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
