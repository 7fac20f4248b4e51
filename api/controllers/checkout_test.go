package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/api/middleware"
	checkoutsvc "github.com/tariqmansouri/vendora-backend/internal/checkout"
	"github.com/tariqmansouri/vendora-backend/internal/compliance"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
)

type stubConvertService struct {
	result   *checkoutsvc.ConvertResult
	err      error
	gotInput *checkoutsvc.ConvertInput
}

func (s *stubConvertService) Convert(ctx context.Context, input checkoutsvc.ConvertInput) (*checkoutsvc.ConvertResult, error) {
	s.gotInput = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubComplianceService struct {
	decision *compliance.Decision
	err      error
}

func (s stubComplianceService) Evaluate(ctx context.Context, buyerID, cartID uuid.UUID) (*compliance.Decision, error) {
	return s.decision, s.err
}

func buyerRequest(method, target, body string, buyerID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), buyerID.String())
	ctx = middleware.WithRole(ctx, string(enums.RoleBuyer))
	return req.WithContext(ctx)
}

func TestCheckoutCreatesOrderGroup(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	cartID := uuid.New()
	vendorA := uuid.New()
	vendorB := uuid.New()
	svc := &stubConvertService{result: &checkoutsvc.ConvertResult{
		GroupNumber: "G-20250401-0001",
		Orders: []models.Order{
			{ID: uuid.New(), BuyerID: buyerID, VendorID: &vendorA, GroupNumber: "G-20250401-0001", OrderStatus: enums.OrderStatusReceived, TotalAmount: decimal.RequireFromString("120.50")},
			{ID: uuid.New(), BuyerID: buyerID, VendorID: &vendorB, GroupNumber: "G-20250401-0001", OrderStatus: enums.OrderStatusReceived, TotalAmount: decimal.RequireFromString("30.00")},
		},
	}}
	handler := Checkout(svc, nil)

	body := fmt.Sprintf(`{"cart_id":%q}`, cartID)
	req := buyerRequest(http.MethodPost, "/api/v1/checkout", body, buyerID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.GroupNumber != "G-20250401-0001" {
		t.Fatalf("unexpected group number: %s", envelope.Data.GroupNumber)
	}
	if envelope.Data.AlreadyConverted {
		t.Fatalf("fresh conversion should not be flagged as replay")
	}
	if len(envelope.Data.Orders) != 2 {
		t.Fatalf("expected 2 orders got %d", len(envelope.Data.Orders))
	}

	if svc.gotInput == nil {
		t.Fatal("service was not called")
	}
	if svc.gotInput.BuyerID != buyerID {
		t.Fatalf("unexpected buyer id: %s", svc.gotInput.BuyerID)
	}
	if svc.gotInput.CartID != cartID {
		t.Fatalf("unexpected cart id: %s", svc.gotInput.CartID)
	}
	if svc.gotInput.Actor.Type != enums.ActorBuyer {
		t.Fatalf("unexpected actor type: %s", svc.gotInput.Actor.Type)
	}
}

func TestCheckoutReplayReturnsExistingGroup(t *testing.T) {
	buyerID := uuid.New()
	svc := &stubConvertService{result: &checkoutsvc.ConvertResult{
		GroupNumber:      "G-20250401-0001",
		AlreadyConverted: true,
		Orders: []models.Order{
			{ID: uuid.New(), BuyerID: buyerID, GroupNumber: "G-20250401-0001", OrderStatus: enums.OrderStatusReceived},
		},
	}}
	handler := Checkout(svc, nil)

	body := fmt.Sprintf(`{"cart_id":%q}`, uuid.New())
	req := buyerRequest(http.MethodPost, "/api/v1/checkout", body, buyerID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for replay got %d", resp.Code)
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.AlreadyConverted {
		t.Fatalf("expected already_converted flag")
	}
}

func TestCheckoutValidationError(t *testing.T) {
	handler := Checkout(&stubConvertService{}, nil)

	req := buyerRequest(http.MethodPost, "/api/v1/checkout", `{}`, uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutRequiresAuthContext(t *testing.T) {
	handler := Checkout(&stubConvertService{}, nil)

	body := fmt.Sprintf(`{"cart_id":%q}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutMapsEligibilityFailure(t *testing.T) {
	svc := &stubConvertService{err: pkgerrors.New(pkgerrors.CodeEligibility, "buyer approval is pending")}
	handler := Checkout(svc, nil)

	body := fmt.Sprintf(`{"cart_id":%q}`, uuid.New())
	req := buyerRequest(http.MethodPost, "/api/v1/checkout", body, uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCheckoutEvaluateReturnsDecision(t *testing.T) {
	buyerID := uuid.New()
	handler := CheckoutEvaluate(stubComplianceService{decision: &compliance.Decision{
		Type:    enums.OrderTypeDirect,
		Reasons: []string{},
	}}, nil)

	body := fmt.Sprintf(`{"cart_id":%q}`, uuid.New())
	req := buyerRequest(http.MethodPost, "/api/v1/checkout/evaluate", body, buyerID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data compliance.Decision `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Type != enums.OrderTypeDirect {
		t.Fatalf("unexpected decision type: %s", envelope.Data.Type)
	}
}

func TestCheckoutEvaluateMapsEligibilityFailure(t *testing.T) {
	handler := CheckoutEvaluate(stubComplianceService{
		err: pkgerrors.New(pkgerrors.CodeEligibility, "cart is empty"),
	}, nil)

	body := fmt.Sprintf(`{"cart_id":%q}`, uuid.New())
	req := buyerRequest(http.MethodPost, "/api/v1/checkout/evaluate", body, uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
