package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/api/middleware"
	orderviews "github.com/tariqmansouri/vendora-backend/api/controllers/orders"
	internalorders "github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

type stubOrderService struct {
	applyResult *models.Order
	applyErr    error
	gotApply    *internalorders.ApplyInput
}

func (s *stubOrderService) ApplyTransition(ctx context.Context, input internalorders.ApplyInput) (*models.Order, error) {
	s.gotApply = &input
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	return s.applyResult, nil
}

func (s *stubOrderService) ApplyTrackingEvent(ctx context.Context, input internalorders.TrackingInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubOrderService) GetOrder(ctx context.Context, scope internalorders.ReadScope, orderID uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubOrderService) ListOrders(ctx context.Context, scope internalorders.ReadScope, params pagination.Params, filters internalorders.ListFilters) (*internalorders.OrderList, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubOrderService) ListHistory(ctx context.Context, scope internalorders.ReadScope, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func adminStatusRequestFor(orderID uuid.UUID, adminID uuid.UUID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/"+orderID.String()+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	ctx := middleware.WithUserID(req.Context(), adminID.String())
	ctx = middleware.WithRole(ctx, string(enums.RoleAdmin))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID.String())
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)

	return req.WithContext(ctx)
}

func TestAdminOrderStatusAppliesTransition(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	adminID := uuid.New()
	approved := enums.OrderStatusApproved
	svc := &stubOrderService{applyResult: &models.Order{
		ID:          orderID,
		OrderNumber: "ORD-0001",
		GroupNumber: "G-20250401-0001",
		OrderStatus: approved,
	}}
	handler := AdminOrderStatus(svc, nil)

	req := adminStatusRequestFor(orderID, adminID, `{"order_status":"approved","note":"documents verified"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data orderviews.OrderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderStatus != string(approved) {
		t.Fatalf("unexpected order status: %s", envelope.Data.OrderStatus)
	}

	if svc.gotApply == nil {
		t.Fatal("service was not called")
	}
	if svc.gotApply.OrderID != orderID {
		t.Fatalf("unexpected order id: %s", svc.gotApply.OrderID)
	}
	if svc.gotApply.Request.OrderStatus == nil || *svc.gotApply.Request.OrderStatus != approved {
		t.Fatalf("order status was not forwarded: %+v", svc.gotApply.Request)
	}
	if svc.gotApply.Request.PaymentStatus != nil || svc.gotApply.Request.ShipmentStatus != nil {
		t.Fatalf("untouched axes must stay nil: %+v", svc.gotApply.Request)
	}
	if svc.gotApply.Actor.Type != enums.ActorAdmin {
		t.Fatalf("unexpected actor type: %s", svc.gotApply.Actor.Type)
	}
	if svc.gotApply.Actor.ID == nil || *svc.gotApply.Actor.ID != adminID {
		t.Fatalf("actor id was not forwarded")
	}
	if svc.gotApply.Note == nil || *svc.gotApply.Note != "documents verified" {
		t.Fatalf("note was not forwarded: %v", svc.gotApply.Note)
	}
}

func TestAdminOrderStatusForwardsAllAxes(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{applyResult: &models.Order{ID: orderID}}
	handler := AdminOrderStatus(svc, nil)

	req := adminStatusRequestFor(orderID, uuid.New(), `{"order_status":"approved","payment_status":"paid","shipment_status":"processing"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.gotApply == nil {
		t.Fatal("service was not called")
	}
	if svc.gotApply.Request.OrderStatus == nil || svc.gotApply.Request.PaymentStatus == nil || svc.gotApply.Request.ShipmentStatus == nil {
		t.Fatalf("expected all axes set: %+v", svc.gotApply.Request)
	}
}

func TestAdminOrderStatusRejectsUnknownStatus(t *testing.T) {
	handler := AdminOrderStatus(&stubOrderService{}, nil)

	req := adminStatusRequestFor(uuid.New(), uuid.New(), `{"order_status":"shipped-ish"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminOrderStatusMapsStateConflict(t *testing.T) {
	svc := &stubOrderService{applyErr: pkgerrors.New(pkgerrors.CodeStateConflict, "order_status cannot move from canceled to approved")}
	handler := AdminOrderStatus(svc, nil)

	req := adminStatusRequestFor(uuid.New(), uuid.New(), `{"order_status":"approved"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestAdminOrderStatusRejectsBadOrderID(t *testing.T) {
	handler := AdminOrderStatus(&stubOrderService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/orders/not-a-uuid/status", strings.NewReader(`{"order_status":"approved"}`))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.RoleAdmin))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", "not-a-uuid")
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
