package orders

import (
	"testing"
	"time"

	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

func orderStatusPtr(s enums.OrderStatus) *enums.OrderStatus          { return &s }
func paymentStatusPtr(s enums.PaymentStatus) *enums.PaymentStatus    { return &s }
func shipmentStatusPtr(s enums.ShipmentStatus) *enums.ShipmentStatus { return &s }

func baseOrder() models.Order {
	return models.Order{OrderStatus: enums.OrderStatusReceived}
}

func TestPlanTransitionOrderStatusMoves(t *testing.T) {
	cases := []struct {
		name    string
		current enums.OrderStatus
		target  enums.OrderStatus
		wantErr bool
	}{
		{"received to approved", enums.OrderStatusReceived, enums.OrderStatusApproved, false},
		{"received to rejected", enums.OrderStatusReceived, enums.OrderStatusRejected, false},
		{"received to canceled", enums.OrderStatusReceived, enums.OrderStatusCanceled, false},
		{"approved to canceled", enums.OrderStatusApproved, enums.OrderStatusCanceled, false},
		{"approved to rejected", enums.OrderStatusApproved, enums.OrderStatusRejected, true},
		{"rejected to approved", enums.OrderStatusRejected, enums.OrderStatusApproved, true},
		{"canceled to approved", enums.OrderStatusCanceled, enums.OrderStatusApproved, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := models.Order{OrderStatus: tc.current}
			plan, err := PlanTransition(order, TransitionRequest{OrderStatus: orderStatusPtr(tc.target)})
			if tc.wantErr {
				typed := pkgerrors.As(err)
				if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
					t.Fatalf("expected state conflict got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected success got %v", err)
			}
			if !plan.OrderStatusChanged || plan.OrderStatus != tc.target {
				t.Fatalf("unexpected plan %+v", plan)
			}
		})
	}
}

func TestPlanTransitionPaymentAxis(t *testing.T) {
	order := baseOrder()

	plan, err := PlanTransition(order, TransitionRequest{PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid)})
	if err != nil {
		t.Fatalf("unset to paid should be legal: %v", err)
	}
	if !plan.PaymentStatusChanged || *plan.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("unexpected plan %+v", plan)
	}

	order.PaymentStatus = paymentStatusPtr(enums.PaymentStatusPaid)
	_, err = PlanTransition(order, TransitionRequest{PaymentStatus: paymentStatusPtr(enums.PaymentStatusPending)})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("paid to pending should conflict got %v", err)
	}
}

func TestPlanTransitionShipmentForwardOnly(t *testing.T) {
	order := baseOrder()

	plan, err := PlanTransition(order, TransitionRequest{ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusDelivered)})
	if err != nil {
		t.Fatalf("skipping ahead should be legal: %v", err)
	}
	if !plan.ShipmentStatusChanged {
		t.Fatalf("expected shipment change %+v", plan)
	}

	order.ShipmentStatus = shipmentStatusPtr(enums.ShipmentStatusShipped)
	_, err = PlanTransition(order, TransitionRequest{ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusProcessing)})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("backwards move should conflict got %v", err)
	}
}

func TestPlanTransitionIdempotentNoOp(t *testing.T) {
	order := models.Order{
		OrderStatus:   enums.OrderStatusApproved,
		PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid),
	}

	plan, err := PlanTransition(order, TransitionRequest{
		OrderStatus:   orderStatusPtr(enums.OrderStatusApproved),
		PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid),
	})
	if err != nil {
		t.Fatalf("re-applying current values should succeed: %v", err)
	}
	if plan.Changed() {
		t.Fatalf("expected no-op plan %+v", plan)
	}
	if plan.LockFunds || plan.UnlockFunds || plan.ReverseFunds {
		t.Fatalf("no-op must not trigger fund effects %+v", plan)
	}
}

func TestPlanTransitionTerminalOrderBlocksAxes(t *testing.T) {
	order := models.Order{OrderStatus: enums.OrderStatusCanceled}

	_, err := PlanTransition(order, TransitionRequest{PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid)})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected conflict on canceled order got %v", err)
	}

	// Re-sending the terminal value itself stays a no-op success.
	plan, err := PlanTransition(order, TransitionRequest{OrderStatus: orderStatusPtr(enums.OrderStatusCanceled)})
	if err != nil {
		t.Fatalf("no-op on terminal order should succeed: %v", err)
	}
	if plan.Changed() {
		t.Fatalf("expected unchanged plan %+v", plan)
	}
}

func TestPlanTransitionDeliveredRefusesCancel(t *testing.T) {
	order := models.Order{
		OrderStatus:    enums.OrderStatusApproved,
		ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusDelivered),
	}

	_, err := PlanTransition(order, TransitionRequest{OrderStatus: orderStatusPtr(enums.OrderStatusCanceled)})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestPlanTransitionDeliveryInSameRequestRefusesCancel(t *testing.T) {
	now := time.Now()
	order := models.Order{
		OrderStatus:    enums.OrderStatusApproved,
		PaymentStatus:  paymentStatusPtr(enums.PaymentStatusPaid),
		ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusShipped),
		FundsLockedAt:  &now,
	}

	_, err := PlanTransition(order, TransitionRequest{
		OrderStatus:    orderStatusPtr(enums.OrderStatusCanceled),
		ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusDelivered),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected conflict got %v", err)
	}

	// Re-sending the stored delivered value alongside the cancel must not
	// slip past the refusal as a shipment no-op.
	order.ShipmentStatus = shipmentStatusPtr(enums.ShipmentStatusDelivered)
	_, err = PlanTransition(order, TransitionRequest{
		OrderStatus:    orderStatusPtr(enums.OrderStatusCanceled),
		ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusDelivered),
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestPlanTransitionEmptyRequest(t *testing.T) {
	_, err := PlanTransition(baseOrder(), TransitionRequest{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestPlanTransitionFundEffects(t *testing.T) {
	now := time.Now()

	t.Run("approve while paid locks", func(t *testing.T) {
		order := models.Order{
			OrderStatus:   enums.OrderStatusReceived,
			PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid),
		}
		plan, err := PlanTransition(order, TransitionRequest{OrderStatus: orderStatusPtr(enums.OrderStatusApproved)})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if !plan.LockFunds {
			t.Fatalf("expected lock trigger %+v", plan)
		}
	})

	t.Run("pay while approved locks", func(t *testing.T) {
		order := models.Order{OrderStatus: enums.OrderStatusApproved}
		plan, err := PlanTransition(order, TransitionRequest{PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid)})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if !plan.LockFunds {
			t.Fatalf("expected lock trigger %+v", plan)
		}
	})

	t.Run("pay before approval does not lock", func(t *testing.T) {
		order := baseOrder()
		plan, err := PlanTransition(order, TransitionRequest{PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid)})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if plan.LockFunds {
			t.Fatalf("unexpected lock trigger %+v", plan)
		}
	})

	t.Run("already locked does not relock", func(t *testing.T) {
		order := models.Order{
			OrderStatus:   enums.OrderStatusApproved,
			FundsLockedAt: &now,
		}
		plan, err := PlanTransition(order, TransitionRequest{PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid)})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if plan.LockFunds {
			t.Fatalf("unexpected lock trigger %+v", plan)
		}
	})

	t.Run("delivery unlocks locked funds", func(t *testing.T) {
		order := models.Order{
			OrderStatus:    enums.OrderStatusApproved,
			PaymentStatus:  paymentStatusPtr(enums.PaymentStatusPaid),
			ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusShipped),
			FundsLockedAt:  &now,
		}
		plan, err := PlanTransition(order, TransitionRequest{ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusDelivered)})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if !plan.UnlockFunds {
			t.Fatalf("expected unlock trigger %+v", plan)
		}
	})

	t.Run("delivery without locked funds skips unlock", func(t *testing.T) {
		order := baseOrder()
		plan, err := PlanTransition(order, TransitionRequest{ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusDelivered)})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if plan.UnlockFunds {
			t.Fatalf("unexpected unlock trigger %+v", plan)
		}
	})

	t.Run("cancel after lock reverses", func(t *testing.T) {
		order := models.Order{
			OrderStatus:   enums.OrderStatusApproved,
			PaymentStatus: paymentStatusPtr(enums.PaymentStatusPaid),
			FundsLockedAt: &now,
		}
		plan, err := PlanTransition(order, TransitionRequest{OrderStatus: orderStatusPtr(enums.OrderStatusCanceled)})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if !plan.ReverseFunds {
			t.Fatalf("expected reversal trigger %+v", plan)
		}
	})

	t.Run("reject before lock has no ledger effect", func(t *testing.T) {
		order := baseOrder()
		plan, err := PlanTransition(order, TransitionRequest{OrderStatus: orderStatusPtr(enums.OrderStatusRejected)})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if plan.LockFunds || plan.UnlockFunds || plan.ReverseFunds {
			t.Fatalf("unexpected fund effects %+v", plan)
		}
	})

	t.Run("single call settling and delivering locks then unlocks", func(t *testing.T) {
		order := models.Order{OrderStatus: enums.OrderStatusApproved}
		plan, err := PlanTransition(order, TransitionRequest{
			PaymentStatus:  paymentStatusPtr(enums.PaymentStatusPaid),
			ShipmentStatus: shipmentStatusPtr(enums.ShipmentStatusDelivered),
		})
		if err != nil {
			t.Fatalf("expected success got %v", err)
		}
		if !plan.LockFunds || !plan.UnlockFunds {
			t.Fatalf("expected lock and unlock together %+v", plan)
		}
	})
}
