package orders

import (
	"fmt"

	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// TransitionRequest names the target value per axis. Nil axes stay untouched;
// a request with every axis nil is invalid.
type TransitionRequest struct {
	OrderStatus    *enums.OrderStatus
	PaymentStatus  *enums.PaymentStatus
	ShipmentStatus *enums.ShipmentStatus
}

// Empty reports whether no axis was requested at all.
func (r TransitionRequest) Empty() bool {
	return r.OrderStatus == nil && r.PaymentStatus == nil && r.ShipmentStatus == nil
}

// Plan is the resolved effect of a request against the stored order: the
// values each axis ends at, which axes actually move, and which ledger
// side effects the move triggers.
type Plan struct {
	OrderStatus    enums.OrderStatus
	PaymentStatus  *enums.PaymentStatus
	ShipmentStatus *enums.ShipmentStatus

	OrderStatusChanged    bool
	PaymentStatusChanged  bool
	ShipmentStatusChanged bool

	LockFunds    bool
	UnlockFunds  bool
	ReverseFunds bool
}

// Changed reports whether any axis actually moves.
func (p Plan) Changed() bool {
	return p.OrderStatusChanged || p.PaymentStatusChanged || p.ShipmentStatusChanged
}

// Delivered reports whether the plan ends with the shipment delivered.
func (p Plan) Delivered() bool {
	return p.ShipmentStatus != nil && *p.ShipmentStatus == enums.ShipmentStatusDelivered
}

// orderStatusTransitions enumerates every legal order-status move. Approval
// and rejection are review verdicts out of order_received; cancelation is
// additionally allowed after approval, where the ledger reversal compensates
// any already-locked funds.
var orderStatusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusReceived: {
		enums.OrderStatusApproved,
		enums.OrderStatusRejected,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusApproved: {
		enums.OrderStatusCanceled,
	},
}

// paymentStatusTransitions keys the axis by its nullable stored value; the
// empty string stands for an order that has not entered the payment flow.
// Request-type orders confirmed by the gateway jump straight to paid.
var paymentStatusTransitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	"": {
		enums.PaymentStatusPending,
		enums.PaymentStatusPaid,
	},
	enums.PaymentStatusPending: {
		enums.PaymentStatusPaid,
	},
}

// shipmentStatusTransitions is forward-only. Skipping intermediate carrier
// scans is legal; moving backwards is not.
var shipmentStatusTransitions = map[enums.ShipmentStatus][]enums.ShipmentStatus{
	"": {
		enums.ShipmentStatusProcessing,
		enums.ShipmentStatusShipped,
		enums.ShipmentStatusDelivered,
	},
	enums.ShipmentStatusProcessing: {
		enums.ShipmentStatusShipped,
		enums.ShipmentStatusDelivered,
	},
	enums.ShipmentStatusShipped: {
		enums.ShipmentStatusDelivered,
	},
}

func allowedMove[T comparable](table map[T][]T, from, to T) bool {
	for _, candidate := range table[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// PlanTransition resolves a request against the stored order. It returns a
// CodeStateConflict error for any move the tables do not admit. Axes whose
// target equals the stored value resolve to no-ops; a plan where every
// requested axis is a no-op reports Changed()==false and callers treat it as
// idempotent success.
func PlanTransition(order models.Order, req TransitionRequest) (Plan, error) {
	if req.Empty() {
		return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, "no status change requested")
	}

	plan := Plan{
		OrderStatus:    order.OrderStatus,
		PaymentStatus:  order.PaymentStatus,
		ShipmentStatus: order.ShipmentStatus,
	}

	if req.OrderStatus != nil && *req.OrderStatus != order.OrderStatus {
		target := *req.OrderStatus
		if !target.IsValid() {
			return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", target))
		}
		if !allowedMove(orderStatusTransitions, order.OrderStatus, target) {
			return Plan{}, transitionConflict("order status", order.OrderStatus.String(), target.String())
		}
		plan.OrderStatus = target
		plan.OrderStatusChanged = true
	}

	if req.PaymentStatus != nil && !paymentEqual(order.PaymentStatus, *req.PaymentStatus) {
		target := *req.PaymentStatus
		if !target.IsValid() {
			return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", target))
		}
		current := enums.PaymentStatus("")
		if order.PaymentStatus != nil {
			current = *order.PaymentStatus
		}
		if !allowedMove(paymentStatusTransitions, current, target) {
			return Plan{}, transitionConflict("payment status", axisLabel(current.String()), target.String())
		}
		plan.PaymentStatus = &target
		plan.PaymentStatusChanged = true
	}

	if req.ShipmentStatus != nil && !shipmentEqual(order.ShipmentStatus, *req.ShipmentStatus) {
		target := *req.ShipmentStatus
		if !target.IsValid() {
			return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipment status %q", target))
		}
		current := enums.ShipmentStatus("")
		if order.ShipmentStatus != nil {
			current = *order.ShipmentStatus
		}
		if !allowedMove(shipmentStatusTransitions, current, target) {
			return Plan{}, transitionConflict("shipment status", axisLabel(current.String()), target.String())
		}
		plan.ShipmentStatus = &target
		plan.ShipmentStatusChanged = true
	}

	if !plan.Changed() {
		return plan, nil
	}

	// Terminal orders admit nothing further on any axis.
	if order.OrderStatus.IsTerminal() {
		return Plan{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s", order.OrderStatus))
	}

	// The refusal reads the planned shipment state, not the stored one: a
	// delivered shipment forbids rejection and cancelation even when the
	// delivery arrives on the same request.
	if plan.OrderStatus.IsTerminal() && plan.Delivered() {
		return Plan{}, pkgerrors.New(pkgerrors.CodeStateConflict, "delivered order cannot be rejected or canceled")
	}

	resolveFundEffects(order, &plan)
	return plan, nil
}

// resolveFundEffects derives the ledger side effects from the before/after
// pair. Effects are computed on the locked row, so two racing triggers
// serialize and the loser observes the winner's stamps.
func resolveFundEffects(order models.Order, plan *Plan) {
	prevSettled := order.OrderStatus == enums.OrderStatusApproved && order.IsPaid()
	nextSettled := plan.OrderStatus == enums.OrderStatusApproved &&
		plan.PaymentStatus != nil && *plan.PaymentStatus == enums.PaymentStatusPaid

	plan.LockFunds = nextSettled && !prevSettled && order.FundsLockedAt == nil

	plan.UnlockFunds = plan.Delivered() && order.FundsUnlockedAt == nil &&
		(order.FundsLockedAt != nil || plan.LockFunds)

	plan.ReverseFunds = plan.OrderStatusChanged && plan.OrderStatus.IsTerminal() &&
		order.FundsLockedAt != nil && order.FundsUnlockedAt == nil
}

func transitionConflict(axis, from, to string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("%s cannot move from %s to %s", axis, from, to))
}

func axisLabel(value string) string {
	if value == "" {
		return "unset"
	}
	return value
}

func paymentEqual(current *enums.PaymentStatus, target enums.PaymentStatus) bool {
	return current != nil && *current == target
}

func shipmentEqual(current *enums.ShipmentStatus, target enums.ShipmentStatus) bool {
	return current != nil && *current == target
}
