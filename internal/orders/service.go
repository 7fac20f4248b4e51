package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/internal/invoices"
	"github.com/tariqmansouri/vendora-backend/internal/ledger"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/metrics"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type fundsLedger interface {
	LockOrderFunds(ctx context.Context, tx *gorm.DB, order *models.Order) (*ledger.LockResult, error)
	UnlockByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (decimal.Decimal, error)
	ReverseOrderFunds(ctx context.Context, tx *gorm.DB, order *models.Order) (decimal.Decimal, error)
}

type invoiceTrigger interface {
	Evaluate(prev, next *models.Order) []invoices.Action
	Apply(ctx context.Context, tx *gorm.DB, order *models.Order, actions []invoices.Action) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the state machine around stored orders. ApplyTransition is the
// single mutation path; the admin command, the payment webhook, and the
// tracking webhook all funnel into it.
type Service interface {
	ApplyTransition(ctx context.Context, input ApplyInput) (*models.Order, error)
	ApplyTrackingEvent(ctx context.Context, input TrackingInput) (*models.Order, error)

	GetOrder(ctx context.Context, scope ReadScope, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, scope ReadScope, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListHistory(ctx context.Context, scope ReadScope, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	funds    fundsLedger
	invoices invoiceTrigger
	outbox   outboxPublisher
	metrics  *metrics.EngineMetrics
	logg     *logger.Logger
}

// NewService builds the order transition service. Metrics and logger may be
// nil; the ledger, invoice trigger, and publisher may not.
func NewService(
	tx txRunner,
	repo Repository,
	funds fundsLedger,
	invoiceSvc invoiceTrigger,
	publisher outboxPublisher,
	engineMetrics *metrics.EngineMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if funds == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if invoiceSvc == nil {
		return nil, fmt.Errorf("invoice trigger required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		funds:    funds,
		invoices: invoiceSvc,
		outbox:   publisher,
		metrics:  engineMetrics,
		logg:     logg,
	}, nil
}

// transitionOutcome carries the ledger side effects of one applied transition
// out of the transaction for events, metrics, and logging.
type transitionOutcome struct {
	lock     *ledger.LockResult
	unlocked *decimal.Decimal
	reversed *decimal.Decimal
}

func (s *service) ApplyTransition(ctx context.Context, input ApplyInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Actor.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor type is required")
	}

	var (
		updated *models.Order
		applied Plan
		outcome transitionOutcome
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}

		plan, err := PlanTransition(*order, input.Request)
		if err != nil {
			return err
		}
		if !plan.Changed() {
			// Re-applying the current state is a success without history,
			// ledger writes, or events.
			updated, err = repo.FindByID(ctx, order.ID)
			return err
		}
		applied = plan

		now := time.Now().UTC()
		next := *order
		next.OrderStatus = plan.OrderStatus
		next.PaymentStatus = plan.PaymentStatus
		next.ShipmentStatus = plan.ShipmentStatus

		updates := map[string]any{}
		if plan.OrderStatusChanged {
			updates["order_status"] = plan.OrderStatus
		}
		if plan.PaymentStatusChanged {
			updates["payment_status"] = *plan.PaymentStatus
		}
		if plan.ShipmentStatusChanged {
			updates["shipment_status"] = *plan.ShipmentStatus
		}

		if plan.LockFunds {
			lock, lockErr := s.funds.LockOrderFunds(ctx, tx, order)
			switch {
			case errors.Is(lockErr, ledger.ErrDuplicateEntry):
				// Entries already sit under this order's lock keys; keep the
				// stamp write so the row and the ledger agree.
			case lockErr != nil:
				return lockErr
			default:
				outcome.lock = lock
			}
			updates["funds_locked_at"] = now
			next.FundsLockedAt = &now
		}

		if plan.UnlockFunds {
			moved, unlockErr := s.funds.UnlockByOrder(ctx, tx, order.ID)
			if unlockErr != nil {
				return unlockErr
			}
			outcome.unlocked = &moved
			updates["funds_unlocked_at"] = now
			next.FundsUnlockedAt = &now
		}

		if plan.ReverseFunds {
			reversed, reverseErr := s.funds.ReverseOrderFunds(ctx, tx, order)
			if reverseErr != nil {
				return reverseErr
			}
			outcome.reversed = &reversed
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return err
		}

		if err := repo.AppendHistory(ctx, &models.OrderStatusHistory{
			OrderID:        order.ID,
			OrderStatus:    next.OrderStatus,
			PaymentStatus:  next.PaymentStatus,
			ShipmentStatus: next.ShipmentStatus,
			ActorType:      input.Actor.Type,
			ActorID:        input.Actor.ID,
			Note:           input.Note,
		}); err != nil {
			return err
		}

		if actions := s.invoices.Evaluate(order, &next); len(actions) > 0 {
			if err := s.invoices.Apply(ctx, tx, &next, actions); err != nil {
				return err
			}
		}

		if err := s.emitTransitionEvents(ctx, tx, &next, input, outcome, now); err != nil {
			return err
		}

		updated, err = repo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, updated, applied, outcome)
	return updated, nil
}

func (s *service) emitTransitionEvents(ctx context.Context, tx *gorm.DB, next *models.Order, input ApplyInput, outcome transitionOutcome, now time.Time) error {
	actor := actorRef(input.Actor)

	if outcome.lock != nil {
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventFundsLocked,
			AggregateType: enums.AggregateOrder,
			AggregateID:   next.ID.String(),
			Actor:         actor,
			Data: payloads.FundsLockedEvent{
				OrderID:       next.ID,
				VendorID:      outcome.lock.AccountID,
				VendorAmount:  outcome.lock.VendorAmount,
				PlatformShare: outcome.lock.PlatformShare,
				Currency:      outcome.lock.Currency,
			},
		}); err != nil {
			return err
		}
	}

	if outcome.unlocked != nil {
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventFundsUnlocked,
			AggregateType: enums.AggregateOrder,
			AggregateID:   next.ID.String(),
			Actor:         actor,
			Data: payloads.FundsUnlockedEvent{
				OrderID:    next.ID,
				Amount:     *outcome.unlocked,
				Currency:   next.Currency,
				UnlockedAt: now,
			},
		}); err != nil {
			return err
		}
	}

	if outcome.reversed != nil {
		reason := "order " + next.OrderStatus.String()
		if input.Note != nil && *input.Note != "" {
			reason = *input.Note
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventFundsReversed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   next.ID.String(),
			Actor:         actor,
			Data: payloads.FundsReversedEvent{
				OrderID: next.ID,
				Reason:  reason,
			},
		}); err != nil {
			return err
		}
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStateChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   next.ID.String(),
		Actor:         actor,
		Data: payloads.OrderStateChangedEvent{
			OrderID:        next.ID,
			OrderNumber:    next.OrderNumber,
			GroupNumber:    next.GroupNumber,
			OrderStatus:    next.OrderStatus,
			PaymentStatus:  next.PaymentStatus,
			ShipmentStatus: next.ShipmentStatus,
			ActorType:      input.Actor.Type,
		},
	})
}

// observe records metrics and one log line after the transaction committed.
func (s *service) observe(ctx context.Context, order *models.Order, plan Plan, outcome transitionOutcome) {
	if !plan.Changed() {
		return
	}
	if plan.OrderStatusChanged {
		s.metrics.IncTransition("order_status", plan.OrderStatus.String())
	}
	if plan.PaymentStatusChanged {
		s.metrics.IncTransition("payment_status", plan.PaymentStatus.String())
	}
	if plan.ShipmentStatusChanged {
		s.metrics.IncTransition("shipment_status", plan.ShipmentStatus.String())
	}
	if outcome.lock != nil {
		s.metrics.IncFundsMovement("lock")
	}
	if outcome.unlocked != nil {
		s.metrics.IncFundsMovement("unlock")
	}
	if outcome.reversed != nil {
		s.metrics.IncFundsMovement("reversal")
	}

	if s.logg == nil || order == nil {
		return
	}
	fields := map[string]any{
		"order_id":     order.ID.String(),
		"group_number": order.GroupNumber,
		"order_status": order.OrderStatus.String(),
	}
	if outcome.lock != nil {
		fields["locked_vendor_amount"] = outcome.lock.VendorAmount.String()
		fields["locked_platform_share"] = outcome.lock.PlatformShare.String()
	}
	if outcome.unlocked != nil {
		fields["unlocked_amount"] = outcome.unlocked.String()
	}
	if outcome.reversed != nil {
		fields["reversed_amount"] = outcome.reversed.String()
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "order transition applied")
}

func (s *service) ApplyTrackingEvent(ctx context.Context, input TrackingInput) (*models.Order, error) {
	if !input.EventType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown tracking event %q", input.EventType))
	}

	var (
		order *models.Order
		err   error
	)
	switch {
	case input.OrderID != nil && *input.OrderID != uuid.Nil:
		order, err = s.repo.FindByID(ctx, *input.OrderID)
	case input.TrackingNumber != "":
		order, err = s.repo.FindByTrackingNumber(ctx, input.TrackingNumber)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number or order id is required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order matches the tracking event")
		}
		return nil, err
	}

	occurred := input.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	target := input.EventType.ShipmentStatus()
	note := fmt.Sprintf("carrier scan %s at %s", input.EventType, occurred.UTC().Format(time.RFC3339))

	return s.ApplyTransition(ctx, ApplyInput{
		OrderID: order.ID,
		Request: TransitionRequest{ShipmentStatus: &target},
		Actor:   Actor{Type: enums.ActorCarrier},
		Note:    &note,
	})
}

func (s *service) GetOrder(ctx context.Context, scope ReadScope, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if !scope.Allows(order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, scope ReadScope, params pagination.Params, filters ListFilters) (*OrderList, error) {
	switch scope.Role {
	case enums.RoleAdmin:
		// Admin filters pass through untouched.
	case enums.RoleBuyer:
		buyerID := scope.UserID
		filters.BuyerID = &buyerID
	case enums.RoleVendor:
		vendorID := scope.UserID
		filters.VendorID = &vendorID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list orders")
	}

	rows, cursor, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, err
	}
	return &OrderList{Orders: rows, NextCursor: cursor}, nil
}

func (s *service) ListHistory(ctx context.Context, scope ReadScope, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	order, err := s.GetOrder(ctx, scope, orderID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, order.ID)
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.ID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *actor.ID, Role: actor.Role}
}
