// Package payments turns gateway webhook deliveries into order transitions.
// Every delivery is verified against Square before any state moves, and every
// step downstream (conversion, transition, fund lock) is idempotent, so the
// gateway can redeliver freely.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/internal/checkout"
	"github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/metrics"
	"github.com/tariqmansouri/vendora-backend/pkg/square"
)

// Payment states the gateway reports on its webhook.
const (
	StatePaid   = "paid"
	StateFailed = "failed"
)

type paymentVerifier interface {
	GetPayment(ctx context.Context, paymentID string) (*sq.Payment, error)
}

type cartConverter interface {
	Convert(ctx context.Context, input checkout.ConvertInput) (*checkout.ConvertResult, error)
}

type transitionApplier interface {
	ApplyTransition(ctx context.Context, input orders.ApplyInput) (*models.Order, error)
}

type orderStore interface {
	ListByGroupNumber(ctx context.Context, groupNumber string) ([]models.Order, error)
	FindByCartID(ctx context.Context, cartID uuid.UUID) ([]models.Order, error)
	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
}

type cartStore interface {
	FindCartByID(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error)
}

// PaymentEvent is the normalized webhook delivery: the controller has already
// checked the signature and the replay guard by the time a service sees one.
type PaymentEvent struct {
	EventID        string
	PaymentID      string
	OrderReference string
	State          string
}

// ServiceParams wires the payment webhook service.
type ServiceParams struct {
	Square    paymentVerifier
	Converter cartConverter
	Orders    transitionApplier
	OrderRepo orderStore
	Carts     cartStore
	Metrics   *metrics.EngineMetrics
	Logger    *logger.Logger
}

// Service settles order groups from verified gateway events.
type Service struct {
	square    paymentVerifier
	converter cartConverter
	orders    transitionApplier
	orderRepo orderStore
	carts     cartStore
	metrics   *metrics.EngineMetrics
	logg      *logger.Logger
}

// NewService validates the wiring. Metrics and logger may be nil.
func NewService(params ServiceParams) (*Service, error) {
	if params.Square == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "square client required")
	}
	if params.Converter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout converter required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order transition service required")
	}
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	return &Service{
		square:    params.Square,
		converter: params.Converter,
		orders:    params.Orders,
		orderRepo: params.OrderRepo,
		carts:     params.Carts,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// HandlePaymentEvent applies one verified gateway delivery. Paid events settle
// the whole order group, converting the cart first when the gateway references
// an unconverted one; failed events only annotate the history.
func (s *Service) HandlePaymentEvent(ctx context.Context, event PaymentEvent) error {
	if strings.TrimSpace(event.OrderReference) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}

	switch event.State {
	case StatePaid:
		return s.handlePaid(ctx, event)
	case StateFailed:
		return s.handleFailed(ctx, event)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown payment state %q", event.State))
	}
}

func (s *Service) handlePaid(ctx context.Context, event PaymentEvent) error {
	if strings.TrimSpace(event.PaymentID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}

	payment, err := s.square.GetPayment(ctx, event.PaymentID)
	if err != nil {
		return err
	}
	if !square.PaymentCompleted(payment) {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("payment %s is not completed at the gateway", event.PaymentID))
	}

	group, err := s.resolveGroup(ctx, event)
	if err != nil {
		return err
	}
	if err := verifyAmount(payment, group); err != nil {
		return err
	}

	gatewayActor := orders.Actor{Type: enums.ActorGateway, Role: "gateway"}
	paid := enums.PaymentStatusPaid
	note := fmt.Sprintf("gateway payment %s", event.PaymentID)
	for _, order := range group {
		if _, err := s.orders.ApplyTransition(ctx, orders.ApplyInput{
			OrderID: order.ID,
			Request: orders.TransitionRequest{PaymentStatus: &paid},
			Actor:   gatewayActor,
			Note:    &note,
		}); err != nil {
			return err
		}
	}

	s.metrics.IncWebhookEvent("payments", "paid")
	s.info(ctx, "payment webhook settled group", map[string]any{
		"event_id":    event.EventID,
		"payment_id":  event.PaymentID,
		"order_count": len(group),
	})
	return nil
}

// resolveGroup finds the orders the reference points at. A group number wins;
// otherwise a cart reference converts the cart (or replays its conversion)
// and settles the resulting orders.
func (s *Service) resolveGroup(ctx context.Context, event PaymentEvent) ([]models.Order, error) {
	reference := strings.TrimSpace(event.OrderReference)

	group, err := s.orderRepo.ListByGroupNumber(ctx, reference)
	if err != nil {
		return nil, err
	}
	if len(group) > 0 {
		return group, nil
	}

	cartID, parseErr := uuid.Parse(reference)
	if parseErr != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no order group matches reference %q", reference))
	}

	cart, err := s.carts.FindCartByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no cart matches reference %q", reference))
		}
		return nil, err
	}

	result, err := s.converter.Convert(ctx, checkout.ConvertInput{
		BuyerID: cart.BuyerID,
		CartID:  cart.ID,
		Actor:   orders.Actor{Type: enums.ActorGateway, Role: "gateway"},
	})
	if err != nil {
		return nil, err
	}
	return result.Orders, nil
}

func (s *Service) handleFailed(ctx context.Context, event PaymentEvent) error {
	group, err := s.findExistingOrders(ctx, event.OrderReference)
	if err != nil {
		return err
	}
	// A failed payment on a never-converted cart leaves nothing to annotate.
	if len(group) == 0 {
		return nil
	}

	note := fmt.Sprintf("gateway payment %s failed", event.PaymentID)
	for _, order := range group {
		if err := s.orderRepo.AppendHistory(ctx, &models.OrderStatusHistory{
			OrderID:        order.ID,
			OrderStatus:    order.OrderStatus,
			PaymentStatus:  order.PaymentStatus,
			ShipmentStatus: order.ShipmentStatus,
			ActorType:      enums.ActorGateway,
			Note:           &note,
		}); err != nil {
			return err
		}
	}

	s.metrics.IncWebhookEvent("payments", "failed")
	s.info(ctx, "payment webhook recorded failure", map[string]any{
		"event_id":    event.EventID,
		"payment_id":  event.PaymentID,
		"order_count": len(group),
	})
	return nil
}

func (s *Service) findExistingOrders(ctx context.Context, reference string) ([]models.Order, error) {
	reference = strings.TrimSpace(reference)

	group, err := s.orderRepo.ListByGroupNumber(ctx, reference)
	if err != nil {
		return nil, err
	}
	if len(group) > 0 {
		return group, nil
	}

	cartID, parseErr := uuid.Parse(reference)
	if parseErr != nil {
		return nil, nil
	}
	return s.orderRepo.FindByCartID(ctx, cartID)
}

// verifyAmount checks the gateway charge against the stored group total in
// minor units. Square reports integer cents; the group total is a 2dp
// decimal, so the comparison is exact.
func verifyAmount(payment *sq.Payment, group []models.Order) error {
	money := payment.GetAmountMoney()
	if money == nil || money.Amount == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "gateway payment carries no amount")
	}

	total := decimal.Zero
	currency := ""
	for _, order := range group {
		total = total.Add(order.TotalAmount)
		if currency == "" {
			currency = order.Currency.String()
		}
	}

	wantCents := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if *money.Amount != wantCents {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("gateway amount %d does not match group total %d", *money.Amount, wantCents))
	}

	if money.Currency != nil && !strings.EqualFold(string(*money.Currency), currency) {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("gateway currency %s does not match group currency %s", *money.Currency, currency))
	}
	return nil
}

func (s *Service) info(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}
