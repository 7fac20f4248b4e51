// Package checkout converts buyer carts into order groups. Conversion is the
// only entry point into the order state machine: it snapshots catalog pricing
// into immutable order lines, partitions the cart per vendor, and allocates
// the numbers every later transition and webhook keys on.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/internal/checkout/helpers"
	"github.com/tariqmansouri/vendora-backend/internal/compliance"
	"github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/pkg/config"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/logger"
	"github.com/tariqmansouri/vendora-backend/pkg/metrics"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
	"github.com/tariqmansouri/vendora-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type vendorDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type routeEvaluator interface {
	Evaluate(ctx context.Context, buyerID, cartID uuid.UUID) (*compliance.Decision, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ConvertInput names the cart to convert and who asked for it. The shipping
// address is snapshotted onto every order in the group; request-routed carts
// cannot convert without one.
type ConvertInput struct {
	BuyerID         uuid.UUID
	CartID          uuid.UUID
	ShippingAddress *types.Address
	Actor           orders.Actor
}

// ConvertResult returns the order group a conversion produced. When the cart
// was already converted the stored orders come back unchanged and
// AlreadyConverted is set; callers treat that exactly like a fresh success.
type ConvertResult struct {
	Orders           []models.Order
	GroupNumber      string
	AlreadyConverted bool
}

// Service turns a cart into one order per vendor partition, atomically with
// the cart flip and the outbox rows describing it.
type Service interface {
	Convert(ctx context.Context, input ConvertInput) (*ConvertResult, error)
}

type service struct {
	tx        txRunner
	carts     Repository
	orderRepo orders.Repository
	catalog   productCatalog
	vendors   vendorDirectory
	routes    routeEvaluator
	outbox    outboxPublisher
	cfg       config.EngineConfig
	metrics   *metrics.EngineMetrics
	logg      *logger.Logger
}

// NewService builds the conversion service. Metrics and logger may be nil;
// every store and the route evaluator may not.
func NewService(
	tx txRunner,
	carts Repository,
	orderRepo orders.Repository,
	catalog productCatalog,
	vendors vendorDirectory,
	routes routeEvaluator,
	publisher outboxPublisher,
	cfg config.EngineConfig,
	engineMetrics *metrics.EngineMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor directory required")
	}
	if routes == nil {
		return nil, fmt.Errorf("route evaluator required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:        tx,
		carts:     carts,
		orderRepo: orderRepo,
		catalog:   catalog,
		vendors:   vendors,
		routes:    routes,
		outbox:    publisher,
		cfg:       cfg,
		metrics:   engineMetrics,
		logg:      logg,
	}, nil
}

func (s *service) Convert(ctx context.Context, input ConvertInput) (*ConvertResult, error) {
	if input.BuyerID == uuid.Nil || input.CartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id and cart id are required")
	}
	if !input.Actor.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor type is required")
	}

	var result *ConvertResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		cart, err := carts.FindCartForBuyerForUpdate(ctx, input.CartID, input.BuyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return err
		}

		// A converted cart replays its original outcome. No new rows, no
		// new events.
		if cart.Status == enums.CartStatusConverted {
			existing, err := orderRepo.FindByCartID(ctx, cart.ID)
			if err != nil {
				return err
			}
			group := ""
			if cart.GroupNumber != nil {
				group = *cart.GroupNumber
			}
			result = &ConvertResult{Orders: existing, GroupNumber: group, AlreadyConverted: true}
			return nil
		}

		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		catalog, err := s.catalog.FindByIDs(ctx, helpers.ProductIDs(cart.Items))
		if err != nil {
			return err
		}
		vendors, err := s.vendors.FindByIDs(ctx, helpers.VendorIDs(cart.Items, catalog))
		if err != nil {
			return err
		}
		if err := helpers.ValidateEligibility(cart.Items, catalog, vendors); err != nil {
			return err
		}

		decision, err := s.routes.Evaluate(ctx, input.BuyerID, cart.ID)
		if err != nil {
			return err
		}
		if decision.Type == enums.OrderTypeRequest && input.ShippingAddress == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
		}

		lines := helpers.ConsolidateLines(cart.Items)
		partitions := helpers.PartitionByVendor(lines, catalog)
		keys := helpers.SortedPartitionKeys(partitions)

		// Numbers allocated in this batch are not yet visible to
		// NumberTaken, so track them locally as well.
		used := map[string]bool{}
		nextNumber := func(ctx context.Context) (string, error) {
			number, err := generateOrderNumber(ctx, s.cfg.OrderNumberDigits, func(ctx context.Context, candidate string) (bool, error) {
				if used[candidate] {
					return true, nil
				}
				return orderRepo.NumberTaken(ctx, candidate)
			})
			if err != nil {
				return "", err
			}
			used[number] = true
			return number, nil
		}

		groupNumber, err := nextNumber(ctx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		created := make([]models.Order, 0, len(keys))

		for _, vendorKey := range keys {
			part := partitions[vendorKey]

			// A single-partition cart produces one order whose number is
			// the group number itself.
			orderNumber := groupNumber
			if len(keys) > 1 {
				orderNumber, err = nextNumber(ctx)
				if err != nil {
					return err
				}
			}

			platformOwned := vendorKey == uuid.Nil
			var vendorID *uuid.UUID
			if !platformOwned {
				v := vendorKey
				vendorID = &v
			}

			totals := helpers.ComputeOrderTotals(part, catalog, s.cfg.VATRate, s.cfg.CommissionRate, platformOwned)

			var paymentStatus *enums.PaymentStatus
			if decision.Type == enums.OrderTypeDirect {
				pending := enums.PaymentStatusPending
				paymentStatus = &pending
			}

			order := models.Order{
				ID:               uuid.New(),
				OrderNumber:      orderNumber,
				GroupNumber:      groupNumber,
				CartID:           cart.ID,
				BuyerID:          cart.BuyerID,
				VendorID:         vendorID,
				Type:             decision.Type,
				OrderStatus:      enums.OrderStatusReceived,
				PaymentStatus:    paymentStatus,
				SubtotalBase:     totals.SubtotalBase,
				ShippingTotal:    totals.ShippingTotal,
				PackingTotal:     totals.PackingTotal,
				VATAmount:        totals.VATAmount,
				CommissionAmount: totals.Commission,
				TotalAmount:      totals.TotalAmount,
				Currency:         enums.Currency(s.cfg.Currency),
				ShippingAddress:  input.ShippingAddress,
			}
			if err := orderRepo.Create(ctx, &order); err != nil {
				return err
			}

			items := buildOrderItems(order.ID, part, catalog)
			if err := orderRepo.CreateItems(ctx, items); err != nil {
				return err
			}
			order.Items = items

			if err := orderRepo.AppendHistory(ctx, &models.OrderStatusHistory{
				OrderID:       order.ID,
				OrderStatus:   order.OrderStatus,
				PaymentStatus: order.PaymentStatus,
				ActorType:     input.Actor.Type,
				ActorID:       input.Actor.ID,
			}); err != nil {
				return err
			}

			created = append(created, order)
		}

		if err := carts.MarkConverted(ctx, cart.ID, groupNumber, now); err != nil {
			return err
		}

		if err := s.emitConversionEvents(ctx, tx, input, cart, groupNumber, created); err != nil {
			return err
		}

		result = &ConvertResult{Orders: created, GroupNumber: groupNumber}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyConverted {
		s.observe(ctx, result)
	}
	return result, nil
}

func (s *service) emitConversionEvents(ctx context.Context, tx *gorm.DB, input ConvertInput, cart *models.CartRecord, groupNumber string, created []models.Order) error {
	actor := actorRef(input.Actor)

	orderIDs := make([]uuid.UUID, 0, len(created))
	for _, order := range created {
		orderIDs = append(orderIDs, order.ID)
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCheckoutConverted,
		AggregateType: enums.AggregateOrderGroup,
		AggregateID:   groupNumber,
		Actor:         actor,
		Data: payloads.CheckoutConvertedEvent{
			CartID:      cart.ID,
			GroupNumber: groupNumber,
			BuyerID:     cart.BuyerID,
			OrderIDs:    orderIDs,
		},
	}); err != nil {
		return err
	}

	for _, order := range created {
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID.String(),
			Actor:         actor,
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				GroupNumber: order.GroupNumber,
				BuyerID:     order.BuyerID,
				VendorID:    order.VendorID,
				Type:        order.Type,
				TotalAmount: order.TotalAmount,
				Currency:    order.Currency,
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) observe(ctx context.Context, result *ConvertResult) {
	s.metrics.IncConversion()

	if s.logg == nil {
		return
	}
	fields := map[string]any{
		"group_number": result.GroupNumber,
		"order_count":  len(result.Orders),
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "cart converted")
}

func buildOrderItems(orderID uuid.UUID, items []models.CartItem, catalog map[uuid.UUID]models.Product) []models.OrderItem {
	built := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			continue
		}
		built = append(built, models.OrderItem{
			ID:              uuid.New(),
			OrderID:         orderID,
			ProductID:       product.ID,
			VendorID:        product.VendorID,
			Name:            product.Name,
			Quantity:        item.Quantity,
			UnitBasePrice:   product.UnitBasePrice,
			UnitSellPrice:   product.UnitSellPrice,
			UnitShippingFee: product.UnitShippingFee,
			UnitPackingFee:  product.UnitPackingFee,
		})
	}
	return built
}

func actorRef(actor orders.Actor) *outbox.ActorRef {
	if actor.ID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *actor.ID, Role: actor.Role}
}
