package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/internal/compliance"
	"github.com/tariqmansouri/vendora-backend/internal/orders"
	"github.com/tariqmansouri/vendora-backend/pkg/config"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
	"github.com/tariqmansouri/vendora-backend/pkg/types"
)

func TestConvertPartitionsCartByVendor(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	vendorA := fix.addVendor()
	vendorB := fix.addVendor()
	productA := fix.addProduct(&vendorA, "widget")
	productB := fix.addProduct(&vendorB, "gadget")
	productHouse := fix.addProduct(nil, "house brand")

	buyerID := uuid.New()
	cart := fix.addCart(buyerID,
		models.CartItem{ProductID: productA, Quantity: 2},
		models.CartItem{ProductID: productB, Quantity: 1},
		models.CartItem{ProductID: productHouse, Quantity: 1},
	)

	svc := fix.newService(t)
	result, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID, Role: "buyer"},
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if result.AlreadyConverted {
		t.Fatal("fresh conversion reported as already converted")
	}
	if len(result.Orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(result.Orders))
	}
	if len(result.GroupNumber) != 8 {
		t.Fatalf("expected an 8-digit group number, got %q", result.GroupNumber)
	}

	numbers := map[string]bool{}
	var vendorOrder, platformOrder *models.Order
	for i := range result.Orders {
		order := &result.Orders[i]
		if len(order.OrderNumber) != 8 {
			t.Fatalf("expected 8-digit order number, got %q", order.OrderNumber)
		}
		if numbers[order.OrderNumber] {
			t.Fatalf("duplicate order number %q", order.OrderNumber)
		}
		numbers[order.OrderNumber] = true

		if order.GroupNumber != result.GroupNumber {
			t.Fatalf("order %s carries group %q, want %q", order.ID, order.GroupNumber, result.GroupNumber)
		}
		if order.OrderStatus != enums.OrderStatusReceived {
			t.Fatalf("expected order_received, got %s", order.OrderStatus)
		}
		if order.PaymentStatus == nil || *order.PaymentStatus != enums.PaymentStatusPending {
			t.Fatalf("expected pending payment on direct order, got %v", order.PaymentStatus)
		}
		if order.ShipmentStatus != nil {
			t.Fatalf("expected no shipment status at conversion, got %v", order.ShipmentStatus)
		}
		switch {
		case order.VendorID == nil:
			platformOrder = order
		case *order.VendorID == vendorA:
			vendorOrder = order
		}
	}
	if vendorOrder == nil || platformOrder == nil {
		t.Fatal("expected both a vendorA order and a platform order")
	}

	if !vendorOrder.SubtotalBase.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("expected vendorA subtotal 200, got %s", vendorOrder.SubtotalBase)
	}
	if !vendorOrder.ShippingTotal.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected vendorA shipping 20, got %s", vendorOrder.ShippingTotal)
	}
	if !vendorOrder.PackingTotal.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected vendorA packing 10, got %s", vendorOrder.PackingTotal)
	}
	if !vendorOrder.VATAmount.Equal(decimal.RequireFromString("11.5")) {
		t.Fatalf("expected vendorA vat 11.5, got %s", vendorOrder.VATAmount)
	}
	if !vendorOrder.TotalAmount.Equal(decimal.RequireFromString("241.5")) {
		t.Fatalf("expected vendorA total 241.5, got %s", vendorOrder.TotalAmount)
	}
	if !vendorOrder.CommissionAmount.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected vendorA commission 20, got %s", vendorOrder.CommissionAmount)
	}
	if !platformOrder.CommissionAmount.IsZero() {
		t.Fatalf("expected zero commission on platform order, got %s", platformOrder.CommissionAmount)
	}
	if len(vendorOrder.Items) != 1 || vendorOrder.Items[0].Quantity != 2 {
		t.Fatalf("expected one line of qty 2 on vendorA order, got %+v", vendorOrder.Items)
	}
	if !vendorOrder.Items[0].UnitSellPrice.Equal(decimal.RequireFromString("130")) {
		t.Fatalf("expected snapshotted sell price 130, got %s", vendorOrder.Items[0].UnitSellPrice)
	}

	stored := fix.carts.carts[cart]
	if stored.Status != enums.CartStatusConverted {
		t.Fatalf("expected converted cart, got %s", stored.Status)
	}
	if stored.GroupNumber == nil || *stored.GroupNumber != result.GroupNumber {
		t.Fatalf("expected cart stamped with group %q, got %v", result.GroupNumber, stored.GroupNumber)
	}

	if got := len(fix.orders.history); got != 3 {
		t.Fatalf("expected one history row per order, got %d", got)
	}
	for _, entry := range fix.orders.history {
		if entry.ActorType != enums.ActorBuyer {
			t.Fatalf("expected buyer actor on first history row, got %s", entry.ActorType)
		}
	}

	if got := fix.publisher.count(enums.EventCheckoutConverted); got != 1 {
		t.Fatalf("expected one checkout_converted event, got %d", got)
	}
	if got := fix.publisher.count(enums.EventOrderCreated); got != 3 {
		t.Fatalf("expected three order_created events, got %d", got)
	}
	converted := fix.publisher.find(t, enums.EventCheckoutConverted)
	payload, ok := converted.Data.(payloads.CheckoutConvertedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", converted.Data)
	}
	if payload.CartID != cart || payload.GroupNumber != result.GroupNumber || len(payload.OrderIDs) != 3 {
		t.Fatalf("unexpected checkout_converted payload %+v", payload)
	}
}

func TestConvertConsolidatesDuplicateLines(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	vendorA := fix.addVendor()
	productA := fix.addProduct(&vendorA, "widget")

	buyerID := uuid.New()
	cart := fix.addCart(buyerID,
		models.CartItem{ProductID: productA, Quantity: 1},
		models.CartItem{ProductID: productA, Quantity: 1},
	)

	svc := fix.newService(t)
	result, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(result.Orders) != 1 {
		t.Fatalf("expected a single order, got %d", len(result.Orders))
	}

	order := result.Orders[0]
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("expected the duplicate lines merged to qty 2, got %+v", order.Items)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("241.5")) {
		t.Fatalf("expected total 241.5, got %s", order.TotalAmount)
	}
}

func TestConvertSingleVendorSharesGroupNumber(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	vendorA := fix.addVendor()
	productA := fix.addProduct(&vendorA, "widget")

	buyerID := uuid.New()
	cart := fix.addCart(buyerID, models.CartItem{ProductID: productA, Quantity: 2})

	svc := fix.newService(t)
	result, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(result.Orders) != 1 {
		t.Fatalf("expected one order, got %d", len(result.Orders))
	}
	if result.Orders[0].OrderNumber != result.GroupNumber {
		t.Fatalf("single-partition order number %q should equal group number %q",
			result.Orders[0].OrderNumber, result.GroupNumber)
	}
}

func TestConvertSecondCallReturnsExistingOrders(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	vendorA := fix.addVendor()
	productA := fix.addProduct(&vendorA, "widget")

	buyerID := uuid.New()
	cart := fix.addCart(buyerID, models.CartItem{ProductID: productA, Quantity: 2})

	svc := fix.newService(t)
	first, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	if err != nil {
		t.Fatalf("first convert: %v", err)
	}

	createsBefore := len(fix.orders.created)
	eventsBefore := len(fix.publisher.events)

	second, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	if err != nil {
		t.Fatalf("second convert: %v", err)
	}
	if !second.AlreadyConverted {
		t.Fatal("expected AlreadyConverted on replay")
	}
	if second.GroupNumber != first.GroupNumber {
		t.Fatalf("replay group %q, want %q", second.GroupNumber, first.GroupNumber)
	}
	if len(second.Orders) != len(first.Orders) {
		t.Fatalf("replay returned %d orders, want %d", len(second.Orders), len(first.Orders))
	}
	if len(fix.orders.created) != createsBefore {
		t.Fatal("replay created new orders")
	}
	if len(fix.publisher.events) != eventsBefore {
		t.Fatal("replay emitted new events")
	}
}

func TestConvertEmptyCartRejected(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	buyerID := uuid.New()
	cart := fix.addCart(buyerID)

	svc := fix.newService(t)
	_, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "cart is empty") {
		t.Fatalf("expected empty-cart message, got %q", err.Error())
	}
}

func TestConvertRejectsIneligibleProduct(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	vendorA := fix.addVendor()
	productA := fix.addProduct(&vendorA, "retired widget")
	drafted := fix.products[productA]
	drafted.Status = enums.ProductStatusUnpublished
	fix.products[productA] = drafted

	buyerID := uuid.New()
	cart := fix.addCart(buyerID, models.CartItem{ProductID: productA, Quantity: 1})

	svc := fix.newService(t)
	_, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeEligibility {
		t.Fatalf("expected eligibility error, got %v", err)
	}
	if !strings.Contains(err.Error(), "retired widget") {
		t.Fatalf("expected the offending product named, got %q", err.Error())
	}
	if len(fix.orders.created) != 0 {
		t.Fatal("ineligible cart must not create orders")
	}
	if fix.carts.carts[cart].Status != enums.CartStatusActive {
		t.Fatal("ineligible cart must stay active")
	}
	if len(fix.publisher.events) != 0 {
		t.Fatal("ineligible cart must not emit events")
	}
}

func TestConvertRequestRouteRequiresAddress(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	fix.routes.decision = &compliance.Decision{
		Type:    enums.OrderTypeRequest,
		Reasons: []string{"category pharma requires approval"},
	}
	vendorA := fix.addVendor()
	productA := fix.addProduct(&vendorA, "widget")

	buyerID := uuid.New()
	cart := fix.addCart(buyerID, models.CartItem{ProductID: productA, Quantity: 2})

	svc := fix.newService(t)
	_, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without address, got %v", err)
	}

	address := testAddress()
	result, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID:         buyerID,
		CartID:          cart,
		ShippingAddress: &address,
		Actor:           orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	if err != nil {
		t.Fatalf("convert with address: %v", err)
	}

	order := result.Orders[0]
	if order.Type != enums.OrderTypeRequest {
		t.Fatalf("expected request order, got %s", order.Type)
	}
	if order.PaymentStatus != nil {
		t.Fatalf("request orders start without a payment axis, got %v", order.PaymentStatus)
	}
	if order.ShippingAddress == nil || order.ShippingAddress.City != address.City {
		t.Fatalf("expected the shipping address snapshotted, got %+v", order.ShippingAddress)
	}
}

func TestConvertUnknownCart(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	buyerID := uuid.New()

	svc := fix.newService(t)
	_, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: buyerID,
		CartID:  uuid.New(),
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &buyerID},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConvertScopesCartToBuyer(t *testing.T) {
	t.Parallel()

	fix := newConvertFixture()
	vendorA := fix.addVendor()
	productA := fix.addProduct(&vendorA, "widget")

	owner := uuid.New()
	cart := fix.addCart(owner, models.CartItem{ProductID: productA, Quantity: 1})

	intruder := uuid.New()
	svc := fix.newService(t)
	_, err := svc.Convert(context.Background(), ConvertInput{
		BuyerID: intruder,
		CartID:  cart,
		Actor:   orders.Actor{Type: enums.ActorBuyer, ID: &intruder},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign cart, got %v", err)
	}
}

// convertFixture wires the service against in-memory stores seeded through
// the add helpers.
type convertFixture struct {
	carts     *stubCartRepo
	orders    *stubOrderStore
	products  map[uuid.UUID]models.Product
	vendors   map[uuid.UUID]models.User
	routes    *stubRouteEvaluator
	publisher *stubOutboxPublisher
}

func newConvertFixture() *convertFixture {
	return &convertFixture{
		carts:     &stubCartRepo{carts: map[uuid.UUID]*models.CartRecord{}},
		orders:    newStubOrderStore(),
		products:  map[uuid.UUID]models.Product{},
		vendors:   map[uuid.UUID]models.User{},
		routes:    &stubRouteEvaluator{decision: &compliance.Decision{Type: enums.OrderTypeDirect}},
		publisher: &stubOutboxPublisher{},
	}
}

func (f *convertFixture) newService(t *testing.T) Service {
	t.Helper()
	cfg := config.EngineConfig{
		VATRate:           decimal.RequireFromString("0.05"),
		CommissionRate:    decimal.RequireFromString("0.10"),
		Currency:          "AED",
		OrderNumberDigits: 8,
	}
	svc, err := NewService(stubTxRunner{}, f.carts, f.orders,
		stubCatalog{products: f.products}, stubVendorDirectory{vendors: f.vendors},
		f.routes, f.publisher, cfg, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func (f *convertFixture) addVendor() uuid.UUID {
	id := uuid.New()
	f.vendors[id] = models.User{ID: id, Role: enums.RoleVendor, Approval: enums.UserApprovalApproved}
	return id
}

func (f *convertFixture) addProduct(vendorID *uuid.UUID, name string) uuid.UUID {
	product := models.Product{
		ID:              uuid.New(),
		VendorID:        vendorID,
		Name:            name,
		Category:        "electronics",
		Status:          enums.ProductStatusPublished,
		Approved:        true,
		UnitBasePrice:   decimal.RequireFromString("100"),
		UnitSellPrice:   decimal.RequireFromString("130"),
		UnitShippingFee: decimal.RequireFromString("10"),
		UnitPackingFee:  decimal.RequireFromString("5"),
		Currency:        enums.CurrencyAED,
	}
	f.products[product.ID] = product
	return product.ID
}

func (f *convertFixture) addCart(buyerID uuid.UUID, items ...models.CartItem) uuid.UUID {
	cartID := uuid.New()
	for i := range items {
		items[i].ID = uuid.New()
		items[i].CartID = cartID
	}
	f.carts.carts[cartID] = &models.CartRecord{
		ID:      cartID,
		BuyerID: buyerID,
		Status:  enums.CartStatusActive,
		Items:   items,
	}
	return cartID
}

func testAddress() types.Address {
	return types.Address{
		FullName:   "Rana Al Suwaidi",
		Line1:      "Unit 4, Marina Plaza",
		City:       "Dubai",
		PostalCode: "00000",
		Country:    "AE",
	}
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCartRepo struct {
	carts map[uuid.UUID]*models.CartRecord
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) FindCartForBuyer(ctx context.Context, cartID, buyerID uuid.UUID) (*models.CartRecord, error) {
	cart, ok := s.carts[cartID]
	if !ok || cart.BuyerID != buyerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *cart
	return &copied, nil
}

func (s *stubCartRepo) FindCartForBuyerForUpdate(ctx context.Context, cartID, buyerID uuid.UUID) (*models.CartRecord, error) {
	return s.FindCartForBuyer(ctx, cartID, buyerID)
}

func (s *stubCartRepo) FindCartByID(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error) {
	cart, ok := s.carts[cartID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *cart
	return &copied, nil
}

func (s *stubCartRepo) MarkConverted(ctx context.Context, cartID uuid.UUID, groupNumber string, at time.Time) error {
	cart, ok := s.carts[cartID]
	if !ok || cart.Status != enums.CartStatusActive {
		return gorm.ErrRecordNotFound
	}
	cart.Status = enums.CartStatusConverted
	cart.GroupNumber = &groupNumber
	cart.ConvertedAt = &at
	return nil
}

// stubOrderStore covers the slice of orders.Repository conversion touches.
type stubOrderStore struct {
	created []models.Order
	items   map[uuid.UUID][]models.OrderItem
	history []models.OrderStatusHistory
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{items: map[uuid.UUID][]models.OrderItem{}}
}

func (s *stubOrderStore) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrderStore) Create(ctx context.Context, order *models.Order) error {
	s.created = append(s.created, *order)
	return nil
}

func (s *stubOrderStore) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	s.items[items[0].OrderID] = append(s.items[items[0].OrderID], items...)
	return nil
}

func (s *stubOrderStore) FindByCartID(ctx context.Context, cartID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.created {
		if order.CartID == cartID {
			order.Items = s.items[order.ID]
			rows = append(rows, order)
		}
	}
	return rows, nil
}

func (s *stubOrderStore) NumberTaken(ctx context.Context, number string) (bool, error) {
	for _, order := range s.created {
		if order.OrderNumber == number || order.GroupNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubOrderStore) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderStore) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderStore) FindByOrderNumber(ctx context.Context, number string) (*models.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderStore) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderStore) ListByGroupNumber(ctx context.Context, groupNumber string) ([]models.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderStore) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return errors.New("not implemented")
}

func (s *stubOrderStore) ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderStore) List(ctx context.Context, params pagination.Params, filters orders.ListFilters) ([]models.Order, string, error) {
	return nil, "", errors.New("not implemented")
}

type stubCatalog struct {
	products map[uuid.UUID]models.Product
}

func (s stubCatalog) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

type stubVendorDirectory struct {
	vendors map[uuid.UUID]models.User
}

func (s stubVendorDirectory) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	for _, id := range ids {
		if vendor, ok := s.vendors[id]; ok {
			out[id] = vendor
		}
	}
	return out, nil
}

type stubRouteEvaluator struct {
	decision *compliance.Decision
	err      error
}

func (s *stubRouteEvaluator) Evaluate(ctx context.Context, buyerID, cartID uuid.UUID) (*compliance.Decision, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.decision, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutboxPublisher) count(eventType enums.OutboxEventType) int {
	total := 0
	for _, event := range s.events {
		if event.EventType == eventType {
			total++
		}
	}
	return total
}

func (s *stubOutboxPublisher) find(t *testing.T, eventType enums.OutboxEventType) outbox.DomainEvent {
	t.Helper()
	for _, event := range s.events {
		if event.EventType == eventType {
			return event
		}
	}
	t.Fatalf("event %s not emitted", eventType)
	return outbox.DomainEvent{}
}
