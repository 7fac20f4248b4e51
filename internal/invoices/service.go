package invoices

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/db"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	dbtypes "github.com/tariqmansouri/vendora-backend/pkg/db/types"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	pkgerrors "github.com/tariqmansouri/vendora-backend/pkg/errors"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox"
	"github.com/tariqmansouri/vendora-backend/pkg/outbox/payloads"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
	"github.com/tariqmansouri/vendora-backend/pkg/security"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ListScope restricts the invoice listing to what the caller may see.
type ListScope struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// InvoiceList is one page of invoices plus the next-page cursor.
type InvoiceList struct {
	Invoices   []models.Invoice
	NextCursor string
}

// Service issues and settles invoices. Apply always runs inside the order
// transition's transaction so an invoice can never exist without the
// transition that justified it.
type Service interface {
	Evaluate(prev, next *models.Order) []Action
	Apply(ctx context.Context, tx *gorm.DB, order *models.Order, actions []Action) error

	GetByAccessToken(ctx context.Context, token string) (*models.Invoice, error)
	List(ctx context.Context, scope ListScope, params pagination.Params, filters ListFilters) (*InvoiceList, error)
}

type service struct {
	repo      Repository
	publisher outboxPublisher
}

// NewService wires the invoice service.
func NewService(repo Repository, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	return &service{repo: repo, publisher: publisher}, nil
}

func (s *service) Evaluate(prev, next *models.Order) []Action {
	return Evaluate(prev, next)
}

func (s *service) Apply(ctx context.Context, tx *gorm.DB, order *models.Order, actions []Action) error {
	if len(actions) == 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "invoice actions require a transaction")
	}
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "order is required")
	}

	repo := s.repo.WithTx(tx)
	for _, action := range actions {
		var err error
		switch action {
		case ActionGenerateCustomerInvoice:
			err = s.generate(ctx, tx, repo, order, enums.InvoiceTypeAdminToCustomer)
		case ActionGenerateVendorInvoice:
			err = s.generate(ctx, tx, repo, order, enums.InvoiceTypeVendorToAdmin)
		case ActionMarkCustomerInvoicePaid:
			err = s.markPaid(ctx, tx, repo, order.GroupNumber, enums.InvoiceTypeAdminToCustomer)
		case ActionMarkVendorInvoicePaid:
			err = s.markPaid(ctx, tx, repo, order.GroupNumber, enums.InvoiceTypeVendorToAdmin)
		default:
			err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown invoice action %q", action))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// generate issues one invoice for the order's group unless it already exists.
// The (group, type) unique index backs the existence check, so a concurrent
// generation degrades to a no-op instead of a duplicate.
func (s *service) generate(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, invoiceType enums.InvoiceType) error {
	_, err := repo.FindByGroupAndType(ctx, order.GroupNumber, invoiceType)
	if err == nil {
		return nil
	}
	if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to check existing invoice")
	}

	invoice, err := s.snapshot(ctx, repo, order, invoiceType)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	number, err := repo.NextNumber(ctx, invoiceType, now.Year())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to advance invoice sequence")
	}
	invoice.InvoiceNumber = fmt.Sprintf("INV-%s-%d-%06d", invoiceType.SequenceCode(), now.Year(), number)

	token, err := security.NewAccessToken(security.DefaultAccessTokenBytes)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to mint invoice access token")
	}
	invoice.AccessToken = token
	invoice.PaymentStatus = enums.InvoicePaymentStatusUnpaid
	invoice.IssuedAt = now

	if err := repo.Create(ctx, invoice); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create invoice")
	}

	return s.publisher.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventInvoiceIssued,
		AggregateType: enums.AggregateInvoice,
		AggregateID:   invoice.ID.String(),
		Data: payloads.InvoiceIssuedEvent{
			InvoiceID:     invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			GroupNumber:   invoice.GroupNumber,
			Type:          invoice.Type,
			TotalAmount:   invoice.TotalAmount,
		},
	})
}

// snapshot freezes the monetary fields and the covered order ids at issue
// time. Customer invoices cover the whole group; vendor invoices cover the
// triggering order.
func (s *service) snapshot(ctx context.Context, repo Repository, order *models.Order, invoiceType enums.InvoiceType) (*models.Invoice, error) {
	invoice := &models.Invoice{
		GroupNumber: order.GroupNumber,
		Type:        invoiceType,
		Currency:    order.Currency,
	}

	if invoiceType == enums.InvoiceTypeVendorToAdmin {
		invoice.OrderID = &order.ID
		invoice.OrderIDs = dbtypes.UUIDArray{order.ID}
		invoice.SubtotalBase = order.SubtotalBase
		invoice.ShippingTotal = order.ShippingTotal
		invoice.PackingTotal = order.PackingTotal
		invoice.VATAmount = order.VATAmount
		invoice.CommissionAmount = order.CommissionAmount
		invoice.TotalAmount = order.TotalAmount
		return invoice, nil
	}

	orders, err := repo.GroupOrders(ctx, order.GroupNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load group orders")
	}
	if len(orders) == 0 {
		orders = []models.Order{*order}
	}

	covered := make(dbtypes.UUIDArray, 0, len(orders))
	subtotal, shipping, packing := decimal.Zero, decimal.Zero, decimal.Zero
	vat, commission, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, sibling := range orders {
		covered = append(covered, sibling.ID)
		subtotal = subtotal.Add(sibling.SubtotalBase)
		shipping = shipping.Add(sibling.ShippingTotal)
		packing = packing.Add(sibling.PackingTotal)
		vat = vat.Add(sibling.VATAmount)
		commission = commission.Add(sibling.CommissionAmount)
		total = total.Add(sibling.TotalAmount)
	}
	invoice.OrderIDs = covered
	invoice.SubtotalBase = subtotal
	invoice.ShippingTotal = shipping
	invoice.PackingTotal = packing
	invoice.VATAmount = vat
	invoice.CommissionAmount = commission
	invoice.TotalAmount = total
	return invoice, nil
}

func (s *service) markPaid(ctx context.Context, tx *gorm.DB, repo Repository, groupNumber string, invoiceType enums.InvoiceType) error {
	invoice, err := repo.FindByGroupAndType(ctx, groupNumber, invoiceType)
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load invoice")
	}

	now := time.Now().UTC()
	flipped, err := repo.MarkPaid(ctx, invoice.ID, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to mark invoice paid")
	}
	if !flipped {
		return nil
	}

	return s.publisher.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventInvoicePaid,
		AggregateType: enums.AggregateInvoice,
		AggregateID:   invoice.ID.String(),
		Data: payloads.InvoicePaidEvent{
			InvoiceID:     invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			PaidAt:        now,
		},
	})
}

func (s *service) GetByAccessToken(ctx context.Context, token string) (*models.Invoice, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	invoice, err := s.repo.FindByAccessToken(ctx, token)
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load invoice")
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, scope ListScope, params pagination.Params, filters ListFilters) (*InvoiceList, error) {
	var (
		invoices []models.Invoice
		next     string
		err      error
	)
	switch scope.Role {
	case enums.RoleAdmin:
		invoices, next, err = s.repo.ListAll(ctx, params, filters)
	case enums.RoleBuyer:
		invoices, next, err = s.repo.ListForBuyer(ctx, scope.UserID, params, filters)
	case enums.RoleVendor:
		invoices, next, err = s.repo.ListForVendor(ctx, scope.UserID, params, filters)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list invoices")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list invoices")
	}
	return &InvoiceList{Invoices: invoices, NextCursor: next}, nil
}
