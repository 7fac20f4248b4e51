package invoices

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/db"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

// ListFilters narrow the invoice listing.
type ListFilters struct {
	GroupNumber   *string
	Type          *enums.InvoiceType
	PaymentStatus *enums.InvoicePaymentStatus
}

// Repository manages persistence for invoices and their numbering sequences.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	FindByGroupAndType(ctx context.Context, groupNumber string, invoiceType enums.InvoiceType) (*models.Invoice, error)
	FindByAccessToken(ctx context.Context, token string) (*models.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID uuid.UUID, at time.Time) (bool, error)

	// NextNumber increments the (type, year) counter under a row lock and
	// returns the new value.
	NextNumber(ctx context.Context, invoiceType enums.InvoiceType, year int) (int, error)

	GroupOrders(ctx context.Context, groupNumber string) ([]models.Order, error)

	ListForBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Invoice, string, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Invoice, string, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Invoice, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByGroupAndType(ctx context.Context, groupNumber string, invoiceType enums.InvoiceType) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("group_number = ? AND type = ?", groupNumber, invoiceType).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByAccessToken(ctx context.Context, token string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("access_token = ?", token).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// MarkPaid flips an unpaid invoice to paid. The guarded update makes the
// second delivery of the same trigger a no-op; the bool reports whether this
// call did the flip.
func (r *repository) MarkPaid(ctx context.Context, invoiceID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ? AND payment_status = ?", invoiceID, enums.InvoicePaymentStatusUnpaid).
		Updates(map[string]any{"payment_status": enums.InvoicePaymentStatusPaid, "paid_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) NextNumber(ctx context.Context, invoiceType enums.InvoiceType, year int) (int, error) {
	var seq models.InvoiceSequence
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("type = ? AND year = ?", invoiceType, year).
		First(&seq).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.InvoiceSequence{Type: invoiceType, Year: year, LastNumber: 1}
		if createErr := r.db.WithContext(ctx).Create(&seq).Error; createErr != nil {
			if db.IsUniqueViolation(createErr, "") {
				// Lost the first-number race; the row exists now.
				return r.NextNumber(ctx, invoiceType, year)
			}
			return 0, createErr
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	next := seq.LastNumber + 1
	err = r.db.WithContext(ctx).
		Model(&models.InvoiceSequence{}).
		Where("type = ? AND year = ?", invoiceType, year).
		Update("last_number", next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) GroupOrders(ctx context.Context, groupNumber string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("group_number = ?", groupNumber).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) ListForBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Invoice, string, error) {
	groups := r.db.Model(&models.Order{}).
		Select("group_number").
		Where("buyer_id = ?", buyerID)
	query := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("type = ?", enums.InvoiceTypeAdminToCustomer).
		Where("group_number IN (?)", groups)
	return r.page(query, params, filters)
}

func (r *repository) ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Invoice, string, error) {
	groups := r.db.Model(&models.Order{}).
		Select("group_number").
		Where("vendor_id = ?", vendorID)
	query := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("type = ?", enums.InvoiceTypeVendorToAdmin).
		Where("group_number IN (?)", groups)
	return r.page(query, params, filters)
}

func (r *repository) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Invoice, string, error) {
	query := r.db.WithContext(ctx).Model(&models.Invoice{})
	return r.page(query, params, filters)
}

func (r *repository) page(query *gorm.DB, params pagination.Params, filters ListFilters) ([]models.Invoice, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	buffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	if filters.GroupNumber != nil {
		query = query.Where("group_number = ?", *filters.GroupNumber)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var invoices []models.Invoice
	err = query.
		Order("created_at DESC, id DESC").
		Limit(buffer).
		Find(&invoices).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(invoices) > pageSize {
		invoices = invoices[:pageSize]
		last := invoices[len(invoices)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return invoices, next, nil
}
