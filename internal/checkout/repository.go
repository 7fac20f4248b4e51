package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/db"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// Repository loads carts for conversion and finalizes them once their orders
// are written. The engine never edits cart lines; the storefront owns those.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// FindCartForBuyer loads the cart with its items, scoped to the owning
	// buyer so one account can never convert another's cart.
	FindCartForBuyer(ctx context.Context, cartID, buyerID uuid.UUID) (*models.CartRecord, error)

	// FindCartForBuyerForUpdate does the same under a row lock. Concurrent
	// conversions of the same cart serialize here; the loser re-reads a
	// converted cart and returns the existing orders.
	FindCartForBuyerForUpdate(ctx context.Context, cartID, buyerID uuid.UUID) (*models.CartRecord, error)

	// FindCartByID loads a cart without buyer scoping. Only trusted callers
	// (the payment webhook resolving a cart reference) use this.
	FindCartByID(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error)

	// MarkConverted flips the cart to converted and stamps the order group
	// it produced. Only an active cart can flip.
	MarkConverted(ctx context.Context, cartID uuid.UUID, groupNumber string, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCartForBuyer(ctx context.Context, cartID, buyerID uuid.UUID) (*models.CartRecord, error) {
	var cart models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND buyer_id = ?", cartID, buyerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindCartForBuyerForUpdate(ctx context.Context, cartID, buyerID uuid.UUID) (*models.CartRecord, error) {
	var cart models.CartRecord
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Preload("Items").
		Where("id = ? AND buyer_id = ?", cartID, buyerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindCartByID(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error) {
	var cart models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", cartID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) MarkConverted(ctx context.Context, cartID uuid.UUID, groupNumber string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ? AND status = ?", cartID, enums.CartStatusActive).
		Updates(map[string]interface{}{
			"status":       enums.CartStatusConverted,
			"group_number": groupNumber,
			"converted_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
