package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
)

// Repository loads the cart rows the evaluator inspects.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a compliance repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindCartForBuyer loads the buyer's cart with its items.
func (r *Repository) FindCartForBuyer(ctx context.Context, cartID, buyerID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND buyer_id = ?", cartID, buyerID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
