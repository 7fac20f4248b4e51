package payouts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/db"
	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

// ListFilters narrow the paginated payout listing.
type ListFilters struct {
	UserID *uuid.UUID
	Status *enums.PayoutStatus
}

// Repository is the persistence surface for payout requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, payout *models.PayoutRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error)
	Update(ctx context.Context, payoutID uuid.UUID, updates map[string]any) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.PayoutRequest, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed payout repository.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payout *models.PayoutRequest) error {
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) Update(ctx context.Context, payoutID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("id = ?", payoutID).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.PayoutRequest, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	buffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).Model(&models.PayoutRequest{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var payouts []models.PayoutRequest
	err = query.
		Order("created_at DESC, id DESC").
		Limit(buffer).
		Find(&payouts).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(payouts) > pageSize {
		payouts = payouts[:pageSize]
		last := payouts[len(payouts)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return payouts, next, nil
}
