package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/pagination"
)

// Repository is the persistence surface for orders, order items, and the
// append-only status history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, number string) (*models.Order, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error)
	FindByCartID(ctx context.Context, cartID uuid.UUID) ([]models.Order, error)
	ListByGroupNumber(ctx context.Context, groupNumber string) ([]models.Order, error)

	// NumberTaken reports whether a freshly generated number collides with any
	// existing order or group number.
	NumberTaken(ctx context.Context, number string) (bool, error)

	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error

	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)

	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
}
