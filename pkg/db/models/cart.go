package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// CartRecord is the buyer's open cart. Conversion flips it to converted, which
// is terminal; a converted cart can never be reused.
type CartRecord struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID     uuid.UUID        `gorm:"column:buyer_id;type:uuid;not null"`
	Status      enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'active'"`
	GroupNumber *string          `gorm:"column:group_number;type:varchar(16)"`
	ConvertedAt *time.Time       `gorm:"column:converted_at"`
	Items       []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem references a product and a quantity. Pricing is resolved from the
// catalog at conversion time, not stored here.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
