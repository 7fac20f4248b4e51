package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
	"github.com/tariqmansouri/vendora-backend/pkg/types"
)

// Order is one vendor partition of a checkout. Orders sharing a group number
// were created from the same cart and carry the same buyer and currency. Rows
// are created by conversion, mutated only through guarded transitions, and
// never hard-deleted.
type Order struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string     `gorm:"column:order_number;type:varchar(16);not null;uniqueIndex:ux_orders_order_number"`
	GroupNumber string     `gorm:"column:group_number;type:varchar(16);not null;index"`
	CartID      uuid.UUID  `gorm:"column:cart_id;type:uuid;not null;index"`
	BuyerID     uuid.UUID  `gorm:"column:buyer_id;type:uuid;not null;index"`
	VendorID    *uuid.UUID `gorm:"column:vendor_id;type:uuid;index"`

	Type           enums.OrderType       `gorm:"column:type;type:order_type;not null"`
	OrderStatus    enums.OrderStatus     `gorm:"column:order_status;type:order_status;not null;default:'order_received'"`
	PaymentStatus  *enums.PaymentStatus  `gorm:"column:payment_status;type:payment_status"`
	ShipmentStatus *enums.ShipmentStatus `gorm:"column:shipment_status;type:shipment_status"`

	SubtotalBase     decimal.Decimal `gorm:"column:subtotal_base;type:numeric(12,2);not null"`
	ShippingTotal    decimal.Decimal `gorm:"column:shipping_total;type:numeric(12,2);not null;default:0"`
	PackingTotal     decimal.Decimal `gorm:"column:packing_total;type:numeric(12,2);not null;default:0"`
	VATAmount        decimal.Decimal `gorm:"column:vat_amount;type:numeric(12,2);not null;default:0"`
	CommissionAmount decimal.Decimal `gorm:"column:admin_commission_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency         enums.Currency  `gorm:"column:currency;type:text;not null"`

	ShippingAddress *types.Address `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	TrackingNumber  *string        `gorm:"column:tracking_number;type:text;index"`

	FundsLockedAt   *time.Time `gorm:"column:funds_locked_at"`
	FundsUnlockedAt *time.Time `gorm:"column:funds_unlocked_at"`

	Items   []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPaid reports whether the payment axis reached paid.
func (o Order) IsPaid() bool {
	return o.PaymentStatus != nil && *o.PaymentStatus == enums.PaymentStatusPaid
}

// IsDelivered reports whether the fulfillment axis reached delivered.
func (o Order) IsDelivered() bool {
	return o.ShipmentStatus != nil && *o.ShipmentStatus == enums.ShipmentStatusDelivered
}

// PlatformOwned reports whether the partition has no vendor, so the platform
// account keeps the whole earning.
func (o Order) PlatformOwned() bool {
	return o.VendorID == nil
}

// OrderItem snapshots one product line at purchase time. Catalog changes must
// never retroactively alter a placed order, so every charge is copied here.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VendorID        *uuid.UUID      `gorm:"column:vendor_id;type:uuid"`
	Name            string          `gorm:"column:name;not null"`
	Quantity        int             `gorm:"column:quantity;not null"`
	UnitBasePrice   decimal.Decimal `gorm:"column:unit_base_price;type:numeric(12,2);not null"`
	UnitSellPrice   decimal.Decimal `gorm:"column:unit_sell_price;type:numeric(12,2);not null"`
	UnitShippingFee decimal.Decimal `gorm:"column:unit_shipping_fee;type:numeric(12,2);not null;default:0"`
	UnitPackingFee  decimal.Decimal `gorm:"column:unit_packing_fee;type:numeric(12,2);not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
