package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// Product is the minimal catalog row the engine needs: eligibility state and
// the per-unit charges snapshotted into order lines at conversion.
type Product struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID        *uuid.UUID          `gorm:"column:vendor_id;type:uuid"`
	Name            string              `gorm:"column:name;not null"`
	Category        string              `gorm:"column:category;type:text;not null"`
	Status          enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'unpublished'"`
	Approved        bool                `gorm:"column:approved;not null;default:false"`
	UnitBasePrice   decimal.Decimal     `gorm:"column:unit_base_price;type:numeric(12,2);not null"`
	UnitSellPrice   decimal.Decimal     `gorm:"column:unit_sell_price;type:numeric(12,2);not null"`
	UnitShippingFee decimal.Decimal     `gorm:"column:unit_shipping_fee;type:numeric(12,2);not null;default:0"`
	UnitPackingFee  decimal.Decimal     `gorm:"column:unit_packing_fee;type:numeric(12,2);not null;default:0"`
	Currency        enums.Currency      `gorm:"column:currency;type:text;not null;default:'AED'"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPurchasable reports whether the product can appear in a conversion.
func (p Product) IsPurchasable() bool {
	return p.Status == enums.ProductStatusPublished && p.Approved
}
