package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/tariqmansouri/vendora-backend/pkg/db/types"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// Invoice is the immutable monetary snapshot issued for an order group. The
// (group_number, type) unique index enforces at most one invoice of each type
// per group; the access token is the capability handed to the external
// renderer.
type Invoice struct {
	ID            uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupNumber   string                     `gorm:"column:group_number;type:varchar(16);not null;uniqueIndex:ux_invoices_group_type,priority:1"`
	Type          enums.InvoiceType          `gorm:"column:type;type:invoice_type;not null;uniqueIndex:ux_invoices_group_type,priority:2"`
	OrderID       *uuid.UUID                 `gorm:"column:order_id;type:uuid"`
	OrderIDs      dbtypes.UUIDArray          `gorm:"column:order_ids;type:uuid[];not null;default:ARRAY[]::uuid[]"`
	InvoiceNumber string                     `gorm:"column:invoice_number;type:text;not null;uniqueIndex:ux_invoices_invoice_number"`
	AccessToken   string                     `gorm:"column:access_token;type:text;not null;uniqueIndex:ux_invoices_access_token"`
	PaymentStatus enums.InvoicePaymentStatus `gorm:"column:payment_status;type:invoice_payment_status;not null;default:'unpaid'"`

	SubtotalBase     decimal.Decimal `gorm:"column:subtotal_base;type:numeric(12,2);not null"`
	ShippingTotal    decimal.Decimal `gorm:"column:shipping_total;type:numeric(12,2);not null;default:0"`
	PackingTotal     decimal.Decimal `gorm:"column:packing_total;type:numeric(12,2);not null;default:0"`
	VATAmount        decimal.Decimal `gorm:"column:vat_amount;type:numeric(12,2);not null;default:0"`
	CommissionAmount decimal.Decimal `gorm:"column:commission_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency         enums.Currency  `gorm:"column:currency;type:text;not null"`

	IssuedAt  time.Time  `gorm:"column:issued_at;not null"`
	PaidAt    *time.Time `gorm:"column:paid_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// InvoiceSequence is the per-(type, year) counter row behind invoice
// numbering. Incremented under a row lock so concurrent generations cannot
// pick the same number.
type InvoiceSequence struct {
	Type       enums.InvoiceType `gorm:"column:type;type:invoice_type;primaryKey"`
	Year       int               `gorm:"column:year;primaryKey"`
	LastNumber int               `gorm:"column:last_number;not null;default:0"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
