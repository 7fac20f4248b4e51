package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// CheckoutConvertedEvent signals a cart was split into an order group.
type CheckoutConvertedEvent struct {
	CartID      uuid.UUID   `json:"cart_id"`
	GroupNumber string      `json:"group_number"`
	BuyerID     uuid.UUID   `json:"buyer_id"`
	OrderIDs    []uuid.UUID `json:"order_ids"`
}

// OrderCreatedEvent is emitted once per vendor order in a conversion.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	GroupNumber string          `json:"group_number"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	VendorID    *uuid.UUID      `json:"vendor_id,omitempty"`
	Type        enums.OrderType `json:"type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    enums.Currency  `json:"currency"`
}

// OrderStateChangedEvent reports a transition on one of the three axes.
type OrderStateChangedEvent struct {
	OrderID        uuid.UUID             `json:"order_id"`
	OrderNumber    string                `json:"order_number"`
	GroupNumber    string                `json:"group_number"`
	OrderStatus    enums.OrderStatus     `json:"order_status"`
	PaymentStatus  *enums.PaymentStatus  `json:"payment_status,omitempty"`
	ShipmentStatus *enums.ShipmentStatus `json:"shipment_status,omitempty"`
	ActorType      enums.ActorType       `json:"actor_type"`
}

// FundsLockedEvent reports vendor earning and platform share entering the
// locked buckets for a paid order.
type FundsLockedEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	VendorID      uuid.UUID       `json:"vendor_id"`
	VendorAmount  decimal.Decimal `json:"vendor_amount"`
	PlatformShare decimal.Decimal `json:"platform_share"`
	Currency      enums.Currency  `json:"currency"`
}

// FundsUnlockedEvent reports locked funds becoming available on delivery.
type FundsUnlockedEvent struct {
	OrderID    uuid.UUID       `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   enums.Currency  `json:"currency"`
	UnlockedAt time.Time       `json:"unlocked_at"`
}

// FundsReversedEvent reports compensating entries zeroing an order's locks.
type FundsReversedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason,omitempty"`
}

// PayoutRequestedEvent is emitted when a vendor asks to withdraw funds.
type PayoutRequestedEvent struct {
	PayoutID uuid.UUID       `json:"payout_id"`
	UserID   uuid.UUID       `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency enums.Currency  `json:"currency"`
}

// PayoutDecidedEvent carries an admin's approve or reject decision.
type PayoutDecidedEvent struct {
	PayoutID  uuid.UUID          `json:"payout_id"`
	UserID    uuid.UUID          `json:"user_id"`
	Status    enums.PayoutStatus `json:"status"`
	DecidedBy uuid.UUID          `json:"decided_by"`
}

// PayoutPaidEvent confirms the external transfer completed.
type PayoutPaidEvent struct {
	PayoutID             uuid.UUID       `json:"payout_id"`
	UserID               uuid.UUID       `json:"user_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             enums.Currency  `json:"currency"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
}

// InvoiceIssuedEvent reports a generated invoice and its access token scope.
type InvoiceIssuedEvent struct {
	InvoiceID     uuid.UUID         `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	GroupNumber   string            `json:"group_number"`
	Type          enums.InvoiceType `json:"type"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
}

// InvoicePaidEvent marks an invoice settled.
type InvoicePaidEvent struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	PaidAt        time.Time `json:"paid_at"`
}
