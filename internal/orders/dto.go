package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/pkg/db/models"
	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// Actor identifies who drives a transition: an authenticated user, the payment
// gateway, the carrier webhook, or an internal job.
type Actor struct {
	Type enums.ActorType
	ID   *uuid.UUID
	Role string
}

// ApplyInput is the single mutation path into the state machine. Every caller
// (admin command, payment webhook, tracking webhook) goes through it.
type ApplyInput struct {
	OrderID uuid.UUID
	Request TransitionRequest
	Actor   Actor
	Note    *string
}

// TrackingInput maps one carrier scan onto an order. Either the tracking
// number or the order ID locates the row.
type TrackingInput struct {
	TrackingNumber string
	OrderID        *uuid.UUID
	EventType      enums.TrackingEventType
	OccurredAt     time.Time
}

// ReadScope restricts reads to what the caller may see. Admins see
// everything; buyers and vendors only their own side of an order.
type ReadScope struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Allows reports whether the scope covers the order.
func (s ReadScope) Allows(order *models.Order) bool {
	switch s.Role {
	case enums.RoleAdmin:
		return true
	case enums.RoleBuyer:
		return order.BuyerID == s.UserID
	case enums.RoleVendor:
		return order.VendorID != nil && *order.VendorID == s.UserID
	default:
		return false
	}
}

// ListFilters narrow the paginated order listing.
type ListFilters struct {
	BuyerID        *uuid.UUID
	VendorID       *uuid.UUID
	GroupNumber    *string
	OrderStatus    *enums.OrderStatus
	PaymentStatus  *enums.PaymentStatus
	ShipmentStatus *enums.ShipmentStatus
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}
