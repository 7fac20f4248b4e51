package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tariqmansouri/vendora-backend/pkg/enums"
)

// OrderStatusHistory is the append-only audit trail of an order. Entries are
// written in the same transaction as the transition they record and are never
// edited afterwards.
type OrderStatusHistory struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	OrderStatus    enums.OrderStatus     `gorm:"column:order_status;type:order_status;not null"`
	PaymentStatus  *enums.PaymentStatus  `gorm:"column:payment_status;type:payment_status"`
	ShipmentStatus *enums.ShipmentStatus `gorm:"column:shipment_status;type:shipment_status"`
	ActorType      enums.ActorType       `gorm:"column:actor_type;type:actor_type;not null"`
	ActorID        *uuid.UUID            `gorm:"column:actor_id;type:uuid"`
	Note           *string               `gorm:"column:note"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
}
