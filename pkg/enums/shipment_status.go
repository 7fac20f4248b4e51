package enums

import "fmt"

// ShipmentStatus tracks the fulfillment axis of an order. Orders that have not
// started fulfillment carry no value (NULL column).
type ShipmentStatus string

const (
	ShipmentStatusProcessing ShipmentStatus = "processing"
	ShipmentStatusShipped    ShipmentStatus = "shipped"
	ShipmentStatusDelivered  ShipmentStatus = "delivered"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusProcessing,
	ShipmentStatusShipped,
	ShipmentStatusDelivered,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Rank orders the axis for forward-only comparisons.
func (s ShipmentStatus) Rank() int {
	switch s {
	case ShipmentStatusProcessing:
		return 1
	case ShipmentStatusShipped:
		return 2
	case ShipmentStatusDelivered:
		return 3
	default:
		return 0
	}
}

// ParseShipmentStatus converts raw input into a ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
