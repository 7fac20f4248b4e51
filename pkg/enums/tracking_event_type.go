package enums

import "fmt"

// TrackingEventType is the carrier-side vocabulary for shipment scans.
type TrackingEventType string

const (
	TrackingEventPickedUp  TrackingEventType = "picked_up"
	TrackingEventInTransit TrackingEventType = "in_transit"
	TrackingEventDelivered TrackingEventType = "delivered"
)

var validTrackingEventTypes = []TrackingEventType{
	TrackingEventPickedUp,
	TrackingEventInTransit,
	TrackingEventDelivered,
}

// String implements fmt.Stringer.
func (t TrackingEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TrackingEventType.
func (t TrackingEventType) IsValid() bool {
	for _, candidate := range validTrackingEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ShipmentStatus maps the carrier scan onto the order's fulfillment axis.
func (t TrackingEventType) ShipmentStatus() ShipmentStatus {
	switch t {
	case TrackingEventPickedUp:
		return ShipmentStatusProcessing
	case TrackingEventInTransit:
		return ShipmentStatusShipped
	case TrackingEventDelivered:
		return ShipmentStatusDelivered
	default:
		return ""
	}
}

// ParseTrackingEventType converts raw input into a TrackingEventType.
func ParseTrackingEventType(value string) (TrackingEventType, error) {
	for _, candidate := range validTrackingEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tracking event type %q", value)
}
