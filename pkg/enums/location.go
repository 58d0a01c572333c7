package enums

import "fmt"

// DeliveryStatus reports whether a province currently accepts deliveries.
type DeliveryStatus string

const (
	DeliveryStatusActive   DeliveryStatus = "active"
	DeliveryStatusInactive DeliveryStatus = "inactive"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusActive,
	DeliveryStatusInactive,
}

// String implements fmt.Stringer.
func (s DeliveryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (s DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
