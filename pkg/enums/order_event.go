package enums

import "fmt"

// OrderEvent is an external signal requesting a lifecycle transition.
type OrderEvent string

const (
	// OrderEventConfirmed is the store acknowledging the order and starting
	// preparation.
	OrderEventConfirmed OrderEvent = "confirmed"
	// OrderEventCourierAssigned marks the courier picking up the order and
	// beginning the route.
	OrderEventCourierAssigned OrderEvent = "courier_assigned"
)

var validOrderEvents = []OrderEvent{
	OrderEventConfirmed,
	OrderEventCourierAssigned,
}

func (e OrderEvent) String() string {
	return string(e)
}

func (e OrderEvent) IsValid() bool {
	for _, candidate := range validOrderEvents {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOrderEvent converts raw input into an OrderEvent.
func ParseOrderEvent(value string) (OrderEvent, error) {
	for _, candidate := range validOrderEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order event %q", value)
}
