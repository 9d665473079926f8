package model

import "time"

const (
	DeliveryAssigned  = "assigned"
	DeliveryPickedUp  = "picked_up"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
)

// transitions is the delivery state machine. A delivery only ever moves
// forward, one step at a time.
var transitions = map[string]string{
	DeliveryAssigned:  DeliveryPickedUp,
	DeliveryPickedUp:  DeliveryInTransit,
	DeliveryInTransit: DeliveryDelivered,
}

func ValidStatus(s string) bool {
	switch s {
	case DeliveryAssigned, DeliveryPickedUp, DeliveryInTransit, DeliveryDelivered:
		return true
	}
	return false
}

func CanTransition(from, to string) bool {
	return transitions[from] == to
}

type Delivery struct {
	ID           int64
	OrderID      int64
	CourierID    int64
	Status       string
	PickupTime   *time.Time
	DeliveryTime *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CourierLocation struct {
	CourierID  int64
	Lat        float64
	Lng        float64
	RecordedAt time.Time
}

// CourierOrder is a delivery joined with its order for courier-facing lists.
type CourierOrder struct {
	Delivery
	DeliveryAddress string
	DeliveryFee     float64
	TotalAmount     float64
	OrderStatus     string
}
