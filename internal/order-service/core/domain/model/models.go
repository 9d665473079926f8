package model

import "time"

const (
	CartPending = "pending"
	CartOrdered = "ordered"
)

const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
)

const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentPaid      = "paid"
	PaymentFailed    = "failed"
)

const (
	StopDelivery = "delivery"
	StopPickup   = "pickup"
)

// Donation lot statuses as the order side reads them.
const (
	LotAvailable   = "AVAILABLE"
	LotUnavailable = "UNAVAILABLE"
)

// CartItem is one lot reservation inside a basket.
type CartItem struct {
	DonationID int64   `json:"donation_id"`
	Quantity   float64 `json:"quantity"`
	Notes      string  `json:"notes,omitempty"`
}

// Basket is the ephemeral pre-checkout cart. It lives in memory only and
// expires on its own.
type Basket struct {
	UserID    int64      `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Cart is the persisted checkout record. Quantities here are already taken
// out of the donation lots.
type Cart struct {
	ID              int64
	UserID          int64
	DeliveryAddress string
	DeliveryLat     float64
	DeliveryLng     float64
	DistanceKm      float64
	DeliveryFee     float64
	TotalAmount     float64
	Status          string
	CreatedAt       time.Time
}

// CartLine is a persisted cart item with the pickup coordinates captured at
// checkout time.
type CartLine struct {
	ID            int64
	CartID        int64
	DonationID    int64
	Quantity      float64
	FoodType      string
	PickupAddress string
	PickupLat     float64
	PickupLng     float64
	Notes         string
}

type Order struct {
	ID              int64
	CartID          int64
	UserID          int64
	DeliveryAddress string
	DeliveryLat     float64
	DeliveryLng     float64
	DeliveryFee     float64
	TotalAmount     float64
	Status          string
	PaymentStatus   string
	CreatedAt       time.Time
}

// RouteStop is one point of a persisted route, in visiting order.
type RouteStop struct {
	Seq         int     `json:"seq"`
	Type        string  `json:"type"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Address     string  `json:"address"`
	DonationID  *int64  `json:"donation_id,omitempty"`
	Description string  `json:"description,omitempty"`
}

type Route struct {
	ID               int64       `json:"id"`
	OrderID          int64       `json:"order_id"`
	TotalDistanceKm  float64     `json:"total_distance_km"`
	TotalDurationMin float64     `json:"total_duration_min"`
	Stops            []RouteStop `json:"stops"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Lot is the read-only view of a donation as the order side sees it.
type Lot struct {
	ID                int64
	FoodType          string
	RemainingQuantity float64
	Status            string
	ExpirationTime    time.Time
	PickupAddress     string
	Latitude          *float64
	Longitude         *float64
}
