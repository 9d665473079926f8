package dto

import (
	"time"

	"foodbridge/internal/order-service/core/domain/model"
)

type OrderCreateDto struct {
	CartID          *int64  `json:"cart_id"`
	DeliveryAddress *string `json:"delivery_address"`
}

type PaymentStatusDto struct {
	PaymentStatus *string `json:"payment_status"`
}

type OrderItemDto struct {
	DonationID    int64   `json:"donation_id"`
	FoodType      string  `json:"food_type"`
	Quantity      float64 `json:"quantity"`
	PickupAddress string  `json:"pickup_address"`
	Notes         string  `json:"notes,omitempty"`
}

type OrderResponseDto struct {
	ID              int64          `json:"id"`
	CartID          int64          `json:"cart_id"`
	UserID          int64          `json:"user_id"`
	DeliveryAddress string         `json:"delivery_address"`
	DeliveryFee     float64        `json:"delivery_fee"`
	TotalAmount     float64        `json:"total_amount"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status"`
	CreatedAt       time.Time      `json:"created_at"`
	Items           []OrderItemDto `json:"items,omitempty"`
	Route           *model.Route   `json:"route,omitempty"`
}

type OrderFilterDto struct {
	Status        string
	PaymentStatus string
}
