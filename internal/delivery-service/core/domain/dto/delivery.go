package dto

import "time"

type AssignDto struct {
	CourierID *int64 `json:"courier_id"`
}

type DeliveryStatusDto struct {
	Status *string  `json:"status"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

type DeliveryResponseDto struct {
	ID           int64      `json:"id"`
	OrderID      int64      `json:"order_id"`
	CourierID    int64      `json:"courier_id"`
	Status       string     `json:"status"`
	PickupTime   *time.Time `json:"pickup_time,omitempty"`
	DeliveryTime *time.Time `json:"delivery_time,omitempty"`
}

type CourierOrderDto struct {
	OrderID         int64      `json:"order_id"`
	Status          string     `json:"status"`
	DeliveryAddress string     `json:"delivery_address"`
	DeliveryFee     float64    `json:"delivery_fee"`
	TotalAmount     float64    `json:"total_amount"`
	OrderStatus     string     `json:"order_status"`
	PickupTime      *time.Time `json:"pickup_time,omitempty"`
	DeliveryTime    *time.Time `json:"delivery_time,omitempty"`
}
