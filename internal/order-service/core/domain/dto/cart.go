package dto

import "foodbridge/internal/order-service/core/domain/model"

type CartItemDto struct {
	DonationID *int64   `json:"donation_id"`
	Quantity   *float64 `json:"quantity"`
	Notes      *string  `json:"notes"`
}

type CartItemUpdateDto struct {
	Quantity *float64 `json:"quantity"`
}

type BasketResponseDto struct {
	UserID int64            `json:"user_id"`
	Items  []model.CartItem `json:"items"`
	Total  float64          `json:"total_quantity"`
}

type CheckoutRequestDto struct {
	DeliveryAddress *string `json:"delivery_address"`
}

type CheckoutResponseDto struct {
	CartID      int64   `json:"cart_id"`
	DistanceKm  float64 `json:"distance_km"`
	DeliveryFee float64 `json:"delivery_fee"`
	TotalAmount float64 `json:"total_amount"`
}
