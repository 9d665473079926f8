package dto

import "time"

type DonationCreateDto struct {
	FoodType       *string    `json:"food_type"`
	Category       *string    `json:"food_category"`
	Quantity       *float64   `json:"quantity"`
	ExpirationTime *time.Time `json:"expiration_time"`
	PickupAddress  *string    `json:"pickup_address"`
}

// DonationPatch is a typed partial update: nil means "leave unchanged".
type DonationPatch struct {
	FoodType       *string    `json:"food_type"`
	Category       *string    `json:"food_category"`
	Quantity       *float64   `json:"quantity"`
	ExpirationTime *time.Time `json:"expiration_time"`
	PickupAddress  *string    `json:"pickup_address"`
}

func (p DonationPatch) Empty() bool {
	return p.FoodType == nil && p.Category == nil && p.Quantity == nil &&
		p.ExpirationTime == nil && p.PickupAddress == nil
}

type DonationResponseDto struct {
	ID                int64     `json:"id"`
	DonorID           int64     `json:"donor_id"`
	FoodType          string    `json:"food_type"`
	Category          string    `json:"food_category"`
	RemainingQuantity float64   `json:"remaining_quantity"`
	ExpirationTime    time.Time `json:"expiration_time"`
	PickupAddress     string    `json:"pickup_address"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	Status            string    `json:"status"`
}
