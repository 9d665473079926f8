package dto

import "time"

type AllocationActionDto struct {
	Action *string `json:"action"` // ACCEPT or REJECT
}

type ManualAllocationDto struct {
	DonationID     *int64   `json:"donation_id"`
	OrganizationID *int64   `json:"organization_id"`
	Quantity       *float64 `json:"quantity"`
}

type AllocationResponseDto struct {
	ID                int64     `json:"id"`
	DonationID        int64     `json:"donation_id"`
	OrganizationID    int64     `json:"organization_id"`
	AllocatedQuantity float64   `json:"allocated_quantity"`
	Status            string    `json:"status"`
	FoodType          string    `json:"food_type,omitempty"`
	Category          string    `json:"food_category,omitempty"`
	ExpirationTime    time.Time `json:"expiration_time,omitzero"`
	PickupAddress     string    `json:"pickup_address,omitempty"`
}

type SolveStatsDto struct {
	TotalOrganizations int `json:"total_organizations"`
	TotalDonations     int `json:"total_donations"`
	TotalAllocations   int `json:"total_allocations"`
}

type SolveResponseDto struct {
	Allocations []AllocationResponseDto `json:"allocations"`
	Statistics  SolveStatsDto           `json:"statistics"`
}
