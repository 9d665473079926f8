package model

import "time"

const (
	CategoryCookedMeal    = "Cooked Meal"
	CategoryRawIngredient = "Raw Ingredients"
	CategoryPackagedItem  = "Packaged Items"
)

const (
	DonationAvailable          = "AVAILABLE"
	DonationPartiallyAllocated = "PARTIALLY_ALLOCATED"
	DonationAllocated          = "ALLOCATED"
	DonationUnavailable        = "UNAVAILABLE"
)

const (
	AllocationPending   = "PENDING"
	AllocationAccepted  = "ACCEPTED"
	AllocationCompleted = "COMPLETED"
)

// Donation is a lot of donated food. RemainingQuantity is the single
// canonical quantity; its unit depends on the category (servings, kg, count).
type Donation struct {
	ID                int64
	DonorID           int64
	FoodType          string
	Category          string
	RemainingQuantity float64
	ExpirationTime    time.Time
	PickupAddress     string
	Latitude          *float64
	Longitude         *float64
	Status            string
	CreatedAt         time.Time
}

// Organization is a verified receiving NGO.
type Organization struct {
	ID              int64
	UserID          int64
	Name            string
	StorageCapacity float64
	VehicleCapacity float64
	FoodPreferences []string
	PriorityLevel   int
	Address         string
	Latitude        float64
	Longitude       float64
	IsVerified      bool
	CreatedAt       time.Time
}

// Allocation ties a donation lot to an organization. REJECT is modeled as
// deletion, so the status never regresses.
type Allocation struct {
	ID                int64
	DonationID        int64
	OrganizationID    int64
	AllocatedQuantity float64
	Status            string
	CreatedAt         time.Time
}

// AllocationView is an allocation joined with its donation for listing.
type AllocationView struct {
	Allocation
	FoodType       string
	Category       string
	ExpirationTime time.Time
	PickupAddress  string
	DonorID        int64
}
