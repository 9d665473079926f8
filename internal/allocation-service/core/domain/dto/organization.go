package dto

type OrganizationCreateDto struct {
	Name            *string  `json:"name"`
	StorageCapacity *float64 `json:"storage_capacity"`
	VehicleCapacity *float64 `json:"vehicle_capacity"`
	FoodPreferences []string `json:"food_preferences"`
	PriorityLevel   *int     `json:"priority_level"`
	Address         *string  `json:"address"`
}

type OrganizationResponseDto struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	StorageCapacity float64  `json:"storage_capacity"`
	VehicleCapacity float64  `json:"vehicle_capacity"`
	FoodPreferences []string `json:"food_preferences"`
	PriorityLevel   int      `json:"priority_level"`
	Address         string   `json:"address"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	IsVerified      bool     `json:"is_verified"`
}
