package dto

// Solver input/output schema. The wire shape matches the JSON contract the
// platform has always exposed, even though the solver now runs in-process.

type SolverOrganization struct {
	ID              int64    `json:"id"`
	StorageCapacity float64  `json:"storage_capacity"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	PriorityLevel   int      `json:"priority_level"`
	FoodPreferences []string `json:"food_preferences"`
}

type SolverLot struct {
	ID                int64   `json:"id"`
	RemainingQuantity float64 `json:"remaining_quantity"`
	Category          string  `json:"category"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	ExpirationTime    string  `json:"expiration_time"` // RFC 3339
}

type SolverPreviousAllocation struct {
	OrganizationID    int64   `json:"org_id"`
	LotID             int64   `json:"lot_id"`
	AllocatedQuantity float64 `json:"allocated_quantity"`
}

type SolverInput struct {
	Organizations       []SolverOrganization       `json:"organizations"`
	Lots                []SolverLot                `json:"lots"`
	PreviousAllocations []SolverPreviousAllocation `json:"previous_allocations"`
}

const (
	SolverStatusOptimal    = "optimal"
	SolverStatusInfeasible = "infeasible"
)

type SolverAllocation struct {
	OrganizationID    int64   `json:"org_id"`
	LotID             int64   `json:"lot_id"`
	AllocatedQuantity float64 `json:"allocated_quantity"`
}

type SolverOutput struct {
	Status         string             `json:"status"`
	ObjectiveValue float64            `json:"objective_value"`
	Allocations    []SolverAllocation `json:"allocations"`
}
