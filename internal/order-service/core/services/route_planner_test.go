package services

import (
	"math"
	"testing"

	"foodbridge/internal/geo"
	"foodbridge/internal/order-service/core/domain/model"
)

func testStops() []model.RouteStop {
	order := model.Order{
		DeliveryAddress: "1 Depot St",
		DeliveryLat:     40.0,
		DeliveryLng:     -73.9,
	}
	lines := []model.CartLine{
		{DonationID: 1, FoodType: "Bread", PickupAddress: "A", PickupLat: 40.5, PickupLng: -73.9},
		{DonationID: 2, FoodType: "Milk", PickupAddress: "B", PickupLat: 40.1, PickupLng: -73.9},
		{DonationID: 3, FoodType: "Apples", PickupAddress: "C", PickupLat: 40.3, PickupLng: -73.9},
	}
	return buildStops(order, lines)
}

func TestBuildStopsDedupesPickupAddresses(t *testing.T) {
	order := model.Order{DeliveryAddress: "1 Depot St", DeliveryLat: 40.0, DeliveryLng: -73.9}
	lines := []model.CartLine{
		{DonationID: 1, FoodType: "Bread", PickupAddress: "Shared Bakery"},
		{DonationID: 2, FoodType: "Rolls", PickupAddress: "Shared Bakery"},
		{DonationID: 3, FoodType: "Milk", PickupAddress: "Dairy Farm"},
	}

	stops := buildStops(order, lines)

	// delivery + 2 distinct pickups + delivery
	if len(stops) != 4 {
		t.Fatalf("got %d stops, want 4", len(stops))
	}
	if stops[0].Type != model.StopDelivery || stops[len(stops)-1].Type != model.StopDelivery {
		t.Error("route must start and end at the delivery address")
	}
	if stops[1].Description != "Pick up Bread" {
		t.Errorf("first pickup description = %q", stops[1].Description)
	}
}

func TestNearestNeighbourVisitsEveryPickupOnce(t *testing.T) {
	stops := testStops()

	ordered, total := nearestNeighbourPlan(stops)

	if len(ordered) != len(stops) {
		t.Fatalf("got %d stops, want %d", len(ordered), len(stops))
	}
	if ordered[0].Type != model.StopDelivery || ordered[len(ordered)-1].Type != model.StopDelivery {
		t.Fatal("plan must start and end at the delivery stop")
	}

	seen := make(map[string]int)
	for _, s := range ordered[1 : len(ordered)-1] {
		seen[s.Address]++
	}
	for _, addr := range []string{"A", "B", "C"} {
		if seen[addr] != 1 {
			t.Errorf("pickup %q visited %d times, want 1", addr, seen[addr])
		}
	}

	// Greedy from the delivery point: nearest is B, then C, then A.
	wantOrder := []string{"B", "C", "A"}
	for i, addr := range wantOrder {
		if ordered[i+1].Address != addr {
			t.Errorf("stop %d = %q, want %q", i+1, ordered[i+1].Address, addr)
		}
	}

	// Total is the sum of the legs actually travelled.
	wantTotal := 0.0
	for i := 1; i < len(ordered); i++ {
		wantTotal += geo.HaversineKm(ordered[i-1].Lat, ordered[i-1].Lng, ordered[i].Lat, ordered[i].Lng)
	}
	if math.Abs(total-wantTotal) > 1e-9 {
		t.Errorf("total = %v, want %v", total, wantTotal)
	}

	for i, s := range ordered {
		if s.Seq != i {
			t.Errorf("stop %d has seq %d", i, s.Seq)
		}
	}
}

func TestFallbackDuration(t *testing.T) {
	if got := fallbackDurationMin(30); got != 60 {
		t.Errorf("30 km at courier speed = %v min, want 60", got)
	}
	if got := fallbackDurationMin(0); got != 0 {
		t.Errorf("0 km = %v min, want 0", got)
	}
}

func TestApplyDirectionsPlanReorders(t *testing.T) {
	stops := testStops()
	plan := geo.RoutePlan{
		WaypointOrder: []int{2, 0, 1},
		Legs: []geo.Leg{
			{DistanceKm: 3, DurationMin: 10},
			{DistanceKm: 4, DurationMin: 12},
			{DistanceKm: 5, DurationMin: 15},
			{DistanceKm: 2, DurationMin: 8},
		},
	}

	ordered, distance, duration, err := applyDirectionsPlan(stops, plan)
	if err != nil {
		t.Fatal(err)
	}

	wantOrder := []string{"1 Depot St", "C", "A", "B", "1 Depot St"}
	for i, addr := range wantOrder {
		if ordered[i].Address != addr {
			t.Errorf("stop %d = %q, want %q", i, ordered[i].Address, addr)
		}
	}
	if distance != 14 {
		t.Errorf("distance = %v, want 14", distance)
	}
	if duration != 45 {
		t.Errorf("duration = %v, want 45", duration)
	}
}

func TestApplyDirectionsPlanRejectsBadWaypoints(t *testing.T) {
	stops := testStops()

	if _, _, _, err := applyDirectionsPlan(stops, geo.RoutePlan{WaypointOrder: []int{0}}); err == nil {
		t.Error("short waypoint order must be rejected")
	}
	if _, _, _, err := applyDirectionsPlan(stops, geo.RoutePlan{WaypointOrder: []int{0, 1, 7}}); err == nil {
		t.Error("out of range waypoint index must be rejected")
	}
}
