package services

import (
	"fmt"

	"foodbridge/internal/geo"
	"foodbridge/internal/order-service/core/domain/model"
)

const (
	// Average courier speed used when no directions provider is available.
	avgSpeedKmh = 30.0

	// Directions providers cap the number of waypoints per request.
	maxDirectionsStops = 25
)

// buildStops lays out the raw stop list: delivery first, one pickup per
// distinct address, delivery again at the end.
func buildStops(order model.Order, lines []model.CartLine) []model.RouteStop {
	deliveryStop := model.RouteStop{
		Type:    model.StopDelivery,
		Lat:     order.DeliveryLat,
		Lng:     order.DeliveryLng,
		Address: order.DeliveryAddress,
	}

	stops := []model.RouteStop{deliveryStop}
	seen := make(map[string]bool)
	for _, line := range lines {
		if seen[line.PickupAddress] {
			continue
		}
		seen[line.PickupAddress] = true
		donationID := line.DonationID
		stops = append(stops, model.RouteStop{
			Type:        model.StopPickup,
			Lat:         line.PickupLat,
			Lng:         line.PickupLng,
			Address:     line.PickupAddress,
			DonationID:  &donationID,
			Description: fmt.Sprintf("Pick up %s", line.FoodType),
		})
	}
	stops = append(stops, deliveryStop)
	return stops
}

// nearestNeighbourPlan orders the pickups greedily from the delivery point
// and returns the sequenced stops with the total straight-line distance.
// It never fails, which makes it the fallback for the directions provider.
func nearestNeighbourPlan(stops []model.RouteStop) ([]model.RouteStop, float64) {
	if len(stops) < 2 {
		return sequence(stops), 0
	}

	pickups := stops[1 : len(stops)-1]
	visited := make([]bool, len(pickups))
	ordered := make([]model.RouteStop, 0, len(stops))
	ordered = append(ordered, stops[0])

	total := 0.0
	cur := stops[0]
	for range pickups {
		best := -1
		bestDist := 0.0
		for i, p := range pickups {
			if visited[i] {
				continue
			}
			d := geo.HaversineKm(cur.Lat, cur.Lng, p.Lat, p.Lng)
			if best == -1 || d < bestDist {
				best, bestDist = i, d
			}
		}
		visited[best] = true
		total += bestDist
		cur = pickups[best]
		ordered = append(ordered, cur)
	}

	last := stops[len(stops)-1]
	total += geo.HaversineKm(cur.Lat, cur.Lng, last.Lat, last.Lng)
	ordered = append(ordered, last)

	return sequence(ordered), total
}

// fallbackDurationMin converts a distance into minutes at the assumed
// courier speed.
func fallbackDurationMin(distanceKm float64) float64 {
	return distanceKm / avgSpeedKmh * 60
}

// applyDirectionsPlan reorders the pickups the way the directions provider
// says and sums its legs.
func applyDirectionsPlan(stops []model.RouteStop, plan geo.RoutePlan) ([]model.RouteStop, float64, float64, error) {
	pickups := stops[1 : len(stops)-1]
	if len(plan.WaypointOrder) != len(pickups) {
		return nil, 0, 0, fmt.Errorf("directions returned %d waypoints, want %d", len(plan.WaypointOrder), len(pickups))
	}

	ordered := make([]model.RouteStop, 0, len(stops))
	ordered = append(ordered, stops[0])
	for _, idx := range plan.WaypointOrder {
		if idx < 0 || idx >= len(pickups) {
			return nil, 0, 0, fmt.Errorf("directions waypoint index %d out of range", idx)
		}
		ordered = append(ordered, pickups[idx])
	}
	ordered = append(ordered, stops[len(stops)-1])

	var distance, duration float64
	for _, leg := range plan.Legs {
		distance += leg.DistanceKm
		duration += leg.DurationMin
	}
	return sequence(ordered), distance, duration, nil
}

func sequence(stops []model.RouteStop) []model.RouteStop {
	for i := range stops {
		stops[i].Seq = i
	}
	return stops
}
