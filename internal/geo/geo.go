package geo

import (
	"context"
	"math"
)

// Location is a resolved address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Leg is one hop of a planned route.
type Leg struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// RoutePlan is the answer of a directions service: the order in which the
// waypoints should be visited and the per-leg distance/duration.
type RoutePlan struct {
	WaypointOrder []int `json:"optimized_order"`
	Legs          []Leg `json:"legs"`
}

type Geocoder interface {
	Resolve(ctx context.Context, address string) (Location, error)
}

type Directions interface {
	Route(ctx context.Context, origin, destination Location, waypoints []Location) (RoutePlan, error)
}

const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRad(v float64) float64 {
	return v * math.Pi / 180
}
