package solver

import (
	"math"
	"time"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/geo"
)

const (
	// MinAllocation is the smallest quantity worth dispatching to an
	// organization; lots below it are skipped, selected pairs must carry at
	// least it.
	MinAllocation = 5.0

	// MaxSources bounds how many distinct lots one organization can draw
	// from in a single pass.
	MaxSources = 5

	// materiality: solution amounts at or below this are noise, not
	// allocations.
	materiality = 0.1
)

// Benefit weights are a policy choice, not solver-derived.
const (
	distanceWeight   = 20.0
	expiryWeight     = 15.0
	priorityWeight   = 5.0
	baseBenefit      = 10.0
	continuityFactor = 1.5
)

type pair struct {
	orgIdx int
	lotIdx int
}

// validPairs filters (org, lot) combinations: a lot must fit the
// organization's preference set (empty set = no restriction) and hold at
// least MinAllocation units.
func validPairs(in dto.SolverInput) []pair {
	var pairs []pair
	for oi, org := range in.Organizations {
		for li, lot := range in.Lots {
			if len(org.FoodPreferences) > 0 && !contains(org.FoodPreferences, lot.Category) {
				continue
			}
			if lot.RemainingQuantity < MinAllocation {
				continue
			}
			pairs = append(pairs, pair{orgIdx: oi, lotIdx: li})
		}
	}
	return pairs
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

type pairKey struct {
	orgID int64
	lotID int64
}

func previousPairs(prev []dto.SolverPreviousAllocation) map[pairKey]bool {
	m := make(map[pairKey]bool, len(prev))
	for _, p := range prev {
		m[pairKey{orgID: p.OrganizationID, lotID: p.LotID}] = true
	}
	return m
}

// benefitScore combines proximity, urgency, priority and continuity into one
// objective coefficient.
func benefitScore(org dto.SolverOrganization, lot dto.SolverLot, prev map[pairKey]bool, now time.Time) float64 {
	distance := geo.HaversineKm(org.Latitude, org.Longitude, lot.Latitude, lot.Longitude)
	distanceScore := 1 / (1 + distance)

	days := daysUntilExpiry(lot.ExpirationTime, now)
	expiryScore := 1 / (1 + math.Max(0.1, days))

	multiplier := 1.0
	if prev[pairKey{orgID: org.ID, lotID: lot.ID}] {
		multiplier = continuityFactor
	}

	return (distanceScore*distanceWeight +
		expiryScore*expiryWeight +
		float64(org.PriorityLevel)*priorityWeight +
		baseBenefit) * multiplier
}

// daysUntilExpiry defaults to one day when the timestamp does not parse.
func daysUntilExpiry(expirationTime string, now time.Time) float64 {
	t, err := time.Parse(time.RFC3339, expirationTime)
	if err != nil {
		return 1
	}
	return math.Max(0, t.Sub(now).Hours()/24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
