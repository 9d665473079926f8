package solver

import (
	"math"
	"testing"
	"time"

	"foodbridge/internal/allocation-service/core/domain/dto"
)

func TestValidPairsFiltersPreferencesAndSmallLots(t *testing.T) {
	in := dto.SolverInput{
		Organizations: []dto.SolverOrganization{
			{ID: 1, FoodPreferences: []string{"produce"}},
			{ID: 2}, // no restriction
		},
		Lots: []dto.SolverLot{
			{ID: 10, Category: "produce", RemainingQuantity: 20},
			{ID: 11, Category: "dairy", RemainingQuantity: 20},
			{ID: 12, Category: "produce", RemainingQuantity: MinAllocation - 1},
		},
	}

	pairs := validPairs(in)

	got := make(map[[2]int64]bool)
	for _, p := range pairs {
		got[[2]int64{in.Organizations[p.orgIdx].ID, in.Lots[p.lotIdx].ID}] = true
	}

	want := map[[2]int64]bool{
		{1, 10}: true,
		{2, 10}: true,
		{2, 11}: true,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pairs, want %d: %v", len(got), len(want), got)
	}
	for k := range want {
		if !got[k] {
			t.Errorf("missing pair org=%d lot=%d", k[0], k[1])
		}
	}
}

func TestBenefitScoreContinuityMultiplier(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	org := dto.SolverOrganization{ID: 1, Latitude: 40.0, Longitude: -73.9, PriorityLevel: 3}
	lot := dto.SolverLot{ID: 7, Latitude: 40.1, Longitude: -74.0, ExpirationTime: now.Add(48 * time.Hour).Format(time.RFC3339)}

	base := benefitScore(org, lot, nil, now)
	cont := benefitScore(org, lot, map[pairKey]bool{{orgID: 1, lotID: 7}: true}, now)

	if math.Abs(cont-base*continuityFactor) > 1e-9 {
		t.Errorf("continuity score = %v, want %v", cont, base*continuityFactor)
	}
}

func TestBenefitScorePrefersCloserLots(t *testing.T) {
	now := time.Now().UTC()
	exp := now.Add(24 * time.Hour).Format(time.RFC3339)
	org := dto.SolverOrganization{ID: 1, Latitude: 40.0, Longitude: -73.9, PriorityLevel: 1}
	near := dto.SolverLot{ID: 2, Latitude: 40.01, Longitude: -73.91, ExpirationTime: exp}
	far := dto.SolverLot{ID: 3, Latitude: 41.5, Longitude: -72.0, ExpirationTime: exp}

	if benefitScore(org, near, nil, now) <= benefitScore(org, far, nil, now) {
		t.Error("a nearby lot should outscore a distant one, all else equal")
	}
}

func TestBenefitScorePrefersUrgentLots(t *testing.T) {
	now := time.Now().UTC()
	org := dto.SolverOrganization{ID: 1, Latitude: 40.0, Longitude: -73.9, PriorityLevel: 1}
	soon := dto.SolverLot{ID: 2, Latitude: 40.0, Longitude: -73.9, ExpirationTime: now.Add(6 * time.Hour).Format(time.RFC3339)}
	later := dto.SolverLot{ID: 3, Latitude: 40.0, Longitude: -73.9, ExpirationTime: now.Add(10 * 24 * time.Hour).Format(time.RFC3339)}

	if benefitScore(org, soon, nil, now) <= benefitScore(org, later, nil, now) {
		t.Error("a lot expiring sooner should outscore one expiring later")
	}
}

func TestDaysUntilExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if d := daysUntilExpiry(now.Add(48*time.Hour).Format(time.RFC3339), now); math.Abs(d-2) > 1e-9 {
		t.Errorf("48h out = %v days, want 2", d)
	}
	if d := daysUntilExpiry(now.Add(-time.Hour).Format(time.RFC3339), now); d != 0 {
		t.Errorf("expired lot = %v days, want 0", d)
	}
	if d := daysUntilExpiry("not-a-timestamp", now); d != 1 {
		t.Errorf("unparseable timestamp = %v days, want the 1 day default", d)
	}
}

func TestRound2(t *testing.T) {
	if got := round2(10.006); got != 10.01 {
		t.Errorf("round2(10.006) = %v, want 10.01", got)
	}
	if got := round2(3.33333); got != 3.33 {
		t.Errorf("round2(3.33333) = %v, want 3.33", got)
	}
}
