package services

import (
	"context"
	"errors"
	"testing"

	"foodbridge/internal/geo"
	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
)

type fakeOrderRepo struct {
	order model.Order
	lines []model.CartLine
}

func (f *fakeOrderRepo) CreateFromCart(ctx context.Context, cartID, userID int64, deliveryAddress string) (model.Order, error) {
	return f.order, nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id int64) (model.Order, error) {
	return f.order, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, filter dto.OrderFilterDto) ([]model.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) Items(ctx context.Context, orderID int64) ([]model.CartLine, error) {
	return f.lines, nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	return nil
}

type fakeRouteRepo struct {
	created []model.Route
	latest  model.Route
}

func (f *fakeRouteRepo) Create(ctx context.Context, route model.Route) (int64, error) {
	f.created = append(f.created, route)
	return int64(len(f.created)), nil
}

func (f *fakeRouteRepo) LatestRoute(ctx context.Context, orderID int64) (model.Route, error) {
	return f.latest, nil
}

type fakeDirections struct {
	plan  geo.RoutePlan
	err   error
	calls int
}

func (f *fakeDirections) Route(ctx context.Context, origin, destination geo.Location, waypoints []geo.Location) (geo.RoutePlan, error) {
	f.calls++
	return f.plan, f.err
}

func newRouteFixture(t *testing.T, directions geo.Directions) (*fakeOrderRepo, *fakeRouteRepo, *RouteService) {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatal(err)
	}
	orderRepo := &fakeOrderRepo{
		order: model.Order{ID: 1, DeliveryAddress: "1 Depot St", DeliveryLat: 40.0, DeliveryLng: -73.9},
		lines: []model.CartLine{
			{DonationID: 1, FoodType: "Bread", PickupAddress: "A", PickupLat: 40.5, PickupLng: -73.9},
			{DonationID: 2, FoodType: "Milk", PickupAddress: "B", PickupLat: 40.1, PickupLng: -73.9},
		},
	}
	routeRepo := &fakeRouteRepo{}
	svc := NewRouteService(context.Background(), log, orderRepo, routeRepo, directions)
	return orderRepo, routeRepo, svc.(*RouteService)
}

func TestComputeRouteUsesDirectionsPlan(t *testing.T) {
	directions := &fakeDirections{
		plan: geo.RoutePlan{
			WaypointOrder: []int{1, 0},
			Legs: []geo.Leg{
				{DistanceKm: 2, DurationMin: 6},
				{DistanceKm: 3, DurationMin: 9},
				{DistanceKm: 4, DurationMin: 12},
			},
		},
	}
	_, routeRepo, svc := newRouteFixture(t, directions)

	route, err := svc.ComputeRoute(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}

	if directions.calls != 1 {
		t.Errorf("directions called %d times, want 1", directions.calls)
	}
	if route.TotalDistanceKm != 9 || route.TotalDurationMin != 27 {
		t.Errorf("route totals = %v km / %v min, want 9/27", route.TotalDistanceKm, route.TotalDurationMin)
	}
	// Provider said visit B first.
	if route.Stops[1].Address != "B" || route.Stops[2].Address != "A" {
		t.Errorf("stop order = %q, %q", route.Stops[1].Address, route.Stops[2].Address)
	}
	if len(routeRepo.created) != 1 {
		t.Errorf("persisted %d routes, want 1", len(routeRepo.created))
	}
	if route.ID == 0 {
		t.Error("route id must come from the repo")
	}
}

func TestComputeRouteFallsBackWhenDirectionsFail(t *testing.T) {
	directions := &fakeDirections{err: myerrors.NewExternal("directions", errors.New("quota exceeded"))}
	_, routeRepo, svc := newRouteFixture(t, directions)

	route, err := svc.ComputeRoute(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(route.Stops) != 4 {
		t.Fatalf("got %d stops, want 4", len(route.Stops))
	}
	// Greedy from the delivery point visits the closer B first.
	if route.Stops[1].Address != "B" {
		t.Errorf("first pickup = %q, want the nearest", route.Stops[1].Address)
	}
	if route.TotalDistanceKm <= 0 {
		t.Error("fallback must still produce a distance")
	}
	wantDuration := fallbackDurationMin(route.TotalDistanceKm)
	if route.TotalDurationMin != wantDuration {
		t.Errorf("duration = %v, want %v", route.TotalDurationMin, wantDuration)
	}
	if len(routeRepo.created) != 1 {
		t.Errorf("persisted %d routes, want 1", len(routeRepo.created))
	}
}

func TestComputeRouteWithoutDirectionsProvider(t *testing.T) {
	_, _, svc := newRouteFixture(t, nil)

	route, err := svc.ComputeRoute(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(route.Stops) != 4 {
		t.Errorf("got %d stops, want 4", len(route.Stops))
	}
}
