package services

import (
	"context"

	"foodbridge/internal/geo"
	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/model"
	"foodbridge/internal/order-service/core/ports"
)

type RouteService struct {
	ctx        context.Context
	mylog      mylogger.Logger
	orderRepo  ports.IOrderRepo
	routeRepo  ports.IRouteRepo
	directions geo.Directions
}

func NewRouteService(ctx context.Context,
	log mylogger.Logger,
	orderRepo ports.IOrderRepo,
	routeRepo ports.IRouteRepo,
	directions geo.Directions,
) ports.IRouteService {
	return &RouteService{
		ctx:        ctx,
		mylog:      log,
		orderRepo:  orderRepo,
		routeRepo:  routeRepo,
		directions: directions,
	}
}

// ComputeRoute plans the pickup tour for an order and persists it. The
// directions provider is tried first; the greedy planner takes over when the
// provider fails or the stop count is beyond its waypoint cap.
func (rs *RouteService) ComputeRoute(ctx context.Context, orderID int64) (model.Route, error) {
	log := rs.mylog.Action("ComputeRoute")

	order, err := rs.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return model.Route{}, err
	}
	lines, err := rs.orderRepo.Items(ctx, orderID)
	if err != nil {
		return model.Route{}, err
	}

	stops := buildStops(order, lines)

	var (
		ordered  []model.RouteStop
		distance float64
		duration float64
	)

	planned := false
	if rs.directions != nil && len(stops) <= maxDirectionsStops {
		origin := geo.Location{Lat: order.DeliveryLat, Lng: order.DeliveryLng, Address: order.DeliveryAddress}
		waypoints := make([]geo.Location, 0, len(stops)-2)
		for _, s := range stops[1 : len(stops)-1] {
			waypoints = append(waypoints, geo.Location{Lat: s.Lat, Lng: s.Lng, Address: s.Address})
		}

		plan, err := rs.directions.Route(ctx, origin, origin, waypoints)
		if err != nil {
			log.Warn("directions provider failed, falling back", "order-id", orderID, "error", err.Error())
		} else if ordered, distance, duration, err = applyDirectionsPlan(stops, plan); err != nil {
			log.Warn("directions plan unusable, falling back", "order-id", orderID, "error", err.Error())
		} else {
			planned = true
		}
	}

	if !planned {
		ordered, distance = nearestNeighbourPlan(stops)
		duration = fallbackDurationMin(distance)
	}

	route := model.Route{
		OrderID:          orderID,
		TotalDistanceKm:  distance,
		TotalDurationMin: duration,
		Stops:            ordered,
	}

	id, err := rs.routeRepo.Create(ctx, route)
	if err != nil {
		log.Error("cannot persist route", err)
		return model.Route{}, err
	}
	route.ID = id
	log.Info("route computed", "order-id", orderID, "stops", len(ordered), "distance-km", distance, "duration-min", duration)
	return route, nil
}

func (rs *RouteService) LatestRoute(ctx context.Context, orderID int64) (model.Route, error) {
	return rs.routeRepo.LatestRoute(ctx, orderID)
}
