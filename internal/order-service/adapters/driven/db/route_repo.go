package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"foodbridge/internal/myerrors"
	"foodbridge/internal/order-service/core/domain/model"
	"foodbridge/internal/order-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type RouteRepo struct {
	db *DB
}

func NewRouteRepo(db *DB) ports.IRouteRepo {
	return &RouteRepo{
		db: db,
	}
}

// Create persists a route and its stops. Routes are append-only: recomputing
// writes a new row and LatestRoute picks the newest.
func (rr *RouteRepo) Create(ctx context.Context, route model.Route) (int64, error) {
	tx, err := rr.db.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	q := `INSERT INTO delivery_routes (order_id, total_distance_km, total_duration_min)
		VALUES ($1, $2, $3) RETURNING id`
	var id int64
	if err := tx.QueryRow(ctx, q, route.OrderID, route.TotalDistanceKm, route.TotalDurationMin).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert route: %w", err)
	}

	stopQ := `INSERT INTO route_points (route_id, seq, stop_type, lat, lng, address, donation_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, stop := range route.Stops {
		if _, err := tx.Exec(ctx, stopQ, id, stop.Seq, stop.Type, stop.Lat, stop.Lng, stop.Address, stop.DonationID, stop.Description); err != nil {
			return 0, fmt.Errorf("failed to insert route point: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, myerrors.NewTransaction("create route", err)
	}
	return id, nil
}

func (rr *RouteRepo) LatestRoute(ctx context.Context, orderID int64) (model.Route, error) {
	q := `SELECT id, order_id, total_distance_km, total_duration_min, created_at
		FROM delivery_routes
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var route model.Route
	err := rr.db.conn.QueryRow(ctx, q, orderID).Scan(
		&route.ID,
		&route.OrderID,
		&route.TotalDistanceKm,
		&route.TotalDurationMin,
		&route.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Route{}, myerrors.NewNotFound("route for order", strconv.FormatInt(orderID, 10))
		}
		return model.Route{}, err
	}

	stopQ := `SELECT seq, stop_type, lat, lng, address, donation_id, description
		FROM route_points WHERE route_id = $1 ORDER BY seq`
	rows, err := rr.db.conn.Query(ctx, stopQ, route.ID)
	if err != nil {
		return model.Route{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var s model.RouteStop
		if err := rows.Scan(&s.Seq, &s.Type, &s.Lat, &s.Lng, &s.Address, &s.DonationID, &s.Description); err != nil {
			return model.Route{}, err
		}
		route.Stops = append(route.Stops, s)
	}
	return route, rows.Err()
}
