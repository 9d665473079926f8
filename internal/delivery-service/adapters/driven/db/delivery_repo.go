package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodbridge/internal/delivery-service/core/domain/model"
	"foodbridge/internal/delivery-service/core/ports"
	"foodbridge/internal/myerrors"

	"github.com/jackc/pgx/v5"
)

// Location samples closer together than this only refresh the current
// position, they do not grow the history.
const locationDedupWindow = 30 * time.Second

type DeliveryRepo struct {
	db *DB
}

func NewDeliveryRepo(db *DB) ports.IDeliveryRepo {
	return &DeliveryRepo{
		db: db,
	}
}

func (dr *DeliveryRepo) Assign(ctx context.Context, orderID, courierID int64) (model.Delivery, error) {
	tx, err := dr.db.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Delivery{}, err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	var orderStatus string
	if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&orderStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Delivery{}, myerrors.NewNotFound("order", strconv.FormatInt(orderID, 10))
		}
		return model.Delivery{}, fmt.Errorf("failed to lock order: %w", err)
	}
	if orderStatus == "completed" {
		return model.Delivery{}, myerrors.NewConflict("order is already completed", 0, 0)
	}

	q := `INSERT INTO deliveries (order_id, courier_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO UPDATE SET courier_id = $2, status = $3, updated_at = NOW()
		RETURNING id, order_id, courier_id, status, pickup_time, delivery_time, created_at, updated_at`

	var m model.Delivery
	if err := tx.QueryRow(ctx, q, orderID, courierID, model.DeliveryAssigned).Scan(
		&m.ID, &m.OrderID, &m.CourierID, &m.Status, &m.PickupTime, &m.DeliveryTime, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return model.Delivery{}, fmt.Errorf("failed to upsert delivery: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = 'in_progress' WHERE id = $1`, orderID); err != nil {
		return model.Delivery{}, fmt.Errorf("failed to update order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Delivery{}, myerrors.NewTransaction("assign delivery", err)
	}
	return m, nil
}

func (dr *DeliveryRepo) GetByOrder(ctx context.Context, orderID int64) (model.Delivery, error) {
	q := `SELECT id, order_id, courier_id, status, pickup_time, delivery_time, created_at, updated_at
		FROM deliveries WHERE order_id = $1`

	var m model.Delivery
	err := dr.db.conn.QueryRow(ctx, q, orderID).Scan(
		&m.ID, &m.OrderID, &m.CourierID, &m.Status, &m.PickupTime, &m.DeliveryTime, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Delivery{}, myerrors.NewNotFound("delivery for order", strconv.FormatInt(orderID, 10))
		}
		return model.Delivery{}, err
	}
	return m, nil
}

func (dr *DeliveryRepo) UpdateStatus(ctx context.Context, orderID int64, status string) (model.Delivery, error) {
	tx, err := dr.db.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Delivery{}, err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	var (
		id      int64
		current string
	)
	q := `SELECT id, status FROM deliveries WHERE order_id = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, q, orderID).Scan(&id, &current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Delivery{}, myerrors.NewNotFound("delivery for order", strconv.FormatInt(orderID, 10))
		}
		return model.Delivery{}, fmt.Errorf("failed to lock delivery: %w", err)
	}

	if !model.CanTransition(current, status) {
		return model.Delivery{}, myerrors.NewConflict(fmt.Sprintf("cannot move delivery from %s to %s", current, status), 0, 0)
	}

	updQ := `UPDATE deliveries SET
			status = $1,
			pickup_time = CASE WHEN $1 = 'picked_up' THEN NOW() ELSE pickup_time END,
			delivery_time = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivery_time END,
			updated_at = NOW()
		WHERE id = $2
		RETURNING id, order_id, courier_id, status, pickup_time, delivery_time, created_at, updated_at`

	var m model.Delivery
	if err := tx.QueryRow(ctx, updQ, status, id).Scan(
		&m.ID, &m.OrderID, &m.CourierID, &m.Status, &m.PickupTime, &m.DeliveryTime, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return model.Delivery{}, fmt.Errorf("failed to update delivery: %w", err)
	}

	if status == model.DeliveryDelivered {
		if _, err := tx.Exec(ctx, `UPDATE orders SET status = 'completed' WHERE id = $1`, orderID); err != nil {
			return model.Delivery{}, fmt.Errorf("failed to complete order: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Delivery{}, myerrors.NewTransaction("update delivery status", err)
	}
	return m, nil
}

func (dr *DeliveryRepo) RecordLocation(ctx context.Context, courierID int64, lat, lng float64) error {
	tx, err := dr.db.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	var lastRecorded *time.Time
	q := `SELECT recorded_at FROM courier_locations WHERE courier_id = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, q, courierID).Scan(&lastRecorded); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to read courier location: %w", err)
	}

	upQ := `INSERT INTO courier_locations (courier_id, lat, lng, recorded_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (courier_id) DO UPDATE SET lat = $2, lng = $3, recorded_at = NOW()`
	if _, err := tx.Exec(ctx, upQ, courierID, lat, lng); err != nil {
		return fmt.Errorf("failed to update courier location: %w", err)
	}

	if lastRecorded == nil || time.Since(*lastRecorded) >= locationDedupWindow {
		histQ := `INSERT INTO courier_location_history (courier_id, lat, lng) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, histQ, courierID, lat, lng); err != nil {
			return fmt.Errorf("failed to append location history: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return myerrors.NewTransaction("record location", err)
	}
	return nil
}

func (dr *DeliveryRepo) ListByCourier(ctx context.Context, courierID int64, completed bool) ([]model.CourierOrder, error) {
	q := `SELECT d.id, d.order_id, d.courier_id, d.status, d.pickup_time, d.delivery_time, d.created_at, d.updated_at,
			o.delivery_address, o.delivery_fee, o.total_amount, o.status
		FROM deliveries d
		JOIN orders o ON o.id = d.order_id
		WHERE d.courier_id = $1 AND (d.status = 'delivered') = $2
		ORDER BY d.updated_at DESC`

	rows, err := dr.db.conn.Query(ctx, q, courierID, completed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.CourierOrder
	for rows.Next() {
		var co model.CourierOrder
		if err := rows.Scan(
			&co.ID, &co.OrderID, &co.CourierID, &co.Status, &co.PickupTime, &co.DeliveryTime, &co.CreatedAt, &co.UpdatedAt,
			&co.DeliveryAddress, &co.DeliveryFee, &co.TotalAmount, &co.OrderStatus,
		); err != nil {
			return nil, err
		}
		list = append(list, co)
	}
	return list, rows.Err()
}
