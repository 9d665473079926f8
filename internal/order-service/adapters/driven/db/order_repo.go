package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"foodbridge/internal/myerrors"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
	"foodbridge/internal/order-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type OrderRepo struct {
	db *DB
}

func NewOrderRepo(db *DB) ports.IOrderRepo {
	return &OrderRepo{
		db: db,
	}
}

const orderColumns = `id, cart_id, user_id, delivery_address, delivery_lat, delivery_lng, delivery_fee, total_amount, status, payment_status, created_at`

// CreateFromCart turns a checked-out cart into an order. The cart row is
// locked so a cart can only ever produce one order.
func (or *OrderRepo) CreateFromCart(ctx context.Context, cartID, userID int64, deliveryAddress string) (model.Order, error) {
	tx, err := or.db.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Order{}, err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	q := `SELECT user_id, delivery_address, delivery_lat, delivery_lng, delivery_fee, total_amount, status
		FROM carts WHERE id = $1 FOR UPDATE`

	var (
		cartUserID  int64
		cartAddress string
		lat, lng    float64
		fee, total  float64
		status      string
	)
	if err := tx.QueryRow(ctx, q, cartID).Scan(&cartUserID, &cartAddress, &lat, &lng, &fee, &total, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, myerrors.NewNotFound("cart", strconv.FormatInt(cartID, 10))
		}
		return model.Order{}, fmt.Errorf("failed to lock cart: %w", err)
	}
	if cartUserID != userID {
		return model.Order{}, myerrors.NewAuthorization("cart belongs to another user")
	}
	if status == model.CartOrdered {
		return model.Order{}, myerrors.NewConflict("cart is already ordered", 0, 0)
	}

	if deliveryAddress == "" {
		deliveryAddress = cartAddress
	}

	m := model.Order{
		CartID:          cartID,
		UserID:          userID,
		DeliveryAddress: deliveryAddress,
		DeliveryLat:     lat,
		DeliveryLng:     lng,
		DeliveryFee:     fee,
		TotalAmount:     total,
		Status:          model.OrderPending,
		PaymentStatus:   model.PaymentPending,
	}

	insertQ := `INSERT INTO orders (cart_id, user_id, delivery_address, delivery_lat, delivery_lng, delivery_fee, total_amount, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertQ,
		m.CartID, m.UserID, m.DeliveryAddress, m.DeliveryLat, m.DeliveryLng,
		m.DeliveryFee, m.TotalAmount, m.Status, m.PaymentStatus,
	).Scan(&m.ID, &m.CreatedAt); err != nil {
		return model.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE carts SET status = $1 WHERE id = $2`, model.CartOrdered, cartID); err != nil {
		return model.Order{}, fmt.Errorf("failed to mark cart ordered: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Order{}, myerrors.NewTransaction("create order", err)
	}
	return m, nil
}

func (or *OrderRepo) GetByID(ctx context.Context, id int64) (model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var m model.Order
	err := or.db.conn.QueryRow(ctx, q, id).Scan(
		&m.ID, &m.CartID, &m.UserID, &m.DeliveryAddress, &m.DeliveryLat, &m.DeliveryLng,
		&m.DeliveryFee, &m.TotalAmount, &m.Status, &m.PaymentStatus, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, myerrors.NewNotFound("order", strconv.FormatInt(id, 10))
		}
		return model.Order{}, err
	}
	return m, nil
}

func (or *OrderRepo) List(ctx context.Context, filter dto.OrderFilterDto) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		q += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}
	q += " ORDER BY created_at DESC"

	return or.list(ctx, q, args...)
}

func (or *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return or.list(ctx, q, userID)
}

func (or *OrderRepo) list(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := or.db.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var m model.Order
		if err := rows.Scan(
			&m.ID, &m.CartID, &m.UserID, &m.DeliveryAddress, &m.DeliveryLat, &m.DeliveryLng,
			&m.DeliveryFee, &m.TotalAmount, &m.Status, &m.PaymentStatus, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, m)
	}
	return orders, rows.Err()
}

func (or *OrderRepo) Items(ctx context.Context, orderID int64) ([]model.CartLine, error) {
	q := `SELECT ci.id, ci.cart_id, ci.donation_id, ci.quantity, ci.food_type, ci.pickup_address, ci.pickup_lat, ci.pickup_lng, ci.notes
		FROM cart_items ci
		JOIN orders o ON o.cart_id = ci.cart_id
		WHERE o.id = $1
		ORDER BY ci.id`

	rows, err := or.db.conn.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.DonationID, &l.Quantity, &l.FoodType, &l.PickupAddress, &l.PickupLat, &l.PickupLng, &l.Notes); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (or *OrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	q := `UPDATE orders SET payment_status = $1 WHERE id = $2`

	tag, err := or.db.conn.Exec(ctx, q, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return myerrors.NewNotFound("order", strconv.FormatInt(id, 10))
	}
	return nil
}
