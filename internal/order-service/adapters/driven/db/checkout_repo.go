package db

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"foodbridge/internal/geo"
	"foodbridge/internal/myerrors"
	"foodbridge/internal/order-service/core/domain/model"
	"foodbridge/internal/order-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type CheckoutRepo struct {
	db       *DB
	geocoder geo.Geocoder
	perKmFee float64
}

func NewCheckoutRepo(db *DB, geocoder geo.Geocoder, perKmFee float64) ports.ICheckoutRepo {
	return &CheckoutRepo{
		db:       db,
		geocoder: geocoder,
		perKmFee: perKmFee,
	}
}

type lockedLot struct {
	id            int64
	foodType      string
	remaining     float64
	status        string
	pickupAddress string
	expiration    time.Time
	requested     float64
	notes         string
	lat           float64
	lng           float64
}

// Checkout moves the basket quantities out of the donation lots and into a
// persisted cart, all inside one transaction. Lots are locked in ascending id
// order so two concurrent checkouts serialize instead of deadlocking.
func (cr *CheckoutRepo) Checkout(ctx context.Context, userID int64, basket model.Basket, deliveryAddress string) (model.Cart, error) {
	items := make([]model.CartItem, len(basket.Items))
	copy(items, basket.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].DonationID < items[j].DonationID })

	tx, err := cr.db.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Cart{}, err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	lots, err := cr.lockAndValidate(ctx, tx, items)
	if err != nil {
		return model.Cart{}, err
	}

	// Every address must resolve before any quantity moves. A dead geocoder
	// aborts the whole checkout.
	delivery, err := cr.geocoder.Resolve(ctx, deliveryAddress)
	if err != nil {
		return model.Cart{}, err
	}
	for i := range lots {
		loc, err := cr.geocoder.Resolve(ctx, lots[i].pickupAddress)
		if err != nil {
			return model.Cart{}, err
		}
		lots[i].lat, lots[i].lng = loc.Lat, loc.Lng
	}

	distance := tourDistanceKm(delivery, lots)
	fee := deliveryFee(distance, cr.perKmFee)

	cart := model.Cart{
		UserID:          userID,
		DeliveryAddress: delivery.Address,
		DeliveryLat:     delivery.Lat,
		DeliveryLng:     delivery.Lng,
		DistanceKm:      distance,
		DeliveryFee:     fee,
		TotalAmount:     fee,
		Status:          model.CartPending,
	}

	q := `INSERT INTO carts (user_id, delivery_address, delivery_lat, delivery_lng, distance_km, delivery_fee, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	if err := tx.QueryRow(ctx, q,
		cart.UserID,
		cart.DeliveryAddress,
		cart.DeliveryLat,
		cart.DeliveryLng,
		cart.DistanceKm,
		cart.DeliveryFee,
		cart.TotalAmount,
		cart.Status,
	).Scan(&cart.ID, &cart.CreatedAt); err != nil {
		return model.Cart{}, fmt.Errorf("failed to insert cart: %w", err)
	}

	itemQ := `INSERT INTO cart_items (cart_id, donation_id, quantity, food_type, pickup_address, pickup_lat, pickup_lng, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	decQ := `UPDATE food_donations
		SET remaining_quantity = remaining_quantity - $1,
			status = CASE WHEN remaining_quantity - $1 <= 0 THEN 'UNAVAILABLE' ELSE status END
		WHERE id = $2`
	for _, lot := range lots {
		if _, err := tx.Exec(ctx, itemQ, cart.ID, lot.id, lot.requested, lot.foodType, lot.pickupAddress, lot.lat, lot.lng, lot.notes); err != nil {
			return model.Cart{}, fmt.Errorf("failed to insert cart item: %w", err)
		}
		if _, err := tx.Exec(ctx, decQ, lot.requested, lot.id); err != nil {
			return model.Cart{}, fmt.Errorf("failed to decrement donation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Cart{}, myerrors.NewTransaction("checkout", err)
	}
	return cart, nil
}

func (cr *CheckoutRepo) lockAndValidate(ctx context.Context, tx pgx.Tx, items []model.CartItem) ([]lockedLot, error) {
	q := `SELECT id, food_type, remaining_quantity, status, pickup_address, expiration_time
		FROM food_donations WHERE id = $1 FOR UPDATE`

	lots := make([]lockedLot, 0, len(items))
	for _, item := range items {
		var lot lockedLot
		if err := tx.QueryRow(ctx, q, item.DonationID).Scan(
			&lot.id,
			&lot.foodType,
			&lot.remaining,
			&lot.status,
			&lot.pickupAddress,
			&lot.expiration,
		); err != nil {
			if err == pgx.ErrNoRows {
				return nil, myerrors.NewNotFound("food donation", fmt.Sprintf("%d", item.DonationID))
			}
			return nil, fmt.Errorf("failed to lock donation %d: %w", item.DonationID, err)
		}

		if lot.status == model.LotUnavailable || !lot.expiration.After(time.Now()) {
			return nil, myerrors.NewConflict(fmt.Sprintf("donation %d is no longer available", lot.id), item.Quantity, 0)
		}
		if lot.remaining < item.Quantity {
			return nil, myerrors.NewConflict(fmt.Sprintf("not enough quantity for donation %d", lot.id), item.Quantity, lot.remaining)
		}

		lot.requested = item.Quantity
		lot.notes = item.Notes
		lots = append(lots, lot)
	}
	return lots, nil
}

// deliveryFee rounds to the nearest whole currency unit.
func deliveryFee(distanceKm, perKmRate float64) float64 {
	return math.Round(distanceKm * perKmRate)
}

// tourDistanceKm is the straight-line length of delivery -> pickups in basket
// order -> delivery. The proper stop ordering is the route optimizer's job.
func tourDistanceKm(delivery geo.Location, lots []lockedLot) float64 {
	if len(lots) == 0 {
		return 0
	}
	total := geo.HaversineKm(delivery.Lat, delivery.Lng, lots[0].lat, lots[0].lng)
	for i := 1; i < len(lots); i++ {
		total += geo.HaversineKm(lots[i-1].lat, lots[i-1].lng, lots[i].lat, lots[i].lng)
	}
	last := lots[len(lots)-1]
	total += geo.HaversineKm(last.lat, last.lng, delivery.Lat, delivery.Lng)
	return total
}
