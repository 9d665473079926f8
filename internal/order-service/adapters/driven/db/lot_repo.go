package db

import (
	"context"
	"errors"
	"strconv"

	"foodbridge/internal/myerrors"
	"foodbridge/internal/order-service/core/domain/model"
	"foodbridge/internal/order-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type LotRepo struct {
	db *DB
}

func NewLotRepo(db *DB) ports.ILotRepo {
	return &LotRepo{
		db: db,
	}
}

func (lr *LotRepo) GetLot(ctx context.Context, id int64) (model.Lot, error) {
	q := `SELECT id, food_type, remaining_quantity, status, expiration_time, pickup_address, latitude, longitude
		FROM food_donations WHERE id = $1`

	var m model.Lot
	err := lr.db.conn.QueryRow(ctx, q, id).Scan(
		&m.ID,
		&m.FoodType,
		&m.RemainingQuantity,
		&m.Status,
		&m.ExpirationTime,
		&m.PickupAddress,
		&m.Latitude,
		&m.Longitude,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Lot{}, myerrors.NewNotFound("food donation", strconv.FormatInt(id, 10))
		}
		return model.Lot{}, err
	}
	return m, nil
}
