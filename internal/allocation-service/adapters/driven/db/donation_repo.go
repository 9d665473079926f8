package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/domain/model"
	"foodbridge/internal/allocation-service/core/ports"
	"foodbridge/internal/myerrors"

	"github.com/jackc/pgx/v5"
)

type DonationRepo struct {
	db *DB
}

func NewDonationRepo(db *DB) ports.IDonationRepo {
	return &DonationRepo{
		db: db,
	}
}

func (dr *DonationRepo) Create(ctx context.Context, m model.Donation) (int64, error) {
	q := `INSERT INTO food_donations(
			donor_id,
			food_type,
			food_category,
			remaining_quantity,
			expiration_time,
			pickup_address,
			latitude,
			longitude,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	conn := dr.db.conn
	row := conn.QueryRow(ctx, q,
		m.DonorID,
		m.FoodType,
		m.Category,
		m.RemainingQuantity,
		m.ExpirationTime,
		m.PickupAddress,
		m.Latitude,
		m.Longitude,
		m.Status,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (dr *DonationRepo) GetByID(ctx context.Context, id int64) (model.Donation, error) {
	q := `SELECT
			id, donor_id, food_type, food_category, remaining_quantity,
			expiration_time, pickup_address, latitude, longitude, status, created_at
		FROM food_donations
		WHERE id = $1`

	conn := dr.db.conn
	row := conn.QueryRow(ctx, q, id)

	m, err := scanDonation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Donation{}, myerrors.NewNotFound("food donation", strconv.FormatInt(id, 10))
		}
		return model.Donation{}, err
	}
	return m, nil
}

func (dr *DonationRepo) ListAvailable(ctx context.Context) ([]model.Donation, error) {
	q := `SELECT
			id, donor_id, food_type, food_category, remaining_quantity,
			expiration_time, pickup_address, latitude, longitude, status, created_at
		FROM food_donations
		WHERE status = 'AVAILABLE'
		AND expiration_time > CURRENT_TIMESTAMP
		ORDER BY expiration_time ASC`

	conn := dr.db.conn
	rows, err := conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []model.Donation
	for rows.Next() {
		m, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, m)
	}
	return donations, rows.Err()
}

// Update applies a typed partial update; only non-nil patch fields change.
func (dr *DonationRepo) Update(ctx context.Context, id, donorID int64, patch dto.DonationPatch) (model.Donation, error) {
	q := `UPDATE food_donations SET
			food_type          = COALESCE($3, food_type),
			food_category      = COALESCE($4, food_category),
			remaining_quantity = COALESCE($5, remaining_quantity),
			expiration_time    = COALESCE($6, expiration_time),
			pickup_address     = COALESCE($7, pickup_address)
		WHERE id = $1 AND donor_id = $2
		RETURNING id, donor_id, food_type, food_category, remaining_quantity,
			expiration_time, pickup_address, latitude, longitude, status, created_at`

	conn := dr.db.conn
	row := conn.QueryRow(ctx, q, id, donorID,
		patch.FoodType,
		patch.Category,
		patch.Quantity,
		patch.ExpirationTime,
		patch.PickupAddress,
	)

	m, err := scanDonation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Donation{}, myerrors.NewNotFound("food donation", strconv.FormatInt(id, 10))
		}
		return model.Donation{}, err
	}
	return m, nil
}

func (dr *DonationRepo) Delete(ctx context.Context, id, donorID int64) error {
	q := `DELETE FROM food_donations WHERE id = $1 AND donor_id = $2`

	conn := dr.db.conn
	tag, err := conn.Exec(ctx, q, id, donorID)
	if err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return myerrors.NewNotFound("food donation", strconv.FormatInt(id, 10))
	}
	return nil
}

func scanDonation(row pgx.Row) (model.Donation, error) {
	var m model.Donation
	err := row.Scan(
		&m.ID,
		&m.DonorID,
		&m.FoodType,
		&m.Category,
		&m.RemainingQuantity,
		&m.ExpirationTime,
		&m.PickupAddress,
		&m.Latitude,
		&m.Longitude,
		&m.Status,
		&m.CreatedAt,
	)
	return m, err
}
