package db

import (
	"context"
	"errors"
	"strconv"

	"foodbridge/internal/allocation-service/core/domain/model"
	"foodbridge/internal/allocation-service/core/ports"
	"foodbridge/internal/myerrors"

	"github.com/jackc/pgx/v5"
)

type OrganizationRepo struct {
	db *DB
}

func NewOrganizationRepo(db *DB) ports.IOrganizationRepo {
	return &OrganizationRepo{
		db: db,
	}
}

const organizationColumns = `id, user_id, name, storage_capacity, vehicle_capacity,
	food_preferences, priority_level, address, latitude, longitude, is_verified, created_at`

func (or *OrganizationRepo) Create(ctx context.Context, m model.Organization) (int64, error) {
	q := `INSERT INTO organizations(
			user_id,
			name,
			storage_capacity,
			vehicle_capacity,
			food_preferences,
			priority_level,
			address,
			latitude,
			longitude,
			is_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE) RETURNING id`

	conn := or.db.conn
	row := conn.QueryRow(ctx, q,
		m.UserID,
		m.Name,
		m.StorageCapacity,
		m.VehicleCapacity,
		m.FoodPreferences,
		m.PriorityLevel,
		m.Address,
		m.Latitude,
		m.Longitude,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (or *OrganizationRepo) GetByUserID(ctx context.Context, userID int64) (model.Organization, error) {
	q := `SELECT ` + organizationColumns + ` FROM organizations WHERE user_id = $1`

	conn := or.db.conn
	m, err := scanOrganization(conn.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Organization{}, myerrors.NewNotFound("organization profile", "")
		}
		return model.Organization{}, err
	}
	return m, nil
}

func (or *OrganizationRepo) Exists(ctx context.Context, id int64) (model.Organization, error) {
	q := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`

	conn := or.db.conn
	m, err := scanOrganization(conn.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Organization{}, myerrors.NewNotFound("organization", strconv.FormatInt(id, 10))
		}
		return model.Organization{}, err
	}
	return m, nil
}

func (or *OrganizationRepo) List(ctx context.Context) ([]model.Organization, error) {
	q := `SELECT ` + organizationColumns + ` FROM organizations ORDER BY created_at DESC`
	return or.list(ctx, q)
}

func (or *OrganizationRepo) ListVerified(ctx context.Context) ([]model.Organization, error) {
	q := `SELECT ` + organizationColumns + ` FROM organizations WHERE is_verified = TRUE`
	return or.list(ctx, q)
}

func (or *OrganizationRepo) list(ctx context.Context, q string) ([]model.Organization, error) {
	conn := or.db.conn
	rows, err := conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		m, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, m)
	}
	return orgs, rows.Err()
}

func (or *OrganizationRepo) Verify(ctx context.Context, id int64) error {
	q := `UPDATE organizations SET is_verified = TRUE WHERE id = $1`

	conn := or.db.conn
	tag, err := conn.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return myerrors.NewNotFound("organization", strconv.FormatInt(id, 10))
	}
	return nil
}

func scanOrganization(row pgx.Row) (model.Organization, error) {
	var m model.Organization
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.StorageCapacity,
		&m.VehicleCapacity,
		&m.FoodPreferences,
		&m.PriorityLevel,
		&m.Address,
		&m.Latitude,
		&m.Longitude,
		&m.IsVerified,
		&m.CreatedAt,
	)
	return m, err
}
