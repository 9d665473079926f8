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

type AllocationRepo struct {
	db *DB
}

func NewAllocationRepo(db *DB) ports.IAllocationRepo {
	return &AllocationRepo{
		db: db,
	}
}

const allocationViewQuery = `SELECT
		a.id, a.donation_id, a.organization_id, a.allocated_quantity, a.status, a.created_at,
		f.food_type, f.food_category, f.expiration_time, f.pickup_address, f.donor_id
	FROM food_allocations a
	JOIN food_donations f ON a.donation_id = f.id`

func (ar *AllocationRepo) ListAll(ctx context.Context) ([]model.AllocationView, error) {
	q := allocationViewQuery + ` ORDER BY a.created_at DESC`
	return ar.listViews(ctx, q)
}

func (ar *AllocationRepo) ListByOrganization(ctx context.Context, orgID int64) ([]model.AllocationView, error) {
	q := allocationViewQuery + ` WHERE a.organization_id = $1 ORDER BY f.expiration_time ASC`
	return ar.listViews(ctx, q, orgID)
}

func (ar *AllocationRepo) listViews(ctx context.Context, q string, args ...any) ([]model.AllocationView, error) {
	conn := ar.db.conn
	rows, err := conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []model.AllocationView
	for rows.Next() {
		var v model.AllocationView
		if err := rows.Scan(
			&v.ID,
			&v.DonationID,
			&v.OrganizationID,
			&v.AllocatedQuantity,
			&v.Status,
			&v.CreatedAt,
			&v.FoodType,
			&v.Category,
			&v.ExpirationTime,
			&v.PickupAddress,
			&v.DonorID,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (ar *AllocationRepo) GetByID(ctx context.Context, id int64) (model.Allocation, error) {
	q := `SELECT id, donation_id, organization_id, allocated_quantity, status, created_at
		FROM food_allocations WHERE id = $1`

	conn := ar.db.conn
	var m model.Allocation
	err := conn.QueryRow(ctx, q, id).Scan(
		&m.ID,
		&m.DonationID,
		&m.OrganizationID,
		&m.AllocatedQuantity,
		&m.Status,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Allocation{}, myerrors.NewNotFound("allocation", strconv.FormatInt(id, 10))
		}
		return model.Allocation{}, err
	}
	return m, nil
}

func (ar *AllocationRepo) ListCompleted(ctx context.Context) ([]dto.SolverPreviousAllocation, error) {
	q := `SELECT organization_id, donation_id, allocated_quantity
		FROM food_allocations
		WHERE status = 'COMPLETED'`

	conn := ar.db.conn
	rows, err := conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prev []dto.SolverPreviousAllocation
	for rows.Next() {
		var p dto.SolverPreviousAllocation
		if err := rows.Scan(&p.OrganizationID, &p.LotID, &p.AllocatedQuantity); err != nil {
			return nil, err
		}
		prev = append(prev, p)
	}
	return prev, rows.Err()
}

func (ar *AllocationRepo) AcceptedTotalsByOrganization(ctx context.Context) (map[int64]float64, error) {
	q := `SELECT organization_id, SUM(allocated_quantity)
		FROM food_allocations
		WHERE status = 'ACCEPTED'
		GROUP BY organization_id`

	conn := ar.db.conn
	rows, err := conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int64]float64)
	for rows.Next() {
		var orgID int64
		var total float64
		if err := rows.Scan(&orgID, &total); err != nil {
			return nil, err
		}
		totals[orgID] = total
	}
	return totals, rows.Err()
}

func (ar *AllocationRepo) OpenTotalForOrganization(ctx context.Context, orgID int64) (float64, error) {
	q := `SELECT COALESCE(SUM(allocated_quantity), 0)
		FROM food_allocations
		WHERE organization_id = $1 AND status IN ('PENDING', 'ACCEPTED')`

	conn := ar.db.conn
	var total float64
	if err := conn.QueryRow(ctx, q, orgID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ReplacePending swaps the whole pending proposal set for the solver's new
// solution in one transaction. ACCEPTED/COMPLETED rows are never touched.
func (ar *AllocationRepo) ReplacePending(ctx context.Context, allocations []dto.SolverAllocation) error {
	conn := ar.db.conn
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	if _, err := tx.Exec(ctx, `DELETE FROM food_allocations WHERE status = 'PENDING'`); err != nil {
		return fmt.Errorf("failed to clear pending allocations: %w", err)
	}

	q := `INSERT INTO food_allocations(donation_id, organization_id, allocated_quantity, status)
		VALUES ($1, $2, $3, 'PENDING')`
	for _, a := range allocations {
		if _, err := tx.Exec(ctx, q, a.LotID, a.OrganizationID, a.AllocatedQuantity); err != nil {
			return fmt.Errorf("failed to insert allocation: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (ar *AllocationRepo) InsertPending(ctx context.Context, donationID, orgID int64, quantity float64) (int64, error) {
	q := `INSERT INTO food_allocations(donation_id, organization_id, allocated_quantity, status)
		VALUES ($1, $2, $3, 'PENDING') RETURNING id`

	conn := ar.db.conn
	var id int64
	if err := conn.QueryRow(ctx, q, donationID, orgID, quantity).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Accept re-validates the lot quantity under a row lock and decrements it
// together with the status flip, all in one transaction. An insufficient lot
// leaves both rows untouched and reports a conflict.
func (ar *AllocationRepo) Accept(ctx context.Context, id int64) error {
	conn := ar.db.conn
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Safe rollback if not committed

	q1 := `SELECT donation_id, allocated_quantity, status
		FROM food_allocations WHERE id = $1 FOR UPDATE`

	var (
		donationID int64
		quantity   float64
		status     string
	)
	if err := tx.QueryRow(ctx, q1, id).Scan(&donationID, &quantity, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return myerrors.NewNotFound("allocation", strconv.FormatInt(id, 10))
		}
		return fmt.Errorf("failed to fetch allocation: %w", err)
	}

	if status != model.AllocationPending {
		return myerrors.NewConflict(fmt.Sprintf("allocation is already %s", status), 0, 0)
	}

	q2 := `SELECT remaining_quantity FROM food_donations WHERE id = $1 FOR UPDATE`

	var remaining float64
	if err := tx.QueryRow(ctx, q2, donationID).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return myerrors.NewNotFound("food donation", strconv.FormatInt(donationID, 10))
		}
		return fmt.Errorf("failed to fetch donation: %w", err)
	}

	if remaining < quantity {
		return myerrors.NewConflict("not enough quantity available", quantity, remaining)
	}

	q3 := `UPDATE food_donations
		SET remaining_quantity = remaining_quantity - $1,
			status = CASE
				WHEN remaining_quantity - $1 <= 0 THEN 'ALLOCATED'
				ELSE 'PARTIALLY_ALLOCATED'
			END
		WHERE id = $2`
	if _, err := tx.Exec(ctx, q3, quantity, donationID); err != nil {
		return fmt.Errorf("failed to decrement donation: %w", err)
	}

	q4 := `UPDATE food_allocations SET status = 'ACCEPTED' WHERE id = $1`
	if _, err := tx.Exec(ctx, q4, id); err != nil {
		return fmt.Errorf("failed to accept allocation: %w", err)
	}

	return tx.Commit(ctx)
}

// Delete removes an allocation; rejection is deletion, pending rows never
// pre-reserve inventory.
func (ar *AllocationRepo) Delete(ctx context.Context, id int64) error {
	q := `DELETE FROM food_allocations WHERE id = $1`

	conn := ar.db.conn
	tag, err := conn.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return myerrors.NewNotFound("allocation", strconv.FormatInt(id, 10))
	}
	return nil
}
