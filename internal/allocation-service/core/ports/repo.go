package ports

import (
	"context"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/domain/model"
)

type IDonationRepo interface {
	Create(ctx context.Context, m model.Donation) (int64, error)
	GetByID(ctx context.Context, id int64) (model.Donation, error)
	ListAvailable(ctx context.Context) ([]model.Donation, error)
	Update(ctx context.Context, id, donorID int64, patch dto.DonationPatch) (model.Donation, error)
	Delete(ctx context.Context, id, donorID int64) error
}

type IOrganizationRepo interface {
	Create(ctx context.Context, m model.Organization) (int64, error)
	GetByUserID(ctx context.Context, userID int64) (model.Organization, error)
	List(ctx context.Context) ([]model.Organization, error)
	ListVerified(ctx context.Context) ([]model.Organization, error)
	Verify(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (model.Organization, error)
}

type IAllocationRepo interface {
	ListAll(ctx context.Context) ([]model.AllocationView, error)
	ListByOrganization(ctx context.Context, orgID int64) ([]model.AllocationView, error)
	GetByID(ctx context.Context, id int64) (model.Allocation, error)
	ListCompleted(ctx context.Context) ([]dto.SolverPreviousAllocation, error)
	AcceptedTotalsByOrganization(ctx context.Context) (map[int64]float64, error)
	OpenTotalForOrganization(ctx context.Context, orgID int64) (float64, error)
	ReplacePending(ctx context.Context, allocations []dto.SolverAllocation) error
	InsertPending(ctx context.Context, donationID, orgID int64, quantity float64) (int64, error)
	Accept(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
