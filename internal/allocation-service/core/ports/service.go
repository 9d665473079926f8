package ports

import (
	"context"

	"foodbridge/internal/allocation-service/core/domain/dto"
)

// ISolver computes a benefit-maximizing assignment of lots to organizations.
type ISolver interface {
	Solve(ctx context.Context, input dto.SolverInput) (dto.SolverOutput, error)
}

type IDonationService interface {
	Create(ctx context.Context, donorID int64, req dto.DonationCreateDto) (dto.DonationResponseDto, error)
	Get(ctx context.Context, id int64) (dto.DonationResponseDto, error)
	ListAvailable(ctx context.Context) ([]dto.DonationResponseDto, error)
	Update(ctx context.Context, id, donorID int64, patch dto.DonationPatch) (dto.DonationResponseDto, error)
	Delete(ctx context.Context, id, donorID int64) error
}

type IOrganizationService interface {
	Create(ctx context.Context, userID int64, req dto.OrganizationCreateDto) (dto.OrganizationResponseDto, error)
	List(ctx context.Context) ([]dto.OrganizationResponseDto, error)
	Verify(ctx context.Context, id int64) error
}

type IAllocationService interface {
	RunSolvePass(ctx context.Context) (dto.SolveResponseDto, error)
	ListAll(ctx context.Context) ([]dto.AllocationResponseDto, error)
	ListForUser(ctx context.Context, userID int64) ([]dto.AllocationResponseDto, error)
	Accept(ctx context.Context, userID, allocationID int64) error
	Reject(ctx context.Context, userID, allocationID int64) error
	ManualAllocate(ctx context.Context, req dto.ManualAllocationDto) (int64, error)
}
