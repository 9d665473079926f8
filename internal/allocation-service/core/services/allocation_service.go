package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/domain/model"
	"foodbridge/internal/allocation-service/core/ports"
	"foodbridge/internal/geo"
	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"
)

type AllocationService struct {
	ctx          context.Context
	mylog        mylogger.Logger
	allocRepo    ports.IAllocationRepo
	orgRepo      ports.IOrganizationRepo
	donationRepo ports.IDonationRepo
	solver       ports.ISolver
	geocoder     geo.Geocoder

	// One solve pass at a time: the pass deletes and reinserts the whole
	// PENDING set, two overlapping passes would corrupt it.
	solveMu sync.Mutex
}

func NewAllocationService(ctx context.Context,
	log mylogger.Logger,
	allocRepo ports.IAllocationRepo,
	orgRepo ports.IOrganizationRepo,
	donationRepo ports.IDonationRepo,
	solver ports.ISolver,
	geocoder geo.Geocoder,
) ports.IAllocationService {
	return &AllocationService{
		ctx:          ctx,
		mylog:        log,
		allocRepo:    allocRepo,
		orgRepo:      orgRepo,
		donationRepo: donationRepo,
		solver:       solver,
		geocoder:     geocoder,
	}
}

func (as *AllocationService) RunSolvePass(ctx context.Context) (dto.SolveResponseDto, error) {
	as.solveMu.Lock()
	defer as.solveMu.Unlock()

	log := as.mylog.Action("RunSolvePass")

	orgs, err := as.orgRepo.ListVerified(ctx)
	if err != nil {
		log.Error("cannot list verified organizations", err)
		return dto.SolveResponseDto{}, err
	}

	donations, err := as.donationRepo.ListAvailable(ctx)
	if err != nil {
		log.Error("cannot list available donations", err)
		return dto.SolveResponseDto{}, err
	}

	accepted, err := as.allocRepo.AcceptedTotalsByOrganization(ctx)
	if err != nil {
		log.Error("cannot load accepted totals", err)
		return dto.SolveResponseDto{}, err
	}

	prev, err := as.allocRepo.ListCompleted(ctx)
	if err != nil {
		log.Error("cannot load completed allocations", err)
		return dto.SolveResponseDto{}, err
	}

	input := dto.SolverInput{
		PreviousAllocations: prev,
	}
	for _, o := range orgs {
		// Capacity already spoken for by accepted allocations is off the
		// table for new proposals.
		capacity := o.StorageCapacity - accepted[o.ID]
		if capacity <= 0 {
			continue
		}
		input.Organizations = append(input.Organizations, dto.SolverOrganization{
			ID:              o.ID,
			StorageCapacity: capacity,
			Latitude:        o.Latitude,
			Longitude:       o.Longitude,
			PriorityLevel:   o.PriorityLevel,
			FoodPreferences: o.FoodPreferences,
		})
	}
	for _, d := range donations {
		lot, ok := as.lotForSolver(ctx, log, d)
		if !ok {
			continue
		}
		input.Lots = append(input.Lots, lot)
	}

	if len(input.Organizations) == 0 || len(input.Lots) == 0 {
		log.Info("nothing to allocate", "organizations", len(input.Organizations), "lots", len(input.Lots))
		if err := as.allocRepo.ReplacePending(ctx, nil); err != nil {
			return dto.SolveResponseDto{}, err
		}
		return dto.SolveResponseDto{
			Allocations: []dto.AllocationResponseDto{},
			Statistics: dto.SolveStatsDto{
				TotalOrganizations: len(input.Organizations),
				TotalDonations:     len(input.Lots),
			},
		}, nil
	}

	out, err := as.solver.Solve(ctx, input)
	if err != nil {
		log.Error("solver failed", err)
		return dto.SolveResponseDto{}, err
	}
	if out.Status != dto.SolverStatusOptimal {
		log.Warn("solver found no feasible assignment", "status", out.Status)
	}

	if err := as.allocRepo.ReplacePending(ctx, out.Allocations); err != nil {
		log.Error("cannot replace pending allocations", err)
		return dto.SolveResponseDto{}, err
	}
	log.Info("solve pass finished",
		"organizations", len(input.Organizations),
		"lots", len(input.Lots),
		"allocations", len(out.Allocations),
		"objective", out.ObjectiveValue)

	views, err := as.allocRepo.ListAll(ctx)
	if err != nil {
		return dto.SolveResponseDto{}, err
	}
	res := dto.SolveResponseDto{
		Allocations: []dto.AllocationResponseDto{},
		Statistics: dto.SolveStatsDto{
			TotalOrganizations: len(input.Organizations),
			TotalDonations:     len(input.Lots),
			TotalAllocations:   len(out.Allocations),
		},
	}
	for _, v := range views {
		if v.Status != model.AllocationPending {
			continue
		}
		res.Allocations = append(res.Allocations, allocationViewToDto(v))
	}
	return res, nil
}

// lotForSolver prepares a donation for the solver, resolving coordinates on
// the fly when the create-time geocode failed. A lot that still cannot be
// located is skipped, not fatal.
func (as *AllocationService) lotForSolver(ctx context.Context, log mylogger.Logger, d model.Donation) (dto.SolverLot, bool) {
	lat, lng := d.Latitude, d.Longitude
	if lat == nil || lng == nil {
		gctx, cancel := context.WithTimeout(ctx, time.Second*10)
		defer cancel()
		loc, err := as.geocoder.Resolve(gctx, d.PickupAddress)
		if err != nil {
			log.Warn("skipping lot without coordinates", "donation-id", d.ID, "error", err.Error())
			return dto.SolverLot{}, false
		}
		lat, lng = &loc.Lat, &loc.Lng
	}
	return dto.SolverLot{
		ID:                d.ID,
		RemainingQuantity: d.RemainingQuantity,
		Category:          d.Category,
		Latitude:          *lat,
		Longitude:         *lng,
		ExpirationTime:    d.ExpirationTime.Format(time.RFC3339),
	}, true
}

func (as *AllocationService) ListAll(ctx context.Context) ([]dto.AllocationResponseDto, error) {
	views, err := as.allocRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.AllocationResponseDto, 0, len(views))
	for _, v := range views {
		res = append(res, allocationViewToDto(v))
	}
	return res, nil
}

func (as *AllocationService) ListForUser(ctx context.Context, userID int64) ([]dto.AllocationResponseDto, error) {
	org, err := as.orgRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	views, err := as.allocRepo.ListByOrganization(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	res := make([]dto.AllocationResponseDto, 0, len(views))
	for _, v := range views {
		res = append(res, allocationViewToDto(v))
	}
	return res, nil
}

func (as *AllocationService) Accept(ctx context.Context, userID, allocationID int64) error {
	log := as.mylog.Action("AcceptAllocation")

	if err := as.authorizeAllocation(ctx, userID, allocationID); err != nil {
		return err
	}

	if err := as.allocRepo.Accept(ctx, allocationID); err != nil {
		log.Error("cannot accept allocation", err)
		return err
	}
	log.Info("allocation accepted", "allocation-id", allocationID, "user-id", userID)
	return nil
}

func (as *AllocationService) Reject(ctx context.Context, userID, allocationID int64) error {
	log := as.mylog.Action("RejectAllocation")

	if err := as.authorizeAllocation(ctx, userID, allocationID); err != nil {
		return err
	}

	m, err := as.allocRepo.GetByID(ctx, allocationID)
	if err != nil {
		return err
	}
	if m.Status != model.AllocationPending {
		return myerrors.NewConflict(fmt.Sprintf("allocation is already %s", m.Status), 0, 0)
	}

	if err := as.allocRepo.Delete(ctx, allocationID); err != nil {
		return err
	}
	log.Info("allocation rejected", "allocation-id", allocationID, "user-id", userID)
	return nil
}

// authorizeAllocation checks that the allocation belongs to the caller's
// organization.
func (as *AllocationService) authorizeAllocation(ctx context.Context, userID, allocationID int64) error {
	m, err := as.allocRepo.GetByID(ctx, allocationID)
	if err != nil {
		return err
	}
	org, err := as.orgRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if org.ID != m.OrganizationID {
		return myerrors.NewAuthorization("allocation belongs to another organization")
	}
	return nil
}

func (as *AllocationService) ManualAllocate(ctx context.Context, req dto.ManualAllocationDto) (int64, error) {
	log := as.mylog.Action("ManualAllocate")

	if req.DonationID == nil || req.OrganizationID == nil || req.Quantity == nil {
		return 0, myerrors.NewValidation("donation_id, organization_id and quantity are required")
	}
	if *req.Quantity <= 0 {
		return 0, myerrors.NewValidation("quantity must be positive")
	}

	donation, err := as.donationRepo.GetByID(ctx, *req.DonationID)
	if err != nil {
		return 0, err
	}
	if donation.Status != model.DonationAvailable && donation.Status != model.DonationPartiallyAllocated {
		return 0, myerrors.NewConflict(fmt.Sprintf("donation is %s", donation.Status), *req.Quantity, 0)
	}
	if donation.RemainingQuantity < *req.Quantity {
		return 0, myerrors.NewConflict("not enough quantity available", *req.Quantity, donation.RemainingQuantity)
	}

	org, err := as.orgRepo.Exists(ctx, *req.OrganizationID)
	if err != nil {
		return 0, err
	}
	if !org.IsVerified {
		return 0, myerrors.NewAuthorization("organization is not verified")
	}

	open, err := as.allocRepo.OpenTotalForOrganization(ctx, org.ID)
	if err != nil {
		return 0, err
	}
	if open+*req.Quantity > org.StorageCapacity {
		return 0, myerrors.NewConflict("organization storage capacity exceeded", *req.Quantity, org.StorageCapacity-open)
	}

	id, err := as.allocRepo.InsertPending(ctx, donation.ID, org.ID, *req.Quantity)
	if err != nil {
		log.Error("cannot insert manual allocation", err)
		return 0, err
	}
	log.Info("manual allocation created",
		"allocation-id", id,
		"donation-id", donation.ID,
		"organization-id", org.ID,
		"quantity", strconv.FormatFloat(*req.Quantity, 'f', -1, 64))
	return id, nil
}

func allocationViewToDto(v model.AllocationView) dto.AllocationResponseDto {
	return dto.AllocationResponseDto{
		ID:                v.ID,
		DonationID:        v.DonationID,
		OrganizationID:    v.OrganizationID,
		AllocatedQuantity: v.AllocatedQuantity,
		Status:            v.Status,
		FoodType:          v.FoodType,
		Category:          v.Category,
		ExpirationTime:    v.ExpirationTime,
		PickupAddress:     v.PickupAddress,
	}
}
