package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/domain/model"
	"foodbridge/internal/allocation-service/core/ports"
	"foodbridge/internal/geo"
	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"
)

type DonationService struct {
	ctx          context.Context
	mylog        mylogger.Logger
	donationRepo ports.IDonationRepo
	geocoder     geo.Geocoder
	allocations  ports.IAllocationService
}

func NewDonationService(ctx context.Context,
	log mylogger.Logger,
	donationRepo ports.IDonationRepo,
	geocoder geo.Geocoder,
	allocations ports.IAllocationService,
) ports.IDonationService {
	return &DonationService{
		ctx:          ctx,
		mylog:        log,
		donationRepo: donationRepo,
		geocoder:     geocoder,
		allocations:  allocations,
	}
}

func (ds *DonationService) Create(ctx context.Context, donorID int64, req dto.DonationCreateDto) (dto.DonationResponseDto, error) {
	log := ds.mylog.Action("CreateDonation")

	if err := validateDonationCreate(req); err != nil {
		return dto.DonationResponseDto{}, myerrors.NewValidation("%s", err.Error())
	}

	m := model.Donation{
		DonorID:           donorID,
		FoodType:          *req.FoodType,
		Category:          *req.Category,
		RemainingQuantity: *req.Quantity,
		ExpirationTime:    *req.ExpirationTime,
		PickupAddress:     *req.PickupAddress,
		Status:            model.DonationAvailable,
	}

	// Geocoding failure is not fatal here: the lot is still stored and the
	// solver will retry the lookup on the next pass.
	gctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()
	if loc, err := ds.geocoder.Resolve(gctx, m.PickupAddress); err != nil {
		log.Warn("cannot geocode pickup address", "address", m.PickupAddress, "error", err.Error())
	} else {
		m.Latitude = &loc.Lat
		m.Longitude = &loc.Lng
	}

	id, err := ds.donationRepo.Create(ctx, m)
	if err != nil {
		log.Error("cannot create donation", err)
		return dto.DonationResponseDto{}, err
	}
	m.ID = id
	log.Info("donation created", "donation-id", id, "donor-id", donorID, "quantity", m.RemainingQuantity)

	ds.triggerSolve(log)

	return donationToDto(m), nil
}

func (ds *DonationService) Get(ctx context.Context, id int64) (dto.DonationResponseDto, error) {
	m, err := ds.donationRepo.GetByID(ctx, id)
	if err != nil {
		return dto.DonationResponseDto{}, err
	}
	return donationToDto(m), nil
}

func (ds *DonationService) ListAvailable(ctx context.Context) ([]dto.DonationResponseDto, error) {
	ms, err := ds.donationRepo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.DonationResponseDto, 0, len(ms))
	for _, m := range ms {
		res = append(res, donationToDto(m))
	}
	return res, nil
}

func (ds *DonationService) Update(ctx context.Context, id, donorID int64, patch dto.DonationPatch) (dto.DonationResponseDto, error) {
	log := ds.mylog.Action("UpdateDonation")

	if patch.Empty() {
		return dto.DonationResponseDto{}, myerrors.NewValidation("no fields to update")
	}
	if err := validateDonationPatch(patch); err != nil {
		return dto.DonationResponseDto{}, myerrors.NewValidation("%s", err.Error())
	}

	m, err := ds.donationRepo.Update(ctx, id, donorID, patch)
	if err != nil {
		return dto.DonationResponseDto{}, err
	}
	log.Info("donation updated", "donation-id", id)

	ds.triggerSolve(log)

	return donationToDto(m), nil
}

func (ds *DonationService) Delete(ctx context.Context, id, donorID int64) error {
	log := ds.mylog.Action("DeleteDonation")

	if err := ds.donationRepo.Delete(ctx, id, donorID); err != nil {
		return err
	}
	log.Info("donation deleted", "donation-id", id)

	ds.triggerSolve(log)
	return nil
}

// triggerSolve reruns the allocation pass after an inventory change. The write
// that triggered it already succeeded, so a failed pass is only logged.
func (ds *DonationService) triggerSolve(log mylogger.Logger) {
	ctx, cancel := context.WithTimeout(ds.ctx, time.Second*60)
	defer cancel()

	if _, err := ds.allocations.RunSolvePass(ctx); err != nil {
		log.Error("allocation pass failed", err)
	}
}

func donationToDto(m model.Donation) dto.DonationResponseDto {
	return dto.DonationResponseDto{
		ID:                m.ID,
		DonorID:           m.DonorID,
		FoodType:          m.FoodType,
		Category:          m.Category,
		RemainingQuantity: m.RemainingQuantity,
		ExpirationTime:    m.ExpirationTime,
		PickupAddress:     m.PickupAddress,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		Status:            m.Status,
	}
}

var (
	ErrEmptyField      = errors.New("field is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrExpiredLot      = errors.New("expiration time must be in the future")
	ErrLongAddress     = errors.New("maximum 255 characters allowed")
)

var AllowedCategories = map[string]bool{
	model.CategoryCookedMeal:    true,
	model.CategoryRawIngredient: true,
	model.CategoryPackagedItem:  true,
}

func validateDonationCreate(req dto.DonationCreateDto) error {
	if err := validateFoodType(req.FoodType); err != nil {
		return fmt.Errorf("invalid food type: %v", err)
	}
	if err := validateCategory(req.Category); err != nil {
		return fmt.Errorf("invalid food category: %v", err)
	}
	if err := validateQuantity(req.Quantity); err != nil {
		return fmt.Errorf("invalid quantity: %v", err)
	}
	if err := validateExpiration(req.ExpirationTime); err != nil {
		return fmt.Errorf("invalid expiration time: %v", err)
	}
	if err := validatePickupAddress(req.PickupAddress); err != nil {
		return fmt.Errorf("invalid pickup address: %v", err)
	}
	return nil
}

func validateDonationPatch(patch dto.DonationPatch) error {
	if patch.FoodType != nil {
		if err := validateFoodType(patch.FoodType); err != nil {
			return fmt.Errorf("invalid food type: %v", err)
		}
	}
	if patch.Category != nil {
		if err := validateCategory(patch.Category); err != nil {
			return fmt.Errorf("invalid food category: %v", err)
		}
	}
	if patch.Quantity != nil {
		if err := validateQuantity(patch.Quantity); err != nil {
			return fmt.Errorf("invalid quantity: %v", err)
		}
	}
	if patch.ExpirationTime != nil {
		if err := validateExpiration(patch.ExpirationTime); err != nil {
			return fmt.Errorf("invalid expiration time: %v", err)
		}
	}
	if patch.PickupAddress != nil {
		if err := validatePickupAddress(patch.PickupAddress); err != nil {
			return fmt.Errorf("invalid pickup address: %v", err)
		}
	}
	return nil
}

func validateFoodType(s *string) error {
	if s == nil || strings.TrimSpace(*s) == "" {
		return ErrEmptyField
	}
	if len(*s) > 255 {
		return ErrLongAddress
	}
	return nil
}

func validateCategory(s *string) error {
	if s == nil || *s == "" {
		return ErrEmptyField
	}
	if !AllowedCategories[*s] {
		return fmt.Errorf("unknown category. Allowed categories are: %v", allowedCategoryList())
	}
	return nil
}

func allowedCategoryList() []string {
	return []string{model.CategoryCookedMeal, model.CategoryRawIngredient, model.CategoryPackagedItem}
}

func validateQuantity(q *float64) error {
	if q == nil {
		return ErrEmptyField
	}
	if *q <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func validateExpiration(t *time.Time) error {
	if t == nil {
		return ErrEmptyField
	}
	if !t.After(time.Now()) {
		return ErrExpiredLot
	}
	return nil
}

func validatePickupAddress(s *string) error {
	if s == nil || strings.TrimSpace(*s) == "" {
		return ErrEmptyField
	}
	if len(*s) > 255 {
		return ErrLongAddress
	}
	return nil
}
