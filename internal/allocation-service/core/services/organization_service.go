package services

import (
	"context"
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

type OrganizationService struct {
	ctx      context.Context
	mylog    mylogger.Logger
	orgRepo  ports.IOrganizationRepo
	geocoder geo.Geocoder
}

func NewOrganizationService(ctx context.Context,
	log mylogger.Logger,
	orgRepo ports.IOrganizationRepo,
	geocoder geo.Geocoder,
) ports.IOrganizationService {
	return &OrganizationService{
		ctx:      ctx,
		mylog:    log,
		orgRepo:  orgRepo,
		geocoder: geocoder,
	}
}

func (os *OrganizationService) Create(ctx context.Context, userID int64, req dto.OrganizationCreateDto) (dto.OrganizationResponseDto, error) {
	log := os.mylog.Action("CreateOrganization")

	if err := validateOrganizationCreate(req); err != nil {
		return dto.OrganizationResponseDto{}, myerrors.NewValidation("%s", err.Error())
	}

	// Unlike donation lots, an organization without coordinates can never be
	// allocated to or routed to, so the geocode must succeed.
	gctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()
	loc, err := os.geocoder.Resolve(gctx, *req.Address)
	if err != nil {
		log.Error("cannot geocode organization address", err)
		return dto.OrganizationResponseDto{}, err
	}

	m := model.Organization{
		UserID:          userID,
		Name:            *req.Name,
		StorageCapacity: *req.StorageCapacity,
		VehicleCapacity: *req.VehicleCapacity,
		FoodPreferences: req.FoodPreferences,
		PriorityLevel:   *req.PriorityLevel,
		Address:         *req.Address,
		Latitude:        loc.Lat,
		Longitude:       loc.Lng,
	}

	id, err := os.orgRepo.Create(ctx, m)
	if err != nil {
		log.Error("cannot create organization", err)
		return dto.OrganizationResponseDto{}, err
	}
	m.ID = id
	log.Info("organization created", "organization-id", id, "user-id", userID, "name", m.Name)

	return organizationToDto(m), nil
}

func (os *OrganizationService) List(ctx context.Context) ([]dto.OrganizationResponseDto, error) {
	ms, err := os.orgRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.OrganizationResponseDto, 0, len(ms))
	for _, m := range ms {
		res = append(res, organizationToDto(m))
	}
	return res, nil
}

func (os *OrganizationService) Verify(ctx context.Context, id int64) error {
	log := os.mylog.Action("VerifyOrganization")

	if err := os.orgRepo.Verify(ctx, id); err != nil {
		return err
	}
	log.Info("organization verified", "organization-id", id)
	return nil
}

func organizationToDto(m model.Organization) dto.OrganizationResponseDto {
	return dto.OrganizationResponseDto{
		ID:              m.ID,
		Name:            m.Name,
		StorageCapacity: m.StorageCapacity,
		VehicleCapacity: m.VehicleCapacity,
		FoodPreferences: m.FoodPreferences,
		PriorityLevel:   m.PriorityLevel,
		Address:         m.Address,
		Latitude:        m.Latitude,
		Longitude:       m.Longitude,
		IsVerified:      m.IsVerified,
	}
}

func validateOrganizationCreate(req dto.OrganizationCreateDto) error {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return fmt.Errorf("invalid name: %v", ErrEmptyField)
	}
	if req.StorageCapacity == nil || *req.StorageCapacity <= 0 {
		return fmt.Errorf("invalid storage capacity: %v", ErrInvalidQuantity)
	}
	if req.VehicleCapacity == nil || *req.VehicleCapacity <= 0 {
		return fmt.Errorf("invalid vehicle capacity: %v", ErrInvalidQuantity)
	}
	if req.PriorityLevel == nil || *req.PriorityLevel < 1 || *req.PriorityLevel > 10 {
		return fmt.Errorf("invalid priority level: must be between 1 and 10")
	}
	if err := validatePickupAddress(req.Address); err != nil {
		return fmt.Errorf("invalid address: %v", err)
	}
	for _, p := range req.FoodPreferences {
		if !AllowedCategories[p] {
			return fmt.Errorf("invalid food preference %q. Allowed categories are: %v", p, allowedCategoryList())
		}
	}
	return nil
}
