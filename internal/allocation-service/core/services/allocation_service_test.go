package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/domain/model"
	"foodbridge/internal/geo"
	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"
)

type fakeAllocRepo struct {
	views       []model.AllocationView
	byID        map[int64]model.Allocation
	accepted    map[int64]float64
	openTotals  map[int64]float64
	completed   []dto.SolverPreviousAllocation
	replaced    [][]dto.SolverAllocation
	insertedID  int64
	acceptedIDs []int64
	deletedIDs  []int64
	acceptErr   error
}

func (f *fakeAllocRepo) ListAll(ctx context.Context) ([]model.AllocationView, error) {
	return f.views, nil
}

func (f *fakeAllocRepo) ListByOrganization(ctx context.Context, orgID int64) ([]model.AllocationView, error) {
	var res []model.AllocationView
	for _, v := range f.views {
		if v.OrganizationID == orgID {
			res = append(res, v)
		}
	}
	return res, nil
}

func (f *fakeAllocRepo) GetByID(ctx context.Context, id int64) (model.Allocation, error) {
	m, ok := f.byID[id]
	if !ok {
		return model.Allocation{}, myerrors.NewNotFound("allocation", "missing")
	}
	return m, nil
}

func (f *fakeAllocRepo) ListCompleted(ctx context.Context) ([]dto.SolverPreviousAllocation, error) {
	return f.completed, nil
}

func (f *fakeAllocRepo) AcceptedTotalsByOrganization(ctx context.Context) (map[int64]float64, error) {
	return f.accepted, nil
}

func (f *fakeAllocRepo) OpenTotalForOrganization(ctx context.Context, orgID int64) (float64, error) {
	return f.openTotals[orgID], nil
}

func (f *fakeAllocRepo) ReplacePending(ctx context.Context, allocations []dto.SolverAllocation) error {
	f.replaced = append(f.replaced, allocations)
	return nil
}

func (f *fakeAllocRepo) InsertPending(ctx context.Context, donationID, orgID int64, quantity float64) (int64, error) {
	f.insertedID++
	return f.insertedID, nil
}

func (f *fakeAllocRepo) Accept(ctx context.Context, id int64) error {
	if f.acceptErr != nil {
		return f.acceptErr
	}
	f.acceptedIDs = append(f.acceptedIDs, id)
	return nil
}

func (f *fakeAllocRepo) Delete(ctx context.Context, id int64) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type fakeOrgRepo struct {
	verified []model.Organization
	byUser   map[int64]model.Organization
	byID     map[int64]model.Organization
}

func (f *fakeOrgRepo) Create(ctx context.Context, m model.Organization) (int64, error) {
	return 1, nil
}

func (f *fakeOrgRepo) GetByUserID(ctx context.Context, userID int64) (model.Organization, error) {
	org, ok := f.byUser[userID]
	if !ok {
		return model.Organization{}, myerrors.NewNotFound("organization", "missing")
	}
	return org, nil
}

func (f *fakeOrgRepo) List(ctx context.Context) ([]model.Organization, error) {
	return f.verified, nil
}

func (f *fakeOrgRepo) ListVerified(ctx context.Context) ([]model.Organization, error) {
	return f.verified, nil
}

func (f *fakeOrgRepo) Verify(ctx context.Context, id int64) error { return nil }

func (f *fakeOrgRepo) Exists(ctx context.Context, id int64) (model.Organization, error) {
	org, ok := f.byID[id]
	if !ok {
		return model.Organization{}, myerrors.NewNotFound("organization", "missing")
	}
	return org, nil
}

type fakeDonationRepo struct {
	available []model.Donation
	byID      map[int64]model.Donation
}

func (f *fakeDonationRepo) Create(ctx context.Context, m model.Donation) (int64, error) {
	return 1, nil
}

func (f *fakeDonationRepo) GetByID(ctx context.Context, id int64) (model.Donation, error) {
	d, ok := f.byID[id]
	if !ok {
		return model.Donation{}, myerrors.NewNotFound("donation", "missing")
	}
	return d, nil
}

func (f *fakeDonationRepo) ListAvailable(ctx context.Context) ([]model.Donation, error) {
	return f.available, nil
}

func (f *fakeDonationRepo) Update(ctx context.Context, id, donorID int64, patch dto.DonationPatch) (model.Donation, error) {
	return model.Donation{}, nil
}

func (f *fakeDonationRepo) Delete(ctx context.Context, id, donorID int64) error { return nil }

type fakeSolver struct {
	input dto.SolverInput
	out   dto.SolverOutput
	err   error
}

func (f *fakeSolver) Solve(ctx context.Context, input dto.SolverInput) (dto.SolverOutput, error) {
	f.input = input
	return f.out, f.err
}

type fakeGeocoder struct {
	locations map[string]geo.Location
}

func (f *fakeGeocoder) Resolve(ctx context.Context, address string) (geo.Location, error) {
	loc, ok := f.locations[address]
	if !ok {
		return geo.Location{}, myerrors.NewExternal("geocoder", errors.New("no match"))
	}
	return loc, nil
}

type allocationFixture struct {
	allocRepo    *fakeAllocRepo
	orgRepo      *fakeOrgRepo
	donationRepo *fakeDonationRepo
	solver       *fakeSolver
	geocoder     *fakeGeocoder
	svc          *AllocationService
}

func newAllocationFixture(t *testing.T) *allocationFixture {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatal(err)
	}
	f := &allocationFixture{
		allocRepo:    &fakeAllocRepo{byID: make(map[int64]model.Allocation), accepted: map[int64]float64{}, openTotals: map[int64]float64{}},
		orgRepo:      &fakeOrgRepo{byUser: make(map[int64]model.Organization), byID: make(map[int64]model.Organization)},
		donationRepo: &fakeDonationRepo{byID: make(map[int64]model.Donation)},
		solver:       &fakeSolver{out: dto.SolverOutput{Status: dto.SolverStatusOptimal}},
		geocoder:     &fakeGeocoder{locations: make(map[string]geo.Location)},
	}
	svc := NewAllocationService(context.Background(), log, f.allocRepo, f.orgRepo, f.donationRepo, f.solver, f.geocoder)
	f.svc = svc.(*AllocationService)
	return f
}

func coord(v float64) *float64 { return &v }

func TestRunSolvePassSubtractsAcceptedCapacity(t *testing.T) {
	f := newAllocationFixture(t)
	f.orgRepo.verified = []model.Organization{
		{ID: 1, StorageCapacity: 100, IsVerified: true},
		{ID: 2, StorageCapacity: 40, IsVerified: true},
	}
	f.allocRepo.accepted = map[int64]float64{1: 70, 2: 40}
	f.donationRepo.available = []model.Donation{
		{ID: 10, Category: model.CategoryCookedMeal, RemainingQuantity: 50,
			ExpirationTime: time.Now().Add(24 * time.Hour), Latitude: coord(40.0), Longitude: coord(-73.9)},
	}

	if _, err := f.svc.RunSolvePass(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(f.solver.input.Organizations) != 1 {
		t.Fatalf("solver saw %d organizations, want only the one with free capacity", len(f.solver.input.Organizations))
	}
	org := f.solver.input.Organizations[0]
	if org.ID != 1 || org.StorageCapacity != 30 {
		t.Errorf("solver org = %+v, want id 1 with the remaining 30", org)
	}
}

func TestRunSolvePassGeocodesLotsWithoutCoordinates(t *testing.T) {
	f := newAllocationFixture(t)
	f.orgRepo.verified = []model.Organization{{ID: 1, StorageCapacity: 100, IsVerified: true}}
	f.geocoder.locations["12 Mill Rd"] = geo.Location{Lat: 40.2, Lng: -73.8}
	f.donationRepo.available = []model.Donation{
		{ID: 10, Category: model.CategoryCookedMeal, RemainingQuantity: 50,
			ExpirationTime: time.Now().Add(24 * time.Hour), PickupAddress: "12 Mill Rd"},
		{ID: 11, Category: model.CategoryCookedMeal, RemainingQuantity: 50,
			ExpirationTime: time.Now().Add(24 * time.Hour), PickupAddress: "unknown place"},
	}

	if _, err := f.svc.RunSolvePass(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(f.solver.input.Lots) != 1 {
		t.Fatalf("solver saw %d lots, want 1 (the unlocatable one skipped)", len(f.solver.input.Lots))
	}
	lot := f.solver.input.Lots[0]
	if lot.ID != 10 || lot.Latitude != 40.2 {
		t.Errorf("solver lot = %+v", lot)
	}
}

func TestRunSolvePassWithNothingToAllocateClearsPending(t *testing.T) {
	f := newAllocationFixture(t)

	res, err := f.svc.RunSolvePass(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(f.allocRepo.replaced) != 1 || f.allocRepo.replaced[0] != nil {
		t.Errorf("pending set must be cleared, got %v", f.allocRepo.replaced)
	}
	if res.Statistics.TotalAllocations != 0 || len(res.Allocations) != 0 {
		t.Errorf("response = %+v", res)
	}
}

func TestRunSolvePassReplacesPendingWithSolverOutput(t *testing.T) {
	f := newAllocationFixture(t)
	f.orgRepo.verified = []model.Organization{{ID: 1, StorageCapacity: 100, IsVerified: true}}
	f.donationRepo.available = []model.Donation{
		{ID: 10, Category: model.CategoryCookedMeal, RemainingQuantity: 50,
			ExpirationTime: time.Now().Add(24 * time.Hour), Latitude: coord(40.0), Longitude: coord(-73.9)},
	}
	f.solver.out = dto.SolverOutput{
		Status:      dto.SolverStatusOptimal,
		Allocations: []dto.SolverAllocation{{OrganizationID: 1, LotID: 10, AllocatedQuantity: 50}},
	}
	f.allocRepo.views = []model.AllocationView{
		{Allocation: model.Allocation{ID: 5, DonationID: 10, OrganizationID: 1, AllocatedQuantity: 50, Status: model.AllocationPending}},
		{Allocation: model.Allocation{ID: 3, DonationID: 9, OrganizationID: 1, AllocatedQuantity: 20, Status: model.AllocationAccepted}},
	}

	res, err := f.svc.RunSolvePass(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(f.allocRepo.replaced) != 1 || len(f.allocRepo.replaced[0]) != 1 {
		t.Fatalf("replaced = %v", f.allocRepo.replaced)
	}
	if len(res.Allocations) != 1 || res.Allocations[0].ID != 5 {
		t.Errorf("response must list only the pending proposals, got %+v", res.Allocations)
	}
	if res.Statistics.TotalAllocations != 1 {
		t.Errorf("stats = %+v", res.Statistics)
	}
}

func TestAcceptChecksOwnership(t *testing.T) {
	f := newAllocationFixture(t)
	f.allocRepo.byID[5] = model.Allocation{ID: 5, OrganizationID: 2, Status: model.AllocationPending}
	f.orgRepo.byUser[77] = model.Organization{ID: 1}

	err := f.svc.Accept(context.Background(), 77, 5)
	var authz *myerrors.AuthorizationError
	if !errors.As(err, &authz) {
		t.Fatalf("got %v, want an authorization error", err)
	}
	if len(f.allocRepo.acceptedIDs) != 0 {
		t.Error("a foreign allocation must not reach the repo")
	}
}

func TestAcceptSurfacesStaleQuantityConflict(t *testing.T) {
	f := newAllocationFixture(t)
	f.allocRepo.byID[5] = model.Allocation{ID: 5, OrganizationID: 1, AllocatedQuantity: 8, Status: model.AllocationPending}
	f.orgRepo.byUser[77] = model.Organization{ID: 1}
	// A checkout drained the lot to 5 units since the proposal was made.
	f.allocRepo.acceptErr = myerrors.NewConflict("not enough quantity available", 8, 5)

	err := f.svc.Accept(context.Background(), 77, 5)
	var conflict *myerrors.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want the quantity conflict", err)
	}
	if conflict.Required != 8 || conflict.Available != 5 {
		t.Errorf("conflict = required %v available %v, want 8/5", conflict.Required, conflict.Available)
	}
	if got := f.allocRepo.byID[5].Status; got != model.AllocationPending {
		t.Errorf("status = %q, must stay pending after a failed accept", got)
	}
}

func TestRejectDeletesPendingAllocation(t *testing.T) {
	f := newAllocationFixture(t)
	f.allocRepo.byID[5] = model.Allocation{ID: 5, OrganizationID: 1, Status: model.AllocationPending}
	f.orgRepo.byUser[77] = model.Organization{ID: 1}

	if err := f.svc.Reject(context.Background(), 77, 5); err != nil {
		t.Fatal(err)
	}
	if len(f.allocRepo.deletedIDs) != 1 || f.allocRepo.deletedIDs[0] != 5 {
		t.Errorf("deleted = %v", f.allocRepo.deletedIDs)
	}
}

func TestRejectRefusesNonPendingAllocation(t *testing.T) {
	f := newAllocationFixture(t)
	f.allocRepo.byID[5] = model.Allocation{ID: 5, OrganizationID: 1, Status: model.AllocationAccepted}
	f.orgRepo.byUser[77] = model.Organization{ID: 1}

	err := f.svc.Reject(context.Background(), 77, 5)
	var conflict *myerrors.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want a conflict", err)
	}
}

func TestManualAllocateEnforcesCapacity(t *testing.T) {
	f := newAllocationFixture(t)
	f.donationRepo.byID[10] = model.Donation{ID: 10, Status: model.DonationAvailable, RemainingQuantity: 50}
	f.orgRepo.byID[1] = model.Organization{ID: 1, StorageCapacity: 30, IsVerified: true}
	f.allocRepo.openTotals[1] = 25

	donationID, orgID, qty := int64(10), int64(1), 10.0
	_, err := f.svc.ManualAllocate(context.Background(), dto.ManualAllocationDto{
		DonationID: &donationID, OrganizationID: &orgID, Quantity: &qty,
	})
	var conflict *myerrors.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want a capacity conflict", err)
	}
	if conflict.Available != 5 {
		t.Errorf("available = %v, want the 5 units of free capacity", conflict.Available)
	}
}

func TestManualAllocateRejectsUnverifiedOrganization(t *testing.T) {
	f := newAllocationFixture(t)
	f.donationRepo.byID[10] = model.Donation{ID: 10, Status: model.DonationAvailable, RemainingQuantity: 50}
	f.orgRepo.byID[1] = model.Organization{ID: 1, StorageCapacity: 100}

	donationID, orgID, qty := int64(10), int64(1), 10.0
	_, err := f.svc.ManualAllocate(context.Background(), dto.ManualAllocationDto{
		DonationID: &donationID, OrganizationID: &orgID, Quantity: &qty,
	})
	var authz *myerrors.AuthorizationError
	if !errors.As(err, &authz) {
		t.Fatalf("got %v, want an authorization error", err)
	}
}

func TestValidateDonationCreate(t *testing.T) {
	foodType := "Vegetable soup"
	category := model.CategoryCookedMeal
	badCategory := "Leftovers"
	quantity := 20.0
	zero := 0.0
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Hour)
	address := "12 Mill Rd"

	valid := dto.DonationCreateDto{
		FoodType:       &foodType,
		Category:       &category,
		Quantity:       &quantity,
		ExpirationTime: &future,
		PickupAddress:  &address,
	}
	if err := validateDonationCreate(valid); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	cases := map[string]dto.DonationCreateDto{
		"missing food type": {Category: &category, Quantity: &quantity, ExpirationTime: &future, PickupAddress: &address},
		"unknown category":  {FoodType: &foodType, Category: &badCategory, Quantity: &quantity, ExpirationTime: &future, PickupAddress: &address},
		"zero quantity":     {FoodType: &foodType, Category: &category, Quantity: &zero, ExpirationTime: &future, PickupAddress: &address},
		"expired lot":       {FoodType: &foodType, Category: &category, Quantity: &quantity, ExpirationTime: &past, PickupAddress: &address},
		"missing address":   {FoodType: &foodType, Category: &category, Quantity: &quantity, ExpirationTime: &future},
	}
	for name, req := range cases {
		if err := validateDonationCreate(req); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}
