package services

import (
	"context"
	"errors"
	"testing"

	"foodbridge/internal/delivery-service/core/domain/dto"
	"foodbridge/internal/delivery-service/core/domain/model"
	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"

	messagebrokerdto "foodbridge/internal/delivery-service/core/domain/message_broker_dto"
)

type fakeDeliveryRepo struct {
	delivery      model.Delivery
	updateErr     error
	statusUpdates []string
	locations     []model.CourierLocation
}

func (f *fakeDeliveryRepo) Assign(ctx context.Context, orderID, courierID int64) (model.Delivery, error) {
	f.delivery = model.Delivery{ID: 1, OrderID: orderID, CourierID: courierID, Status: model.DeliveryAssigned}
	return f.delivery, nil
}

func (f *fakeDeliveryRepo) GetByOrder(ctx context.Context, orderID int64) (model.Delivery, error) {
	return f.delivery, nil
}

func (f *fakeDeliveryRepo) UpdateStatus(ctx context.Context, orderID int64, status string) (model.Delivery, error) {
	if f.updateErr != nil {
		return model.Delivery{}, f.updateErr
	}
	f.statusUpdates = append(f.statusUpdates, status)
	f.delivery.Status = status
	return f.delivery, nil
}

func (f *fakeDeliveryRepo) RecordLocation(ctx context.Context, courierID int64, lat, lng float64) error {
	f.locations = append(f.locations, model.CourierLocation{CourierID: courierID, Lat: lat, Lng: lng})
	return nil
}

func (f *fakeDeliveryRepo) ListByCourier(ctx context.Context, courierID int64, completed bool) ([]model.CourierOrder, error) {
	return nil, nil
}

type fakeBroker struct {
	published []messagebrokerdto.DeliveryStatus
	err       error
}

func (f *fakeBroker) PublishStatus(ctx context.Context, msg messagebrokerdto.DeliveryStatus) error {
	f.published = append(f.published, msg)
	return f.err
}

func (f *fakeBroker) Close() error { return nil }

func newDeliveryFixture(t *testing.T) (*fakeDeliveryRepo, *fakeBroker, *DeliveryService) {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatal(err)
	}
	repo := &fakeDeliveryRepo{}
	broker := &fakeBroker{}
	svc := NewDeliveryService(context.Background(), log, repo, broker)
	return repo, broker, svc.(*DeliveryService)
}

func strPtr(v string) *string   { return &v }
func f64Ptr(v float64) *float64 { return &v }

func TestAssignPublishesStatus(t *testing.T) {
	_, broker, svc := newDeliveryFixture(t)

	res, err := svc.Assign(context.Background(), 5, 9)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != model.DeliveryAssigned || res.CourierID != 9 {
		t.Errorf("response = %+v", res)
	}

	if len(broker.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(broker.published))
	}
	msg := broker.published[0]
	if msg.OrderID != 5 || msg.Status != model.DeliveryAssigned {
		t.Errorf("message = %+v", msg)
	}
	if msg.CorrelationID == "" {
		t.Error("message must carry a correlation id")
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	repo, _, svc := newDeliveryFixture(t)

	cases := []dto.DeliveryStatusDto{
		{},
		{Status: strPtr("teleported")},
		{Status: strPtr(model.DeliveryPickedUp), Lat: f64Ptr(40.0)},
		{Status: strPtr(model.DeliveryPickedUp), Lng: f64Ptr(-73.9)},
	}
	for i, c := range cases {
		_, err := svc.UpdateStatus(context.Background(), 5, c)
		var validation *myerrors.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("case %d: got %v, want a validation error", i, err)
		}
	}
	if len(repo.statusUpdates) != 0 {
		t.Errorf("invalid requests reached the repo: %v", repo.statusUpdates)
	}
}

func TestUpdateStatusRecordsLocation(t *testing.T) {
	repo, broker, svc := newDeliveryFixture(t)
	repo.delivery = model.Delivery{ID: 1, OrderID: 5, CourierID: 9, Status: model.DeliveryAssigned}

	res, err := svc.UpdateStatus(context.Background(), 5, dto.DeliveryStatusDto{
		Status: strPtr(model.DeliveryPickedUp),
		Lat:    f64Ptr(40.1),
		Lng:    f64Ptr(-73.9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != model.DeliveryPickedUp {
		t.Errorf("status = %q", res.Status)
	}

	if len(repo.locations) != 1 {
		t.Fatalf("recorded %d locations, want 1", len(repo.locations))
	}
	loc := repo.locations[0]
	if loc.CourierID != 9 || loc.Lat != 40.1 || loc.Lng != -73.9 {
		t.Errorf("location = %+v", loc)
	}
	if len(broker.published) != 1 {
		t.Errorf("published %d messages, want 1", len(broker.published))
	}
}

func TestUpdateStatusSurfacesRepoConflict(t *testing.T) {
	repo, broker, svc := newDeliveryFixture(t)
	repo.updateErr = myerrors.NewConflict("cannot change status from assigned to delivered", 0, 0)

	_, err := svc.UpdateStatus(context.Background(), 5, dto.DeliveryStatusDto{Status: strPtr(model.DeliveryDelivered)})
	var conflict *myerrors.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want the repo conflict", err)
	}
	if len(broker.published) != 0 {
		t.Error("a rejected transition must not be published")
	}
}

func TestBrokerFailureDoesNotFailUpdate(t *testing.T) {
	repo, broker, svc := newDeliveryFixture(t)
	repo.delivery = model.Delivery{ID: 1, OrderID: 5, CourierID: 9, Status: model.DeliveryAssigned}
	broker.err = errors.New("broker down")

	if _, err := svc.UpdateStatus(context.Background(), 5, dto.DeliveryStatusDto{Status: strPtr(model.DeliveryPickedUp)}); err != nil {
		t.Errorf("committed status change must not fail on a broker outage: %v", err)
	}
}
