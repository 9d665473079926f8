package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
)

type fakeStore struct {
	baskets map[string]model.Basket
}

func newFakeStore() *fakeStore {
	return &fakeStore{baskets: make(map[string]model.Basket)}
}

func (f *fakeStore) Get(key string) (model.Basket, bool) {
	b, ok := f.baskets[key]
	return b, ok
}

func (f *fakeStore) Set(key string, basket model.Basket, ttl time.Duration) {
	f.baskets[key] = basket
}

func (f *fakeStore) Delete(key string) {
	delete(f.baskets, key)
}

func (f *fakeStore) Keys() []string {
	keys := make([]string, 0, len(f.baskets))
	for k := range f.baskets {
		keys = append(keys, k)
	}
	return keys
}

type fakeLotRepo struct {
	lots map[int64]model.Lot
}

func (f *fakeLotRepo) GetLot(ctx context.Context, id int64) (model.Lot, error) {
	lot, ok := f.lots[id]
	if !ok {
		return model.Lot{}, myerrors.NewNotFound("donation", "missing")
	}
	return lot, nil
}

type fakeCheckoutRepo struct {
	calls int
	cart  model.Cart
	err   error
}

func (f *fakeCheckoutRepo) Checkout(ctx context.Context, userID int64, basket model.Basket, deliveryAddress string) (model.Cart, error) {
	f.calls++
	if f.err != nil {
		return model.Cart{}, f.err
	}
	return f.cart, nil
}

func newCartFixture(t *testing.T, lots map[int64]model.Lot, checkout *fakeCheckoutRepo) (*fakeStore, *CartService) {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatal(err)
	}
	store := newFakeStore()
	svc := NewCartService(context.Background(), log, store, &fakeLotRepo{lots: lots}, checkout, 900)
	return store, svc.(*CartService)
}

func availableLot(qty float64) model.Lot {
	return model.Lot{
		RemainingQuantity: qty,
		Status:            model.LotAvailable,
		ExpirationTime:    time.Now().Add(24 * time.Hour),
	}
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }
func ptrS(v string) *string   { return &v }

func asErr(err error, target any) bool { return errors.As(err, target) }

func TestAddItemMergesSameLot(t *testing.T) {
	_, svc := newCartFixture(t, map[int64]model.Lot{7: availableLot(10)}, &fakeCheckoutRepo{})

	if _, err := svc.AddItem(context.Background(), 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(3)}); err != nil {
		t.Fatal(err)
	}
	basket, err := svc.AddItem(context.Background(), 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(4)})
	if err != nil {
		t.Fatal(err)
	}

	if len(basket.Items) != 1 {
		t.Fatalf("got %d lines, want the merged 1", len(basket.Items))
	}
	if basket.Items[0].Quantity != 7 {
		t.Errorf("merged quantity = %v, want 7", basket.Items[0].Quantity)
	}
	if basket.Total != 7 {
		t.Errorf("total = %v, want 7", basket.Total)
	}
}

func TestAddItemMergedQuantityChecksRemaining(t *testing.T) {
	_, svc := newCartFixture(t, map[int64]model.Lot{7: availableLot(5)}, &fakeCheckoutRepo{})

	if _, err := svc.AddItem(context.Background(), 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(4)}); err != nil {
		t.Fatal(err)
	}

	// 4 already held, 3 more exceeds the 5 remaining.
	_, err := svc.AddItem(context.Background(), 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(3)})
	var conflict *myerrors.ConflictError
	if !asErr(err, &conflict) {
		t.Fatalf("got %v, want a conflict", err)
	}
	if conflict.Required != 7 || conflict.Available != 5 {
		t.Errorf("conflict = required %v available %v, want 7/5", conflict.Required, conflict.Available)
	}
}

func TestAddItemRejectsExpiredLot(t *testing.T) {
	expired := model.Lot{
		RemainingQuantity: 10,
		Status:            model.LotAvailable,
		ExpirationTime:    time.Now().Add(-time.Minute),
	}
	_, svc := newCartFixture(t, map[int64]model.Lot{7: expired}, &fakeCheckoutRepo{})

	_, err := svc.AddItem(context.Background(), 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(1)})
	var conflict *myerrors.ConflictError
	if !asErr(err, &conflict) {
		t.Fatalf("got %v, want a conflict", err)
	}
}

func TestAddItemValidation(t *testing.T) {
	_, svc := newCartFixture(t, map[int64]model.Lot{7: availableLot(10)}, &fakeCheckoutRepo{})

	cases := []dto.CartItemDto{
		{Quantity: ptrF(1)},
		{DonationID: ptrI(7)},
		{DonationID: ptrI(7), Quantity: ptrF(0)},
		{DonationID: ptrI(7), Quantity: ptrF(-2)},
	}
	for i, c := range cases {
		_, err := svc.AddItem(context.Background(), 1, c)
		var validation *myerrors.ValidationError
		if !asErr(err, &validation) {
			t.Errorf("case %d: got %v, want a validation error", i, err)
		}
	}
}

func TestCheckoutClearsBasket(t *testing.T) {
	checkout := &fakeCheckoutRepo{cart: model.Cart{ID: 42, DistanceKm: 8.4, DeliveryFee: 13, TotalAmount: 13}}
	store, svc := newCartFixture(t, map[int64]model.Lot{7: availableLot(10)}, checkout)

	if _, err := svc.AddItem(context.Background(), 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(3)}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Checkout(context.Background(), 1, dto.CheckoutRequestDto{DeliveryAddress: ptrS("1 Depot St")})
	if err != nil {
		t.Fatal(err)
	}

	if res.CartID != 42 || res.DeliveryFee != 13 {
		t.Errorf("response = %+v", res)
	}
	if checkout.calls != 1 {
		t.Errorf("checkout repo called %d times, want 1", checkout.calls)
	}
	if _, ok := store.Get(cartKey(1)); ok {
		t.Error("basket must be dropped after a successful checkout")
	}
}

func TestCheckoutKeepsBasketOnFailure(t *testing.T) {
	checkout := &fakeCheckoutRepo{err: myerrors.NewConflict("not enough quantity for donation 7", 3, 1)}
	store, svc := newCartFixture(t, map[int64]model.Lot{7: availableLot(10)}, checkout)

	if _, err := svc.AddItem(context.Background(), 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(3)}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Checkout(context.Background(), 1, dto.CheckoutRequestDto{DeliveryAddress: ptrS("1 Depot St")}); err == nil {
		t.Fatal("checkout must surface the repo conflict")
	}
	if _, ok := store.Get(cartKey(1)); !ok {
		t.Error("basket must survive a failed checkout")
	}
}

func TestCheckoutRejectsEmptyCartAndMissingAddress(t *testing.T) {
	_, svc := newCartFixture(t, nil, &fakeCheckoutRepo{})

	var validation *myerrors.ValidationError
	if _, err := svc.Checkout(context.Background(), 1, dto.CheckoutRequestDto{}); !asErr(err, &validation) {
		t.Errorf("missing address: got %v, want a validation error", err)
	}
	if _, err := svc.Checkout(context.Background(), 1, dto.CheckoutRequestDto{DeliveryAddress: ptrS("  ")}); !asErr(err, &validation) {
		t.Errorf("blank address: got %v, want a validation error", err)
	}
	if _, err := svc.Checkout(context.Background(), 1, dto.CheckoutRequestDto{DeliveryAddress: ptrS("1 Depot St")}); !asErr(err, &validation) {
		t.Errorf("empty cart: got %v, want a validation error", err)
	}
}

func TestRemoveAndUpdateItem(t *testing.T) {
	_, svc := newCartFixture(t, map[int64]model.Lot{7: availableLot(10), 8: availableLot(10)}, &fakeCheckoutRepo{})

	ctx := context.Background()
	if _, err := svc.AddItem(ctx, 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(3)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem(ctx, 1, dto.CartItemDto{DonationID: ptrI(8), Quantity: ptrF(2)}); err != nil {
		t.Fatal(err)
	}

	basket, err := svc.UpdateItem(ctx, 1, 7, dto.CartItemUpdateDto{Quantity: ptrF(5)})
	if err != nil {
		t.Fatal(err)
	}
	if basket.Total != 7 {
		t.Errorf("total after update = %v, want 7", basket.Total)
	}

	basket, err = svc.RemoveItem(ctx, 1, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(basket.Items) != 1 || basket.Items[0].DonationID != 7 {
		t.Errorf("items after remove = %+v", basket.Items)
	}

	var notFound *myerrors.NotFoundError
	if _, err := svc.RemoveItem(ctx, 1, 99); !asErr(err, &notFound) {
		t.Errorf("removing a missing line: got %v, want not found", err)
	}
}
