package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
)

// lockingCheckoutRepo serializes checkouts on a mutex the way the database
// serializes them on the row lock, decrementing a shared remaining quantity.
type lockingCheckoutRepo struct {
	mu        sync.Mutex
	remaining map[int64]float64
	nextID    int64
}

func (r *lockingCheckoutRepo) Checkout(ctx context.Context, userID int64, basket model.Basket, deliveryAddress string) (model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range basket.Items {
		if r.remaining[item.DonationID] < item.Quantity {
			return model.Cart{}, myerrors.NewConflict("not enough quantity", item.Quantity, r.remaining[item.DonationID])
		}
	}
	for _, item := range basket.Items {
		r.remaining[item.DonationID] -= item.Quantity
	}
	r.nextID++
	return model.Cart{ID: r.nextID, UserID: userID}, nil
}

func TestConcurrentCheckoutOnLastUnit(t *testing.T) {
	repo := &lockingCheckoutRepo{remaining: map[int64]float64{7: 1}}
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatal(err)
	}
	checkoutSvc := NewCartService(context.Background(), log, newFakeStore(),
		&fakeLotRepo{lots: map[int64]model.Lot{7: availableLot(1)}}, repo, 900)

	// Both users hold a basket wanting the last unit.
	for _, userID := range []int64{1, 2} {
		if _, err := checkoutSvc.AddItem(context.Background(), userID, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(1)}); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, results[i] = checkoutSvc.Checkout(context.Background(), userID, dto.CheckoutRequestDto{DeliveryAddress: ptrS("1 Depot St")})
		}(i, userID)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		default:
			var conflict *myerrors.ConflictError
			if !errors.As(err, &conflict) {
				t.Errorf("unexpected error: %v", err)
				continue
			}
			conflicts++
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Errorf("got %d successes and %d conflicts, want exactly one of each", successes, conflicts)
	}
	if repo.remaining[7] != 0 {
		t.Errorf("remaining = %v, want 0", repo.remaining[7])
	}
}
