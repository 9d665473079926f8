package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/adapters/driven/cartstore"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
)

// Readers must never observe a basket whose items slice is still being
// mutated by a writer, so adds and reads run against the real store here.
func TestConcurrentAddAndReadBasket(t *testing.T) {
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := cartstore.New(ctx, log, time.Hour)
	svc := NewCartService(ctx, log, store,
		&fakeLotRepo{lots: map[int64]model.Lot{7: availableLot(1000)}}, &fakeCheckoutRepo{}, 900)

	const adds = 50
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < adds; i++ {
			if _, err := svc.AddItem(ctx, 1, dto.CartItemDto{DonationID: ptrI(7), Quantity: ptrF(1)}); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < adds; i++ {
			res, err := svc.GetBasket(ctx, 1)
			if err != nil {
				t.Error(err)
				return
			}
			for _, item := range res.Items {
				if item.Quantity < 1 {
					t.Errorf("observed torn cart item: %+v", item)
					return
				}
			}
		}
	}()
	wg.Wait()

	res, err := svc.GetBasket(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 1 || res.Items[0].Quantity != adds {
		t.Errorf("final basket = %+v, want one line with quantity %d", res.Items, adds)
	}
}
