package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
	"foodbridge/internal/order-service/core/ports"
)

type CartService struct {
	ctx          context.Context
	mylog        mylogger.Logger
	store        ports.CartStore
	lotRepo      ports.ILotRepo
	checkoutRepo ports.ICheckoutRepo
	ttl          time.Duration
}

func NewCartService(ctx context.Context,
	log mylogger.Logger,
	store ports.CartStore,
	lotRepo ports.ILotRepo,
	checkoutRepo ports.ICheckoutRepo,
	ttlSeconds int,
) ports.ICartService {
	return &CartService{
		ctx:          ctx,
		mylog:        log,
		store:        store,
		lotRepo:      lotRepo,
		checkoutRepo: checkoutRepo,
		ttl:          time.Duration(ttlSeconds) * time.Second,
	}
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (cs *CartService) GetBasket(ctx context.Context, userID int64) (dto.BasketResponseDto, error) {
	basket, ok := cs.store.Get(cartKey(userID))
	if !ok {
		basket = model.Basket{UserID: userID}
	}
	return basketToDto(basket), nil
}

func (cs *CartService) AddItem(ctx context.Context, userID int64, item dto.CartItemDto) (dto.BasketResponseDto, error) {
	log := cs.mylog.Action("AddCartItem")

	if item.DonationID == nil || item.Quantity == nil {
		return dto.BasketResponseDto{}, myerrors.NewValidation("donation_id and quantity are required")
	}
	if *item.Quantity <= 0 {
		return dto.BasketResponseDto{}, myerrors.NewValidation("quantity must be positive")
	}

	key := cartKey(userID)
	basket, ok := cs.store.Get(key)
	if !ok {
		basket = model.Basket{UserID: userID, CreatedAt: time.Now()}
	}

	// Same lot twice merges into one line.
	requested := *item.Quantity
	idx := -1
	for i, existing := range basket.Items {
		if existing.DonationID == *item.DonationID {
			idx = i
			requested += existing.Quantity
			break
		}
	}

	if err := cs.validateLot(ctx, *item.DonationID, requested); err != nil {
		return dto.BasketResponseDto{}, err
	}

	notes := ""
	if item.Notes != nil {
		notes = *item.Notes
	}
	if idx >= 0 {
		basket.Items[idx].Quantity = requested
		if notes != "" {
			basket.Items[idx].Notes = notes
		}
	} else {
		basket.Items = append(basket.Items, model.CartItem{
			DonationID: *item.DonationID,
			Quantity:   requested,
			Notes:      notes,
		})
	}

	basket.UpdatedAt = time.Now()
	cs.store.Set(key, basket, cs.ttl)
	log.Info("cart item added", "user-id", userID, "donation-id", *item.DonationID, "quantity", requested)
	return basketToDto(basket), nil
}

func (cs *CartService) UpdateItem(ctx context.Context, userID, donationID int64, upd dto.CartItemUpdateDto) (dto.BasketResponseDto, error) {
	if upd.Quantity == nil {
		return dto.BasketResponseDto{}, myerrors.NewValidation("quantity is required")
	}
	if *upd.Quantity <= 0 {
		return dto.BasketResponseDto{}, myerrors.NewValidation("quantity must be positive")
	}

	key := cartKey(userID)
	basket, ok := cs.store.Get(key)
	if !ok {
		return dto.BasketResponseDto{}, myerrors.NewNotFound("cart", cartKey(userID))
	}

	idx := -1
	for i, existing := range basket.Items {
		if existing.DonationID == donationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return dto.BasketResponseDto{}, myerrors.NewNotFound("cart item", fmt.Sprintf("%d", donationID))
	}

	if err := cs.validateLot(ctx, donationID, *upd.Quantity); err != nil {
		return dto.BasketResponseDto{}, err
	}

	basket.Items[idx].Quantity = *upd.Quantity
	basket.UpdatedAt = time.Now()
	cs.store.Set(key, basket, cs.ttl)
	return basketToDto(basket), nil
}

func (cs *CartService) RemoveItem(ctx context.Context, userID, donationID int64) (dto.BasketResponseDto, error) {
	key := cartKey(userID)
	basket, ok := cs.store.Get(key)
	if !ok {
		return dto.BasketResponseDto{}, myerrors.NewNotFound("cart", cartKey(userID))
	}

	items := basket.Items[:0]
	found := false
	for _, existing := range basket.Items {
		if existing.DonationID == donationID {
			found = true
			continue
		}
		items = append(items, existing)
	}
	if !found {
		return dto.BasketResponseDto{}, myerrors.NewNotFound("cart item", fmt.Sprintf("%d", donationID))
	}

	basket.Items = items
	basket.UpdatedAt = time.Now()
	cs.store.Set(key, basket, cs.ttl)
	return basketToDto(basket), nil
}

func (cs *CartService) ClearBasket(ctx context.Context, userID int64) error {
	cs.store.Delete(cartKey(userID))
	return nil
}

func (cs *CartService) Checkout(ctx context.Context, userID int64, req dto.CheckoutRequestDto) (dto.CheckoutResponseDto, error) {
	log := cs.mylog.Action("Checkout")

	if req.DeliveryAddress == nil || strings.TrimSpace(*req.DeliveryAddress) == "" {
		return dto.CheckoutResponseDto{}, myerrors.NewValidation("delivery_address is required")
	}

	key := cartKey(userID)
	basket, ok := cs.store.Get(key)
	if !ok || len(basket.Items) == 0 {
		return dto.CheckoutResponseDto{}, myerrors.NewValidation("cart is empty")
	}

	cart, err := cs.checkoutRepo.Checkout(ctx, userID, basket, *req.DeliveryAddress)
	if err != nil {
		log.Error("checkout failed", err)
		return dto.CheckoutResponseDto{}, err
	}

	// The quantities now live in the persisted cart; the basket is done.
	cs.store.Delete(key)

	log.Info("checkout completed", "user-id", userID, "cart-id", cart.ID, "delivery-fee", cart.DeliveryFee)
	return dto.CheckoutResponseDto{
		CartID:      cart.ID,
		DistanceKm:  cart.DistanceKm,
		DeliveryFee: cart.DeliveryFee,
		TotalAmount: cart.TotalAmount,
	}, nil
}

func (cs *CartService) validateLot(ctx context.Context, donationID int64, quantity float64) error {
	lot, err := cs.lotRepo.GetLot(ctx, donationID)
	if err != nil {
		return err
	}
	if lot.Status == model.LotUnavailable || !lot.ExpirationTime.After(time.Now()) {
		return myerrors.NewConflict(fmt.Sprintf("donation %d is no longer available", donationID), quantity, 0)
	}
	if lot.RemainingQuantity < quantity {
		return myerrors.NewConflict(fmt.Sprintf("not enough quantity for donation %d", donationID), quantity, lot.RemainingQuantity)
	}
	return nil
}

func basketToDto(basket model.Basket) dto.BasketResponseDto {
	total := 0.0
	for _, item := range basket.Items {
		total += item.Quantity
	}
	return dto.BasketResponseDto{
		UserID: basket.UserID,
		Items:  basket.Items,
		Total:  total,
	}
}
