package ports

import (
	"context"
	"time"

	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
)

// CartStore is the ephemeral basket store. Set replaces the whole basket and
// refreshes its TTL.
type CartStore interface {
	Get(key string) (model.Basket, bool)
	Set(key string, basket model.Basket, ttl time.Duration)
	Delete(key string)
	Keys() []string
}

// ILotRepo is the order side's read view of donation lots.
type ILotRepo interface {
	GetLot(ctx context.Context, id int64) (model.Lot, error)
}

// ICheckoutRepo runs the checkout ledger: one transaction that locks every
// referenced lot, re-validates it and moves the quantities into a persisted
// cart.
type ICheckoutRepo interface {
	Checkout(ctx context.Context, userID int64, basket model.Basket, deliveryAddress string) (model.Cart, error)
}

type IOrderRepo interface {
	CreateFromCart(ctx context.Context, cartID, userID int64, deliveryAddress string) (model.Order, error)
	GetByID(ctx context.Context, id int64) (model.Order, error)
	List(ctx context.Context, filter dto.OrderFilterDto) ([]model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	Items(ctx context.Context, orderID int64) ([]model.CartLine, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status string) error
}

type IRouteRepo interface {
	Create(ctx context.Context, route model.Route) (int64, error)
	LatestRoute(ctx context.Context, orderID int64) (model.Route, error)
}
