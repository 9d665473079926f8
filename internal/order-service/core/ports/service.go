package ports

import (
	"context"

	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
)

type ICartService interface {
	GetBasket(ctx context.Context, userID int64) (dto.BasketResponseDto, error)
	AddItem(ctx context.Context, userID int64, item dto.CartItemDto) (dto.BasketResponseDto, error)
	UpdateItem(ctx context.Context, userID, donationID int64, upd dto.CartItemUpdateDto) (dto.BasketResponseDto, error)
	RemoveItem(ctx context.Context, userID, donationID int64) (dto.BasketResponseDto, error)
	ClearBasket(ctx context.Context, userID int64) error
	Checkout(ctx context.Context, userID int64, req dto.CheckoutRequestDto) (dto.CheckoutResponseDto, error)
}

type IOrderService interface {
	Create(ctx context.Context, userID int64, req dto.OrderCreateDto) (dto.OrderResponseDto, error)
	Get(ctx context.Context, id int64) (dto.OrderResponseDto, error)
	List(ctx context.Context, filter dto.OrderFilterDto) ([]dto.OrderResponseDto, error)
	ListMine(ctx context.Context, userID int64) ([]dto.OrderResponseDto, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status string) error
}

type IRouteService interface {
	ComputeRoute(ctx context.Context, orderID int64) (model.Route, error)
	LatestRoute(ctx context.Context, orderID int64) (model.Route, error)
}
