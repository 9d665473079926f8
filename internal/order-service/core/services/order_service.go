package services

import (
	"context"
	"errors"
	"time"

	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/domain/model"
	"foodbridge/internal/order-service/core/ports"
)

var allowedPaymentStatuses = map[string]bool{
	model.PaymentPending:   true,
	model.PaymentConfirmed: true,
	model.PaymentPaid:      true,
	model.PaymentFailed:    true,
}

type OrderService struct {
	ctx       context.Context
	mylog     mylogger.Logger
	orderRepo ports.IOrderRepo
	routes    ports.IRouteService
}

func NewOrderService(ctx context.Context,
	log mylogger.Logger,
	orderRepo ports.IOrderRepo,
	routes ports.IRouteService,
) ports.IOrderService {
	return &OrderService{
		ctx:       ctx,
		mylog:     log,
		orderRepo: orderRepo,
		routes:    routes,
	}
}

func (os *OrderService) Create(ctx context.Context, userID int64, req dto.OrderCreateDto) (dto.OrderResponseDto, error) {
	log := os.mylog.Action("CreateOrder")

	if req.CartID == nil {
		return dto.OrderResponseDto{}, myerrors.NewValidation("cart_id is required")
	}
	address := ""
	if req.DeliveryAddress != nil {
		address = *req.DeliveryAddress
	}

	order, err := os.orderRepo.CreateFromCart(ctx, *req.CartID, userID, address)
	if err != nil {
		log.Error("cannot create order", err)
		return dto.OrderResponseDto{}, err
	}
	log.Info("order created", "order-id", order.ID, "cart-id", order.CartID, "user-id", userID)

	// The order exists regardless of whether the tour can be planned right
	// now; a failed route computation is retried on demand.
	res := orderToDto(order)
	rctx, cancel := context.WithTimeout(os.ctx, time.Second*30)
	defer cancel()
	route, err := os.routes.ComputeRoute(rctx, order.ID)
	if err != nil {
		log.Error("route computation failed", err)
	} else {
		res.Route = &route
	}

	items, err := os.orderRepo.Items(ctx, order.ID)
	if err == nil {
		res.Items = linesToDto(items)
	}
	return res, nil
}

func (os *OrderService) Get(ctx context.Context, id int64) (dto.OrderResponseDto, error) {
	order, err := os.orderRepo.GetByID(ctx, id)
	if err != nil {
		return dto.OrderResponseDto{}, err
	}

	res := orderToDto(order)

	items, err := os.orderRepo.Items(ctx, id)
	if err != nil {
		return dto.OrderResponseDto{}, err
	}
	res.Items = linesToDto(items)

	route, err := os.routes.LatestRoute(ctx, id)
	if err != nil {
		var notFound *myerrors.NotFoundError
		if !errors.As(err, &notFound) {
			return dto.OrderResponseDto{}, err
		}
	} else {
		res.Route = &route
	}
	return res, nil
}

func (os *OrderService) List(ctx context.Context, filter dto.OrderFilterDto) ([]dto.OrderResponseDto, error) {
	orders, err := os.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ordersToDto(orders), nil
}

func (os *OrderService) ListMine(ctx context.Context, userID int64) ([]dto.OrderResponseDto, error) {
	orders, err := os.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ordersToDto(orders), nil
}

func (os *OrderService) UpdatePaymentStatus(ctx context.Context, id int64, status string) error {
	log := os.mylog.Action("UpdatePaymentStatus")

	if !allowedPaymentStatuses[status] {
		return myerrors.NewValidation("unknown payment status. Allowed statuses are: pending, confirmed, paid, failed")
	}
	if err := os.orderRepo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return err
	}
	log.Info("payment status updated", "order-id", id, "payment-status", status)
	return nil
}

func orderToDto(m model.Order) dto.OrderResponseDto {
	return dto.OrderResponseDto{
		ID:              m.ID,
		CartID:          m.CartID,
		UserID:          m.UserID,
		DeliveryAddress: m.DeliveryAddress,
		DeliveryFee:     m.DeliveryFee,
		TotalAmount:     m.TotalAmount,
		Status:          m.Status,
		PaymentStatus:   m.PaymentStatus,
		CreatedAt:       m.CreatedAt,
	}
}

func ordersToDto(ms []model.Order) []dto.OrderResponseDto {
	res := make([]dto.OrderResponseDto, 0, len(ms))
	for _, m := range ms {
		res = append(res, orderToDto(m))
	}
	return res
}

func linesToDto(lines []model.CartLine) []dto.OrderItemDto {
	items := make([]dto.OrderItemDto, 0, len(lines))
	for _, l := range lines {
		items = append(items, dto.OrderItemDto{
			DonationID:    l.DonationID,
			FoodType:      l.FoodType,
			Quantity:      l.Quantity,
			PickupAddress: l.PickupAddress,
			Notes:         l.Notes,
		})
	}
	return items
}
