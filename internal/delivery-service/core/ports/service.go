package ports

import (
	"context"

	"foodbridge/internal/delivery-service/core/domain/dto"
)

type IDeliveryService interface {
	Assign(ctx context.Context, orderID, courierID int64) (dto.DeliveryResponseDto, error)
	UpdateStatus(ctx context.Context, orderID int64, upd dto.DeliveryStatusDto) (dto.DeliveryResponseDto, error)
	ReportLocation(ctx context.Context, courierID, orderID int64, lat, lng float64) error
	CourierOrders(ctx context.Context, courierID int64, completed bool) ([]dto.CourierOrderDto, error)
}
