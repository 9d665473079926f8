package services

import (
	"context"
	"time"

	"foodbridge/internal/delivery-service/core/domain/dto"
	"foodbridge/internal/delivery-service/core/domain/model"
	"foodbridge/internal/delivery-service/core/ports"
	"foodbridge/internal/myerrors"
	"foodbridge/internal/mylogger"

	messagebrokerdto "foodbridge/internal/delivery-service/core/domain/message_broker_dto"

	"github.com/google/uuid"
)

type DeliveryService struct {
	ctx          context.Context
	mylog        mylogger.Logger
	deliveryRepo ports.IDeliveryRepo
	broker       ports.IDeliveryBroker
}

func NewDeliveryService(ctx context.Context,
	log mylogger.Logger,
	deliveryRepo ports.IDeliveryRepo,
	broker ports.IDeliveryBroker,
) ports.IDeliveryService {
	return &DeliveryService{
		ctx:          ctx,
		mylog:        log,
		deliveryRepo: deliveryRepo,
		broker:       broker,
	}
}

func (ds *DeliveryService) Assign(ctx context.Context, orderID, courierID int64) (dto.DeliveryResponseDto, error) {
	log := ds.mylog.Action("AssignDelivery")

	m, err := ds.deliveryRepo.Assign(ctx, orderID, courierID)
	if err != nil {
		log.Error("cannot assign delivery", err)
		return dto.DeliveryResponseDto{}, err
	}
	log.Info("delivery assigned", "order-id", orderID, "courier-id", courierID)

	ds.publishStatus(m)
	return deliveryToDto(m), nil
}

func (ds *DeliveryService) UpdateStatus(ctx context.Context, orderID int64, upd dto.DeliveryStatusDto) (dto.DeliveryResponseDto, error) {
	log := ds.mylog.Action("UpdateDeliveryStatus")

	if upd.Status == nil {
		return dto.DeliveryResponseDto{}, myerrors.NewValidation("status is required")
	}
	if !model.ValidStatus(*upd.Status) {
		return dto.DeliveryResponseDto{}, myerrors.NewValidation("unknown status. Allowed statuses are: assigned, picked_up, in_transit, delivered")
	}
	if (upd.Lat == nil) != (upd.Lng == nil) {
		return dto.DeliveryResponseDto{}, myerrors.NewValidation("lat and lng must come together")
	}

	m, err := ds.deliveryRepo.UpdateStatus(ctx, orderID, *upd.Status)
	if err != nil {
		log.Error("cannot update delivery status", err)
		return dto.DeliveryResponseDto{}, err
	}
	log.Info("delivery status updated", "order-id", orderID, "status", m.Status)

	if upd.Lat != nil {
		if err := ds.deliveryRepo.RecordLocation(ctx, m.CourierID, *upd.Lat, *upd.Lng); err != nil {
			log.Error("cannot record courier location", err)
		}
	}

	ds.publishStatus(m)
	return deliveryToDto(m), nil
}

func (ds *DeliveryService) ReportLocation(ctx context.Context, courierID, orderID int64, lat, lng float64) error {
	return ds.deliveryRepo.RecordLocation(ctx, courierID, lat, lng)
}

func (ds *DeliveryService) CourierOrders(ctx context.Context, courierID int64, completed bool) ([]dto.CourierOrderDto, error) {
	list, err := ds.deliveryRepo.ListByCourier(ctx, courierID, completed)
	if err != nil {
		return nil, err
	}
	res := make([]dto.CourierOrderDto, 0, len(list))
	for _, co := range list {
		res = append(res, dto.CourierOrderDto{
			OrderID:         co.OrderID,
			Status:          co.Status,
			DeliveryAddress: co.DeliveryAddress,
			DeliveryFee:     co.DeliveryFee,
			TotalAmount:     co.TotalAmount,
			OrderStatus:     co.OrderStatus,
			PickupTime:      co.PickupTime,
			DeliveryTime:    co.DeliveryTime,
		})
	}
	return res, nil
}

// publishStatus tells the world about a status change. The change is already
// committed, so a broker outage only costs the notification.
func (ds *DeliveryService) publishStatus(m model.Delivery) {
	log := ds.mylog.Action("publishStatus")

	msg := messagebrokerdto.DeliveryStatus{
		OrderID:       m.OrderID,
		CourierID:     m.CourierID,
		Status:        m.Status,
		Timestamp:     time.Now().Format(time.RFC3339),
		CorrelationID: uuid.NewString(),
	}

	ctx, cancel := context.WithTimeout(ds.ctx, time.Second*15)
	defer cancel()
	if err := ds.broker.PublishStatus(ctx, msg); err != nil {
		log.Error("Failed to publish message", err)
	}
}

func deliveryToDto(m model.Delivery) dto.DeliveryResponseDto {
	return dto.DeliveryResponseDto{
		ID:           m.ID,
		OrderID:      m.OrderID,
		CourierID:    m.CourierID,
		Status:       m.Status,
		PickupTime:   m.PickupTime,
		DeliveryTime: m.DeliveryTime,
	}
}
