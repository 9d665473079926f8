package ports

import (
	"context"

	"foodbridge/internal/delivery-service/core/domain/model"
	messagebrokerdto "foodbridge/internal/delivery-service/core/domain/message_broker_dto"
)

type IDeliveryRepo interface {
	// Assign upserts the delivery for an order and moves the order to
	// in_progress.
	Assign(ctx context.Context, orderID, courierID int64) (model.Delivery, error)
	GetByOrder(ctx context.Context, orderID int64) (model.Delivery, error)
	// UpdateStatus advances the state machine under a row lock, stamping
	// pickup/delivery times and completing the order on delivered.
	UpdateStatus(ctx context.Context, orderID int64, status string) (model.Delivery, error)
	// RecordLocation updates the courier's current position and appends to
	// the history unless the last sample is younger than the dedup window.
	RecordLocation(ctx context.Context, courierID int64, lat, lng float64) error
	ListByCourier(ctx context.Context, courierID int64, completed bool) ([]model.CourierOrder, error)
}

type IDeliveryBroker interface {
	PublishStatus(ctx context.Context, msg messagebrokerdto.DeliveryStatus) error
	Close() error
}
