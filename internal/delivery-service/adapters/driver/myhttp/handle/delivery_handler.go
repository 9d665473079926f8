package handle

import (
	"encoding/json"
	"net/http"

	"foodbridge/internal/delivery-service/core/domain/dto"
	"foodbridge/internal/delivery-service/core/ports"
	"foodbridge/internal/mylogger"
)

type DeliveryHandler struct {
	mylog   mylogger.Logger
	service ports.IDeliveryService
}

func NewDeliveryHandler(mylog mylogger.Logger, service ports.IDeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		mylog:   mylog,
		service: service,
	}
}

func (dh *DeliveryHandler) Assign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := dh.mylog.Action("Assign")

		orderID, err := pathID(r, "order_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		var req dto.AssignDto
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("cannot parse request", "error", err.Error())
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		// An admin names the courier, a courier assigns themselves.
		courierID := int64(0)
		if req.CourierID != nil {
			courierID = *req.CourierID
		} else if courierID, err = userID(r); err != nil {
			JsonError(w, http.StatusUnauthorized, err)
			return
		}

		delivery, err := dh.service.Assign(r.Context(), orderID, courierID)
		if err != nil {
			log.Warn("cannot assign courier", "order-id", orderID, "error", err.Error())
			serviceError(w, err)
			return
		}

		log.Info("courier assigned", "order-id", orderID, "courier-id", courierID)
		jsonResponse(w, http.StatusCreated, delivery)
	}
}

func (dh *DeliveryHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := dh.mylog.Action("UpdateDeliveryStatus")

		orderID, err := pathID(r, "order_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		var req dto.DeliveryStatusDto
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("cannot parse request", "error", err.Error())
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		delivery, err := dh.service.UpdateStatus(r.Context(), orderID, req)
		if err != nil {
			log.Warn("cannot update delivery status", "order-id", orderID, "error", err.Error())
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, delivery)
	}
}

func (dh *DeliveryHandler) CourierOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := dh.mylog.Action("CourierOrders")

		courierID, err := pathID(r, "courier_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		completed := r.URL.Query().Get("completed") == "true"

		orders, err := dh.service.CourierOrders(r.Context(), courierID, completed)
		if err != nil {
			log.Warn("cannot list courier orders", "courier-id", courierID, "error", err.Error())
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, orders)
	}
}
