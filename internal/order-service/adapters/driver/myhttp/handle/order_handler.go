package handle

import (
	"encoding/json"
	"fmt"
	"net/http"

	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/ports"
)

type OrderHandler struct {
	orderService ports.IOrderService
	routeService ports.IRouteService
	log          mylogger.Logger
}

func NewOrderHandler(os ports.IOrderService, rs ports.IRouteService, log mylogger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: os,
		routeService: rs,
		log:          log,
	}
}

func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		req := dto.OrderCreateDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := oh.orderService.Create(r.Context(), uid, req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "order_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid order id"))
			return
		}

		res, err := oh.orderService.Get(r.Context(), id)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := dto.OrderFilterDto{
			Status:        r.URL.Query().Get("status"),
			PaymentStatus: r.URL.Query().Get("payment_status"),
		}

		res, err := oh.orderService.List(r.Context(), filter)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (oh *OrderHandler) ListMyOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		res, err := oh.orderService.ListMine(r.Context(), uid)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (oh *OrderHandler) UpdatePaymentStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "order_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid order id"))
			return
		}

		req := dto.PaymentStatusDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if req.PaymentStatus == nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("payment_status is required"))
			return
		}

		if err := oh.orderService.UpdatePaymentStatus(r.Context(), id, *req.PaymentStatus); err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{"payment_status": *req.PaymentStatus})
	}
}

// GetRoute recomputes nothing: it serves the newest persisted route.
func (oh *OrderHandler) GetRoute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "order_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid order id"))
			return
		}

		res, err := oh.routeService.LatestRoute(r.Context(), id)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
