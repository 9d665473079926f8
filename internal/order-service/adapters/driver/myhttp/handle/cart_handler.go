package handle

import (
	"encoding/json"
	"fmt"
	"net/http"

	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/core/domain/dto"
	"foodbridge/internal/order-service/core/ports"
)

type CartHandler struct {
	cartService ports.ICartService
	log         mylogger.Logger
}

func NewCartHandler(cs ports.ICartService, log mylogger.Logger) *CartHandler {
	return &CartHandler{
		cartService: cs,
		log:         log,
	}
}

func (ch *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		res, err := ch.cartService.GetBasket(r.Context(), uid)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (ch *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		req := dto.CartItemDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := ch.cartService.AddItem(r.Context(), uid, req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

func (ch *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		donationID, err := pathID(r, "donation_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid donation id"))
			return
		}

		req := dto.CartItemUpdateDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := ch.cartService.UpdateItem(r.Context(), uid, donationID, req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (ch *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		donationID, err := pathID(r, "donation_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid donation id"))
			return
		}

		res, err := ch.cartService.RemoveItem(r.Context(), uid, donationID)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (ch *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		if err := ch.cartService.ClearBasket(r.Context(), uid); err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusNoContent, nil)
	}
}

func (ch *CartHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		req := dto.CheckoutRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := ch.cartService.Checkout(r.Context(), uid, req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}
