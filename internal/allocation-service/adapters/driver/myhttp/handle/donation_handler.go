package handle

import (
	"encoding/json"
	"fmt"
	"net/http"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/ports"
	"foodbridge/internal/mylogger"
)

type DonationHandler struct {
	donationService ports.IDonationService
	log             mylogger.Logger
}

func NewDonationHandler(ds ports.IDonationService, log mylogger.Logger) *DonationHandler {
	return &DonationHandler{
		donationService: ds,
		log:             log,
	}
}

func (dh *DonationHandler) CreateDonation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		donorID, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		req := dto.DonationCreateDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := dh.donationService.Create(r.Context(), donorID, req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

func (dh *DonationHandler) GetDonation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "donation_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid donation id"))
			return
		}

		res, err := dh.donationService.Get(r.Context(), id)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (dh *DonationHandler) ListDonations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := dh.donationService.ListAvailable(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (dh *DonationHandler) UpdateDonation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		donorID, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		id, err := pathID(r, "donation_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid donation id"))
			return
		}

		patch := dto.DonationPatch{}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := dh.donationService.Update(r.Context(), id, donorID, patch)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (dh *DonationHandler) DeleteDonation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		donorID, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		id, err := pathID(r, "donation_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid donation id"))
			return
		}

		if err := dh.donationService.Delete(r.Context(), id, donorID); err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusNoContent, nil)
	}
}
