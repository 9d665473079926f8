package handle

import (
	"encoding/json"
	"fmt"
	"net/http"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/ports"
	"foodbridge/internal/mylogger"
)

type OrganizationHandler struct {
	orgService ports.IOrganizationService
	log        mylogger.Logger
}

func NewOrganizationHandler(os ports.IOrganizationService, log mylogger.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: os,
		log:        log,
	}
}

func (oh *OrganizationHandler) CreateOrganization() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		req := dto.OrganizationCreateDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		res, err := oh.orgService.Create(r.Context(), uid, req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, res)
	}
}

func (oh *OrganizationHandler) ListOrganizations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := oh.orgService.List(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (oh *OrganizationHandler) VerifyOrganization() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "organization_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid organization id"))
			return
		}

		if err := oh.orgService.Verify(r.Context(), id); err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{"status": "verified"})
	}
}
