package handle

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"foodbridge/internal/allocation-service/core/domain/dto"
	"foodbridge/internal/allocation-service/core/ports"
	"foodbridge/internal/mylogger"
)

type AllocationHandler struct {
	allocationService ports.IAllocationService
	log               mylogger.Logger
}

func NewAllocationHandler(as ports.IAllocationService, log mylogger.Logger) *AllocationHandler {
	return &AllocationHandler{
		allocationService: as,
		log:               log,
	}
}

func (ah *AllocationHandler) RunSolvePass() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := ah.allocationService.RunSolvePass(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (ah *AllocationHandler) ListAllocations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := ah.allocationService.ListAll(r.Context())
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (ah *AllocationHandler) ListMyAllocations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		res, err := ah.allocationService.ListForUser(r.Context(), uid)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

// RespondToAllocation handles the NGO decision: ACCEPT commits inventory,
// REJECT removes the proposal.
func (ah *AllocationHandler) RespondToAllocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			JsonError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		id, err := pathID(r, "allocation_id")
		if err != nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid allocation id"))
			return
		}

		req := dto.AllocationActionDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if req.Action == nil {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("action is required"))
			return
		}

		switch strings.ToUpper(*req.Action) {
		case "ACCEPT":
			err = ah.allocationService.Accept(r.Context(), uid, id)
		case "REJECT":
			err = ah.allocationService.Reject(r.Context(), uid, id)
		default:
			JsonError(w, http.StatusBadRequest, fmt.Errorf("unknown action %q. Allowed actions are: ACCEPT, REJECT", *req.Action))
			return
		}
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{"status": strings.ToUpper(*req.Action) + "ED"})
	}
}

func (ah *AllocationHandler) ManualAllocate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.ManualAllocationDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		id, err := ah.allocationService.ManualAllocate(r.Context(), req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, map[string]interface{}{
			"allocation_id": id,
			"status":        "PENDING",
		})
	}
}
