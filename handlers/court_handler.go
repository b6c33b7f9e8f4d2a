package handlers

import (
	"net/http"

	"github.com/racquetline/racquet-system/services"
)

type CourtHandler struct {
	courtService services.CourtService
}

func NewCourtHandler(courtService services.CourtService) *CourtHandler {
	return &CourtHandler{courtService: courtService}
}

func (h *CourtHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	court, err := h.courtService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourtHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, role, err := callerIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CourtInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	court, err := h.courtService.Update(r.Context(), id, userID, role, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, role, err := callerIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.courtService.Delete(r.Context(), id, userID, role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
