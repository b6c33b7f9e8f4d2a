package handlers

import (
	"net/http"

	"github.com/racquetline/racquet-system/services"
)

type SportHandler struct {
	sportService services.SportService
}

func NewSportHandler(sportService services.SportService) *SportHandler {
	return &SportHandler{sportService: sportService}
}

func (h *SportHandler) List(w http.ResponseWriter, r *http.Request) {
	sports, err := h.sportService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sports": sports}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "sportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sport, err := h.sportService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sport": sport}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Rules отдаёт параметры счёта вида спорта (пороги, форматы сетов).
func (h *SportHandler) Rules(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "sportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rules, err := h.sportService.RulesFor(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rules": rules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
