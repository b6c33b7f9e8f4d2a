package handlers

import (
	"net/http"

	"github.com/racquetline/racquet-system/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OrganizerStats отдаёт статистику по турнирам текущего организатора.
func (h *DashboardHandler) OrganizerStats(w http.ResponseWriter, r *http.Request) {
	callerID, _, err := callerIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	stats, err := h.dashboardService.OrganizerStats(r.Context(), callerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
