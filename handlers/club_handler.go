package handlers

import (
	"errors"
	"net/http"

	"github.com/racquetline/racquet-system/middleware"
	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/services"
)

type ClubHandler struct {
	clubService  services.ClubService
	courtService services.CourtService
}

func NewClubHandler(clubService services.ClubService, courtService services.CourtService) *ClubHandler {
	return &ClubHandler{
		clubService:  clubService,
		courtService: courtService,
	}
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.ClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.Create(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"clubs": clubs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, role, err := callerIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.ClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.Update(r.Context(), id, userID, role, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, role, err := callerIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, errors.New("logo file is required"))
		return
	}
	defer file.Close()

	club, err := h.clubService.UploadLogo(r.Context(), id, userID, role, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, role, err := callerIdentity(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.clubService.Delete(r.Context(), id, userID, role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Корты клуба ---

func (h *ClubHandler) CreateCourt(w http.ResponseWriter, r *http.Request) {
	clubID, err := readIDParam(r, "clubID")
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

	court, err := h.courtService.Create(r.Context(), clubID, userID, role, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) ListCourts(w http.ResponseWriter, r *http.Request) {
	clubID, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	courts, err := h.courtService.ListByClub(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"courts": courts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// callerIdentity достаёт идентификатор и роль текущего пользователя из контекста.
func callerIdentity(r *http.Request) (int, models.UserRole, error) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return 0, "", err
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return 0, "", err
	}
	return userID, role, nil
}
