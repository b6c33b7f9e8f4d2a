package handlers

import (
	"errors"
	"net/http"

	"github.com/racquetline/racquet-system/scoring"
	"github.com/racquetline/racquet-system/services"
)

// CaptureHandler — HTTP-поверхность пульта судьи: открытие сессии
// и фиксация событий матча.
type CaptureHandler struct {
	captureService services.CaptureService
}

func NewCaptureHandler(captureService services.CaptureService) *CaptureHandler {
	return &CaptureHandler{captureService: captureService}
}

func (h *CaptureHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	matchID, err := readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.StartSessionInput
	// Тело опционально: без него подающего определяет жеребьёвка.
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	session, err := h.captureService.StartSession(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CaptureHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := readIDParam(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.captureService.GetSession(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CaptureHandler) GetActiveByMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.captureService.GetActiveByMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CaptureHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	sessionID, err := readIDParam(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	events, err := h.captureService.ListEvents(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CaptureHandler) RecordRally(w http.ResponseWriter, r *http.Request) {
	sessionID, err := readIDParam(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RallyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Type == "" {
		input.Type = scoring.EventPoint
	}

	session, err := h.captureService.RecordRally(r.Context(), sessionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CaptureHandler) RecordTimeout(w http.ResponseWriter, r *http.Request) {
	sessionID, side, err := sessionAndSide(w, r)
	if err != nil {
		return
	}

	session, err := h.captureService.RecordTimeout(r.Context(), sessionID, side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CaptureHandler) RecordAppeal(w http.ResponseWriter, r *http.Request) {
	sessionID, err := readIDParam(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Side scoring.Side `json:"side"`
		Won  bool         `json:"won"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.captureService.RecordAppeal(r.Context(), sessionID, input.Side, input.Won)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CaptureHandler) RecordTechnical(w http.ResponseWriter, r *http.Request) {
	sessionID, side, err := sessionAndSide(w, r)
	if err != nil {
		return
	}

	session, err := h.captureService.RecordTechnical(r.Context(), sessionID, side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// sessionAndSide разбирает общий для timeout/technical запрос: id сессии
// в пути, сторона в теле. Ответ об ошибке уже записан при err != nil.
func sessionAndSide(w http.ResponseWriter, r *http.Request) (int, scoring.Side, error) {
	sessionID, err := readIDParam(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, "", err
	}

	var input struct {
		Side scoring.Side `json:"side"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return 0, "", err
	}
	if !input.Side.Valid() {
		err := errors.New("side must be player1 or player2")
		badRequestResponse(w, r, err)
		return 0, "", err
	}
	return sessionID, input.Side, nil
}
