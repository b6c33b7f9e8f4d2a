package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/racquetline/racquet-system/scoring"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub *scoring.Hub
}

func NewWebSocketHandler(hub *scoring.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeMatch подключает клиента к live-комнате матча:
// /ws/matches/{matchID}.
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := readIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.serveRoom(w, r, scoring.MatchRoom(matchID))
}

// ServeTournament подключает клиента к live-комнате турнира:
// /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.serveRoom(w, r, scoring.TournamentRoom(tournamentID))
}

func (h *WebSocketHandler) serveRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP-ошибку клиенту.
		slog.Error("failed to upgrade websocket connection",
			slog.String("room", roomID),
			slog.Any("error", err),
		)
		return
	}

	client := &scoring.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	slog.Info("websocket client joined room", slog.String("room", roomID))
}
