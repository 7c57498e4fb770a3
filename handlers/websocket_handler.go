package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/intramural-draws/brackets"
	"github.com/Dosada05/intramural-draws/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub          *brackets.Hub
	sportService services.SportService
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewWebSocketHandler принимает список разрешённых Origin; "*" разрешает все.
func NewWebSocketHandler(hub *brackets.Hub, ss services.SportService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:          hub,
		sportService: ss,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs подключает зрителя к комнате вида спорта: /ws/sports/{sportID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sportID, err := getIDFromURL(r, "sportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.sportService.GetSportByID(r.Context(), sportID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("websocket upgrade failed", slog.Int("sport_id", sportID), slog.Any("error", err))
		return
	}

	roomID := brackets.SportRoom(sportID)
	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	if !h.hub.Add(client) {
		// Сервер останавливается.
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client registered", slog.String("room", roomID))
}
