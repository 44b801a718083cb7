package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/game-playzui/bigtwo-server/internal/auth"
	"github.com/game-playzui/bigtwo-server/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub        *ws.Hub
	jwtService *auth.JWTService
	logger     *log.Logger
}

func NewWSHandler(hub *ws.Hub, jwtService *auth.JWTService, logger *log.Logger) *WSHandler {
	return &WSHandler{
		hub:        hub,
		jwtService: jwtService,
		logger:     logger.WithPrefix("ws"),
	}
}

// HandleUpgrade authenticates the socket before upgrading it. The token's
// user id is the identity the room binds the seat to.
func (h *WSHandler) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "user", claims.UserID, "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID, claims.Username)
	h.hub.Register <- client
	go client.WritePump()
	go client.ReadPump()
}
