package handlers

import (
	"net/http"
	"strings"

	"github.com/game-playzui/bigtwo-server/internal/models"
)

type RoomLister interface {
	List() []models.RoomInfo
}

// Lobby reports how many users are online and waiting for a match.
type Lobby interface {
	Online() int
	Waiting() int
}

type RoomHandler struct {
	rooms RoomLister
	lobby Lobby
}

func NewRoomHandler(rooms RoomLister, lobby Lobby) *RoomHandler {
	return &RoomHandler{rooms: rooms, lobby: lobby}
}

// ListRooms returns the live rooms. ?phase= keeps one phase and ?bots=false
// hides rooms with automated seats.
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	infos := h.rooms.List()

	if phase := r.URL.Query().Get("phase"); phase != "" {
		filtered := infos[:0]
		for _, info := range infos {
			if strings.EqualFold(string(info.Phase), phase) {
				filtered = append(filtered, info)
			}
		}
		infos = filtered
	}

	if r.URL.Query().Get("bots") == "false" {
		filtered := infos[:0]
		for _, info := range infos {
			if !info.HasBots {
				filtered = append(filtered, info)
			}
		}
		infos = filtered
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rooms":   infos,
		"total":   len(infos),
		"online":  h.lobby.Online(),
		"waiting": h.lobby.Waiting(),
	})
}
