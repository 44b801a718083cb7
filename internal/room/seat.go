package room

import (
	"time"

	"github.com/coder/quartz"

	"github.com/game-playzui/bigtwo-server/internal/models"
)

type seat struct {
	index  int
	player models.Player

	disconnected  bool
	expired       bool
	graceDeadline time.Time
	// generation changes on every disconnect and reconnect so a grace timer
	// can tell whether it still guards the same absence.
	generation int
	graceTimer *quartz.Timer
}

func (s *seat) human() bool {
	return !s.player.IsBot
}

func (s *seat) stopGrace() {
	if s.graceTimer != nil {
		s.graceTimer.Stop()
		s.graceTimer = nil
	}
}

func (r *Room) seatFor(userID int64) *seat {
	for _, s := range r.seats {
		if s.player.UserID == userID {
			return s
		}
	}
	return nil
}
