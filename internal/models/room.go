package models

type RoomPhase string

const (
	PhasePlaying  RoomPhase = "PLAYING"
	PhaseBetween  RoomPhase = "BETWEEN_MATCHES"
	PhaseGameOver RoomPhase = "GAME_OVER"
	PhaseAborted  RoomPhase = "ABORTED"
)

// Player is who sits in a seat when a room is created.
type Player struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsBot    bool   `json:"is_bot"`
}

type SeatInfo struct {
	Player
	SeatIndex    int  `json:"seat_index"`
	CardCount    int  `json:"card_count"`
	Score        int  `json:"score"`
	Disconnected bool `json:"disconnected"`
}

// RoomInfo is the public view of a room for the lobby list
type RoomInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phase       RoomPhase  `json:"phase"`
	MatchNumber int        `json:"match_number"`
	Seats       []SeatInfo `json:"seats"`
	HasBots     bool       `json:"has_bots"`
	// Champion is the winning seat once the game is over.
	Champion    *int       `json:"champion,omitempty"`
}

func (r RoomInfo) HumanPlayerCount() int {
	count := 0
	for _, s := range r.Seats {
		if !s.IsBot {
			count++
		}
	}
	return count
}
