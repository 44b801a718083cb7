package room

import (
	"time"

	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
)

// Kind names an outbound message.
type Kind string

const (
	KindGameState    Kind = "game_state"
	KindMatchEnded   Kind = "match_ended"
	KindGameOver     Kind = "game_over"
	KindMatchAborted Kind = "match_aborted"
	KindMoveRejected Kind = "move_rejected"
)

// Sender delivers outbound messages to a user. Implementations must not
// block; a user that is offline simply misses the message.
type Sender interface {
	Send(userID int64, kind Kind, payload any)
}

type SeatView struct {
	Seat          int        `json:"seat"`
	Username      string     `json:"username"`
	IsBot         bool       `json:"is_bot"`
	CardCount     int        `json:"card_count"`
	Passed        bool       `json:"passed"`
	Score         int        `json:"score"`
	Disconnected  bool       `json:"disconnected"`
	GraceDeadline *time.Time `json:"grace_deadline,omitempty"`
}

type PlayView struct {
	Seat  int            `json:"seat"`
	Type  game.ComboType `json:"type"`
	Size  int            `json:"size"`
	Cards []models.Card  `json:"cards"`
}

// Snapshot is everything one seat may see. It is sent after every accepted
// change and on reconnect.
type Snapshot struct {
	RoomID      string                  `json:"room_id"`
	Seat        int                     `json:"seat"`
	Hand        []models.Card           `json:"hand"`
	Seats       [game.NumSeats]SeatView `json:"seats"`
	MatchNumber int                     `json:"match_number"`
	Phase       game.Phase              `json:"phase"`
	Turn        int                     `json:"turn"`
	Leader      int                     `json:"leader"`
	TrickID     int                     `json:"trick_id"`
	Standing    *PlayView               `json:"standing,omitempty"`
	FirstLead   bool                    `json:"first_lead"`
	History     []game.Move             `json:"history"`
	Scores      [game.NumSeats]int      `json:"scores"`
	GameOver    bool                    `json:"game_over"`
	Version     int                     `json:"version"`
}

type Rejection struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

type Aborted struct {
	Seat     int                `json:"seat"`
	Username string             `json:"username"`
	Reason   string             `json:"reason"`
	Scores   [game.NumSeats]int `json:"scores"`
}

func (r *Room) snapshot(seatIdx int) Snapshot {
	snap := Snapshot{
		RoomID:   r.ID,
		Seat:     seatIdx,
		Scores:   r.game.Scores,
		GameOver: r.game.Over(),
		Version:  r.version,
	}
	m := r.game.Match
	for i, s := range r.seats {
		v := SeatView{
			Seat:         i,
			Username:     s.player.Username,
			IsBot:        s.player.IsBot,
			Score:        r.game.Scores[i],
			Disconnected: s.disconnected,
		}
		if s.disconnected {
			deadline := s.graceDeadline
			v.GraceDeadline = &deadline
		}
		if m != nil {
			v.CardCount = len(m.Hands[i])
			v.Passed = m.Trick.Passed[i]
		}
		snap.Seats[i] = v
	}
	if m == nil {
		return snap
	}

	snap.Hand = append([]models.Card(nil), m.Hands[seatIdx]...)
	snap.MatchNumber = m.Number
	snap.Phase = m.Phase()
	snap.Turn = m.Turn
	snap.Leader = m.Leader
	snap.TrickID = m.Trick.ID
	snap.FirstLead = m.FirstLead
	snap.History = append([]game.Move(nil), m.History...)
	if st := m.Trick.Standing; st != nil {
		snap.Standing = &PlayView{
			Seat:  m.Trick.Owner,
			Type:  st.Type,
			Size:  st.Size(),
			Cards: append([]models.Card(nil), st.Cards...),
		}
	}
	return snap
}

// broadcastState sends every human seat its own snapshot.
func (r *Room) broadcastState() {
	r.publish()
	for _, s := range r.seats {
		if s.human() {
			r.sender.Send(s.player.UserID, KindGameState, r.snapshot(s.index))
		}
	}
}

func (r *Room) sendHumans(kind Kind, payload any, except int) {
	for _, s := range r.seats {
		if s.human() && s.index != except {
			r.sender.Send(s.player.UserID, kind, payload)
		}
	}
}
