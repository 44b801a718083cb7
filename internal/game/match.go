package game

import (
	"fmt"

	"github.com/game-playzui/bigtwo-server/internal/models"
)

const (
	NumSeats     = 4
	HandSize     = 13
	historyLimit = 8
)

type Phase string

const (
	PhaseAwaitingLead     Phase = "awaiting_lead"
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseFinished         Phase = "finished"
)

// Move is one entry of the play history: a combination or a pass.
type Move struct {
	Seat  int          `json:"seat"`
	Pass  bool         `json:"pass"`
	Combo *Combination `json:"combo,omitempty"`
}

// Trick is the live contest over a single standing play.
type Trick struct {
	ID       int
	Standing *Combination
	Owner    int
	Passed   [NumSeats]bool
}

// Match is one deal played out until a hand empties.
type Match struct {
	Number    int
	Hands     [NumSeats][]models.Card
	Turn      int
	Leader    int
	Trick     Trick
	FirstLead bool
	History   []Move
	Winner    int
}

// NewMatch takes ownership of hands. opener leads the first trick; with
// firstLead set that lead must contain the 3 of diamonds.
func NewMatch(number int, hands [NumSeats][]models.Card, opener int, firstLead bool) *Match {
	return &Match{
		Number:    number,
		Hands:     hands,
		Turn:      opener,
		Leader:    opener,
		Trick:     Trick{ID: 1, Owner: -1},
		FirstLead: firstLead,
		Winner:    -1,
	}
}

func (m *Match) Phase() Phase {
	switch {
	case m.Winner >= 0:
		return PhaseFinished
	case m.Trick.Standing == nil:
		return PhaseAwaitingLead
	}
	return PhaseAwaitingResponse
}

func (m *Match) Finished() bool {
	return m.Winner >= 0
}

// Remaining returns each seat's card count.
func (m *Match) Remaining() [NumSeats]int {
	var out [NumSeats]int
	for i, h := range m.Hands {
		out[i] = len(h)
	}
	return out
}

// NextEligibleSeat walks clockwise from `from` and returns the first seat
// that has not passed, or -1 if every other seat has.
func NextEligibleSeat(from int, passed [NumSeats]bool) int {
	for i := 1; i < NumSeats; i++ {
		s := (from + i) % NumSeats
		if !passed[s] {
			return s
		}
	}
	return -1
}

func (m *Match) checkActive(seat int) error {
	if m.Finished() {
		return fmt.Errorf("%w: match %d has finished", ErrOutOfTurn, m.Number)
	}
	if seat < 0 || seat >= NumSeats {
		return fmt.Errorf("%w: seat %d does not exist", ErrOutOfTurn, seat)
	}
	return nil
}

func (m *Match) checkTurn(seat int) error {
	if err := m.checkActive(seat); err != nil {
		return err
	}
	if seat != m.Turn {
		return fmt.Errorf("%w: it is seat %d's turn", ErrOutOfTurn, m.Turn)
	}
	return nil
}

// Play validates and applies cards for seat. On error the match is left
// untouched.
func (m *Match) Play(seat int, cards []models.Card) (Combination, error) {
	if err := m.checkTurn(seat); err != nil {
		return Combination{}, err
	}
	if len(cards) == 0 {
		return Combination{}, fmt.Errorf("%w: no cards submitted", ErrIllegalMove)
	}
	if !models.OwnsCards(m.Hands[seat], cards) {
		return Combination{}, fmt.Errorf("%w: you do not hold %v", ErrIllegalMove, models.CardStrings(cards))
	}

	combo, err := Classify(cards)
	if err != nil {
		return Combination{}, err
	}

	standing := m.Trick.Standing
	if standing == nil && m.FirstLead && !combo.Contains(models.ThreeOfDiamonds()) {
		return Combination{}, fmt.Errorf("%w: the opening play must include the 3%s", ErrIllegalMove, models.Diamonds.Symbol())
	}
	if standing != nil {
		if combo.Size() != standing.Size() {
			return Combination{}, fmt.Errorf("%w: must play %d cards to match the table", ErrIllegalMove, standing.Size())
		}
		if !CanBeat(standing, combo) {
			return Combination{}, fmt.Errorf("%w: %s does not beat %s", ErrIllegalMove, combo, *standing)
		}
	}

	m.Hands[seat] = models.RemoveCards(m.Hands[seat], combo.Cards)
	if standing == nil {
		m.Leader = seat
	}
	m.FirstLead = false
	m.Trick.Standing = &combo
	m.Trick.Owner = seat
	m.Trick.Passed[seat] = false
	m.record(Move{Seat: seat, Combo: &combo})

	if len(m.Hands[seat]) == 0 {
		m.Winner = seat
		return combo, nil
	}
	m.Turn = NextEligibleSeat(seat, m.Trick.Passed)
	return combo, nil
}

// Pass concedes the standing play. It reports whether the trick closed.
// Passing on a fresh trick is refused whoever asks.
func (m *Match) Pass(seat int) (bool, error) {
	if err := m.checkActive(seat); err != nil {
		return false, err
	}
	if m.Trick.Standing == nil {
		return false, fmt.Errorf("%w: nothing has been played in this trick", ErrInvalidPassContext)
	}
	if err := m.checkTurn(seat); err != nil {
		return false, err
	}
	if m.Trick.Owner == seat {
		return false, fmt.Errorf("%w: you own the standing play", ErrInvalidPassContext)
	}

	m.Trick.Passed[seat] = true
	m.record(Move{Seat: seat, Pass: true})

	if m.allOthersPassed() {
		m.closeTrick()
		return true, nil
	}
	m.Turn = NextEligibleSeat(seat, m.Trick.Passed)
	return false, nil
}

func (m *Match) allOthersPassed() bool {
	for s := 0; s < NumSeats; s++ {
		if s != m.Trick.Owner && !m.Trick.Passed[s] {
			return false
		}
	}
	return true
}

func (m *Match) closeTrick() {
	owner := m.Trick.Owner
	m.Leader = owner
	m.Turn = owner
	m.Trick = Trick{ID: m.Trick.ID + 1, Owner: -1}
}

func (m *Match) record(mv Move) {
	m.History = append(m.History, mv)
	if len(m.History) > historyLimit {
		m.History = m.History[len(m.History)-historyLimit:]
	}
}
