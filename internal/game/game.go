package game

import (
	"errors"
	"fmt"

	"github.com/game-playzui/bigtwo-server/internal/models"
)

// Game carries a room's rules state across matches: cumulative scores, the
// current match and the final result once the score limit is passed.
type Game struct {
	Scores      [NumSeats]int
	MatchNumber int
	Match       *Match
	LastResult  *MatchResult
	Result      *GameResult

	shuffle func([]models.Card)
}

// Outcome describes what an accepted play or pass changed.
type Outcome struct {
	Combo       *Combination
	TrickClosed bool
	MatchResult *MatchResult
	GameResult  *GameResult
}

// NewGame uses shuffle for every deal; nil means models.ShuffleDeck.
func NewGame(shuffle func([]models.Card)) *Game {
	return &Game{shuffle: shuffle}
}

func (g *Game) Over() bool {
	return g.Result != nil
}

// InProgress reports whether a match is being played right now.
func (g *Game) InProgress() bool {
	return g.Match != nil && !g.Match.Finished()
}

// Deal shuffles a fresh deck and starts the next match.
func (g *Game) Deal() (*Match, error) {
	return g.StartMatch(models.DealCards(g.shuffle))
}

// StartMatch begins the next match with the given hands. The first match is
// opened by whoever holds the 3 of diamonds and must lead it; later matches
// are opened by the previous winner with no constraint.
func (g *Game) StartMatch(hands [NumSeats][]models.Card) (*Match, error) {
	if g.Over() {
		return nil, errors.New("game is over")
	}
	if g.InProgress() {
		return nil, fmt.Errorf("match %d is still in progress", g.Match.Number)
	}

	number := g.MatchNumber + 1
	opener := -1
	firstLead := number == 1
	if firstLead {
		for s, h := range hands {
			if models.ContainsCard(h, models.ThreeOfDiamonds()) {
				opener = s
				break
			}
		}
		if opener < 0 {
			return nil, errors.New("no seat holds the 3 of diamonds")
		}
	} else {
		opener = g.LastResult.Winner
	}

	g.MatchNumber = number
	g.Match = NewMatch(number, hands, opener, firstLead)
	return g.Match, nil
}

func (g *Game) current() (*Match, error) {
	if g.Over() {
		return nil, fmt.Errorf("%w: the game is over", ErrOutOfTurn)
	}
	if g.Match == nil {
		return nil, fmt.Errorf("%w: no match in progress", ErrOutOfTurn)
	}
	return g.Match, nil
}

func (g *Game) Play(seat int, cards []models.Card) (Outcome, error) {
	m, err := g.current()
	if err != nil {
		return Outcome{}, err
	}
	combo, err := m.Play(seat, cards)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Combo: &combo}
	if m.Finished() {
		g.finish(m, &out)
	}
	return out, nil
}

func (g *Game) Pass(seat int) (Outcome, error) {
	m, err := g.current()
	if err != nil {
		return Outcome{}, err
	}
	closed, err := m.Pass(seat)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{TrickClosed: closed}, nil
}

func (g *Game) finish(m *Match, out *Outcome) {
	res := settle(m, &g.Scores)
	g.LastResult = &res
	out.MatchResult = &res
	if final, over := gameOver(g.Scores); over {
		g.Result = final
		out.GameResult = final
	}
}
