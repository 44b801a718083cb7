package game

import (
	"fmt"

	"github.com/game-playzui/bigtwo-server/internal/models"
)

type ComboType int

const (
	Invalid ComboType = iota
	Single
	Pair
	Triple
	// Five-card categories, weakest first. The order is the cross-category
	// ranking used by Compare.
	Straight
	Flush
	FullHouse
	FourKind
	StraightFlush
)

func (t ComboType) String() string {
	switch t {
	case Single:
		return "single"
	case Pair:
		return "pair"
	case Triple:
		return "triple"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "fullhouse"
	case FourKind:
		return "fourkind"
	case StraightFlush:
		return "straightflush"
	}
	return "invalid"
}

func (t ComboType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsFive reports whether t is one of the five-card categories.
func (t ComboType) IsFive() bool {
	return t >= Straight && t <= StraightFlush
}

// Combination is a classified set of cards. Key orders combinations of the
// same type; five-card types are ordered by Type first.
type Combination struct {
	Type  ComboType     `json:"type"`
	Cards []models.Card `json:"cards"`
	Key   int           `json:"-"`
}

func (c Combination) Size() int {
	return len(c.Cards)
}

func (c Combination) String() string {
	return fmt.Sprintf("%s%v", c.Type, models.CardStrings(c.Cards))
}

// Contains reports whether card is part of the combination.
func (c Combination) Contains(card models.Card) bool {
	return models.ContainsCard(c.Cards, card)
}

// straightWindows lists the ten legal straights from lowest to highest. The
// last rank of each window is its top card.
var straightWindows = [10][5]models.Rank{
	{models.Ace, models.Two, models.Three, models.Four, models.Five},
	{models.Two, models.Three, models.Four, models.Five, models.Six},
	{models.Three, models.Four, models.Five, models.Six, models.Seven},
	{models.Four, models.Five, models.Six, models.Seven, models.Eight},
	{models.Five, models.Six, models.Seven, models.Eight, models.Nine},
	{models.Six, models.Seven, models.Eight, models.Nine, models.Ten},
	{models.Seven, models.Eight, models.Nine, models.Ten, models.Jack},
	{models.Eight, models.Nine, models.Ten, models.Jack, models.Queen},
	{models.Nine, models.Ten, models.Jack, models.Queen, models.King},
	{models.Ten, models.Jack, models.Queen, models.King, models.Ace},
}

// Classify determines the combination formed by cards. The input slice is
// not modified and its order does not matter.
func Classify(cards []models.Card) (Combination, error) {
	sorted := models.SortedCopy(cards)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return Combination{}, fmt.Errorf("%w: duplicate card %s", ErrIllegalMove, sorted[i])
		}
	}

	switch len(sorted) {
	case 1:
		return Combination{Type: Single, Cards: sorted, Key: sorted[0].Value()}, nil
	case 2:
		if sorted[0].Rank != sorted[1].Rank {
			return Combination{}, fmt.Errorf("%w: a pair needs two cards of the same rank", ErrIllegalMove)
		}
		// sorted[1] carries the higher suit
		return Combination{Type: Pair, Cards: sorted, Key: sorted[1].Value()}, nil
	case 3:
		if sorted[0].Rank != sorted[1].Rank || sorted[1].Rank != sorted[2].Rank {
			return Combination{}, fmt.Errorf("%w: a triple needs three cards of the same rank", ErrIllegalMove)
		}
		return Combination{Type: Triple, Cards: sorted, Key: int(sorted[0].Rank)}, nil
	case 5:
		return classifyFive(sorted)
	}
	return Combination{}, fmt.Errorf("%w: %d cards is not a combination", ErrIllegalMove, len(cards))
}

func classifyFive(sorted []models.Card) (Combination, error) {
	window, top, isStraight := straightWindow(sorted)
	flush := sameSuit(sorted)

	if isStraight && flush {
		return Combination{Type: StraightFlush, Cards: sorted, Key: window*4 + int(top.Suit)}, nil
	}

	counts := rankCounts(sorted)
	for rank, n := range counts {
		if n == 4 {
			return Combination{Type: FourKind, Cards: sorted, Key: int(rank)}, nil
		}
	}
	if len(counts) == 2 {
		for rank, n := range counts {
			if n == 3 {
				return Combination{Type: FullHouse, Cards: sorted, Key: int(rank)}, nil
			}
		}
	}

	if flush {
		high := sorted[len(sorted)-1]
		return Combination{Type: Flush, Cards: sorted, Key: int(high.Suit)*13 + int(high.Rank)}, nil
	}
	if isStraight {
		return Combination{Type: Straight, Cards: sorted, Key: window*4 + int(top.Suit)}, nil
	}
	return Combination{}, fmt.Errorf("%w: five cards must form a straight, flush, full house, four of a kind or straight flush", ErrIllegalMove)
}

// straightWindow finds the window whose ranks exactly match the five cards
// and returns its index and the card sitting at the window's top rank.
func straightWindow(sorted []models.Card) (int, models.Card, bool) {
	byRank := make(map[models.Rank]models.Card, 5)
	for _, c := range sorted {
		if _, dup := byRank[c.Rank]; dup {
			return 0, models.Card{}, false
		}
		byRank[c.Rank] = c
	}
	for i, w := range straightWindows {
		match := true
		for _, r := range w {
			if _, ok := byRank[r]; !ok {
				match = false
				break
			}
		}
		if match {
			return i, byRank[w[4]], true
		}
	}
	return 0, models.Card{}, false
}

func sameSuit(cards []models.Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

func rankCounts(cards []models.Card) map[models.Rank]int {
	m := make(map[models.Rank]int, len(cards))
	for _, c := range cards {
		m[c.Rank]++
	}
	return m
}
