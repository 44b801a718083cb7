package models

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strings"
)

// Suit order, low to high: diamonds, clubs, hearts, spades.
type Suit int

const (
	Diamonds Suit = iota // lowest
	Clubs
	Hearts
	Spades // highest
)

func (s Suit) String() string {
	return [...]string{"D", "C", "H", "S"}[s]
}

func (s Suit) Symbol() string {
	return [...]string{"♦", "♣", "♥", "♠"}[s]
}

func ParseSuit(s string) (Suit, error) {
	switch s {
	case "D", "♦":
		return Diamonds, nil
	case "C", "♣":
		return Clubs, nil
	case "H", "♥":
		return Hearts, nil
	case "S", "♠":
		return Spades, nil
	}
	return 0, fmt.Errorf("invalid suit: %s", s)
}

type Rank int

const (
	Three Rank = iota
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	Two // highest
)

func (r Rank) String() string {
	return [...]string{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2"}[r]
}

func ParseRank(s string) (Rank, error) {
	switch s {
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	case "2":
		return Two, nil
	}
	return 0, fmt.Errorf("invalid rank: %s", s)
}

type Card struct {
	Rank Rank
	Suit Suit
}

// ParseCard reads a rank token followed by a one-character suit token,
// e.g. "3D", "10S" or "A♠".
func ParseCard(token string) (Card, error) {
	token = strings.TrimSpace(token)
	runes := []rune(token)
	if len(runes) < 2 || len(runes) > 3 {
		return Card{}, fmt.Errorf("invalid card: %q", token)
	}
	rank, err := ParseRank(string(runes[:len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", token, err)
	}
	suit, err := ParseSuit(string(runes[len(runes)-1:]))
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", token, err)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustParseCards panics on a bad token. Meant for fixtures.
func MustParseCards(tokens ...string) []Card {
	cards := make([]Card, len(tokens))
	for i, t := range tokens {
		c, err := ParseCard(t)
		if err != nil {
			panic(err)
		}
		cards[i] = c
	}
	return cards
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	parsed, err := ParseCard(token)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value returns a single integer for comparison: rank * 4 + suit
func (c Card) Value() int {
	return int(c.Rank)*4 + int(c.Suit)
}

// CompareCards orders cards by rank, then suit.
func CompareCards(a, b Card) int {
	return a.Value() - b.Value()
}

func SortCards(cards []Card) {
	slices.SortFunc(cards, CompareCards)
}

// SortedCopy returns the cards in ascending order without touching the input.
func SortedCopy(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	SortCards(out)
	return out
}

func CardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for r := Three; r <= Two; r++ {
		for s := Diamonds; s <= Spades; s++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

func ShuffleDeck(deck []Card) {
	n := len(deck)
	for i := n - 1; i > 0; i-- {
		jBig, _ := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		j := jBig.Int64()
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// DealCards shuffles a fresh deck with shuffle (ShuffleDeck when nil) and
// splits it into four sorted 13-card hands.
func DealCards(shuffle func([]Card)) [4][]Card {
	if shuffle == nil {
		shuffle = ShuffleDeck
	}
	deck := NewDeck()
	shuffle(deck)

	var hands [4][]Card
	for i := 0; i < 4; i++ {
		hands[i] = make([]Card, 13)
		copy(hands[i], deck[i*13:(i+1)*13])
		SortCards(hands[i])
	}
	return hands
}

func ThreeOfDiamonds() Card {
	return Card{Rank: Three, Suit: Diamonds}
}

func ContainsCard(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

// OwnsCards reports whether every card in played is in hand, counting
// repeats, so a duplicated token is never accepted.
func OwnsCards(hand, played []Card) bool {
	counts := make(map[Card]int, len(hand))
	for _, c := range hand {
		counts[c]++
	}
	for _, c := range played {
		if counts[c] <= 0 {
			return false
		}
		counts[c]--
	}
	return true
}

func RemoveCards(hand []Card, cards []Card) []Card {
	result := make([]Card, 0, len(hand))
	remove := make(map[Card]bool)
	for _, c := range cards {
		remove[c] = true
	}
	for _, c := range hand {
		if !remove[c] {
			result = append(result, c)
		} else {
			delete(remove, c)
		}
	}
	return result
}
