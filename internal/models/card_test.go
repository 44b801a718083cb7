package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCard(t *testing.T) {
	tests := []struct {
		token string
		want  Card
	}{
		{"3D", Card{Three, Diamonds}},
		{"10S", Card{Ten, Spades}},
		{"JC", Card{Jack, Clubs}},
		{"2H", Card{Two, Hearts}},
		{"A♠", Card{Ace, Spades}},
		{"10♦", Card{Ten, Diamonds}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseCard(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "D", "1D", "11S", "3X", "3DD", "ZZZZ"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, "token %q", bad)
	}
}

func TestCardOrdering(t *testing.T) {
	deck := NewDeck()
	for i := 1; i < len(deck); i++ {
		assert.Less(t, deck[i-1].Value(), deck[i].Value(), "%s vs %s", deck[i-1], deck[i])
	}
	assert.Equal(t, Card{Three, Diamonds}, deck[0])
	assert.Equal(t, Card{Two, Spades}, deck[51])

	// suit breaks ties within a rank: D < C < H < S
	assert.Negative(t, CompareCards(Card{Nine, Diamonds}, Card{Nine, Clubs}))
	assert.Negative(t, CompareCards(Card{Nine, Clubs}, Card{Nine, Hearts}))
	assert.Negative(t, CompareCards(Card{Nine, Hearts}, Card{Nine, Spades}))
	assert.Positive(t, CompareCards(Card{Two, Diamonds}, Card{Ace, Spades}))
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal([]Card{{Ten, Hearts}, {Three, Diamonds}})
	require.NoError(t, err)
	assert.JSONEq(t, `["10H","3D"]`, string(data))

	var back []Card
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Card{{Ten, Hearts}, {Three, Diamonds}}, back)
}

func TestDealCardsPartitionsDeck(t *testing.T) {
	for round := 0; round < 200; round++ {
		hands := DealCards(nil)

		seen := make(map[Card]int)
		for seat, hand := range hands {
			require.Len(t, hand, 13, "seat %d", seat)
			for _, c := range hand {
				seen[c]++
			}
		}
		require.Len(t, seen, 52)
		for c, n := range seen {
			require.Equal(t, 1, n, "card %s dealt %d times", c, n)
		}
	}
}

func TestDealCardsUsesShuffler(t *testing.T) {
	hands := DealCards(func([]Card) {})
	assert.Equal(t, NewDeck()[:13], hands[0])
	assert.True(t, ContainsCard(hands[0], ThreeOfDiamonds()))
}

func TestOwnsCards(t *testing.T) {
	hand := MustParseCards("3D", "4C", "9S")
	assert.True(t, OwnsCards(hand, MustParseCards("9S", "3D")))
	assert.False(t, OwnsCards(hand, MustParseCards("5D")))
	assert.False(t, OwnsCards(hand, MustParseCards("3D", "3D")))
}

func TestRemoveCards(t *testing.T) {
	hand := MustParseCards("3D", "4C", "9S", "2H")
	got := RemoveCards(hand, MustParseCards("4C", "2H"))
	assert.Equal(t, MustParseCards("3D", "9S"), got)
	assert.Len(t, hand, 4)
}

func TestSortCards(t *testing.T) {
	hand := []Card{{Two, Diamonds}, {Three, Spades}, {Ace, Spades}, {Three, Diamonds}, {Ten, Hearts}}
	sorted := SortedCopy(hand)
	assert.Equal(t, []Card{{Three, Diamonds}, {Three, Spades}, {Ten, Hearts}, {Ace, Spades}, {Two, Diamonds}}, sorted)
	assert.Equal(t, Card{Two, Diamonds}, hand[0], "input untouched")

	SortCards(hand)
	assert.Equal(t, sorted, hand)
}
