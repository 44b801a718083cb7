package bot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
)

func hand(tokens ...string) []models.Card {
	return models.MustParseCards(tokens...)
}

func standing(t *testing.T, tokens ...string) *game.Combination {
	t.Helper()
	c, err := game.Classify(hand(tokens...))
	require.NoError(t, err)
	return &c
}

func TestEnumerate(t *testing.T) {
	h := hand("3D", "3C", "3H", "4D", "5C", "6H", "7S")
	all := Enumerate(h)

	counts := make(map[game.ComboType]int)
	for _, c := range all {
		counts[c.Type]++
		assert.True(t, models.OwnsCards(h, c.Cards), "%s not in hand", c)
	}
	assert.Equal(t, 7, counts[game.Single])
	assert.Equal(t, 3, counts[game.Pair])
	assert.Equal(t, 1, counts[game.Triple])
	assert.Equal(t, 3, counts[game.Straight])
	assert.Len(t, all, 14)

	for i := 1; i < len(all); i++ {
		if all[i-1].Size() == all[i].Size() {
			assert.LessOrEqual(t, game.Compare(all[i-1], all[i]), 0)
		} else {
			assert.Less(t, all[i-1].Size(), all[i].Size())
		}
	}
}

func TestEnumerateFullHand(t *testing.T) {
	hands := models.DealCards(nil)
	for _, h := range hands {
		all := Enumerate(h)
		for _, c := range all {
			again, err := game.Classify(c.Cards)
			require.NoError(t, err)
			require.Equal(t, c.Type, again.Type)
		}
		assert.GreaterOrEqual(t, len(all), game.HandSize)
	}
}

func TestChooseLead(t *testing.T) {
	tests := []struct {
		name      string
		hand      []string
		firstLead bool
		want      game.ComboType
		wantCards []string
	}{
		{"five card hand first", []string{"3D", "4C", "6D", "6C", "6H", "9S", "9H"}, false, game.FullHouse, []string{"6D", "6C", "6H", "9H", "9S"}},
		{"pair when no five", []string{"3D", "5D", "5C", "9H", "9S", "JC"}, false, game.Pair, []string{"5D", "5C"}},
		{"lowest single", []string{"4S", "7D", "JC", "2H"}, false, game.Single, []string{"4S"}},
		{"opening needs the three", []string{"3D", "4C", "6D", "6C", "6H", "9S", "9H"}, true, game.Single, []string{"3D"}},
		{"opening pair with the three", []string{"3D", "3S", "5D", "5C", "9H"}, true, game.Pair, []string{"3D", "3S"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Choose(View{Hand: hand(tt.hand...), FirstLead: tt.firstLead}, nil)
			require.False(t, d.Pass)
			assert.Equal(t, tt.want, d.Combo.Type)
			assert.Equal(t, models.SortedCopy(hand(tt.wantCards...)), models.SortedCopy(d.Combo.Cards))
		})
	}
}

func TestChooseResponse(t *testing.T) {
	h := hand("4C", "10D", "JS", "KH", "2S")
	nine := standing(t, "9D")

	d := Choose(View{Hand: h, Standing: nine, OpponentCounts: []int{10, 11, 12}}, rand.New(rand.NewSource(1)))
	assert.Equal(t, hand("10D"), d.Combo.Cards, "conserve strong cards")

	d = Choose(View{Hand: h, Standing: nine, OpponentCounts: []int{10, 3, 12}}, rand.New(rand.NewSource(1)))
	assert.Equal(t, hand("2S"), d.Combo.Cards, "stop an opponent about to finish")

	seen := make(map[string]bool)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		d = Choose(View{Hand: h, Standing: nine, OpponentCounts: []int{5, 9, 9}}, rng)
		seen[d.Combo.Cards[0].String()] = true
	}
	assert.Equal(t, map[string]bool{"10D": true, "KH": true}, seen)
}

func TestChoosePasses(t *testing.T) {
	d := Choose(View{Hand: hand("4C", "5D", "8H"), Standing: standing(t, "2S"), OpponentCounts: []int{2, 2, 2}}, nil)
	assert.True(t, d.Pass)

	d = Choose(View{Hand: hand("4C", "5D", "8H"), Standing: standing(t, "3D", "3C"), OpponentCounts: []int{9, 9, 9}}, nil)
	assert.True(t, d.Pass, "no pair to answer with")

	d = Choose(View{Hand: hand("4C", "5D", "6H", "7S", "8D", "9D"), Standing: standing(t, "JD", "JC", "JH", "3S", "3C"), OpponentCounts: []int{9, 9, 9}}, nil)
	assert.True(t, d.Pass, "a straight does not beat a full house")
}

func TestBotsPlayWholeGame(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := game.NewGame(func(deck []models.Card) {
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	})

	for moves := 0; !g.Over(); moves++ {
		require.Less(t, moves, 100000, "game did not finish")
		if !g.InProgress() {
			_, err := g.Deal()
			require.NoError(t, err)
		}
		m := g.Match
		seat := m.Turn
		var opp []int
		for s, n := range m.Remaining() {
			if s != seat {
				opp = append(opp, n)
			}
		}
		d := Choose(View{Hand: m.Hands[seat], Standing: m.Trick.Standing, FirstLead: m.FirstLead, OpponentCounts: opp}, rng)
		var err error
		if d.Pass {
			_, err = g.Pass(seat)
		} else {
			_, err = g.Play(seat, d.Combo.Cards)
		}
		require.NoError(t, err, "seat %d decision %+v", seat, d)
	}
	assert.NotNil(t, g.Result)
}

func TestNames(t *testing.T) {
	names := Names(rand.New(rand.NewSource(1)), 3)
	assert.Len(t, names, 3)
	assert.NotEqual(t, names[0], names[1])
	assert.NotEqual(t, names[1], names[2])
	assert.Less(t, NextID(), int64(0))
}
