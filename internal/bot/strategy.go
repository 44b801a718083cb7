package bot

import (
	"math/rand"

	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
)

// View is what an automated seat sees when it has to act.
type View struct {
	Hand      []models.Card
	Standing  *game.Combination
	FirstLead bool
	// OpponentCounts holds the card counts of the other three seats.
	OpponentCounts []int
}

// Decision is either a pass or a combination to play.
type Decision struct {
	Pass  bool
	Combo game.Combination
}

// Choose picks the move for an automated seat. rng only breaks the
// mid-game coin flip; with a nil rng the weakest beating play is taken.
func Choose(v View, rng *rand.Rand) Decision {
	all := Enumerate(v.Hand)
	if v.Standing == nil {
		return Decision{Combo: chooseLead(all, v.FirstLead)}
	}
	return chooseResponse(all, *v.Standing, minCount(v.OpponentCounts), rng)
}

// chooseLead sheds the weakest five-card hand first, then the weakest pair,
// then the lowest single.
func chooseLead(all []game.Combination, firstLead bool) game.Combination {
	var singles, pairs, fives []game.Combination
	for _, c := range all {
		if firstLead && !c.Contains(models.ThreeOfDiamonds()) {
			continue
		}
		switch {
		case c.Type.IsFive():
			fives = append(fives, c)
		case c.Type == game.Pair:
			pairs = append(pairs, c)
		case c.Type == game.Single:
			singles = append(singles, c)
		}
	}
	switch {
	case len(fives) > 0:
		return fives[0]
	case len(pairs) > 0:
		return pairs[0]
	}
	return singles[0]
}

func chooseResponse(all []game.Combination, standing game.Combination, minOpp int, rng *rand.Rand) Decision {
	var beats []game.Combination
	for _, c := range all {
		if c.Size() == standing.Size() && game.CanBeat(&standing, c) {
			beats = append(beats, c)
		}
	}
	if len(beats) == 0 {
		return Decision{Pass: true}
	}

	switch {
	case minOpp <= 3:
		return Decision{Combo: beats[len(beats)-1]}
	case minOpp <= 5 && rng != nil && rng.Intn(2) == 0:
		return Decision{Combo: beats[len(beats)/2]}
	}
	return Decision{Combo: beats[0]}
}

func minCount(counts []int) int {
	if len(counts) == 0 {
		return game.HandSize
	}
	m := counts[0]
	for _, n := range counts[1:] {
		if n < m {
			m = n
		}
	}
	return m
}
