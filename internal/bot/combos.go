package bot

import (
	"sort"

	"github.com/game-playzui/bigtwo-server/internal/game"
	"github.com/game-playzui/bigtwo-server/internal/models"
)

// Enumerate lists every combination the hand can form, each accepted by
// game.Classify. The result is grouped by size (1, 2, 3, 5) and sorted
// weakest first within each size.
func Enumerate(hand []models.Card) []game.Combination {
	hand = models.SortedCopy(hand)
	var out []game.Combination

	add := func(cards []models.Card) {
		c, err := game.Classify(cards)
		if err == nil {
			out = append(out, c)
		}
	}

	for _, c := range hand {
		add([]models.Card{c})
	}
	for _, p := range findPairs(hand) {
		add(p)
	}
	for _, t := range findTriples(hand) {
		add(t)
	}
	forEachFive(hand, add)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Size() != out[j].Size() {
			return out[i].Size() < out[j].Size()
		}
		return game.Compare(out[i], out[j]) < 0
	})
	return out
}

func findPairs(hand []models.Card) [][]models.Card {
	var pairs [][]models.Card
	for _, group := range groupByRank(hand) {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				pairs = append(pairs, []models.Card{group[i], group[j]})
			}
		}
	}
	return pairs
}

func findTriples(hand []models.Card) [][]models.Card {
	var triples [][]models.Card
	for _, group := range groupByRank(hand) {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				for k := j + 1; k < len(group); k++ {
					triples = append(triples, []models.Card{group[i], group[j], group[k]})
				}
			}
		}
	}
	return triples
}

// forEachFive calls fn with every five-card subset of hand. At most
// C(13,5) = 1287 subsets.
func forEachFive(hand []models.Card, fn func([]models.Card)) {
	n := len(hand)
	if n < 5 {
		return
	}
	idx := [5]int{0, 1, 2, 3, 4}
	for {
		pick := make([]models.Card, 5)
		for i, k := range idx {
			pick[i] = hand[k]
		}
		fn(pick)

		i := 4
		for i >= 0 && idx[i] == n-5+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < 5; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// groupByRank buckets cards by rank, lowest rank first.
func groupByRank(cards []models.Card) [][]models.Card {
	byRank := make(map[models.Rank][]models.Card)
	var ranks []models.Rank
	for _, c := range cards {
		if _, ok := byRank[c.Rank]; !ok {
			ranks = append(ranks, c.Rank)
		}
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

	groups := make([][]models.Card, len(ranks))
	for i, r := range ranks {
		groups[i] = byRank[r]
	}
	return groups
}
