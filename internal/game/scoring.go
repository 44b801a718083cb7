package game

// ScoreLimit ends the game once any cumulative score exceeds it.
const ScoreLimit = 100

// Penalty charges a loser for n cards left in hand: n for 1-4, 2n for 5-9,
// 3n for 10-13.
func Penalty(n int) int {
	switch {
	case n <= 0:
		return 0
	case n <= 4:
		return n
	case n <= 9:
		return 2 * n
	}
	return 3 * n
}

type MatchResult struct {
	Match     int           `json:"match_number"`
	Winner    int           `json:"winner"`
	Remaining [NumSeats]int `json:"remaining"`
	Deltas    [NumSeats]int `json:"penalties"`
	Scores    [NumSeats]int `json:"scores"`
}

type GameResult struct {
	Scores   [NumSeats]int `json:"scores"`
	Champion int           `json:"champion"`
	Exceeded []int         `json:"exceeded"`
}

// settle applies the penalties of a finished match to scores.
func settle(m *Match, scores *[NumSeats]int) MatchResult {
	res := MatchResult{Match: m.Number, Winner: m.Winner, Remaining: m.Remaining()}
	for s := 0; s < NumSeats; s++ {
		if s == m.Winner {
			continue
		}
		res.Deltas[s] = Penalty(res.Remaining[s])
		scores[s] += res.Deltas[s]
	}
	res.Scores = *scores
	return res
}

// gameOver returns the final result when a score has passed ScoreLimit.
func gameOver(scores [NumSeats]int) (*GameResult, bool) {
	var exceeded []int
	for s, v := range scores {
		if v > ScoreLimit {
			exceeded = append(exceeded, s)
		}
	}
	if len(exceeded) == 0 {
		return nil, false
	}
	champion := 0
	for s := 1; s < NumSeats; s++ {
		if scores[s] < scores[champion] {
			champion = s
		}
	}
	return &GameResult{Scores: scores, Champion: champion, Exceeded: exceeded}, true
}
