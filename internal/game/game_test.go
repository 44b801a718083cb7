package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/game-playzui/bigtwo-server/internal/models"
)

func TestPenalty(t *testing.T) {
	tests := []struct {
		left, want int
	}{
		{0, 0}, {1, 1}, {4, 4}, {5, 10}, {9, 18}, {10, 30}, {13, 39},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Penalty(tt.left), "%d cards left", tt.left)
	}
}

// quickHands lets seat 0 open with 3D and seat 1 win on the next play.
func quickHands() [NumSeats][]models.Card {
	return [NumSeats][]models.Card{
		cards("3D", "5S", "6S", "7S", "8S"),
		cards("4D"),
		cards("9D", "9C", "9H"),
		cards("JD", "JC", "JH", "JS", "QD", "QC", "QH", "QS", "KD", "KC", "KH", "KS", "AD"),
	}
}

func playQuickMatch(t *testing.T, g *Game) Outcome {
	t.Helper()
	m, err := g.StartMatch(quickHands())
	require.NoError(t, err)
	if m.FirstLead {
		_, err = g.Play(m.Turn, cards("3D"))
	} else {
		require.Equal(t, 1, m.Turn)
		// seat 1 opens freely and goes out at once
		_, err = g.Play(0, cards("3D"))
		require.ErrorIs(t, err, ErrOutOfTurn)
		out, err := g.Play(1, cards("4D"))
		require.NoError(t, err)
		return out
	}
	require.NoError(t, err)
	out, err := g.Play(1, cards("4D"))
	require.NoError(t, err)
	return out
}

func TestMatchSettlesScores(t *testing.T) {
	g := NewGame(nil)
	out := playQuickMatch(t, g)

	require.NotNil(t, out.MatchResult)
	assert.Equal(t, 1, out.MatchResult.Match)
	assert.Equal(t, [NumSeats]int{4, 0, 3, 13}, out.MatchResult.Remaining)
	assert.Equal(t, [NumSeats]int{4, 0, 3, 39}, out.MatchResult.Deltas)
	assert.Equal(t, [NumSeats]int{4, 0, 3, 39}, g.Scores)
	assert.False(t, g.Over())
	assert.False(t, g.InProgress())
}

func TestLaterMatchOpenedByPreviousWinner(t *testing.T) {
	g := NewGame(nil)
	playQuickMatch(t, g)

	out := playQuickMatch(t, g)
	assert.Equal(t, 2, g.MatchNumber)
	assert.False(t, g.Match.FirstLead)
	assert.Equal(t, 2, out.MatchResult.Match)
	// seat 0 never got to play and still holds five cards
	assert.Equal(t, [NumSeats]int{5, 0, 3, 13}, out.MatchResult.Remaining)
	assert.Equal(t, [NumSeats]int{10, 0, 3, 39}, out.MatchResult.Deltas)
	assert.Equal(t, [NumSeats]int{14, 0, 6, 78}, g.Scores)
}

func TestStartMatchGuards(t *testing.T) {
	g := NewGame(nil)
	_, err := g.Deal()
	require.NoError(t, err)

	_, err = g.Deal()
	assert.Error(t, err, "a match is already running")

	empty := NewGame(nil)
	_, err = empty.StartMatch([NumSeats][]models.Card{cards("4D"), cards("5D"), cards("6D"), cards("7D")})
	assert.Error(t, err, "nobody holds the 3 of diamonds")

	_, err = NewGame(nil).Pass(0)
	assert.ErrorIs(t, err, ErrOutOfTurn)
}

func TestGameOverPicksLowestScore(t *testing.T) {
	g := NewGame(nil)
	g.Scores = [NumSeats]int{90, 10, 95, 70}
	out := playQuickMatch(t, g)

	require.NotNil(t, out.GameResult)
	assert.True(t, g.Over())
	assert.Equal(t, [NumSeats]int{94, 10, 98, 109}, out.GameResult.Scores)
	assert.Equal(t, 1, out.GameResult.Champion)
	assert.Equal(t, []int{3}, out.GameResult.Exceeded)

	_, err := g.Deal()
	assert.Error(t, err)
	_, err = g.Pass(2)
	assert.ErrorIs(t, err, ErrOutOfTurn)
}

func TestGameOverTieGoesToLowestSeat(t *testing.T) {
	g := NewGame(nil)
	g.Scores = [NumSeats]int{20, 8, 5, 70}
	out := playQuickMatch(t, g)

	require.NotNil(t, out.GameResult)
	assert.Equal(t, [NumSeats]int{24, 8, 8, 109}, out.GameResult.Scores)
	assert.Equal(t, 1, out.GameResult.Champion)
}

func TestExactlyScoreLimitDoesNotEndGame(t *testing.T) {
	g := NewGame(nil)
	g.Scores = [NumSeats]int{0, 0, 0, ScoreLimit - 39}
	out := playQuickMatch(t, g)
	assert.Equal(t, ScoreLimit, g.Scores[3])
	assert.Nil(t, out.GameResult)
	assert.False(t, g.Over())
}
