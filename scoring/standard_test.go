package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateScoreUnsupportedSport(t *testing.T) {
	_, err := CalculateScore(Sport("croquet"), NewScoreState(), SidePlayer1)
	assert.ErrorIs(t, err, ErrUnsupportedSport)
}

func TestCalculateScoreInvalidSide(t *testing.T) {
	_, err := CalculateScore(SportRacquetball, NewScoreState(), Side("player3"))
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestCalculateScoreRacquetballPointIncrement(t *testing.T) {
	state := NewScoreState()

	state, err := CalculateScore(SportRacquetball, state, SidePlayer1)
	require.NoError(t, err)
	assert.Equal(t, "1", state.Player1Score)
	assert.Equal(t, "0", state.Player2Score)

	state, err = CalculateScore(SportRacquetball, state, SidePlayer2)
	require.NoError(t, err)
	assert.Equal(t, "1", state.Player2Score)
}

func TestCalculateScoreRacquetballGameAt15(t *testing.T) {
	state := ScoreState{Player1Score: "14", Player2Score: "13", CurrentSet: 1}

	state, err := CalculateScore(SportRacquetball, state, SidePlayer1)
	require.NoError(t, err)

	// 15-13 закрывает гейм, а единственный гейм закрывает сет.
	assert.Equal(t, "0", state.Player1Score)
	assert.Equal(t, "0", state.Player2Score)
	assert.Equal(t, 0, state.Player1Games)
	assert.Equal(t, 1, state.Player1Sets)
	assert.Equal(t, 2, state.CurrentSet)
	assert.Empty(t, state.Winner)
}

func TestCalculateScoreRacquetballWinByTwo(t *testing.T) {
	state := ScoreState{Player1Score: "14", Player2Score: "14", CurrentSet: 1}

	state, err := CalculateScore(SportRacquetball, state, SidePlayer1)
	require.NoError(t, err)
	assert.Equal(t, "15", state.Player1Score, "15-14 must play on")
	assert.Equal(t, 0, state.Player1Sets)

	state, err = CalculateScore(SportRacquetball, state, SidePlayer2)
	require.NoError(t, err)
	assert.Equal(t, "15", state.Player2Score)

	state, err = CalculateScore(SportRacquetball, state, SidePlayer1)
	require.NoError(t, err)
	state, err = CalculateScore(SportRacquetball, state, SidePlayer1)
	require.NoError(t, err)

	// 17-15: отрыв в два очка достигнут.
	assert.Equal(t, 1, state.Player1Sets)
	assert.Equal(t, 2, state.CurrentSet)
}

func TestCalculateScoreRacquetballHardCap(t *testing.T) {
	state := ScoreState{Player1Score: "20", Player2Score: "20", CurrentSet: 1}

	state, err := CalculateScore(SportRacquetball, state, SidePlayer2)
	require.NoError(t, err)

	assert.Equal(t, 1, state.Player2Sets, "21-20 ends the game at the cap")
}

func TestCalculateScoreRacquetballBestOfThree(t *testing.T) {
	// Сценарий из двух сетов 15-13 подряд: матч завершается 2-0.
	state := NewScoreState()
	var err error

	playSet := func() {
		for i := 0; i < 13; i++ {
			state, err = CalculateScore(SportRacquetball, state, SidePlayer1)
			require.NoError(t, err)
			state, err = CalculateScore(SportRacquetball, state, SidePlayer2)
			require.NoError(t, err)
		}
		for i := 0; i < 2; i++ {
			state, err = CalculateScore(SportRacquetball, state, SidePlayer1)
			require.NoError(t, err)
		}
	}

	playSet()
	assert.Equal(t, 1, state.Player1Sets)
	assert.Equal(t, 0, state.Player1Games)
	assert.Equal(t, "0", state.Player1Score)
	assert.Equal(t, 2, state.CurrentSet)

	playSet()
	assert.Equal(t, 2, state.Player1Sets)
	assert.Equal(t, 0, state.Player2Sets)
	assert.Equal(t, SidePlayer1, state.Winner)
	assert.Equal(t, 2, state.CurrentSet, "current set does not advance past the final one")
}

func TestCalculateScorePadelLabels(t *testing.T) {
	state := NewScoreState()
	var err error

	for _, want := range []string{"15", "30", "40"} {
		state, err = CalculateScore(SportPadel, state, SidePlayer1)
		require.NoError(t, err)
		assert.Equal(t, want, state.Player1Score)
	}

	state, err = CalculateScore(SportPadel, state, SidePlayer1)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Player1Games)
	assert.Equal(t, "0", state.Player1Score)
	assert.Equal(t, "0", state.Player2Score)
}

func TestCalculateScorePadelDeuceAdvantage(t *testing.T) {
	deuce := ScoreState{Player1Score: "40", Player2Score: "40", CurrentSet: 1}

	// Из ровно очко даёт преимущество, не гейм.
	state, err := CalculateScore(SportPadel, deuce, SidePlayer1)
	require.NoError(t, err)
	assert.Equal(t, "Ad", state.Player1Score)
	assert.Equal(t, "40", state.Player2Score)
	assert.Equal(t, 0, state.Player1Games)

	// Преимущество конвертируется в гейм.
	won, err := CalculateScore(SportPadel, state, SidePlayer1)
	require.NoError(t, err)
	assert.Equal(t, 1, won.Player1Games)

	// Либо отыгрывается обратно в ровно.
	back, err := CalculateScore(SportPadel, state, SidePlayer2)
	require.NoError(t, err)
	assert.Equal(t, "40", back.Player1Score)
	assert.Equal(t, "40", back.Player2Score)
	assert.Equal(t, 0, back.Player2Games)
}

func TestCalculateScorePadelSetAndMatch(t *testing.T) {
	state := ScoreState{
		Player1Score: "40",
		Player2Score: "0",
		Player1Games: 5,
		Player2Games: 4,
		Player1Sets:  1,
		CurrentSet:   2,
	}

	state, err := CalculateScore(SportPadel, state, SidePlayer1)
	require.NoError(t, err)

	assert.Equal(t, 2, state.Player1Sets)
	assert.Equal(t, 0, state.Player1Games)
	assert.Equal(t, SidePlayer1, state.Winner)
}

func TestCalculateScoreProgressIsMonotonic(t *testing.T) {
	// Сумма выигранного никогда не убывает, номер сета не откатывается.
	state := NewScoreState()
	prevSet := state.CurrentSet
	prevP1 := 0
	prevP2 := 0

	for i := 0; i < 500 && state.Winner == ""; i++ {
		side := SidePlayer1
		if i%3 == 0 {
			side = SidePlayer2
		}
		next, err := CalculateScore(SportRacquetball, state, side)
		require.NoError(t, err)

		p1 := next.Player1Games + next.Player1Sets
		p2 := next.Player2Games + next.Player2Sets
		assert.GreaterOrEqual(t, p1, prevP1)
		assert.GreaterOrEqual(t, p2, prevP2)
		assert.GreaterOrEqual(t, next.CurrentSet, prevSet)

		prevP1, prevP2, prevSet = p1, p2, next.CurrentSet
		state = next
	}
	assert.Equal(t, SidePlayer1, state.Winner)
}
