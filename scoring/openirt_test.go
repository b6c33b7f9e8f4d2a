package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	p1ID = 101
	p2ID = 202
)

func TestCalculateOpenIRTScoreSideOut(t *testing.T) {
	// Жеребьёвка отдала подачу первой стороне.
	state := NewOpenIRTScoreState(p1ID, p2ID, p1ID)

	// Принимающая сторона выигрывает розыгрыш: счёт не меняется,
	// подача переходит.
	next, err := CalculateOpenIRTScore(state, SidePlayer2)
	require.NoError(t, err)

	assert.Equal(t, 0, next.Player1Score)
	assert.Equal(t, 0, next.Player2Score)
	assert.Equal(t, p2ID, next.ServerID)
	assert.True(t, next.ServerChanged)
	assert.Empty(t, next.SetWinner)
}

func TestCalculateOpenIRTScoreServerWinsRally(t *testing.T) {
	state := NewOpenIRTScoreState(p1ID, p2ID, p1ID)

	next, err := CalculateOpenIRTScore(state, SidePlayer1)
	require.NoError(t, err)

	assert.Equal(t, 1, next.Player1Score)
	assert.Equal(t, 0, next.Player2Score)
	assert.Equal(t, p1ID, next.ServerID)
	assert.False(t, next.ServerChanged)
}

func TestCalculateOpenIRTScoreSetTransition(t *testing.T) {
	state := NewOpenIRTScoreState(p1ID, p2ID, p1ID)
	state.Player1Score = 14
	state.Player2Score = 10

	next, err := CalculateOpenIRTScore(state, SidePlayer1)
	require.NoError(t, err)

	assert.Equal(t, SidePlayer1, next.SetWinner)
	assert.Equal(t, 1, next.Player1Sets)
	assert.Equal(t, 0, next.Player1Score)
	assert.Equal(t, 0, next.Player2Score)
	assert.Equal(t, 2, next.CurrentSet)
	// Новый сет начинает проигравший предыдущий, а не тот, кто подавал.
	assert.Equal(t, p2ID, next.ServerID)
	assert.True(t, next.ServerChanged)
	assert.Nil(t, next.MatchWinnerID)
}

func TestCalculateOpenIRTScoreTieBreakToEleven(t *testing.T) {
	state := NewOpenIRTScoreState(p1ID, p2ID, p2ID)
	state.Player1Sets = 1
	state.Player2Sets = 1
	state.CurrentSet = 3
	state.Player2Score = 10
	state.Player1Score = 8

	next, err := CalculateOpenIRTScore(state, SidePlayer2)
	require.NoError(t, err)

	// Решающий сет идёт до 11.
	require.NotNil(t, next.MatchWinnerID)
	assert.Equal(t, p2ID, *next.MatchWinnerID)
	assert.False(t, next.WonByForfeit)
}

func TestCalculateOpenIRTScoreMatchWin(t *testing.T) {
	state := NewOpenIRTScoreState(p1ID, p2ID, p1ID)
	state.Player1Sets = 1
	state.CurrentSet = 2
	state.Player1Score = 14
	state.Player2Score = 3

	next, err := CalculateOpenIRTScore(state, SidePlayer1)
	require.NoError(t, err)

	require.NotNil(t, next.MatchWinnerID)
	assert.Equal(t, p1ID, *next.MatchWinnerID)
	assert.Equal(t, SidePlayer1, next.SetWinner)
	assert.Equal(t, 2, next.CurrentSet, "final set index is preserved")
	assert.True(t, next.Completed())
}

func TestCalculateOpenIRTScoreAfterCompletion(t *testing.T) {
	winnerID := p1ID
	state := NewOpenIRTScoreState(p1ID, p2ID, p1ID)
	state.MatchWinnerID = &winnerID

	_, err := CalculateOpenIRTScore(state, SidePlayer2)
	assert.ErrorIs(t, err, ErrMatchCompleted)
}

func TestCalculateOpenIRTScoreUnknownServer(t *testing.T) {
	state := NewOpenIRTScoreState(p1ID, p2ID, 999)

	_, err := CalculateOpenIRTScore(state, SidePlayer1)
	assert.ErrorIs(t, err, ErrUnknownServer)
}

func TestApplyTechnicalFoulSubtractsPoint(t *testing.T) {
	counters := NewCounters()
	state := NewOpenIRTScoreState(p1ID, p2ID, p1ID)
	state.Player1Score = 5

	next, err := ApplyTechnicalFoul(state, counters, SidePlayer1)
	require.NoError(t, err)

	assert.Equal(t, 4, next.Player1Score)
	assert.Equal(t, 1, counters.TechnicalCount(SidePlayer1))
	assert.Nil(t, next.MatchWinnerID)
}

func TestApplyTechnicalFoulFloorsAtZero(t *testing.T) {
	counters := NewCounters()
	state := NewOpenIRTScoreState(p1ID, p2ID, p1ID)

	next, err := ApplyTechnicalFoul(state, counters, SidePlayer2)
	require.NoError(t, err)

	assert.Equal(t, 0, next.Player2Score, "score never goes negative")
}

func TestApplyTechnicalFoulForfeitOnThird(t *testing.T) {
	counters := NewCounters()
	state := NewOpenIRTScoreState(p1ID, p2ID, p1ID)
	state.Player1Score = 12
	state.Player2Score = 1

	var err error
	for i := 0; i < 2; i++ {
		state, err = ApplyTechnicalFoul(state, counters, SidePlayer1)
		require.NoError(t, err)
		assert.Nil(t, state.MatchWinnerID)
	}

	state, err = ApplyTechnicalFoul(state, counters, SidePlayer1)
	require.NoError(t, err)

	// Третий фол — форфейт в пользу соперника независимо от счёта.
	require.NotNil(t, state.MatchWinnerID)
	assert.Equal(t, p2ID, *state.MatchWinnerID)
	assert.True(t, state.WonByForfeit)

	_, err = ApplyTechnicalFoul(state, counters, SidePlayer1)
	assert.ErrorIs(t, err, ErrMatchCompleted)
}

func TestCountersTimeoutLimit(t *testing.T) {
	counters := NewCounters()

	require.NoError(t, counters.UseTimeout(SidePlayer1, 1))
	assert.Equal(t, 0, counters.TimeoutsLeft(SidePlayer1, 1))

	// Второй тайм-аут той же стороны в том же сете отклоняется.
	err := counters.UseTimeout(SidePlayer1, 1)
	assert.ErrorIs(t, err, ErrTimeoutNotAvailable)

	// Другая сторона и другой сет не затронуты.
	require.NoError(t, counters.UseTimeout(SidePlayer2, 1))
	require.NoError(t, counters.UseTimeout(SidePlayer1, 2))
}

func TestCountersAppealLimit(t *testing.T) {
	counters := NewCounters()

	// Выигранные апелляции лимит не расходуют.
	for i := 0; i < 5; i++ {
		require.NoError(t, counters.RecordAppeal(SidePlayer1, 1, true))
	}
	assert.Equal(t, 3, counters.AppealsLeft(SidePlayer1, 1))

	for i := 0; i < 3; i++ {
		require.NoError(t, counters.RecordAppeal(SidePlayer1, 1, false))
	}
	assert.Equal(t, 0, counters.AppealsLeft(SidePlayer1, 1))

	// Четвёртая проигранная — и даже выигранная — отклоняется до конца сета.
	assert.ErrorIs(t, counters.RecordAppeal(SidePlayer1, 1, false), ErrAppealsExhausted)
	assert.ErrorIs(t, counters.RecordAppeal(SidePlayer1, 1, true), ErrAppealsExhausted)

	// Новый сет обнуляет лимит.
	require.NoError(t, counters.RecordAppeal(SidePlayer1, 2, false))
}
