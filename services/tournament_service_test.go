package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/racquetline/racquet-system/models"
)

func TestNextStatusByDates(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tournament := func(status models.TournamentStatus, reg, start, end time.Time) *models.Tournament {
		return &models.Tournament{
			Status:    status,
			RegDate:   reg,
			StartDate: start,
			EndDate:   end,
		}
	}

	tests := []struct {
		name string
		in   *models.Tournament
		want models.TournamentStatus
	}{
		{
			name: "soon stays before registration date",
			in:   tournament(models.StatusSoon, now.Add(time.Hour), now.Add(24*time.Hour), now.Add(48*time.Hour)),
			want: models.StatusSoon,
		},
		{
			name: "soon opens registration at the date",
			in:   tournament(models.StatusSoon, now, now.Add(24*time.Hour), now.Add(48*time.Hour)),
			want: models.StatusRegistration,
		},
		{
			name: "registration activates at start date",
			in:   tournament(models.StatusRegistration, now.Add(-24*time.Hour), now.Add(-time.Minute), now.Add(48*time.Hour)),
			want: models.StatusActive,
		},
		{
			name: "active completes at end date",
			in:   tournament(models.StatusActive, now.Add(-72*time.Hour), now.Add(-48*time.Hour), now.Add(-time.Second)),
			want: models.StatusCompleted,
		},
		{
			// Все даты в прошлом, но планировщик делает один шаг за тик.
			name: "one step per tick even when all dates passed",
			in:   tournament(models.StatusSoon, now.Add(-72*time.Hour), now.Add(-48*time.Hour), now.Add(-24*time.Hour)),
			want: models.StatusRegistration,
		},
		{
			name: "completed is terminal",
			in:   tournament(models.StatusCompleted, now.Add(-72*time.Hour), now.Add(-48*time.Hour), now.Add(-24*time.Hour)),
			want: models.StatusCompleted,
		},
		{
			name: "canceled is terminal",
			in:   tournament(models.StatusCanceled, now.Add(-72*time.Hour), now.Add(-48*time.Hour), now.Add(-24*time.Hour)),
			want: models.StatusCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextStatusByDates(tt.in, now))
		})
	}
}

func TestIsValidStatusTransition(t *testing.T) {
	tests := []struct {
		current models.TournamentStatus
		next    models.TournamentStatus
		ok      bool
	}{
		{models.StatusSoon, models.StatusRegistration, true},
		{models.StatusSoon, models.StatusActive, false},
		{models.StatusSoon, models.StatusCanceled, true},
		{models.StatusRegistration, models.StatusActive, true},
		{models.StatusRegistration, models.StatusCompleted, false},
		{models.StatusActive, models.StatusCompleted, true},
		{models.StatusActive, models.StatusRegistration, false},
		{models.StatusCompleted, models.StatusCanceled, false},
		{models.StatusCanceled, models.StatusSoon, false},
		{models.StatusActive, models.StatusActive, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.current)+"->"+string(tt.next), func(t *testing.T) {
			assert.Equal(t, tt.ok, isValidStatusTransition(tt.current, tt.next))
		})
	}
}

func TestValidateTournamentDates(t *testing.T) {
	reg := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	start := reg.Add(7 * 24 * time.Hour)
	end := start.Add(2 * 24 * time.Hour)

	assert.NoError(t, validateTournamentDates(reg, start, end))

	assert.ErrorIs(t, validateTournamentDates(time.Time{}, start, end), ErrTournamentDatesRequired)
	assert.ErrorIs(t, validateTournamentDates(start.Add(time.Hour), start, end), ErrTournamentInvalidRegDate)
	assert.ErrorIs(t, validateTournamentDates(reg, end, end), ErrTournamentInvalidDateRange)
}
