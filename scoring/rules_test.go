package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesFor(t *testing.T) {
	tests := []struct {
		name    string
		sport   Sport
		wantErr bool
	}{
		{name: "racquetball", sport: SportRacquetball},
		{name: "padel", sport: SportPadel},
		{name: "open irt", sport: SportOpenIRT},
		{name: "unknown sport", sport: Sport("squash"), wantErr: true},
		{name: "empty sport", sport: Sport(""), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RulesFor(tt.sport)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedSport)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsGameWonRacquetball(t *testing.T) {
	rules, err := RulesFor(SportRacquetball)
	require.NoError(t, err)

	tests := []struct {
		name string
		a, b int
		want bool
	}{
		{name: "15-13 wins outright", a: 15, b: 13, want: true},
		{name: "15-14 plays on", a: 15, b: 14, want: false},
		{name: "16-14 wins by two", a: 16, b: 14, want: true},
		{name: "14-14 not decided", a: 14, b: 14, want: false},
		{name: "15-0 shutout", a: 15, b: 0, want: true},
		{name: "hard cap 21-20", a: 21, b: 20, want: true},
		{name: "below target", a: 14, b: 2, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGameWon(tt.a, tt.b, rules, 1))
		})
	}
}

func TestIsGameWonOpenIRTTieBreak(t *testing.T) {
	rules, err := RulesFor(SportOpenIRT)
	require.NoError(t, err)

	// Сеты 1-2 до 15, решающий — до 11.
	assert.False(t, IsGameWon(11, 5, rules, 1))
	assert.True(t, IsGameWon(15, 5, rules, 1))
	assert.True(t, IsGameWon(11, 5, rules, 3))
	assert.False(t, IsGameWon(11, 10, rules, 3))
	assert.True(t, IsGameWon(12, 10, rules, 3))
}

func TestIsSetWonPadel(t *testing.T) {
	rules, err := RulesFor(SportPadel)
	require.NoError(t, err)

	tests := []struct {
		name           string
		gamesA, gamesB int
		want           bool
	}{
		{name: "6-4 wins", gamesA: 6, gamesB: 4, want: true},
		{name: "6-5 plays on", gamesA: 6, gamesB: 5, want: false},
		{name: "7-5 wins by two", gamesA: 7, gamesB: 5, want: true},
		{name: "7-6 wins at cap", gamesA: 7, gamesB: 6, want: true},
		{name: "5-0 below target", gamesA: 5, gamesB: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSetWon(tt.gamesA, tt.gamesB, rules))
		})
	}
}

func TestIsMatchWon(t *testing.T) {
	rules, err := RulesFor(SportRacquetball)
	require.NoError(t, err)

	assert.True(t, IsMatchWon(2, 0, rules))
	assert.True(t, IsMatchWon(2, 1, rules))
	assert.False(t, IsMatchWon(1, 1, rules))
	assert.False(t, IsMatchWon(0, 0, rules))
}
