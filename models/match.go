package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
)

// Match представляет матч двух участников турнира.
type Match struct {
	ID                  int         `json:"id" db:"id"`
	TournamentID        int         `json:"tournament_id" db:"tournament_id"`
	CourtID             *int        `json:"court_id,omitempty" db:"court_id"`
	P1ParticipantID     int         `json:"p1_participant_id" db:"p1_participant_id"`
	P2ParticipantID     int         `json:"p2_participant_id" db:"p2_participant_id"`
	Score               *string     `json:"score,omitempty" db:"score"`
	MatchTime           time.Time   `json:"match_time" db:"match_time"`
	Status              MatchStatus `json:"status" db:"status"`
	WinnerParticipantID *int        `json:"winner_participant_id,omitempty" db:"winner_participant_id"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
}
