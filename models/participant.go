package models

import "time"

// ParticipantStatus — статус заявки игрока на турнир.
type ParticipantStatus string

const (
	ParticipantStatusRegistered ParticipantStatus = "registered"
	ParticipantStatusWithdrawn  ParticipantStatus = "withdrawn"
)

// Participant представляет заявку игрока на участие в турнире.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	UserID       int               `json:"user_id" db:"user_id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
