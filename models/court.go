package models

import "time"

// Court представляет корт клуба.
type Court struct {
	ID        int       `json:"id" db:"id"`
	ClubID    int       `json:"club_id" db:"club_id"`
	Name      string    `json:"name" db:"name"`
	Surface   *string   `json:"surface,omitempty" db:"surface"`
	Available bool      `json:"available" db:"available"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
