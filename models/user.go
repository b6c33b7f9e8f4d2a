package models

import "time"

// UserRole представляет роли пользователей, соответствующие ENUM в БД.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RoleReferee   UserRole = "referee"
	RolePlayer    UserRole = "player"
)

// User представляет пользователя системы.
type User struct {
	ID           int      `json:"id" db:"id"`
	FirstName    string   `json:"first_name" db:"first_name"`
	LastName     string   `json:"last_name" db:"last_name"`
	Nickname     string   `json:"nickname" db:"nickname"`
	Role         UserRole `json:"role" db:"role"`
	Email        string   `json:"email" db:"email"`
	PasswordHash string   `json:"-" db:"password_hash"`

	EmailConfirmed         bool   `json:"email_confirmed" db:"email_confirmed"`
	EmailConfirmationToken string `json:"-" db:"email_confirmation_token"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
