package models

import "time"

// Club представляет клуб с кортами, на базе которого проводятся турниры.
type Club struct {
	ID      int     `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	City    *string `json:"city,omitempty" db:"city"`
	Address *string `json:"address,omitempty" db:"address"`
	OwnerID int     `json:"owner_id" db:"owner_id"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Owner  *User   `json:"owner,omitempty" db:"-"`
	Courts []Court `json:"courts,omitempty" db:"-"`
}
