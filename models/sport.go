package models

// Sport представляет вид спорта. Slug связывает запись БД
// с таблицей правил подсчёта очков в пакете scoring.
type Sport struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
