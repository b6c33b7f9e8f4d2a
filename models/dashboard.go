package models

// DashboardStats — агрегированная статистика для панелей ролей.
type DashboardStats struct {
	UsersTotal        int `json:"users_total"`
	ClubsTotal        int `json:"clubs_total"`
	TournamentsTotal  int `json:"tournaments_total"`
	ActiveTournaments int `json:"active_tournaments"`
	MatchesTotal      int `json:"matches_total"`
	LiveMatches       int `json:"live_matches"`
}

// OrganizerStats — статистика по турнирам конкретного организатора.
type OrganizerStats struct {
	TournamentsTotal  int `json:"tournaments_total"`
	ActiveTournaments int `json:"active_tournaments"`
	MatchesTotal      int `json:"matches_total"`
	CompletedMatches  int `json:"completed_matches"`
}
