package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrClubNameRequired    = errors.New("club name is required")
	ErrCourtNameRequired   = errors.New("court name is required")
	ErrRegistrationNotOpen = errors.New("tournament registration is not open")
	ErrTournamentFull      = errors.New("tournament registration is full")

	// Ошибки конфликтов
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrUserNicknameConflict   = errors.New("nickname is already in use")
	ErrClubNameConflict       = errors.New("club name is already in use")
	ErrRegistrationConflict   = errors.New("player is already registered for this tournament")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrClubNotFound        = errors.New("club not found")
	ErrCourtNotFound       = errors.New("court not found")
	ErrSportNotFound       = errors.New("sport not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrSessionNotFound     = errors.New("capture session not found")

	// Ошибки турниров
	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentDatesRequired           = errors.New("tournament dates are required")
	ErrTournamentInvalidRegDate          = errors.New("tournament registration end date must be after start date")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity         = errors.New("tournament max participants must be positive")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Ошибки матчей и сессий ведения счёта
	ErrMatchNotScorable      = errors.New("match is not available for scoring")
	ErrMatchParticipantsSame = errors.New("match participants must differ")
	ErrSessionAlreadyActive  = errors.New("match already has an active capture session")
	ErrSessionCompleted      = errors.New("capture session is already completed")
	ErrInvalidSide           = errors.New("invalid side")
	ErrInvalidServer         = errors.New("first server must be one of the match participants")
	ErrActionNotPermitted    = errors.New("action not permitted for this session variant")
)
