package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
	"github.com/racquetline/racquet-system/scoring"
	"github.com/racquetline/racquet-system/storage"
)

type TournamentInput struct {
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	SportID         int       `json:"sport_id"`
	ClubID          int       `json:"club_id"`
	RegDate         time.Time `json:"reg_date"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	MaxParticipants int       `json:"max_participants"`
}

type TournamentUpdateInput struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	RegDate         *time.Time `json:"reg_date"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	MaxParticipants *int       `json:"max_participants"`
}

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input TournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.TournamentListFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole, input TournamentUpdateInput) (*models.Tournament, error)
	ChangeStatus(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole, status models.TournamentStatus) (*models.Tournament, error)
	UploadLogo(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole, contentType string, file io.Reader) (*models.Tournament, error)
	Delete(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole) error
	// AutoUpdateTournamentStatusesByDates продвигает статусы по датам;
	// вызывается планировщиком из main.
	AutoUpdateTournamentStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	sportRepo       repositories.SportRepository
	clubRepo        repositories.ClubRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	uploader        storage.FileUploader
	broadcaster     Broadcaster
	logger          *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	sportRepo repositories.SportRepository,
	clubRepo repositories.ClubRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	broadcaster Broadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		sportRepo:       sportRepo,
		clubRepo:        clubRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		uploader:        uploader,
		broadcaster:     broadcaster,
		logger:          logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input TournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.MaxParticipants <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	if err := validateTournamentDates(input.RegDate, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	// Вид спорта должен существовать и иметь известные правила счёта.
	sport, err := s.sportRepo.GetByID(ctx, input.SportID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to get sport %d: %w", input.SportID, err)
	}
	if _, err := scoring.RulesFor(scoring.Sport(sport.Slug)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if _, err := s.clubRepo.GetByID(ctx, input.ClubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", input.ClubID, err)
	}

	tournament := &models.Tournament{
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		SportID:         input.SportID,
		ClubID:          input.ClubID,
		OrganizerID:     organizerID,
		RegDate:         input.RegDate,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          models.StatusSoon,
		MaxParticipants: input.MaxParticipants,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, ErrTournamentNameConflict
		case errors.Is(err, repositories.ErrTournamentRelationsInvalid):
			return nil, fmt.Errorf("%w: sport, club or organizer does not exist", ErrValidationFailed)
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	// Связанные сущности подтягиваются по принципу best-effort: карточка
	// турнира полезна и без них.
	if sport, sErr := s.sportRepo.GetByID(ctx, tournament.SportID); sErr == nil {
		populateSportLogoURL(sport, s.uploader)
		tournament.Sport = sport
	}
	if club, cErr := s.clubRepo.GetByID(ctx, tournament.ClubID); cErr == nil {
		populateClubLogoURL(club, s.uploader)
		tournament.Club = club
	}

	participants, pErr := s.participantRepo.ListByTournament(ctx, id)
	if pErr != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", id, pErr)
	}
	tournament.Participants = make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		tournament.Participants = append(tournament.Participants, *p)
	}

	matches, mErr := s.matchRepo.ListByTournament(ctx, id, nil)
	if mErr != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", id, mErr)
	}
	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		tournament.Matches = append(tournament.Matches, *m)
	}

	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.TournamentListFilter) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, t := range tournaments {
		populateTournamentLogoURL(t, s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole, input TournamentUpdateInput) (*models.Tournament, error) {
	tournament, err := s.authorizeTournamentChange(ctx, tournamentID, currentUserID, currentRole)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted || tournament.Status == models.StatusCanceled {
		return nil, fmt.Errorf("%w: tournament is finished", ErrValidationFailed)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.RegDate != nil {
		tournament.RegDate = *input.RegDate
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = *input.EndDate
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants <= 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		registered := models.ParticipantStatusRegistered
		count, cErr := s.participantRepo.CountByTournament(ctx, tournamentID, &registered)
		if cErr != nil {
			return nil, fmt.Errorf("failed to count participants: %w", cErr)
		}
		if *input.MaxParticipants < count {
			return nil, fmt.Errorf("%w: %d participants already registered", ErrTournamentInvalidCapacity, count)
		}
		tournament.MaxParticipants = *input.MaxParticipants
	}

	if err := validateTournamentDates(tournament.RegDate, tournament.StartDate, tournament.EndDate); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", tournamentID, err)
	}

	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) ChangeStatus(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole, status models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.authorizeTournamentChange(ctx, tournamentID, currentUserID, currentRole)
	if err != nil {
		return nil, err
	}

	if !isValidStatusTransition(tournament.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}
	if tournament.Status == status {
		return tournament, nil
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, tournamentID, status); err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}
	tournament.Status = status

	s.notifyStatusChange(tournament)
	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole, contentType string, file io.Reader) (*models.Tournament, error) {
	tournament, err := s.authorizeTournamentChange(ctx, tournamentID, currentUserID, currentRole)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("tournaments/%d/logo%s", tournamentID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournamentID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to save tournament logo key: %w", err)
	}

	tournament.LogoKey = &result.Key
	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole) error {
	tournament, err := s.authorizeTournamentChange(ctx, tournamentID, currentUserID, currentRole)
	if err != nil {
		return err
	}
	// Удаление разрешено только до старта, дальше только отмена.
	if tournament.Status != models.StatusSoon && tournament.Status != models.StatusRegistration {
		return fmt.Errorf("%w: active or finished tournament can only be canceled", ErrValidationFailed)
	}
	if err := s.tournamentRepo.Delete(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (s *tournamentService) AutoUpdateTournamentStatusesByDates(ctx context.Context) error {
	now := time.Now()
	candidates, err := s.tournamentRepo.ListStatusCandidates(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list status candidates: %w", err)
	}

	for _, t := range candidates {
		next := nextStatusByDates(t, now)
		if next == t.Status {
			continue
		}
		if !isValidStatusTransition(t.Status, next) {
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, t.ID, next); err != nil {
			s.logger.Error("failed to auto-update tournament status",
				slog.Int("tournament_id", t.ID),
				slog.String("from", string(t.Status)),
				slog.String("to", string(next)),
				slog.Any("error", err),
			)
			continue
		}
		s.logger.Info("tournament status advanced by schedule",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(next)),
		)
		t.Status = next
		s.notifyStatusChange(t)
	}
	return nil
}

// nextStatusByDates вычисляет статус турнира по текущему времени.
// Переходы идут по одному шагу за тик: isValidStatusTransition не даёт
// перескочить через статус, пропущенный шаг доберётся на следующем тике.
func nextStatusByDates(t *models.Tournament, now time.Time) models.TournamentStatus {
	switch t.Status {
	case models.StatusSoon:
		if !now.Before(t.RegDate) {
			return models.StatusRegistration
		}
	case models.StatusRegistration:
		if !now.Before(t.StartDate) {
			return models.StatusActive
		}
	case models.StatusActive:
		if !now.Before(t.EndDate) {
			return models.StatusCompleted
		}
	}
	return t.Status
}

func (s *tournamentService) notifyStatusChange(t *models.Tournament) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(scoring.TournamentRoom(t.ID), scoring.LiveMessage{
		Type:   "TOURNAMENT_STATUS_CHANGED",
		RoomID: scoring.TournamentRoom(t.ID),
		Payload: map[string]interface{}{
			"tournament_id": t.ID,
			"status":        t.Status,
		},
	})
}

func (s *tournamentService) authorizeTournamentChange(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	if tournament.OrganizerID != currentUserID && currentRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}
