package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
)

type ParticipantService interface {
	Register(ctx context.Context, tournamentID, userID int) (*models.Participant, error)
	Withdraw(ctx context.Context, tournamentID, userID int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	userRepo        repositories.UserRepository
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		userRepo:        userRepo,
	}
}

func (s *participantService) Register(ctx context.Context, tournamentID, userID int) (*models.Participant, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}

	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationNotOpen
	}

	// Повторная заявка после withdraw восстанавливает прежнюю запись.
	existing, err := s.participantRepo.GetByUserAndTournament(ctx, userID, tournamentID)
	if err != nil && !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if existing != nil && existing.Status == models.ParticipantStatusRegistered {
		return nil, ErrRegistrationConflict
	}

	registered := models.ParticipantStatusRegistered
	count, err := s.participantRepo.CountByTournament(ctx, tournamentID, &registered)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}
	if count >= tournament.MaxParticipants {
		return nil, ErrTournamentFull
	}

	if existing != nil {
		if err := s.participantRepo.UpdateStatus(ctx, existing.ID, models.ParticipantStatusRegistered); err != nil {
			return nil, fmt.Errorf("failed to re-register participant %d: %w", existing.ID, err)
		}
		existing.Status = models.ParticipantStatusRegistered
		return existing, nil
	}

	participant := &models.Participant{
		UserID:       userID,
		TournamentID: tournamentID,
		Status:       models.ParticipantStatusRegistered,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			return nil, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrParticipantFKViolation):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	return participant, nil
}

func (s *participantService) Withdraw(ctx context.Context, tournamentID, userID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	// Сняться можно только до старта турнира.
	if tournament.Status != models.StatusRegistration && tournament.Status != models.StatusSoon {
		return fmt.Errorf("%w: tournament already started", ErrValidationFailed)
	}

	participant, err := s.participantRepo.GetByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to get registration: %w", err)
	}
	if participant.Status == models.ParticipantStatusWithdrawn {
		return ErrParticipantNotFound
	}

	if err := s.participantRepo.UpdateStatus(ctx, participant.ID, models.ParticipantStatusWithdrawn); err != nil {
		return fmt.Errorf("failed to withdraw participant %d: %w", participant.ID, err)
	}
	return nil
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	return participants, nil
}
