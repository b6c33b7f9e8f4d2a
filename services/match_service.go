package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
)

type MatchInput struct {
	CourtID         *int      `json:"court_id"`
	P1ParticipantID int       `json:"p1_participant_id"`
	P2ParticipantID int       `json:"p2_participant_id"`
	MatchTime       time.Time `json:"match_time"`
}

type MatchService interface {
	Create(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole, input MatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error)
	Cancel(ctx context.Context, matchID, currentUserID int, currentRole models.UserRole) (*models.Match, error)
}

type matchService struct {
	db              *sql.DB
	matchRepo       repositories.MatchRepository
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	courtRepo       repositories.CourtRepository
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	courtRepo repositories.CourtRepository,
) MatchService {
	return &matchService{
		db:              db,
		matchRepo:       matchRepo,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		courtRepo:       courtRepo,
	}
}

func (s *matchService) Create(ctx context.Context, tournamentID, currentUserID int, currentRole models.UserRole, input MatchInput) (*models.Match, error) {
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
	if tournament.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: matches can only be scheduled in an active tournament", ErrValidationFailed)
	}

	if input.P1ParticipantID == input.P2ParticipantID {
		return nil, ErrMatchParticipantsSame
	}
	for _, participantID := range []int{input.P1ParticipantID, input.P2ParticipantID} {
		participant, pErr := s.participantRepo.GetByID(ctx, participantID)
		if pErr != nil {
			if errors.Is(pErr, repositories.ErrParticipantNotFound) {
				return nil, ErrParticipantNotFound
			}
			return nil, fmt.Errorf("failed to get participant %d: %w", participantID, pErr)
		}
		if participant.TournamentID != tournamentID {
			return nil, fmt.Errorf("%w: participant %d belongs to another tournament", ErrValidationFailed, participantID)
		}
		if participant.Status != models.ParticipantStatusRegistered {
			return nil, fmt.Errorf("%w: participant %d has withdrawn", ErrValidationFailed, participantID)
		}
	}

	if input.CourtID != nil {
		if _, cErr := s.courtRepo.GetByID(ctx, *input.CourtID); cErr != nil {
			if errors.Is(cErr, repositories.ErrCourtNotFound) {
				return nil, ErrCourtNotFound
			}
			return nil, fmt.Errorf("failed to get court %d: %w", *input.CourtID, cErr)
		}
	}

	matchTime := input.MatchTime
	if matchTime.IsZero() {
		matchTime = time.Now()
	}

	match := &models.Match{
		TournamentID:    tournamentID,
		CourtID:         input.CourtID,
		P1ParticipantID: input.P1ParticipantID,
		P2ParticipantID: input.P2ParticipantID,
		MatchTime:       matchTime,
		Status:          models.MatchStatusScheduled,
	}

	err = runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.Create(ctx, exec, match)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchTournamentInvalid):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrMatchParticipantInvalid):
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) Cancel(ctx context.Context, matchID, currentUserID int, currentRole models.UserRole) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", match.TournamentID, err)
	}
	if tournament.OrganizerID != currentUserID && currentRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	if match.Status == models.MatchStatusCompleted || match.Status == models.MatchStatusCanceled {
		return nil, fmt.Errorf("%w: match is already finished", ErrValidationFailed)
	}

	err = runInTx(ctx, s.db, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.UpdateStatus(ctx, exec, matchID, models.MatchStatusCanceled)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel match %d: %w", matchID, err)
	}
	match.Status = models.MatchStatusCanceled
	return match, nil
}
