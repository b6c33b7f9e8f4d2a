package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
)

type CourtInput struct {
	Name      string  `json:"name"`
	Surface   *string `json:"surface"`
	Available *bool   `json:"available"`
}

type CourtService interface {
	Create(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole, input CourtInput) (*models.Court, error)
	GetByID(ctx context.Context, id int) (*models.Court, error)
	ListByClub(ctx context.Context, clubID int) ([]*models.Court, error)
	Update(ctx context.Context, courtID, currentUserID int, currentRole models.UserRole, input CourtInput) (*models.Court, error)
	Delete(ctx context.Context, courtID, currentUserID int, currentRole models.UserRole) error
}

type courtService struct {
	courtRepo repositories.CourtRepository
	clubRepo  repositories.ClubRepository
}

func NewCourtService(courtRepo repositories.CourtRepository, clubRepo repositories.ClubRepository) CourtService {
	return &courtService{
		courtRepo: courtRepo,
		clubRepo:  clubRepo,
	}
}

func (s *courtService) Create(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole, input CourtInput) (*models.Court, error) {
	if err := s.authorizeCourtChange(ctx, clubID, currentUserID, currentRole); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCourtNameRequired
	}

	court := &models.Court{
		ClubID:    clubID,
		Name:      strings.TrimSpace(input.Name),
		Surface:   input.Surface,
		Available: true,
	}
	if input.Available != nil {
		court.Available = *input.Available
	}

	if err := s.courtRepo.Create(ctx, court); err != nil {
		if errors.Is(err, repositories.ErrCourtClubInvalid) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to create court: %w", err)
	}
	return court, nil
}

func (s *courtService) GetByID(ctx context.Context, id int) (*models.Court, error) {
	court, err := s.courtRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %d: %w", id, err)
	}
	return court, nil
}

func (s *courtService) ListByClub(ctx context.Context, clubID int) ([]*models.Court, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", clubID, err)
	}
	courts, err := s.courtRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for club %d: %w", clubID, err)
	}
	return courts, nil
}

func (s *courtService) Update(ctx context.Context, courtID, currentUserID int, currentRole models.UserRole, input CourtInput) (*models.Court, error) {
	court, err := s.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %d: %w", courtID, err)
	}
	if err := s.authorizeCourtChange(ctx, court.ClubID, currentUserID, currentRole); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) != "" {
		court.Name = strings.TrimSpace(input.Name)
	}
	if input.Surface != nil {
		court.Surface = input.Surface
	}
	if input.Available != nil {
		court.Available = *input.Available
	}

	if err := s.courtRepo.Update(ctx, court); err != nil {
		return nil, fmt.Errorf("failed to update court %d: %w", courtID, err)
	}
	return court, nil
}

func (s *courtService) Delete(ctx context.Context, courtID, currentUserID int, currentRole models.UserRole) error {
	court, err := s.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return ErrCourtNotFound
		}
		return fmt.Errorf("failed to get court %d: %w", courtID, err)
	}
	if err := s.authorizeCourtChange(ctx, court.ClubID, currentUserID, currentRole); err != nil {
		return err
	}
	if err := s.courtRepo.Delete(ctx, courtID); err != nil {
		return fmt.Errorf("failed to delete court %d: %w", courtID, err)
	}
	return nil
}

// authorizeCourtChange: корты меняет владелец клуба или администратор.
func (s *courtService) authorizeCourtChange(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole) error {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to get club %d: %w", clubID, err)
	}
	if club.OwnerID != currentUserID && currentRole != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	return nil
}
