package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
	"github.com/racquetline/racquet-system/storage"
)

type ClubInput struct {
	Name    string  `json:"name"`
	City    *string `json:"city"`
	Address *string `json:"address"`
}

type ClubService interface {
	Create(ctx context.Context, ownerID int, input ClubInput) (*models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
	Update(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole, input ClubInput) (*models.Club, error)
	UploadLogo(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole, contentType string, file io.Reader) (*models.Club, error)
	Delete(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole) error
}

type clubService struct {
	clubRepo  repositories.ClubRepository
	courtRepo repositories.CourtRepository
	uploader  storage.FileUploader
}

func NewClubService(
	clubRepo repositories.ClubRepository,
	courtRepo repositories.CourtRepository,
	uploader storage.FileUploader,
) ClubService {
	return &clubService{
		clubRepo:  clubRepo,
		courtRepo: courtRepo,
		uploader:  uploader,
	}
}

func (s *clubService) Create(ctx context.Context, ownerID int, input ClubInput) (*models.Club, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrClubNameRequired
	}

	club := &models.Club{
		Name:    strings.TrimSpace(input.Name),
		City:    input.City,
		Address: input.Address,
		OwnerID: ownerID,
	}

	if err := s.clubRepo.Create(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

func (s *clubService) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", id, err)
	}

	courts, err := s.courtRepo.ListByClub(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts for club %d: %w", id, err)
	}
	club.Courts = make([]models.Court, 0, len(courts))
	for _, court := range courts {
		club.Courts = append(club.Courts, *court)
	}

	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) List(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	for _, club := range clubs {
		populateClubLogoURL(club, s.uploader)
	}
	return clubs, nil
}

func (s *clubService) Update(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole, input ClubInput) (*models.Club, error) {
	club, err := s.authorizeClubChange(ctx, clubID, currentUserID, currentRole)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrClubNameRequired
	}
	club.Name = strings.TrimSpace(input.Name)
	club.City = input.City
	club.Address = input.Address

	if err := s.clubRepo.Update(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("failed to update club %d: %w", clubID, err)
	}

	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) UploadLogo(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole, contentType string, file io.Reader) (*models.Club, error) {
	club, err := s.authorizeClubChange(ctx, clubID, currentUserID, currentRole)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("clubs/%d/logo%s", clubID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload club logo: %w", err)
	}

	if err := s.clubRepo.UpdateLogoKey(ctx, clubID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to save club logo key: %w", err)
	}

	club.LogoKey = &result.Key
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) Delete(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole) error {
	if _, err := s.authorizeClubChange(ctx, clubID, currentUserID, currentRole); err != nil {
		return err
	}
	if err := s.clubRepo.Delete(ctx, clubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to delete club %d: %w", clubID, err)
	}
	return nil
}

// authorizeClubChange разрешает изменение клуба владельцу или администратору.
func (s *clubService) authorizeClubChange(ctx context.Context, clubID, currentUserID int, currentRole models.UserRole) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", clubID, err)
	}
	if club.OwnerID != currentUserID && currentRole != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return club, nil
}
