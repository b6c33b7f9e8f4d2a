package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
	"github.com/racquetline/racquet-system/scoring"
	"github.com/racquetline/racquet-system/storage"
)

type SportService interface {
	GetByID(ctx context.Context, id int) (*models.Sport, error)
	List(ctx context.Context) ([]*models.Sport, error)
	// RulesFor возвращает параметры счёта для вида спорта по его slug.
	RulesFor(ctx context.Context, sportID int) (scoring.Rules, error)
}

type sportService struct {
	sportRepo repositories.SportRepository
	uploader  storage.FileUploader
}

func NewSportService(sportRepo repositories.SportRepository, uploader storage.FileUploader) SportService {
	return &sportService{
		sportRepo: sportRepo,
		uploader:  uploader,
	}
}

func (s *sportService) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	sport, err := s.sportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to get sport %d: %w", id, err)
	}
	populateSportLogoURL(sport, s.uploader)
	return sport, nil
}

func (s *sportService) List(ctx context.Context) ([]*models.Sport, error) {
	sports, err := s.sportRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	for _, sport := range sports {
		populateSportLogoURL(sport, s.uploader)
	}
	return sports, nil
}

func (s *sportService) RulesFor(ctx context.Context, sportID int) (scoring.Rules, error) {
	sport, err := s.sportRepo.GetByID(ctx, sportID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return scoring.Rules{}, ErrSportNotFound
		}
		return scoring.Rules{}, fmt.Errorf("failed to get sport %d: %w", sportID, err)
	}
	rules, err := scoring.RulesFor(scoring.Sport(sport.Slug))
	if err != nil {
		return scoring.Rules{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return rules, nil
}
