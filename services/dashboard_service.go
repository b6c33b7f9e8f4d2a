package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/racquetline/racquet-system/models"
	"github.com/racquetline/racquet-system/repositories"
	"github.com/racquetline/racquet-system/scoring"
)

type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	OrganizerStats(ctx context.Context, organizerID int) (*models.OrganizerStats, error)
}

type dashboardService struct {
	userRepo       repositories.UserRepository
	clubRepo       repositories.ClubRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	sessionRepo    repositories.SessionRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	clubRepo repositories.ClubRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	sessionRepo repositories.SessionRepository,
) DashboardService {
	return &dashboardService{
		userRepo:       userRepo,
		clubRepo:       clubRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		sessionRepo:    sessionRepo,
	}
}

// Stats собирает счётчики дашборда параллельно: шесть независимых
// запросов, первый же сбой отменяет остальные.
func (s *dashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.userRepo.Count(gctx)
		stats.UsersTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.clubRepo.Count(gctx)
		stats.ClubsTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.tournamentRepo.Count(gctx, nil)
		stats.TournamentsTotal = count
		return err
	})
	g.Go(func() error {
		active := models.StatusActive
		count, err := s.tournamentRepo.Count(gctx, &active)
		stats.ActiveTournaments = count
		return err
	})
	g.Go(func() error {
		count, err := s.matchRepo.Count(gctx, nil)
		stats.MatchesTotal = count
		return err
	})
	g.Go(func() error {
		count, err := s.sessionRepo.CountByPhase(gctx, scoring.PhaseInSetPlay)
		stats.LiveMatches = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect dashboard stats: %w", err)
	}
	return stats, nil
}

// OrganizerStats собирает счётчики по турнирам одного организатора.
func (s *dashboardService) OrganizerStats(ctx context.Context, organizerID int) (*models.OrganizerStats, error) {
	stats := &models.OrganizerStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.tournamentRepo.CountByOrganizer(gctx, organizerID, nil)
		stats.TournamentsTotal = count
		return err
	})
	g.Go(func() error {
		active := models.StatusActive
		count, err := s.tournamentRepo.CountByOrganizer(gctx, organizerID, &active)
		stats.ActiveTournaments = count
		return err
	})
	g.Go(func() error {
		count, err := s.matchRepo.CountByOrganizer(gctx, organizerID, nil)
		stats.MatchesTotal = count
		return err
	})
	g.Go(func() error {
		completed := models.MatchStatusCompleted
		count, err := s.matchRepo.CountByOrganizer(gctx, organizerID, &completed)
		stats.CompletedMatches = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect organizer stats for %d: %w", organizerID, err)
	}
	return stats, nil
}
