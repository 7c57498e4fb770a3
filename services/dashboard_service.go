package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/intramural-draws/models"
	"github.com/Dosada05/intramural-draws/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.AdminStats, error)
}

type dashboardService struct {
	statsRepo        repositories.StatsRepository
	notificationRepo repositories.NotificationRepository
}

func NewDashboardService(statsRepo repositories.StatsRepository, notificationRepo repositories.NotificationRepository) DashboardService {
	return &dashboardService{
		statsRepo:        statsRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.AdminStats, error) {
	var stats models.AdminStats
	g, gCtx := errgroup.WithContext(ctx)

	counters := []struct {
		dst   *int
		count func(context.Context) (int, error)
	}{
		{&stats.Users, s.statsRepo.CountParticipantUsers},
		{&stats.Sports, s.statsRepo.CountSports},
		{&stats.TotalRegistrations, s.statsRepo.CountRegistrations},
		{&stats.Matches, s.statsRepo.CountActiveMatches},
		{&stats.PendingNotifications, s.notificationRepo.CountPending},
	}
	for _, c := range counters {
		g.Go(func() error {
			n, err := c.count(gCtx)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.AdminStats{}, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}
