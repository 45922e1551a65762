package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/aggregate"
	"github.com/maxviazov/community-hub-service/internal/config"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/serialize"
)

const emailStatsWindow = 7 * 24 * time.Hour

type dashboardService struct {
	agg        *aggregate.Aggregator
	activities repository.ActivityRepository
	cols       config.Collections
	log        zerolog.Logger
}

func NewDashboardService(agg *aggregate.Aggregator, activities repository.ActivityRepository, cols config.Collections, logger zerolog.Logger) DashboardService {
	l := logger.With().Str("module", "service").Str("component", "dashboard").Logger()
	return &dashboardService{agg: agg, activities: activities, cols: cols, log: l}
}

// Stats computes the four summary counts in one batch against a single "now".
func (s *dashboardService) Stats(ctx context.Context) (model.DashboardStats, error) {
	counts, err := s.agg.Counts(ctx,
		aggregate.CountQuery{Label: "totalEvents", Collection: s.cols.Events},
		aggregate.CountQuery{Label: "upcomingEvents", Collection: s.cols.Events, Window: aggregate.Since("date", 0)},
		aggregate.CountQuery{Label: "totalRegistrations", Collection: s.cols.Registrations},
		aggregate.CountQuery{Label: "emailsSentLast7Days", Collection: s.cols.EmailLogs, Window: aggregate.Since("sent_at", emailStatsWindow)},
	)
	if err != nil {
		s.log.Error().Err(err).Msg("dashboard stats failed")
		return model.DashboardStats{}, err
	}
	return model.DashboardStats{
		TotalEvents:         counts["totalEvents"],
		UpcomingEvents:      counts["upcomingEvents"],
		TotalRegistrations:  counts["totalRegistrations"],
		EmailsSentLast7Days: counts["emailsSentLast7Days"],
	}, nil
}

func (s *dashboardService) ActivityFeed(ctx context.Context, page, limit int) (repository.PageResult[serialize.Activity], error) {
	p, err := pageOf(page, limit)
	if err != nil {
		return repository.PageResult[serialize.Activity]{}, err
	}
	res, err := aggregate.Paged(ctx, s.agg, p,
		aggregate.CountQuery{Label: "activities", Collection: s.cols.Activities},
		func(ctx context.Context) ([]model.Activity, error) { return s.activities.List(ctx, p) },
	)
	if err != nil {
		s.log.Error().Err(err).Int("page", page).Int("limit", limit).Msg("activity feed failed")
		return repository.PageResult[serialize.Activity]{}, err
	}
	return repository.MapPageResult(res, serialize.FromActivity), nil
}
