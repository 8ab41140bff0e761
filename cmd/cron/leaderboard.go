package main

import (
	"context"
	"errors"

	"whiteboard/internal/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type LeaderboardJob struct {
	serviceLeaderboard *services.ServiceLeaderboard
	serviceConfig      *services.ServiceConfig
	logger             *zap.Logger
}

func NewLeaderboardJob(serviceLeaderboard *services.ServiceLeaderboard, serviceConfig *services.ServiceConfig, logger *zap.Logger) *LeaderboardJob {
	return &LeaderboardJob{
		serviceLeaderboard: serviceLeaderboard,
		serviceConfig:      serviceConfig,
		logger:             logger.Named("cron.leaderboard"),
	}
}

// Start schedules the streak leaderboard rebuild and runs it once right away.
// Without a leaderboard redis the job is skipped.
func (j *LeaderboardJob) Start(ctx context.Context, cronRunner *cron.Cron) error {
	timeline, err := j.serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_STREAK_LEADERBOARD, services.DEFAULT_CRONJOB_TIME_STREAK_LEADERBOARD)
	if err != nil {
		return err
	}

	if !j.rebuild() {
		return nil
	}

	_, err = cronRunner.AddFunc(timeline, func() { j.rebuild() })
	if err != nil {
		return err
	}
	j.logger.Info("scheduled", zap.String("cron", timeline))
	return nil
}

func (j *LeaderboardJob) rebuild() bool {
	count, err := j.serviceLeaderboard.RebuildStreakLeaderboard(context.Background())
	if errors.Is(err, services.ErrLeaderboardUnavailable) {
		j.logger.Warn("leaderboard redis not configured, job disabled")
		return false
	}
	if err != nil {
		j.logger.Error("rebuild streak leaderboard", zap.Error(err))
		return true
	}
	j.logger.Info("streak leaderboard rebuilt", zap.Int("users", count))
	return true
}
