package main

import (
	"context"

	"whiteboard/internal/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CollectionWindowJob opens and closes gacha collections as their windows pass.
type CollectionWindowJob struct {
	serviceGacha  *services.ServiceGachaPull
	serviceConfig *services.ServiceConfig
	logger        *zap.Logger
}

func NewCollectionWindowJob(serviceGacha *services.ServiceGachaPull, serviceConfig *services.ServiceConfig, logger *zap.Logger) *CollectionWindowJob {
	return &CollectionWindowJob{
		serviceGacha:  serviceGacha,
		serviceConfig: serviceConfig,
		logger:        logger.Named("cron.collection"),
	}
}

func (j *CollectionWindowJob) Start(ctx context.Context, cronRunner *cron.Cron) error {
	timeline, err := j.serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_COLLECTION_WINDOW, services.DEFAULT_CRONJOB_TIME_COLLECTION_WINDOW)
	if err != nil {
		return err
	}

	_, err = cronRunner.AddFunc(timeline, j.sync)
	if err != nil {
		return err
	}
	j.logger.Info("scheduled", zap.String("cron", timeline))
	j.sync()
	return nil
}

func (j *CollectionWindowJob) sync() {
	changed, err := j.serviceGacha.SyncCollectionWindows(context.Background())
	if err != nil {
		j.logger.Error("sync collection windows", zap.Error(err))
		return
	}
	if changed > 0 {
		j.logger.Info("collection windows synced", zap.Int("changed", changed))
	}
}
