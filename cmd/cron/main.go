package main

import (
	"context"
	"log"
	"os"

	"whiteboard/internal/app"
	"whiteboard/internal/services"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

type CronJob interface {
	Start(ctx context.Context, cronRunner *cron.Cron) error
}

func main() {
	cliApp := &cli.App{
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			container := app.NewContainer(map[string]string{})
			logger, err := do.Invoke[*zap.Logger](container)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			serviceConfig, err := do.Invoke[*services.ServiceConfig](container)
			if err != nil {
				return err
			}
			serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](container)
			if err != nil {
				return err
			}
			serviceGacha, err := do.Invoke[*services.ServiceGachaPull](container)
			if err != nil {
				return err
			}

			cronRunner := cron.New()
			jobs := []CronJob{
				NewLeaderboardJob(serviceLeaderboard, serviceConfig, logger),
				NewCollectionWindowJob(serviceGacha, serviceConfig, logger),
			}
			for _, job := range jobs {
				if err := job.Start(c.Context, cronRunner); err != nil {
					return err
				}
			}

			logger.Info("start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}
