package main

import (
	"context"
	"log"
	"os"
	"time"

	"whiteboard/internal/app"
	"whiteboard/internal/datastore"
	"whiteboard/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/uptrace/bun"
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

func main() {
	vs, err := env.EnvsRequired(
		"DB_DSN",
	)
	if err != nil {
		log.Fatal(err)
	}
	vs["STORE"] = app.STORE_POSTGRES

	container := app.NewContainer(vs)

	cliApp := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(container),
			commandSeed(container),
			commandSetConfig(container),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Description: "Create tables, indexes and constraints",
		Action: func(c *cli.Context) error {
			db, err := do.Invoke[*bun.DB](container)
			if err != nil {
				return err
			}
			logger := do.MustInvoke[*zap.Logger](container)

			if err := datastore.CreateTables(c.Context, db); err != nil {
				return err
			}
			logger.Info("tables created")
			return nil
		},
	}
}

func commandSeed(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:        "seed",
		Description: "Insert the default catalog and configs, keeping existing rows",
		Action: func(c *cli.Context) error {
			store, err := do.Invoke[datastore.Store](container)
			if err != nil {
				return err
			}
			logger := do.MustInvoke[*zap.Logger](container)

			err = store.RunInTx(c.Context, func(ctx context.Context, repo datastore.Repository) error {
				return datastore.SeedCatalog(ctx, repo, datastore.DefaultCatalog(time.Now()))
			})
			if err != nil {
				return err
			}

			added, err := services.SeedDefaultConfigs(c.Context, store)
			if err != nil {
				return err
			}
			logger.Info("seeded", zap.Int("configs_added", added))
			return nil
		},
	}
}

func commandSetConfig(container *do.Injector) *cli.Command {
	return &cli.Command{
		Name:        "set-config",
		Description: "Set one runtime config value and drop its cached copy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Required: true},
			&cli.StringFlag{Name: "value", Required: true},
		},
		Action: func(c *cli.Context) error {
			serviceConfig, err := do.Invoke[*services.ServiceConfig](container)
			if err != nil {
				return err
			}

			key, value := c.String("key"), c.String("value")
			if key == services.CONFIG_GACHA_STANDARD_RARITY_WEIGHTS || key == services.CONFIG_GACHA_PREMIUM_RARITY_WEIGHTS {
				if _, err := services.ParseRarityWeights(value); err != nil {
					return err
				}
			}
			return serviceConfig.SetConfig(c.Context, key, value)
		},
	}
}
