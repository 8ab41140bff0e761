package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"whiteboard/internal/datastore"
	"whiteboard/internal/datastore/memstore"
	"whiteboard/internal/interfaces"
	"whiteboard/internal/pkg/caching"
	"whiteboard/internal/pkg/limiter"
	"whiteboard/internal/pkg/locker"
	"whiteboard/internal/pkg/logger"
	"whiteboard/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
)

const (
	STORE_POSTGRES = "postgres"
	STORE_MEMORY   = "memory"
)

var ErrNotConfigured = errors.New("not configured")

var optionalEnvs = []string{
	"API_MODE",
	"API_ORIGINS",
	"API_METRICS",
	"STORE",
	"DB_DSN",
	"DB_PASSWORD",
	"DB_DSN_READONLY",
	"DB_PASSWORD_READONLY",
	"LOG_LEVEL",
	"LOG_PATH",
	"LOG_MAX_SIZE_MB",
	"LOG_MAX_BACKUPS",
	"LOG_MAX_AGE_DAYS",
}

// NewContainer wires storage, redis, cache, locking, rate limiting, logging and
// every engine service. vs holds the required envs; the optional ones are read
// from the process environment.
func NewContainer(vs map[string]string) *do.Injector {
	injector := do.New()
	for _, key := range optionalEnvs {
		if _, ok := vs[key]; !ok {
			vs[key] = os.Getenv(key)
		}
	}

	if vs["API_MODE"] == "" {
		vs["API_MODE"] = "production"
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}
	if vs["STORE"] == "" {
		vs["STORE"] = STORE_POSTGRES
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:      vs["LOG_LEVEL"],
			Path:       vs["LOG_PATH"],
			MaxSizeMB:  atoi(vs["LOG_MAX_SIZE_MB"]),
			MaxBackups: atoi(vs["LOG_MAX_BACKUPS"]),
			MaxAgeDays: atoi(vs["LOG_MAX_AGE_DAYS"]),
			Compress:   true,
		})
	})

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		if _, err := env.EnvsRequired("DB_DSN"); err != nil {
			return nil, err
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(vs["DB_DSN"]),
			pgdriver.WithPassword(vs["DB_PASSWORD"]),
		))

		return bun.NewDB(sqldb, pgdialect.New()), nil
	})

	do.ProvideNamed(injector, "db-readonly", func(i *do.Injector) (*bun.DB, error) {
		if vs["DB_DSN_READONLY"] == "" {
			return nil, fmt.Errorf("db-readonly: %w", ErrNotConfigured)
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(vs["DB_DSN_READONLY"]),
			pgdriver.WithPassword(vs["DB_PASSWORD_READONLY"]),
		))

		return bun.NewDB(sqldb, pgdialect.New()), nil
	})

	do.Provide(injector, func(i *do.Injector) (datastore.Store, error) {
		switch vs["STORE"] {
		case STORE_MEMORY:
			return NewMemoryStore(context.Background())
		case STORE_POSTGRES:
			dbPrimary, err := do.Invoke[*bun.DB](i)
			if err != nil {
				return nil, err
			}
			dbReadonly, _ := do.InvokeNamed[*bun.DB](i, "db-readonly")
			return datastore.NewPostgresStore(dbPrimary, dbReadonly), nil
		}
		return nil, fmt.Errorf("unknown STORE %q", vs["STORE"])
	})

	do.ProvideNamed(injector, "redis-db", redisProvider("CLUSTER_REDIS_DB", "REDIS_DB"))
	do.ProvideNamed(injector, "redis-cache", redisProvider("CLUSTER_REDIS_CACHE", "REDIS_CACHE"))
	do.ProvideNamed(injector, "redis-limiter", redisProvider("CLUSTER_REDIS_LIMITER", "REDIS_LIMITER"))
	do.ProvideNamed(injector, "redis-mutex", redisProvider("CLUSTER_REDIS_MUTEX", "REDIS_MUTEX"))

	do.ProvideNamed(injector, "redis-cache-readonly", func(i *do.Injector) (redis.UniversalClient, error) {
		var clusterOpts *redis.ClusterOptions
		var err error
		clusterCacheRedisReadOnlyURL := os.Getenv("CLUSTER_REDIS_CACHE_READONLY")
		if clusterCacheRedisReadOnlyURL != "" {
			clusterOpts, err = redis.ParseClusterURL(clusterCacheRedisReadOnlyURL)
		} else if clusterCacheRedisURL := os.Getenv("CLUSTER_REDIS_CACHE"); clusterCacheRedisURL != "" {
			clusterOpts, err = redis.ParseClusterURL(clusterCacheRedisURL)
		}

		if err != nil {
			return nil, err
		}
		if clusterOpts != nil {
			clusterOpts.ReadOnly = true
			return redis.NewClusterClient(clusterOpts), nil
		}

		url := os.Getenv("REDIS_CACHE_READONLY")
		if url == "" {
			return nil, fmt.Errorf("redis-cache-readonly: %w", ErrNotConfigured)
		}
		return db.InitRedis(&db.RedisConfig{URL: url})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return caching.NewCacheRedis(nil, true)
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (caching.ReadOnlyCache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache-readonly")
		if err != nil {
			return do.Invoke[caching.Cache](i)
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return limiter.NewLocalLimiter(), nil
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Locker, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return locker.NewLocal(), nil
		}

		pool := goredis.NewPool(dbRedis)
		return locker.NewRedsync(redsync.New(pool)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(vs["JWT_SECRET"])
	})

	services.Provide(injector)

	return injector
}

// NewMemoryStore returns an in-process store holding the default catalog and config.
func NewMemoryStore(ctx context.Context) (*memstore.Store, error) {
	store := memstore.New()
	err := store.RunInTx(ctx, func(ctx context.Context, repo datastore.Repository) error {
		return datastore.SeedCatalog(ctx, repo, datastore.DefaultCatalog(time.Now()))
	})
	if err != nil {
		return nil, err
	}
	if _, err := services.SeedDefaultConfigs(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func redisProvider(clusterKey, urlKey string) func(i *do.Injector) (redis.UniversalClient, error) {
	return func(i *do.Injector) (redis.UniversalClient, error) {
		clusterRedisURL := os.Getenv(clusterKey)
		if clusterRedisURL != "" {
			clusterOpts, err := redis.ParseClusterURL(clusterRedisURL)
			if err != nil {
				return nil, err
			}
			return redis.NewClusterClient(clusterOpts), nil
		}

		url := os.Getenv(urlKey)
		if url == "" {
			return nil, fmt.Errorf("%s: %w", urlKey, ErrNotConfigured)
		}
		return db.InitRedis(&db.RedisConfig{URL: url})
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
