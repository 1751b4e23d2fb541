package app

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/callin-contest-api/internal/api"
	"github.com/vietanh2810/callin-contest-api/internal/config"
	"github.com/vietanh2810/callin-contest-api/internal/db"
	"github.com/vietanh2810/callin-contest-api/internal/logger"
	"github.com/vietanh2810/callin-contest-api/internal/ratelimit"
	"github.com/vietanh2810/callin-contest-api/internal/repository"
	"github.com/vietanh2810/callin-contest-api/internal/repository/dao"
	"github.com/vietanh2810/callin-contest-api/internal/service"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	database, err := openDatabase(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(database); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	ctx := context.Background()

	store, err := newCounterStore(ctx, conf, database)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limit store -> %w", err)
	}

	limiter := ratelimit.NewLimiter(store, policies(conf.RateLimit), ratelimit.WithTimeout(conf.RateLimit.Timeout))

	if sweeper, ok := store.(ratelimit.Sweeper); ok {
		janitor := ratelimit.NewJanitor(sweeper, conf.RateLimit.Timeout, limiter.Now)
		if err = janitor.Start(conf.RateLimit.SweepSchedule); err != nil {
			return fmt.Errorf("failed to start rate limit sweeper -> %w", err)
		}
		defer janitor.Stop()
	}

	authSvc := service.NewAuthService(repository.NewAdminRepository(dao.NewAdminDAO(database)))
	if _, _, err = authSvc.EnsureAdmin(ctx, conf.Admin); err != nil {
		return fmt.Errorf("failed to bootstrap admin -> %w", err)
	}
	if conf.Admin.Email == "" {
		zap.L().Warn("no bootstrap admin configured")
	}

	err = config.Watch(configPath, func(updated *config.AppConfig) {
		limiter.SetPolicies(policies(updated.RateLimit))
		zap.L().Info("rate limit policies reloaded",
			zap.Int("identifier_max_attempts", updated.RateLimit.Identifier.MaxAttempts),
			zap.Duration("identifier_window", updated.RateLimit.Identifier.Window),
			zap.Int("address_max_attempts", updated.RateLimit.Address.MaxAttempts),
			zap.Duration("address_window", updated.RateLimit.Address.Window),
		)
	})
	if err != nil {
		zap.L().Warn("config hot reload disabled", zap.Error(err))
	}

	s := api.NewServer(conf, database, limiter)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openDatabase(conf *config.AppConfig) (*gorm.DB, error) {
	if conf.Database.Driver == config.DriverSQLite {
		return db.OpenSQLite(conf.Database.SQLitePath)
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return db.OpenPostgresWithURL(dbURL)
	}

	return db.OpenPostgres(conf.Postgres)
}

func newCounterStore(ctx context.Context, conf *config.AppConfig, database *gorm.DB) (ratelimit.CounterStore, error) {
	switch conf.RateLimit.Store {
	case config.StoreMemory:
		zap.L().Warn("in-memory rate limit store is not shared between instances")
		return ratelimit.NewMemoryStore(), nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("client.Ping -> %w", err)
		}
		return ratelimit.NewRedisStore(client, conf.RateLimit.KeyPrefix), nil

	default:
		store := ratelimit.NewGormStore(database)
		if err := store.AutoMigrate(ctx); err != nil {
			return nil, fmt.Errorf("store.AutoMigrate -> %w", err)
		}
		return store, nil
	}
}

func policies(conf *config.RateLimitConfig) ratelimit.Policies {
	return ratelimit.Policies{
		ratelimit.ScopeIdentifier: {
			MaxAttempts: conf.Identifier.MaxAttempts,
			Window:      conf.Identifier.Window,
		},
		ratelimit.ScopeAddress: {
			MaxAttempts: conf.Address.MaxAttempts,
			Window:      conf.Address.Window,
		},
	}
}
