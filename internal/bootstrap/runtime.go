// Package bootstrap initializes the runtime dependencies shared by the
// server and the command-line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. In development an empty
// database is filled with cfg.DevSeedPreset when one is set. The Redis client
// is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	if err := seedDevData(ctx, cfg, db); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("failed to seed development data: %w", err)
	}

	return db, cache.GetClient(), nil
}

func seedDevData(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || cfg.DevSeedPreset == "" {
		return nil
	}
	if cfg.Env != "development" {
		middleware.Logger.Warn("DEV_SEED_PRESET ignored outside development", slog.String("env", cfg.Env))
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	res, err := seed.NewSeeder(db, seed.Options{}).ApplyPreset(ctx, cfg.DevSeedPreset)
	if err != nil {
		return err
	}
	middleware.Logger.Info("development data seeded",
		slog.String("preset", cfg.DevSeedPreset),
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
	)
	return nil
}
