// Package bootstrap wires runtime dependencies for the cmd entry points.
package bootstrap

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"worklane/internal/cache"
	"worklane/internal/config"
	"worklane/internal/database"
	"worklane/internal/seed"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
	SeedOpts seed.Options
}

// InitRuntime connects to the database and Redis, and optionally seeds demo
// data. The Redis client may come back nil when the server is unreachable;
// the application degrades to cache-less operation.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if cfg.IsProduction() {
			return nil, nil, fmt.Errorf("refusing to seed demo data in production")
		}
		if err := seed.Run(db, opts.SeedOpts); err != nil {
			return nil, nil, fmt.Errorf("seeding demo data: %w", err)
		}
	}

	return db, r, nil
}
