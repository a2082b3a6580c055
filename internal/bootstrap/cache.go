package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/Tubbz-alt/arxiv-auth/internal/cache"
	"github.com/Tubbz-alt/arxiv-auth/internal/config"
	"github.com/Tubbz-alt/arxiv-auth/internal/models"
)

// initializeSessionCache builds the session cache backend named by the
// configuration.
func initializeSessionCache(cfg *config.Config) (cache.Cache[models.Session], error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		c, err := cache.NewRueidisCache[models.Session](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			"session:",
		)
		if err != nil {
			return nil, err
		}
		log.Printf("[Bootstrap] Session cache: redis (%s)", cfg.RedisAddr)
		return c, nil
	default:
		log.Println("[Bootstrap] Session cache: in-memory")
		return cache.NewMemoryCache[models.Session](), nil
	}
}
