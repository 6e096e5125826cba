package kv

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/thedivyam/noon-sde3/pkg/config"
	"github.com/thedivyam/noon-sde3/pkg/db"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/migrate"
	"github.com/thedivyam/noon-sde3/pkg/redis"
)

// Open builds the backend selected by cfg.Storage.Driver. SQL backends are
// migrated first when auto-migrate is enabled.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		client, err := db.New(ctx, cfg.Storage, logg)
		if err != nil {
			return nil, fmt.Errorf("opening sql storage: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("migrating sql storage: %w", err), client.Close())
		}
		return NewSQLStore(client), nil

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("opening redis storage: %w", err)
		}
		return NewRedisStore(client), nil

	case config.StorageDriverMemory:
		logg.Warn(ctx, "memory storage selected; cart and theme will not survive a restart")
		return NewMemory(), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
