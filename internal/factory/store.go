// Package factory constructs configured backends.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseboard/pulseboard/internal/config"
	storepkg "github.com/pulseboard/pulseboard/internal/store"
	storemongo "github.com/pulseboard/pulseboard/internal/store/mongo"
	storepg "github.com/pulseboard/pulseboard/internal/store/postgres"
)

// NewStore returns the store.Store selected by cfg.DBDriver. Connection is
// opened synchronously so health checks have something to probe; schema and
// index bootstrap runs async so startup stays fast.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		db, err := storemongo.Open(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		go func() {
			bctx, cancel := bootstrapCtx(ctx, cfg)
			defer cancel()
			if err := storemongo.EnsureIndexes(bctx, db); err != nil {
				log.Warn().Err(err).Msg("mongo index bootstrap failed")
			}
		}()
		return storemongo.New(db), nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("PULSEBOARD_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		go func() {
			bctx, cancel := bootstrapCtx(ctx, cfg)
			defer cancel()
			if err := storepg.EnsureSchema(bctx, db); err != nil {
				log.Warn().Err(err).Msg("postgres schema bootstrap failed")
			}
		}()
		return storepg.NewWithDB(db), nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
}

func bootstrapCtx(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	to := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
	if to <= 0 {
		to = 30 * time.Second
	}
	return context.WithTimeout(ctx, to)
}
