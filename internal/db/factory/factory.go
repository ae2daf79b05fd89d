// Package factory opens the document store selected by configuration.
package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/config"
	"github.com/bazaarmkt/bazaarmkt/internal/db"
	dbEmbedded "github.com/bazaarmkt/bazaarmkt/internal/db/embedded"
	dbRedis "github.com/bazaarmkt/bazaarmkt/internal/db/redis"
)

// Open creates the store for cfg.Driver.
func Open(cfg *config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		logger.Info("Using Redis store", zap.Strings("addrs", cfg.Addrs))
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	case config.DriverEmbedded:
		logger.Info("Using embedded store", zap.String("path", cfg.Path), zap.Bool("in_memory", cfg.InMemory))
		return dbEmbedded.Open(dbEmbedded.Config{Path: cfg.Path, InMemory: cfg.InMemory}, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
