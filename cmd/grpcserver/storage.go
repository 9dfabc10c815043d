package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/milad/joienergy/internal/config"
	"github.com/milad/joienergy/internal/repo"
	"github.com/milad/joienergy/internal/repo/influxrepo"
	"github.com/milad/joienergy/internal/repo/memrepo"
	"github.com/milad/joienergy/internal/repo/sqliterepo"
)

// openStore builds the configured reading store. The returned func releases
// it.
func openStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (repo.ReadingStore, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memrepo.NewReadingStore(), func() {}, nil
	case config.BackendSQLite:
		s, err := sqliterepo.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %q: %w", cfg.SQLite.Path, err)
		}
		log.Info("using sqlite storage", zap.String("path", cfg.SQLite.Path))
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn("close sqlite", zap.Error(err))
			}
		}, nil
	case config.BackendInflux:
		s := influxrepo.New(cfg.Influx)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("influxdb %s: %w", cfg.Influx.URL, err)
		}
		log.Info("using influxdb storage", zap.String("url", cfg.Influx.URL), zap.String("bucket", cfg.Influx.Bucket))
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
