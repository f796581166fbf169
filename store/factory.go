package store

import (
	"context"
	"fmt"

	"blog/config"
	"blog/domain"
)

// NewStoreFromConfig creates a PostStore based on the database config type.
// Durable stores are migrated before they are returned.
func NewStoreFromConfig(ctx context.Context, cfg config.DatabaseConfig, clock domain.Clock, ids domain.IDGenerator) (PostStore, error) {
	var (
		s   PostStore
		err error
	)
	switch cfg.Type {
	case "memory":
		s = NewMemoryStore(clock, ids)
	case "sqlite":
		dsn := cfg.URL
		if dsn == "" {
			dsn = config.DefaultSQLiteURL
		}
		s, err = OpenSQLite(dsn, clock, ids)
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("url required for postgres database")
		}
		s, err = OpenPostgres(ctx, cfg.URL, clock, ids)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Seed {
		if _, err := SeedIfEmpty(ctx, s); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}
