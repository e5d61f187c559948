package store

import (
	"context"
	"fmt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and locates the backing database.
type Config struct {
	Driver string
	Path   string
	URL    string
}

// Open connects the configured adapter and applies its schema.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case DriverSQLite, "":
		s, err = NewSQLiteStore(cfg.Path)
	case DriverPostgres:
		s, err = NewPostgresStore(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}
