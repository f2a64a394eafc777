package store

import (
	"context"
	"fmt"
)

// Config selects and parameterizes a storage driver.
type Config struct {
	Driver      string // "sqlite", "postgres" or "memory"
	Path        string // sqlite file location
	DatabaseURL string // postgres connection string
	Dimensions  int    // fixed collection dimensionality
}

// Open creates the document and activity stores for the configured driver
// and runs schema initialization. The returned DocumentStore owns the
// underlying handle; closing it releases both stores.
func Open(ctx context.Context, cfg Config) (DocumentStore, ActivityStore, error) {
	var (
		docs     DocumentStore
		activity ActivityStore
	)

	switch cfg.Driver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("postgres driver requires DATABASE_URL")
		}
		pg, act, err := OpenPostgres(ctx, cfg.DatabaseURL, cfg.Dimensions)
		if err != nil {
			return nil, nil, err
		}
		docs, activity = pg, act

	case "memory":
		docs, activity = NewMemoryStore(cfg.Dimensions), NewMemoryActivityStore()

	case "", "sqlite":
		sq, act, err := OpenSQLite(cfg.Path, cfg.Dimensions)
		if err != nil {
			return nil, nil, err
		}
		docs, activity = sq, act

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	if err := docs.Init(ctx); err != nil {
		_ = docs.Close()
		return nil, nil, err
	}
	return docs, activity, nil
}
