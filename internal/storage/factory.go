package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bher20/eratecharge/internal/logging"
)

// Config controls how the storage backend is opened.
type Config struct {
	Driver string
	DSN    string
}

// Open constructs a Storage based on the given configuration. The "none"
// driver returns a nil Storage and no error.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	drv := cfg.Driver
	if drv == "" {
		drv = "memory"
	}
	log := logging.Named("storage")
	switch drv {
	case "none":
		log.Info("ledger disabled")
		return nil, nil

	case "memory":
		log.Info("using in-memory backend")
		return NewMemory(), nil

	case "sqlite", "postgres":
		log.Info("using gorm backend", zap.String("driver", drv))
		st, err := NewGormStorage(drv, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("storage migrate: %w", err)
		}
		return st, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", drv)
	}
}
