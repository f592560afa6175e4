package runstore

import (
	"fmt"

	"github.com/kilianp07/cevcharge/config"
	"github.com/kilianp07/cevcharge/core/runstore"
)

// Open creates the store selected by cfg.
func Open(cfg config.StoreConfig) (runstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return runstore.NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "jsonl", "":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
