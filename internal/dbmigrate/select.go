package dbmigrate

import (
	"errors"

	"github.com/fdg312/fuel-planner/internal/config"
)

const pooledWarning = "running goose over a pooled connection can break advisory locks; set DATABASE_URL_DIRECT"

// SelectDatabaseURL picks the connection string goose should use for the
// plan_documents and exports schema, preferring DATABASE_URL_DIRECT. The
// API's startup migrations pass requireDirect so they never run through a
// pooler.
func SelectDatabaseURL(cfg *config.Config, requireDirect bool) (dbURL, source, warning string, err error) {
	if cfg.DatabaseURLDirect != "" {
		return cfg.DatabaseURLDirect, "DATABASE_URL_DIRECT", "", nil
	}
	if requireDirect {
		return "", "", "", errors.New("DATABASE_URL_DIRECT is required for startup migrations")
	}
	if cfg.DatabaseURLRaw != "" {
		return cfg.DatabaseURLRaw, "DATABASE_URL", "", nil
	}
	if cfg.DatabaseURLPooled != "" {
		return cfg.DatabaseURLPooled, "DATABASE_URL_POOLED", pooledWarning, nil
	}
	return "", "", "", errors.New("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
}
