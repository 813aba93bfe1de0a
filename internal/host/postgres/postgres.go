// Package postgreshost stores projects in Postgres, or in the database
// manager's local SQLite fallback when Postgres is unreachable.
package postgreshost

import (
	"fmt"
	"log/slog"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/database"
	"github.com/gfox0104/AetPlugin/internal/host"
	gormhost "github.com/gfox0104/AetPlugin/internal/host/gorm"
)

// Backend wraps the GORM backend around a managed connection.
type Backend struct {
	*gormhost.Backend
	manager *database.Manager
	logger  *slog.Logger
}

var _ host.Backend = (*Backend)(nil)

// New connects the manager if needed and builds the backend on its database.
func New(manager *database.Manager, mem config.MemoryConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !manager.IsValid {
		if err := manager.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect project database: %w", err)
		}
	}
	if manager.ShouldSaveLocal {
		logger.Warn("Postgres unreachable, storing projects locally", "path", manager.FallbackPath)
	}

	return &Backend{
		Backend: gormhost.New(gormhost.Dependencies{DB: manager.DB, Memory: mem, Logger: logger}),
		manager: manager,
		logger:  logger,
	}, nil
}

// Local reports whether projects go to the SQLite fallback.
func (b *Backend) Local() bool {
	return b.manager.ShouldSaveLocal
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	return b.manager.Close()
}
