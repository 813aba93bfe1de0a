// Package sqlitehost stores projects in an in-memory SQLite database and
// dumps it to disk via VACUUM INTO after every project.
package sqlitehost

import (
	"fmt"
	"log/slog"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/database"
	"github.com/gfox0104/AetPlugin/internal/host"
	gormhost "github.com/gfox0104/AetPlugin/internal/host/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormhost.Backend
	cfg    config.SQLiteConfig
	logger *slog.Logger
}

var _ host.Backend = (*Backend)(nil)

// New creates a SQLite backend on a fresh in-memory database.
func New(cfg config.SQLiteConfig, mem config.MemoryConfig, logger *slog.Logger) (*Backend, error) {
	db, err := database.GetSqliteDB("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Backend{
		Backend: gormhost.New(gormhost.Dependencies{DB: db, Memory: mem, Logger: logger}),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// EndProject stores the project and dumps the database when a dump path is set.
func (b *Backend) EndProject() error {
	if err := b.Backend.EndProject(); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" {
		return nil
	}
	if err := database.DumpMemoryDBToDisk(b.DB(), b.cfg.DumpPath); err != nil {
		return err
	}
	b.logger.Debug("Dumped project database", "path", b.cfg.DumpPath)
	return nil
}

// Close releases the in-memory database.
func (b *Backend) Close() error {
	sqlDB, err := b.DB().DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
