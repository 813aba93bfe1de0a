// Package factory selects and initializes the host backend named by the
// configuration.
package factory

import (
	"fmt"
	"log/slog"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/database"
	"github.com/gfox0104/AetPlugin/internal/host"
	"github.com/gfox0104/AetPlugin/internal/host/memory"
	postgreshost "github.com/gfox0104/AetPlugin/internal/host/postgres"
	sqlitehost "github.com/gfox0104/AetPlugin/internal/host/sqlite"
	"github.com/gfox0104/AetPlugin/internal/host/websocket"
	"github.com/gfox0104/AetPlugin/internal/logging"
	"github.com/spf13/viper"
)

// Host types accepted in host.type.
const (
	TypeMemory    = "memory"
	TypeSQLite    = "sqlite"
	TypePostgres  = "postgres"
	TypeWebSocket = "websocket"
)

// New creates the configured backend and calls Init on it.
func New(cfg config.HostConfig, logger *slog.Logger) (host.Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		b   host.Backend
		err error
	)
	switch cfg.Type {
	case TypeMemory, "":
		b = memory.New(cfg.Memory)
	case TypeSQLite:
		b, err = sqlitehost.New(cfg.SQLite, cfg.Memory, logger)
	case TypePostgres:
		manager := database.NewManager(logging.NewZerolog(logger, "database"), viper.GetString("db.fallbackPath"))
		b, err = postgreshost.New(manager, cfg.Memory, logger)
	case TypeWebSocket:
		b = websocket.New(cfg.WebSocket, logger)
	default:
		return nil, fmt.Errorf("unknown host type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s host: %w", cfg.Type, err)
	}

	if err := b.Init(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to initialize %s host: %w", cfg.Type, err)
	}
	logger.Debug("Host backend ready", "type", cfg.Type)
	return b, nil
}
