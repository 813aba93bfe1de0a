package factory

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gfox0104/AetPlugin/internal/config"
	"github.com/gfox0104/AetPlugin/internal/host/memory"
	postgreshost "github.com/gfox0104/AetPlugin/internal/host/postgres"
	sqlitehost "github.com/gfox0104/AetPlugin/internal/host/sqlite"
	"github.com/gfox0104/AetPlugin/internal/host/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Memory(t *testing.T) {
	for _, typ := range []string{TypeMemory, ""} {
		b, err := New(config.HostConfig{Type: typ}, nil)
		require.NoError(t, err)
		assert.IsType(t, &memory.Backend{}, b)
		assert.NoError(t, b.Close())
	}
}

func TestNew_SQLite(t *testing.T) {
	b, err := New(config.HostConfig{Type: TypeSQLite}, nil)
	require.NoError(t, err)
	assert.IsType(t, &sqlitehost.Backend{}, b)
	assert.NoError(t, b.Close())
}

func TestNew_PostgresFallback(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("db.host", "127.0.0.1")
	viper.Set("db.port", "1")
	viper.Set("db.fallbackPath", filepath.Join(t.TempDir(), "fallback.db"))

	b, err := New(config.HostConfig{Type: TypePostgres}, nil)
	require.NoError(t, err)
	require.IsType(t, &postgreshost.Backend{}, b)
	assert.True(t, b.(*postgreshost.Backend).Local())
	assert.NoError(t, b.Close())
}

func TestNew_WebSocket(t *testing.T) {
	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	b, err := New(config.HostConfig{
		Type:      TypeWebSocket,
		WebSocket: config.WebSocketConfig{URL: "ws" + strings.TrimPrefix(srv.URL, "http")},
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &websocket.Backend{}, b)
	assert.NoError(t, b.Close())
}

func TestNew_WebSocketUnreachable(t *testing.T) {
	_, err := New(config.HostConfig{
		Type:      TypeWebSocket,
		WebSocket: config.WebSocketConfig{URL: "ws://127.0.0.1:1/bridge"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize websocket host")
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(config.HostConfig{Type: "aftereffects"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown host type")
}
