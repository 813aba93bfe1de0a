package logging

import (
	"context"
	"log/slog"
	"sync"
)

// ContextProvider returns attributes computed at log time.
type ContextProvider func() []slog.Attr

// ContextHandler wraps another handler and injects dynamic attributes.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler creates a handler that adds provider's attributes to each record.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{inner: inner, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), provider: h.provider}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{inner: h.inner.WithGroup(name), provider: h.provider}
}

// CurrentFile tracks the scene file being imported so a batch run can tag
// every record with it.
type CurrentFile struct {
	mu   sync.RWMutex
	path string
}

// Set records the file being imported; "" clears it.
func (c *CurrentFile) Set(path string) {
	c.mu.Lock()
	c.path = path
	c.mu.Unlock()
}

// Provider returns a ContextProvider emitting a "file" attribute while a file is set.
func (c *CurrentFile) Provider() ContextProvider {
	return func() []slog.Attr {
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.path == "" {
			return nil
		}
		return []slog.Attr{slog.String("file", c.path)}
	}
}
