package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timelane/pkg/observability"
)

// logHooks reports cache traffic and session lifecycle to the CLI logger.
type logHooks struct {
	observability.NoopServerHooks
	logger *log.Logger
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnSession(_ context.Context, event, sessionID string) {
	h.logger.Info("session "+event, "session", sessionID)
}

func (c *CLI) registerHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetCacheHooks(h)
	observability.SetServerHooks(h)
}
