// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; main decides what
// receives them. The defaults do nothing, so instrumentation is opt-in and
// the layout packages carry no dependency on a metrics backend.
//
// Register hooks at startup:
//
//	func main() {
//	    observability.SetEngineHooks(&statsHooks{})
//	    observability.SetCacheHooks(&statsHooks{})
//	    // ... run application
//	}
//
// Engines pick up the registered hooks when they are created:
//
//	e := engine.New(opts) // uses observability.Engine()
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// LayoutStats summarizes one layout pass.
type LayoutStats struct {
	Rows              int
	Tasks             int
	Dependencies      int
	DiscardedTasks    int
	DiscardedDeps     int
	ContentHeight     float64
	MaxDependencySpan int
}

// EngineHooks receives events from layout engines. Engine operations are
// synchronous and carry no context.
type EngineHooks interface {
	// OnLayout records a full layout pass.
	OnLayout(stats LayoutStats, duration time.Duration, err error)

	// OnDiff records a generation diff. changed is the number of ids that
	// were added, migrated, or deleted.
	OnDiff(changed, total int, duration time.Duration)

	// OnPatch records an expand or collapse.
	OnPatch(rowID, direction string, added, removed int, duration time.Duration, err error)

	// OnMaterialize records a materializer call for an object without a
	// display handle.
	OnMaterialize(kind, id string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP inspector.
type ServerHooks interface {
	// OnRequest records an incoming request before routing, so only the
	// raw path is known.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed request.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)

	// OnSession records session lifecycle events ("create", "delete", "expire").
	OnSession(ctx context.Context, event, sessionID string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnLayout(LayoutStats, time.Duration, error)             {}
func (NoopEngineHooks) OnDiff(int, int, time.Duration)                         {}
func (NoopEngineHooks) OnPatch(string, string, int, int, time.Duration, error) {}
func (NoopEngineHooks) OnMaterialize(string, string, error)                    {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopServerHooks) OnSession(context.Context, string, string)                      {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	serverHooks ServerHooks = NoopServerHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers engine hooks. Engines created afterwards use them.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
