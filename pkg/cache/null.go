package cache

import (
	"context"
	"time"
)

// nullCache drops every write. The CLI uses it for --no-cache, and the
// server falls back to it when no render cache is configured, so snapshots
// and SVG renders are recomputed on every request.
type nullCache struct{}

// NewNullCache returns a Cache that never hits.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                     { return nil }
func (nullCache) Close() error                                             { return nil }

var _ Cache = nullCache{}
