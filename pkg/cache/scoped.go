package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each tenant or
// store its own namespace in a shared backend.
//
//	svgKeys := NewScopedKeyer(NewDefaultKeyer(), "timelane:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SnapshotKey returns the prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(chartHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(chartHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
