package cache

import "fmt"

// Keyer builds cache keys. Implementations must be deterministic.
type Keyer interface {
	// SnapshotKey is the key of a serialized layout snapshot of a chart.
	SnapshotKey(chartHash string, opts SnapshotKeyOpts) string

	// ArtifactKey is the key of a rendered dependency graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// SnapshotKeyOpts are the inputs besides the chart that change a snapshot.
type SnapshotKeyOpts struct {
	// Options is a fingerprint of the resolved layout options.
	Options  string   `json:"options"`
	Expanded []string `json:"expanded,omitempty"`
	Range    string   `json:"range,omitempty"`
}

// ArtifactKeyOpts are the inputs besides the DOT source that change a render.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Isolated bool   `json:"isolated,omitempty"`
}

// DefaultKeyer is the unscoped Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey returns "snapshot:<sha256>".
func (DefaultKeyer) SnapshotKey(chartHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", chartHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), graphHash, opts)
}
