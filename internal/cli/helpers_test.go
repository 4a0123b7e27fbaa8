package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/timelane/pkg/chart"
)

const roadmapJSON = `{
  "rows": [
    {"id": "plan", "label": "Planning", "tasks": [{"id": "scope", "start": 0, "end": 100}]},
    {"id": "build", "rows": [
      {"id": "api", "tasks": [{"id": "api-1", "start": 100, "end": 300}]},
      {"id": "ui", "tasks": [{"id": "ui-1", "start": 150, "end": 400}]}
    ]},
    {"id": "ship", "tasks": [{"id": "release", "start": 400, "end": 400}]}
  ],
  "dependencies": [
    {"id": "d1", "predecessor": "scope", "successor": "api-1"},
    {"id": "d2", "predecessor": "scope", "successor": "release"}
  ]
}`

// isolate points every XDG directory at a temp dir so tests never touch
// the user's cache or config.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func roadmap(t *testing.T) *chart.Chart {
	t.Helper()
	c, err := chart.Decode(strings.NewReader(roadmapJSON), chart.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
