package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/timelane/pkg/layout"
)

func newTestBrowser(t *testing.T) browseModel {
	t.Helper()
	m, err := newBrowseModel(roadmap(t), layout.DefaultOptions(), 1, nil)
	if err != nil {
		t.Fatalf("newBrowseModel: %v", err)
	}
	return m
}

func press(t *testing.T, m browseModel, keys ...tea.KeyMsg) browseModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(browseModel)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func rowIDs(m browseModel) []string {
	var ids []string
	for _, r := range m.engine.Current().Rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestBrowseInitialState(t *testing.T) {
	m := newTestBrowser(t)

	if got := strings.Join(rowIDs(m), ","); got != "plan,build,ship" {
		t.Errorf("rows = %s, want plan,build,ship", got)
	}
	// 3 rows, 2 tasks and d2; d1 ends in the collapsed build row.
	if m.materialized != 6 {
		t.Errorf("materialized = %d, want 6", m.materialized)
	}

	view := m.View()
	for _, want := range []string{"Planning", "+ build", "ship", "1 dependencies"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowseCursor(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{name: "down", keys: []tea.KeyMsg{runes("j")}, want: 1},
		{name: "clamped at top", keys: []tea.KeyMsg{{Type: tea.KeyUp}}, want: 0},
		{name: "clamped at bottom", keys: []tea.KeyMsg{runes("j"), runes("j"), runes("j"), runes("j")}, want: 2},
		{name: "down then up", keys: []tea.KeyMsg{{Type: tea.KeyDown}, runes("k")}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, newTestBrowser(t), tt.keys...)
			if m.cursor != tt.want {
				t.Errorf("cursor = %d, want %d", m.cursor, tt.want)
			}
		})
	}
}

func TestBrowseToggle(t *testing.T) {
	m := newTestBrowser(t)
	before := m.materialized

	m = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := strings.Join(rowIDs(m), ","); got != "plan,build,api,ui,ship" {
		t.Fatalf("rows after expand = %s", got)
	}
	if m.status != "expanded build · +2 rows" {
		t.Errorf("status = %q", m.status)
	}
	if m.materialized <= before {
		t.Error("expanding should materialize the new rows")
	}
	if !strings.Contains(m.View(), "- build") {
		t.Error("expanded row should show a collapse marker")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got := strings.Join(rowIDs(m), ","); got != "plan,build,ship" {
		t.Fatalf("rows after collapse = %s", got)
	}
	if m.status != "collapsed build · -2 rows" {
		t.Errorf("status = %q", m.status)
	}

	m = press(t, m, runes("k"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.status != "plan has no children" {
		t.Errorf("status on leaf = %q", m.status)
	}
}

func TestBrowseZoomKeepsHandles(t *testing.T) {
	m := newTestBrowser(t)
	before := m.materialized
	width := m.axis.End - m.axis.Start

	m = press(t, m, runes("+"))
	if got := m.axis.End - m.axis.Start; got != width/2 {
		t.Errorf("zoomed span = %d, want %d", got, width/2)
	}
	if m.materialized != before {
		t.Errorf("zoom created %d handles; reconciliation should carry them over", m.materialized-before)
	}
	if !strings.Contains(m.status, "tasks repositioned") {
		t.Errorf("status = %q", m.status)
	}

	m = press(t, m, runes("-"), runes("l"))
	if m.axis.Start <= 0 {
		t.Errorf("pan right should move the axis start later, got %d", m.axis.Start)
	}
}

func TestBrowseWindowSize(t *testing.T) {
	m := newTestBrowser(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 6})
	m = next.(browseModel)

	if m.barCols != 100-browseLabelWidth-6 {
		t.Errorf("barCols = %d", m.barCols)
	}
	if m.lines != 3 {
		t.Errorf("lines = %d, want 3", m.lines)
	}
	if m.axis.Width != float64(m.barCols) {
		t.Errorf("axis width = %v, want %d", m.axis.Width, m.barCols)
	}
}

func TestBrowseBar(t *testing.T) {
	m := newTestBrowser(t)
	g := m.engine.Current()

	plan := []rune(m.bar(g.Row("plan")))
	if len(plan) != m.barCols {
		t.Fatalf("bar has %d cells, want %d", len(plan), m.barCols)
	}
	// scope spans the first quarter of the 0..400 axis.
	if plan[0] != '█' || plan[m.barCols-1] != '·' {
		t.Errorf("plan bar = %s", string(plan))
	}
	if ship := m.bar(g.Row("ship")); !strings.ContainsRune(ship, '◆') {
		t.Errorf("ship bar should show a milestone: %s", ship)
	}
}

func TestBrowseQuit(t *testing.T) {
	_, cmd := newTestBrowser(t).Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
