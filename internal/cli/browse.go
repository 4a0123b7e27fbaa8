package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/diff"
	"github.com/matzehuels/timelane/pkg/engine"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/timeaxis"
	"github.com/matzehuels/timelane/pkg/viewport"
)

const (
	browseLabelWidth = 28
	browseChrome     = 5 // title, help, blank, footer, footer detail
	defaultBarCols   = 60
)

var (
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseRowStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	browseDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	browseBarStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	browseErrStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// browseCommand creates the interactive browser.
func (c *CLI) browseCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "browse [chart]",
		Short: "Scroll, expand and zoom a chart in the terminal",
		Long: `Scroll, expand and zoom a chart in the terminal.

Keys:
  ↑/↓ j/k     move between rows
  pgup/pgdn   scroll one page
  enter/space expand or collapse the row under the cursor
  +/-         zoom the time axis in or out
  h/l         pan the time axis
  q           quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := loadChart(args[0])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.config, nil)
			if err != nil {
				return err
			}
			m, err := newBrowseModel(ch, opts, c.config.Layout.Zoom, c.Logger)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if bm, ok := final.(browseModel); ok && bm.err != nil {
				return bm.err
			}
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

// rowHandle is the display handle the browser attaches to visible objects.
// Handles survive rebuilds through reconciliation, so Seq shows how long an
// object has been on screen.
type rowHandle struct{ Seq int }

// browseModel is the bubbletea model for the chart browser. The engine holds
// all layout state; the model only tracks the cursor, the scrolled window
// and the time axis.
type browseModel struct {
	engine *engine.Engine
	chart  *chart.Chart
	axis   *timeaxis.Linear

	window  viewport.Window
	linePx  float64
	lines   int
	barCols int
	cursor  int

	materialized int
	status       string
	err          error
}

func newBrowseModel(ch *chart.Chart, opts layout.Options, zoom float64, logger *log.Logger) (browseModel, error) {
	m := browseModel{chart: ch, lines: 20, barCols: defaultBarCols}

	if start, end, ok := ch.Bounds(); ok {
		axis, err := timeaxis.NewLinear(start, end, float64(m.barCols))
		if err != nil {
			return m, err
		}
		if zoom > 0 && zoom != 1 {
			axis = axis.Zoom(zoom, axis.Width/2)
		}
		m.axis = axis
		opts.Mapper = axis
	}

	m.linePx = opts.TaskHeight + opts.TaskPadding
	if m.linePx <= 0 {
		m.linePx = layout.DefaultTaskHeight + layout.DefaultTaskPadding
	}

	seq := 0
	m.engine = engine.New(opts, engine.WithLogger(logger), engine.WithMaterializer(engine.MaterializerFunc(func(layout.Object) (any, error) {
		seq++
		return &rowHandle{Seq: seq}, nil
	})))
	if _, err := m.engine.Update(ch); err != nil {
		return m, err
	}
	if logger != nil {
		logger.Debug("browser ready", "rows", len(m.engine.Current().Rows))
	}
	m.resize(m.lines)
	return m, nil
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "pgup":
			m.scrollPage(-1)
		case "pgdown", "pgdn":
			m.scrollPage(1)
		case "enter", " ", "space":
			m.toggle()
		case "+", "=":
			m.retime(func(a *timeaxis.Linear) *timeaxis.Linear { return a.Zoom(2, a.Width/2) })
		case "-":
			m.retime(func(a *timeaxis.Linear) *timeaxis.Linear { return a.Zoom(0.5, a.Width/2) })
		case "h", "left":
			m.retime(func(a *timeaxis.Linear) *timeaxis.Linear { return a.Pan(-a.Width / 4) })
		case "l", "right":
			m.retime(func(a *timeaxis.Linear) *timeaxis.Linear { return a.Pan(a.Width / 4) })
		}
	case tea.WindowSizeMsg:
		m.barCols = max(msg.Width-browseLabelWidth-6, 10)
		m.retime(func(a *timeaxis.Linear) *timeaxis.Linear { return a.Resize(float64(m.barCols)) })
		m.resize(max(msg.Height-browseChrome, 3))
	}
	return m, nil
}

// resize fits the pixel window to lines terminal lines.
func (m *browseModel) resize(lines int) {
	m.lines = lines
	m.window.Height = float64(lines) * m.linePx
	m.settle()
}

// settle clamps the window and cursor to the current generation and
// materializes whatever is now visible.
func (m *browseModel) settle() {
	g := m.engine.Current()
	if g == nil || len(g.Rows) == 0 {
		m.cursor = 0
		m.window.Offset = 0
		return
	}
	m.cursor = min(max(m.cursor, 0), len(g.Rows)-1)
	m.window = m.window.Reveal(g.Rows[m.cursor]).Clamp(g.ContentHeight)

	n, err := m.engine.MaterializeRange(m.window.Rows(g))
	if err != nil {
		m.err = err
		return
	}
	m.materialized += n
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor += delta
	m.settle()
}

func (m *browseModel) scrollPage(dir int) {
	g := m.engine.Current()
	if g == nil {
		return
	}
	m.window = m.window.ScrollBy(float64(dir)*m.window.Height, g.ContentHeight)
	if r := m.window.Rows(g); !r.Empty() {
		m.cursor = r.Min
	}
	m.settle()
}

func (m *browseModel) toggle() {
	g := m.engine.Current()
	if g == nil || len(g.Rows) == 0 {
		return
	}
	row := g.Rows[m.cursor]
	if row.Expanded == layout.Leaf {
		m.status = row.ID + " has no children"
		return
	}
	res, err := m.engine.Toggle(row.ID)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = describeDiff(row.ID, res)
	m.settle()
}

// retime rebuilds the layout against a new time axis. Handles carry over
// to the new generation, so only rows that were never visible are
// materialized.
func (m *browseModel) retime(fn func(*timeaxis.Linear) *timeaxis.Linear) {
	if m.axis == nil {
		return
	}
	m.axis = fn(m.axis)
	opts := m.engine.Options()
	opts.Mapper = m.axis
	m.engine.SetOptions(opts)
	res, err := m.engine.Update(m.chart)
	if err != nil {
		m.err = err
		return
	}
	m.status = fmt.Sprintf("%s to %s · %d tasks repositioned",
		chart.Time(m.axis.Start), chart.Time(m.axis.End), res.Tasks.Exist+res.Tasks.Migrate)
	m.settle()
}

func describeDiff(rowID string, res *diff.Result) string {
	switch {
	case res.Rows.Add > 0:
		return fmt.Sprintf("expanded %s · +%d rows", rowID, res.Rows.Add)
	case res.Rows.Delete > 0:
		return fmt.Sprintf("collapsed %s · -%d rows", rowID, res.Rows.Delete)
	}
	return "no change"
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Timelane"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ move  ⏎ expand/collapse  +/- zoom  h/l pan  q quit"))
	b.WriteString("\n\n")

	g := m.engine.Current()
	if g == nil {
		return b.String()
	}
	r := m.window.Rows(g)
	if r.Empty() {
		b.WriteString(browseDimStyle.Render("  (no rows)"))
		b.WriteString("\n")
	} else {
		first := r.Min
		if m.cursor >= first+m.lines {
			first = m.cursor - m.lines + 1
		}
		last := min(r.Max, first+m.lines-1)
		for i := first; i <= last; i++ {
			b.WriteString(m.renderRow(g.Rows[i], i == m.cursor))
			b.WriteString("\n")
		}
	}

	deps := m.engine.FindVisibleDependencies(r)
	footer := fmt.Sprintf("  rows %d–%d of %d · %d dependencies · %d handles",
		max(r.Min, 0)+1, r.Max+1, len(g.Rows), len(deps), m.materialized)
	b.WriteString(browseDimStyle.Render(footer))
	if m.status != "" {
		b.WriteString("\n  " + StyleHighlight.Render(m.status))
	}
	if m.err != nil {
		b.WriteString("\n  " + browseErrStyle.Render(m.err.Error()))
	}
	return b.String()
}

func (m browseModel) renderRow(row *layout.RowLayout, current bool) string {
	cursor := "  "
	if current {
		cursor = "▸ "
	}
	expander := "  "
	switch row.Expanded {
	case layout.Collapsed:
		expander = "+ "
	case layout.Expanded:
		expander = "- "
	}

	label := strings.Repeat("  ", row.Depth) + expander + row.Label()
	if w := lipgloss.Width(label); w > browseLabelWidth {
		label = string([]rune(label)[:browseLabelWidth-1]) + "…"
	}
	label = fmt.Sprintf("%-*s", browseLabelWidth, label)

	style := browseRowStyle
	if current {
		style = browseCursorStyle
	}
	return cursor + style.Render(label) + " " + browseBarStyle.Render(m.bar(row))
}

// bar draws the row's tasks onto barCols cells. Tasks outside the axis are
// clipped; milestones are a single diamond, and one on the right edge is
// pulled into the last cell.
func (m browseModel) bar(row *layout.RowLayout) string {
	cells := []rune(strings.Repeat("·", m.barCols))
	if m.axis == nil {
		return string(cells)
	}
	for _, t := range row.Tasks {
		if t.Milestone {
			col := int(math.Floor(t.X))
			if col == m.barCols {
				col--
			}
			if col >= 0 && col < m.barCols {
				cells[col] = '◆'
			}
			continue
		}
		from := max(int(math.Floor(t.X)), 0)
		to := min(int(math.Ceil(t.X+t.Width)), m.barCols)
		glyph := '█'
		if t.Lane > 0 {
			glyph = '▓'
		}
		for col := from; col < to; col++ {
			cells[col] = glyph
		}
	}
	return string(cells)
}
