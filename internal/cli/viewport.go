package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timelane/pkg/engine"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/view"
	"github.com/matzehuels/timelane/pkg/viewport"
)

// viewportCommand creates the viewport command.
func (c *CLI) viewportCommand() *cobra.Command {
	var (
		win    viewport.Window
		asJSON bool
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "viewport [chart]",
		Short: "List the rows and dependencies inside a scrolled window",
		Long: `List the rows and dependencies inside a scrolled window.

The window starts --offset pixels below the top of the content and is
--height pixels tall; --overscan widens it on both sides. Dependencies are
listed when their arc crosses the window, even if both endpoints lie
outside it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := loadChart(args[0])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.config, ch)
			if err != nil {
				return err
			}

			e := engine.New(opts, engine.WithLogger(c.Logger))
			if _, err := e.Update(ch); err != nil {
				return err
			}
			g := e.Current()
			r := win.Clamp(g.ContentHeight).Rows(g)

			if asJSON {
				data, err := view.Marshal(view.FromGeneration(g, &r))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			printViewport(g, r, e.FindVisibleDependencies(r))
			return nil
		},
	}

	cmd.Flags().Float64Var(&win.Offset, "offset", 0, "scroll offset in pixels")
	cmd.Flags().Float64Var(&win.Height, "height", 600, "window height in pixels")
	cmd.Flags().Float64Var(&win.Overscan, "overscan", 0, "extra pixels above and below the window")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON snapshot of the window")
	flags.register(cmd)

	return cmd
}

func printViewport(g *layout.Generation, r viewport.Range, deps []*layout.DependencyLayout) {
	if r.Empty() {
		printInfo("No rows in window")
		return
	}
	printInfo("Rows %d–%d of %d", r.Min, r.Max, len(g.Rows))

	rows := make([][]string, 0, r.Len())
	for _, row := range g.Rows[r.Min : r.Max+1] {
		rows = append(rows, []string{
			strconv.Itoa(row.Index),
			indent(row.Depth) + row.Label(),
			row.Expanded.String(),
			fmt.Sprintf("%.1f", row.Y),
			fmt.Sprintf("%.1f", row.Height),
			strconv.Itoa(len(row.Tasks)),
		})
	}
	fmt.Println(renderTable([]string{"#", "Row", "Expander", "Y", "Height", "Tasks"}, rows))

	if len(deps) == 0 {
		return
	}
	links := make([][]string, 0, len(deps))
	for _, d := range deps {
		links = append(links, []string{
			d.ID,
			string(d.Type),
			d.Predecessor.ID + " " + iconArrow + " " + d.Successor.ID,
			fmt.Sprintf("%d–%d", d.Top.Index, d.Bottom.Index),
		})
	}
	fmt.Println(renderTable([]string{"Dependency", "Type", "Tasks", "Rows"}, links))
}

func indent(depth int) string { return strings.Repeat("  ", depth) }
