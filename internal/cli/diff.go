package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timelane/pkg/diff"
	"github.com/matzehuels/timelane/pkg/engine"
	"github.com/matzehuels/timelane/pkg/view"
)

// diffCommand creates the diff command.
func (c *CLI) diffCommand() *cobra.Command {
	var (
		all    bool
		asJSON bool
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "diff [old] [new]",
		Short: "Show the reconciliation instructions between two chart revisions",
		Long: `Show the reconciliation instructions between two chart revisions.

Both charts are laid out with the same options. Rows, tasks and dependencies
are tagged add, delete or exist by id; tasks that moved to another row are
tagged migrate. Unchanged objects are counted but only listed with --all.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := loadChart(args[0])
			if err != nil {
				return err
			}
			next, err := loadChart(args[1])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.config, next)
			if err != nil {
				return err
			}

			e := engine.New(opts, engine.WithLogger(c.Logger))
			if _, err := e.Update(prev); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			res, err := e.Update(next)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			summary := view.Summarize(res, all)
			if asJSON {
				data, err := view.Marshal(summary)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			printDiff(summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list unchanged objects too")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	flags.register(cmd)

	return cmd
}

func printDiff(s view.DiffSummary) {
	counts := func(kind string, n diff.Counts) []string {
		return []string{kind, fmt.Sprint(n.Add), fmt.Sprint(n.Delete), fmt.Sprint(n.Exist), fmt.Sprint(n.Migrate)}
	}
	fmt.Println(renderTable(
		[]string{"Kind", "Add", "Delete", "Exist", "Migrate"},
		[][]string{
			counts("rows", s.Rows),
			counts("tasks", s.Tasks),
			counts("dependencies", s.Dependencies),
		},
	))

	if len(s.Changes) == 0 {
		printInfo("No changes")
		return
	}
	rows := make([][]string, 0, len(s.Changes))
	for _, ch := range s.Changes {
		action := ch.Action
		if ch.From != "" {
			action += " from " + ch.From
		}
		rows = append(rows, []string{ch.Kind, ch.ID, action})
	}
	fmt.Println(renderTable([]string{"Kind", "ID", "Action"}, rows))
}
