package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timelane/pkg/cache"
	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/engine"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/view"
)

// snapshotTTL bounds how long a cached layout snapshot is reused.
const snapshotTTL = 7 * 24 * time.Hour

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [chart]",
		Short: "Compute row, task and dependency geometry for a chart",
		Long: `Compute row, task and dependency geometry for a chart.

The chart may be JSON, TOML or YAML. The output is a layout snapshot in JSON:
every visible row with its y-offset and height, every task with its lane and
position, and every dependency with its top and bottom rows.

Results are cached locally, keyed by chart content and layout options.`,
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
			return c.runLayout(cmd.Context(), args[0], ch, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <chart>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runLayout builds the snapshot, through the cache, and writes it.
func (c *CLI) runLayout(ctx context.Context, input string, ch *chart.Chart, opts layout.Options, output string, noCache bool) error {
	snapshots, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer snapshots.Close()

	key, err := snapshotKey(ch, opts)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	data, hit, err := cache.Fetch(ctx, snapshots, key, "snapshot", snapshotTTL, func() ([]byte, error) {
		g, err := engine.New(opts, engine.WithLogger(c.Logger)).ComputeLayout(ch)
		if err != nil {
			return nil, err
		}
		return view.Marshal(view.FromGeneration(g, nil))
	})
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	snap, err := view.UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	tasks := 0
	for _, r := range snap.Rows {
		tasks += len(r.Tasks)
	}
	prog.done(fmt.Sprintf("Laid out %d rows", len(snap.Rows)))

	if output == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(snap.Rows), tasks, len(snap.Dependencies), hit)
	printDiscarded(snap.Discarded.Tasks, snap.Discarded.Dependencies)
	printNewline()
	printNextStep("Inspect", appName+" browse "+input)

	return nil
}

// snapshotKey hashes the chart and every option that changes its layout.
func snapshotKey(ch *chart.Chart, opts layout.Options) (string, error) {
	doc, err := json.Marshal(ch)
	if err != nil {
		return "", fmt.Errorf("hash chart: %w", err)
	}
	expanded := opts.Expanded
	opts.Expanded = nil
	opts.ChildSource = nil
	fp, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("hash options: %w", err)
	}
	return cache.NewDefaultKeyer().SnapshotKey(cache.Hash(doc), cache.SnapshotKeyOpts{
		Options:  cache.Hash(fp),
		Expanded: expanded,
	}), nil
}
