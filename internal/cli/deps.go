package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timelane/pkg/cache"
	"github.com/matzehuels/timelane/pkg/depgraph"
	"github.com/matzehuels/timelane/pkg/engine"
	"github.com/matzehuels/timelane/pkg/errors"
	"github.com/matzehuels/timelane/pkg/viewport"
)

// artifactTTL bounds how long a rendered dependency graph is reused.
const artifactTTL = 30 * 24 * time.Hour

type depsOptions struct {
	output   string
	format   string
	detailed bool
	isolated bool
	minRow   int
	maxRow   int
	noCache  bool
}

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	opts := depsOptions{minRow: -1, maxRow: -1}
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "deps [chart]",
		Short: "Export the task dependency graph as DOT or SVG",
		Long: `Export the task dependency graph as DOT or SVG.

Tasks are grouped into one cluster per visible row. Dependencies whose
endpoints are hidden by collapsed rows are left out. With --min and --max
only the dependencies crossing that row window are exported.

SVG output is rendered with Graphviz and cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := loadChart(args[0])
			if err != nil {
				return err
			}
			lopts, err := flags.options(cmd, c.config, ch)
			if err != nil {
				return err
			}

			e := engine.New(lopts, engine.WithLogger(c.Logger))
			if _, err := e.Update(ch); err != nil {
				return err
			}
			g := e.Current()

			dopts := depgraph.Options{Detailed: opts.detailed, Isolated: opts.isolated}
			if opts.minRow >= 0 || opts.maxRow >= 0 {
				r := viewport.Range{Min: max(opts.minRow, 0), Max: opts.maxRow}
				if opts.maxRow < 0 {
					r.Max = len(g.Rows) - 1
				}
				dopts.Range = &r
			}
			dot := depgraph.ToDOT(g, dopts)

			return c.writeDeps(cmd.Context(), args[0], dot, dopts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: <chart>.deps.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "output format: dot, svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add time spans and lanes to node labels")
	cmd.Flags().BoolVar(&opts.isolated, "isolated", false, "keep tasks without dependencies")
	cmd.Flags().IntVar(&opts.minRow, "min", -1, "first row of the window")
	cmd.Flags().IntVar(&opts.maxRow, "max", -1, "last row of the window")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

func (c *CLI) writeDeps(ctx context.Context, input, dot string, dopts depgraph.Options, opts depsOptions) error {
	var (
		data []byte
		hit  bool
	)
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		artifacts, err := newCache(opts.noCache)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer artifacts.Close()

		key := cache.NewDefaultKeyer().ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{
			Format:   "svg",
			Detailed: dopts.Detailed,
			Isolated: dopts.Isolated,
		})

		spinner := newSpinnerWithContext(ctx, "Rendering dependency graph...")
		spinner.Start()
		data, hit, err = cache.Fetch(ctx, artifacts, key, "artifact", artifactTTL, func() ([]byte, error) {
			return depgraph.RenderSVG(ctx, dot)
		})
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want dot or svg)", opts.format)
	}

	if opts.output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".deps." + opts.format
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	status := "Rendered"
	if hit {
		status = "Reused cached"
	}
	printSuccess("%s dependency graph", status)
	printFile(output)
	return nil
}
