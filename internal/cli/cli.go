// Package cli implements the timelane command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timelane/pkg/buildinfo"
	"github.com/matzehuels/timelane/pkg/cache"
	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/layout"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "timelane"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), config: DefaultConfig()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Timelane lays out and inspects schedule charts",
		Long: `Timelane computes row, task and dependency geometry for schedule charts,
diffs successive layouts, answers viewport queries, and serves an HTTP
inspector over live layout sessions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			c.Logger.Debug("config loaded", "path", c.configPath, "zoom", cfg.Layout.Zoom)
			c.registerHooks()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/timelane/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.viewportCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/timelane/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadChart reads a chart file and rejects unaddressable records.
func loadChart(path string) (*chart.Chart, error) {
	c, err := chart.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// layoutFlags are the sizing flags shared by every command that builds a
// layout. Unset flags fall back to the config file.
type layoutFlags struct {
	taskHeight    float64
	taskPadding   float64
	rowHeight     float64
	overlap       string
	overlapOffset float64
	expand        []string
	width         float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.taskHeight, "task-height", 0, "task bar height in pixels")
	cmd.Flags().Float64Var(&f.taskPadding, "task-padding", 0, "padding between lanes in pixels")
	cmd.Flags().Float64Var(&f.rowHeight, "row-height", 0, "fixed row height (0 grows rows to fit)")
	cmd.Flags().StringVar(&f.overlap, "overlap", "", "overlap behavior: auto, stack, stagger, overlay")
	cmd.Flags().Float64Var(&f.overlapOffset, "overlap-offset", 0, "lane offset for stack and stagger")
	cmd.Flags().StringSliceVar(&f.expand, "expand", nil, "row ids to expand (repeatable)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "map the time axis onto this many pixels")
}

// options merges flags over the config file over the built-in defaults.
func (f *layoutFlags) options(cmd *cobra.Command, cfg Config, c *chart.Chart) (layout.Options, error) {
	opts, err := cfg.Layout.Options()
	if err != nil {
		return opts, err
	}
	flags := cmd.Flags()
	if flags.Changed("task-height") {
		opts.TaskHeight = f.taskHeight
	}
	if flags.Changed("task-padding") {
		opts.TaskPadding = f.taskPadding
	}
	if flags.Changed("row-height") {
		opts.RowHeight = f.rowHeight
	}
	if flags.Changed("overlap") {
		b, err := layout.ParseBehavior(f.overlap)
		if err != nil {
			return opts, err
		}
		opts.Overlap = b
	}
	if flags.Changed("overlap-offset") {
		off := f.overlapOffset
		opts.OverlapOffset = &off
	}
	opts.Expanded = append(opts.Expanded, f.expand...)

	width := cfg.Layout.Width
	if flags.Changed("width") {
		width = f.width
	}
	if width > 0 && c != nil {
		m, err := timeMapper(c, width)
		if err != nil {
			return opts, err
		}
		opts.Mapper = m
	}
	return opts, nil
}
