package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/timelane/pkg/cache"
	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/errors"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/store"
	"github.com/matzehuels/timelane/pkg/timeaxis"
)

// Config is the optional TOML config file.
//
//	[layout]
//	task_height = 24
//	overlap = "stack"
//	overlap_offset = 4
//
//	[serve]
//	addr = ":8080"
//	store_dir = "~/charts"
//	session_ttl = "1h"
//
//	[serve.redis]
//	addr = "localhost:6379"
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Serve  ServeConfig  `toml:"serve"`
}

// LayoutConfig overrides the built-in sizing defaults. Pointer fields
// distinguish an explicit zero from an unset value.
type LayoutConfig struct {
	TaskHeight     float64  `toml:"task_height"`
	BaselineHeight float64  `toml:"baseline_height"`
	TaskPadding    *float64 `toml:"task_padding"`
	GridlineWidth  *float64 `toml:"gridline_width"`
	RowHeight      float64  `toml:"row_height"`
	Overlap        string   `toml:"overlap"`
	OverlapOffset  *float64 `toml:"overlap_offset"`
	// Width maps the time axis onto this many pixels. Zero leaves tasks
	// without horizontal geometry.
	Width float64 `toml:"width"`
	// Zoom is the initial zoom factor of the browser.
	Zoom float64 `toml:"zoom"`
}

// ServeConfig configures `timelane serve`.
type ServeConfig struct {
	Addr       string            `toml:"addr"`
	StoreDir   string            `toml:"store_dir"`
	Mongo      store.MongoConfig `toml:"mongo"`
	Redis      cache.RedisConfig `toml:"redis"`
	SessionTTL time.Duration     `toml:"session_ttl"`
	RenderTTL  time.Duration     `toml:"render_ttl"`
}

// DefaultConfig is used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Layout: LayoutConfig{Zoom: 1},
		Serve:  ServeConfig{Addr: "localhost:8080"},
	}
}

// Options applies c over layout.DefaultOptions.
func (c LayoutConfig) Options() (layout.Options, error) {
	opts := layout.DefaultOptions()
	if c.TaskHeight > 0 {
		opts.TaskHeight = c.TaskHeight
	}
	if c.BaselineHeight > 0 {
		opts.BaselineHeight = c.BaselineHeight
	}
	if c.TaskPadding != nil {
		opts.TaskPadding = *c.TaskPadding
	}
	if c.GridlineWidth != nil {
		opts.GridlineWidth = *c.GridlineWidth
	}
	opts.RowHeight = c.RowHeight
	if c.Overlap != "" {
		b, err := layout.ParseBehavior(c.Overlap)
		if err != nil {
			return opts, err
		}
		opts.Overlap = b
	}
	opts.OverlapOffset = c.OverlapOffset
	return opts, nil
}

// configPath returns the default config file location.
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file yields DefaultConfig; a missing explicit file is an
// error. Unknown keys are rejected so typos do not pass silently.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidOptions, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if _, err := cfg.Layout.Options(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// timeMapper maps the chart's time span onto width pixels. Charts without
// any time value get no mapper.
func timeMapper(c *chart.Chart, width float64) (timeaxis.Mapper, error) {
	start, end, ok := c.Bounds()
	if !ok {
		return nil, nil
	}
	return timeaxis.NewLinear(start, end, width)
}
