package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/timelane/pkg/cache"
	"github.com/matzehuels/timelane/pkg/server"
	"github.com/matzehuels/timelane/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		storeDir string
		mongoURI string
		redis    string
		flags    layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout inspector",
		Long: `Run the HTTP layout inspector.

Each session holds a live layout engine. Clients post a chart, then scroll,
expand and collapse rows and fetch reconciliation diffs over a JSON API.

Charts are stored in --store-dir, or in MongoDB with --mongo. Rendered
dependency graphs are cached on disk, or in Redis with --redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config.Serve
			f := cmd.Flags()
			if f.Changed("addr") {
				cfg.Addr = addr
			}
			if f.Changed("store-dir") {
				cfg.StoreDir = storeDir
			}
			if f.Changed("mongo") {
				cfg.Mongo.URI = mongoURI
			}
			if f.Changed("redis") {
				cfg.Redis.Addr = redis
			}
			opts, err := flags.options(cmd, c.config, nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			charts, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			if charts != nil {
				defer charts.Close()
			}
			renders, err := c.openRenderCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer renders.Close()

			srv := server.New(server.Config{
				Options:    opts,
				Store:      charts,
				Cache:      renders,
				Keyer:      cache.NewScopedKeyer(cache.NewDefaultKeyer(), "serve"),
				Logger:     loggerFromContext(ctx),
				SessionTTL: cfg.SessionTTL,
				RenderTTL:  cfg.RenderTTL,
			})
			return c.runServer(ctx, cfg.Addr, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: localhost:8080)")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "directory of chart documents")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for chart storage")
	cmd.Flags().StringVar(&redis, "redis", "", "Redis address for the render cache")
	flags.register(cmd)

	return cmd
}

// openStore picks MongoDB over a directory. Neither configured means no
// chart endpoints.
func (c *CLI) openStore(ctx context.Context, cfg ServeConfig) (store.Store, error) {
	switch {
	case cfg.Mongo.URI != "":
		s, err := store.NewMongoStore(ctx, cfg.Mongo, store.WithLogger(c.Logger))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		c.Logger.Info("Using MongoDB chart store", "database", cfg.Mongo.Database)
		return s, nil
	case cfg.StoreDir != "":
		s, err := store.NewFileStore(cfg.StoreDir, store.WithLogger(c.Logger))
		if err != nil {
			return nil, err
		}
		c.Logger.Info("Using file chart store", "dir", s.Dir())
		return s, nil
	}
	c.Logger.Warn("No chart store configured; sessions need a chart in the request body")
	return nil, nil
}

func (c *CLI) openRenderCache(ctx context.Context, cfg ServeConfig) (cache.Cache, error) {
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("Using Redis render cache", "addr", cfg.Redis.Addr)
		return rc, nil
	}
	return newCache(false)
}

// runServer serves until ctx ends, then drains in-flight requests.
func (c *CLI) runServer(ctx context.Context, addr string, srv *server.Server) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.Logger.Info("Inspector listening", "addr", addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Logger.Info("Shutting down")
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}
