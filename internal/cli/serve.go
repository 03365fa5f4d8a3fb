package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/instrumap/internal/server"
	"github.com/matzehuels/instrumap/pkg/config"
	"github.com/matzehuels/instrumap/pkg/observability"
	"github.com/matzehuels/instrumap/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		envFile   string
		stylePath string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagrams over HTTP",
		Long: `Serve diagrams over HTTP.

Settings come from the environment, optionally loaded from a .env file:

  INSTRUMAP_ADDR         listen address (default :8080)
  INSTRUMAP_REDIS_URL    artifact cache (default: local file cache)
  INSTRUMAP_MONGO_URI    diagram store (default: in memory)
  INSTRUMAP_MONGO_DB     database name (default: instrumap)
  INSTRUMAP_CORS_ORIGIN  Access-Control-Allow-Origin (default *)
  INSTRUMAP_MAX_BODY     maximum document size in bytes (default 1 MiB)
  INSTRUMAP_CACHE_PREFIX prefix for cache keys (default none)

Flags override the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := server.LoadSettings(envFile)
			if addr != "" {
				settings.Addr = addr
			}
			return c.runServe(cmd.Context(), settings, stylePath, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides INSTRUMAP_ADDR)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "environment file")
	cmd.Flags().StringVar(&stylePath, "style", "", "style file (TOML)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the local file cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, settings server.Settings, stylePath string, noCache bool) error {
	style := config.Default()
	if stylePath != "" {
		var err error
		if style, err = config.LoadFile(stylePath); err != nil {
			return err
		}
	}

	fallback, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	backends, err := server.OpenBackends(ctx, settings, fallback, c.Logger)
	if err != nil {
		return err
	}
	defer backends.Close(context.Background())

	observability.NewLogHooks(c.Logger).Install()
	defer observability.Reset()

	runner := pipeline.NewRunner(backends.Cache, settings.Keyer(), c.Logger)
	srv := server.New(runner, backends.Store,
		server.WithStyle(style),
		server.WithLogger(c.Logger),
		server.WithCORSOrigin(settings.CORSOrigin),
		server.WithMaxBody(settings.MaxBodyBytes),
	)

	printInfo("Serving on %s", StyleLink.Render(settings.Addr))
	printKeyValue("cache", backendName(settings.RedisURL != "", "redis", "local"))
	printKeyValue("store", backendName(settings.MongoURI != "", "mongodb", "memory"))
	return srv.ListenAndServe(ctx, settings.Addr)
}

func backendName(remote bool, name, fallback string) string {
	if remote {
		return name
	}
	return fallback
}
