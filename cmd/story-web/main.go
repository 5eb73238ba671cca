// Command story-web serves AMP story documents, the collections API, and
// interactive player sessions over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/story-viewer/internal/collections"
	"github.com/fpang/story-viewer/internal/config"
	"github.com/fpang/story-viewer/internal/httpx"
	"github.com/fpang/story-viewer/internal/logging"
	"github.com/fpang/story-viewer/internal/media"
	"github.com/fpang/story-viewer/internal/render"
	"github.com/fpang/story-viewer/internal/storyhttp"
)

const cacheSweepInterval = time.Minute

// CLI flags
var (
	portFlag    int
	envFileFlag string
	noMetrics   bool
)

var rootCmd = &cobra.Command{
	Use:   "story-web",
	Short: "Serve AMP story documents and the story player",
	Long: `Story Web starts an HTTP server that renders story collections as
standalone AMP story documents, lists collections for a slug, and runs
interactive player sessions over WebSocket.

Examples:
  story-web
  story-web --port 9090
  story-web --env-file .env.local`,
	RunE: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.Flags().StringVar(&envFileFlag, "env-file", ".env", "Optional dotenv file loaded before reading configuration")
	rootCmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable the /metrics endpoint")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	start := time.Now()
	loadEnvFile(envFileFlag)
	logging.Init()

	cfg := config.Load()
	if portFlag > 0 {
		cfg.Port = strconv.Itoa(portFlag)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := checkAppToken(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, closeCache := openCache(ctx, cfg)
	defer closeCache()

	client := collections.NewClient(cfg.APIBaseURL, cfg.AppToken,
		collections.WithHTTPClient(httpx.NewClient(cfg.UpstreamTimeout, cfg.UpstreamRetries)),
		collections.WithCache(cache, cfg.CacheTTL),
	)
	resolver := media.NewResolver(cfg.MediaBaseURL)

	opts := storyhttp.Options{
		Renderer:   render.New(client, resolver),
		Lister:     client,
		Resolver:   resolver,
		BaseURL:    cfg.BaseURL,
		PlayerTick: cfg.PlayerTick,

		TrustForwardedHeaders: cfg.TrustProxy,
	}
	if !noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Observer = storyhttp.NewPrometheusObserver(reg)
		opts.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      storyhttp.NewHandler(opts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Graceful shutdown incomplete")
		}
	}()

	logging.NewStartupLogger("story-web").
		CommitHash(commitHash).
		BuildTime(buildTime).
		Feature("redisCache", cfg.RedisURL != "").
		Feature("metrics", !noMetrics).
		Feature("appToken", cfg.AppToken != "").
		Feature("trustProxy", cfg.TrustProxy).
		Config("environment", cfg.Environment).
		Config("addr", cfg.Addr()).
		Config("apiBase", cfg.APIBaseURL).
		Config("mediaBase", cfg.MediaBaseURL).
		Config("baseURL", cfg.BaseURL).
		Config("cacheTTL", cfg.CacheTTL.String()).
		InitDuration(time.Since(start)).
		Log()

	fmt.Printf("\n  Story viewer: http://localhost:%s/story?collectionId=...&slug=...\n\n", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// checkAppToken refuses to start a production server without an App-Token.
// Other environments only warn.
func checkAppToken(cfg *config.Config) error {
	if cfg.AppToken != "" {
		return nil
	}
	if cfg.IsProduction() {
		return errors.New("APP_TOKEN is required in production")
	}
	log.Warn().Msg("APP_TOKEN not set, requests to the stories API are unauthenticated")
	return nil
}

// loadEnvFile loads a dotenv file when present. Variables already set in
// the environment win.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", path, err)
	}
}

// openCache connects to Redis when configured and falls back to an
// in-process cache when it is not set or unreachable.
func openCache(ctx context.Context, cfg *config.Config) (collections.Cache, func()) {
	if cfg.RedisURL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := collections.DialRedis(dialCtx, cfg.RedisURL, "story-viewer:")
		if err == nil {
			log.Info().Msg("Using Redis collection cache")
			return rc, func() { rc.Close() }
		}
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory collection cache")
	}

	mc := collections.NewMemoryCache()
	go mc.RunSweeper(ctx, cacheSweepInterval)
	return mc, func() {}
}
