package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aluiziolira/bookbundle/config"
	"github.com/aluiziolira/bookbundle/pipeline"
	"github.com/aluiziolira/bookbundle/scraper"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags; they win over BOOKBUNDLE_* variables.
type globalOptions struct {
	baseURL     string
	delay       time.Duration
	timeout     time.Duration
	workers     int
	maxWorkers  int
	metricsAddr string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()
	opts := &globalOptions{}
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "bookbundle",
		Short: "Find used-book sellers who stock the most of your wish list",
		Long: `bookbundle crawls the used-book marketplace to find sellers able to ship
several of the requested books together, verified against each seller's shop.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()

			if err := config.FromEnv(cfg); err != nil {
				return fmt.Errorf("read environment: %w", err)
			}
			applyFlags(cmd, opts, cfg)

			logger, level := newLogger(cfg.Verbose)
			slog.SetDefault(logger)
			slog.SetLogLoggerLevel(level.Level())

			return cfg.Validate()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", defaults.BaseURL, "Origin base URL")
	flags.DurationVar(&opts.delay, "delay", defaults.Delay, "Pause before each origin request")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "Per-request timeout")
	flags.IntVar(&opts.workers, "workers", defaults.Workers, "Worker pool size")
	flags.IntVar(&opts.maxWorkers, "max-workers", defaults.MaxWorkers, "Worker pool burst size")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newSearchCmd(cfg), newAnalyzeCmd(cfg), newServeCmd(cfg))
	return cmd
}

func applyFlags(cmd *cobra.Command, opts *globalOptions, cfg *config.Config) {
	overrides := []struct {
		name  string
		apply func()
	}{
		{"base-url", func() { cfg.BaseURL = opts.baseURL }},
		{"delay", func() { cfg.Delay = opts.delay }},
		{"timeout", func() { cfg.Timeout = opts.timeout }},
		{"workers", func() { cfg.Workers = opts.workers }},
		{"max-workers", func() { cfg.MaxWorkers = opts.maxWorkers }},
		{"metrics-addr", func() { cfg.MetricsAddr = opts.metricsAddr }},
		{"verbose", func() { cfg.Verbose = opts.verbose }},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.name) {
			o.apply()
		}
	}
}

// app holds the process-wide collaborators shared by every analysis.
type app struct {
	cfg      *config.Config
	metrics  *scraper.Metrics
	pool     *pipeline.Pool
	analyzer *pipeline.Analyzer
}

func newApp(cfg *config.Config) (*app, error) {
	metrics := scraper.NewMetrics()

	fetcher, err := scraper.NewCollyFetcher(cfg, metrics)
	if err != nil {
		return nil, fmt.Errorf("initialising fetcher: %w", err)
	}
	cache, err := scraper.NewIdentityCache(cfg.IdentityCacheSize)
	if err != nil {
		return nil, fmt.Errorf("initialising identity cache: %w", err)
	}
	client := scraper.NewClient(cfg, fetcher, cache, metrics)

	pool := pipeline.NewPool(cfg.Workers, cfg.MaxWorkers, cfg.QueueCapacity)
	if cfg.Verbose {
		pool.StartMetricsReporting(10 * time.Second)
	}

	return &app{
		cfg:      cfg,
		metrics:  metrics,
		pool:     pool,
		analyzer: pipeline.NewAnalyzer(cfg, client, pool, metrics),
	}, nil
}

func (a *app) Close() {
	if err := a.pool.Close(); err != nil {
		slog.Error("worker pool shutdown failed", slog.Any("error", err))
	}
}

func (a *app) metricsHandler() http.Handler {
	return promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{})
}

// startMetricsServer serves /metrics on cfg.MetricsAddr when set. The returned
// stop function is always safe to call.
func (a *app) startMetricsServer() func() {
	if a.cfg.MetricsAddr == "" {
		return func() {}
	}

	server := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           a.metricsHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", a.cfg.MetricsAddr))

	return func() {
		if err := shutdownServer(server); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	// stdout carries command output, so logs go to stderr.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
