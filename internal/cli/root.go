package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/cricket-api/internal/build"
	"github.com/rohmanhakim/cricket-api/internal/cache"
	"github.com/rohmanhakim/cricket-api/internal/config"
	"github.com/rohmanhakim/cricket-api/internal/extractor"
	"github.com/rohmanhakim/cricket-api/internal/fetcher"
	"github.com/rohmanhakim/cricket-api/internal/livescore"
	"github.com/rohmanhakim/cricket-api/internal/metadata"
	"github.com/rohmanhakim/cricket-api/internal/server"
	"github.com/rohmanhakim/cricket-api/internal/storage"
	"github.com/rohmanhakim/cricket-api/pkg/hashutil"
	"github.com/rohmanhakim/cricket-api/pkg/limiter"
	"github.com/rohmanhakim/cricket-api/pkg/retry"
	"github.com/rohmanhakim/cricket-api/pkg/timeutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	addr            string
	baseURL         string
	fetchTimeout    time.Duration
	fetchAttempts   int
	upstreamDelay   time.Duration
	userAgents      []string
	listTTL         time.Duration
	scoreTTL        time.Duration
	extraTTL        time.Duration
	cacheMaxEntries int
	enrichWorkers   int
	snapshotDir     string
	corsOrigins     []string
	logLevel        string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cricket-api",
	Short: "Serve live cricket scores scraped from Cricbuzz as JSON.",
	Long: `cricket-api scrapes the public Cricbuzz site and exposes the result as a
small JSON API: the homepage match list and per-match scorecard snapshots.

Responses are cached for a few seconds so bursts of clients do not turn
into bursts of upstream requests.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return err
		}
		return runServer(cmd.Context(), cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /etc/cricket-api/config.json)")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "listen address as host:port, :port, or a bare port number")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "root URL of the upstream site to scrape")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "fetch-timeout", 0, "timeout for a single upstream request")
	rootCmd.PersistentFlags().IntVar(&fetchAttempts, "fetch-attempts", 0, "attempts per upstream request, including the first")
	rootCmd.PersistentFlags().DurationVar(&upstreamDelay, "upstream-delay", 0, "minimum delay between requests to the upstream host")
	rootCmd.PersistentFlags().StringArrayVar(&userAgents, "user-agent", []string{}, "user agent for upstream requests (can be repeated)")
	rootCmd.PersistentFlags().DurationVar(&listTTL, "list-ttl", 0, "cache lifetime of the match list")
	rootCmd.PersistentFlags().DurationVar(&scoreTTL, "score-ttl", 0, "cache lifetime of a scorecard snapshot")
	rootCmd.PersistentFlags().DurationVar(&extraTTL, "extra-ttl", 0, "cache lifetime of per-match extras like start times")
	rootCmd.PersistentFlags().IntVar(&cacheMaxEntries, "cache-max-entries", 0, "cached entry cap (0 for unbounded)")
	rootCmd.PersistentFlags().IntVar(&enrichWorkers, "enrich-workers", 0, "concurrent detail fetches while enriching the match list")
	rootCmd.PersistentFlags().StringVar(&snapshotDir, "snapshot-dir", "", "directory for snapshots of unparseable pages (empty disables)")
	rootCmd.PersistentFlags().StringArrayVar(&corsOrigins, "cors-origin", []string{}, "allowed CORS origin (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log verbosity: debug, info, warn, error")

	rootCmd.Version = build.FullVersion()
}

// runServer wires the scraping pipeline together and blocks until the
// context is cancelled or the listener fails.
func runServer(ctx context.Context, cfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	sink := metadata.NewRecorder(logger)

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.UpstreamDelay())

	retryParam := retry.NewRetryParam(
		0,
		time.Now().UnixNano(),
		cfg.FetchAttempts(),
		timeutil.NewBackoffParam(500*time.Millisecond, 2.0, 5*time.Second),
	)

	pageFetcher := fetcher.NewPageFetcher(
		sink,
		rateLimiter,
		cfg.FetchTimeout(),
		cfg.UserAgents(),
		retryParam,
	)
	pageExtractor := extractor.NewPageExtractor(sink)

	scoreCache := cache.New(
		cache.WithMetrics(metadata.NewCacheMetrics(sink)),
		cache.WithMaxEntries(cfg.CacheMaxEntries()),
	)

	var snapshots storage.Sink
	if cfg.SnapshotDir() != "" {
		snapshotSink := storage.NewLocalSink(cfg.SnapshotDir(), hashutil.HashAlgoBLAKE3, sink)
		snapshots = &snapshotSink
	}

	service := livescore.NewService(livescore.ServiceParam{
		Fetcher:       pageFetcher,
		Extractor:     &pageExtractor,
		Cache:         scoreCache,
		MetadataSink:  sink,
		Snapshots:     snapshots,
		BaseURL:       cfg.BaseURL(),
		ListTTL:       cfg.ListTTL(),
		ScoreTTL:      cfg.ScoreTTL(),
		ExtraTTL:      cfg.ExtraTTL(),
		EnrichWorkers: cfg.EnrichWorkers(),
	})

	srv := server.New(server.Param{
		Addr:        cfg.Addr(),
		Service:     service,
		Logger:      logger,
		Version:     build.FullVersion(),
		CORSOrigins: cfg.CORSOrigins(),
	})

	base := cfg.BaseURL()
	logger.Info("starting cricket-api",
		slog.String("addr", cfg.Addr()),
		slog.String("base_url", base.String()),
		slog.String("version", build.FullVersion()),
	)

	return srv.Run(ctx)
}

// InitConfig builds the effective config, exiting the process on error.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the effective config: defaults, then the
// config file if one was given, otherwise environment variables, then
// flag overrides. Returning the error makes the paths testable.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	builder := config.WithDefault().FromEnv()

	if addr != "" {
		builder = builder.WithAddr(addr)
	}
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: --base-url: %s", config.ErrInvalidConfig, err.Error())
		}
		builder = builder.WithBaseURL(*parsed)
	}
	if fetchTimeout > 0 {
		builder = builder.WithFetchTimeout(fetchTimeout)
	}
	if fetchAttempts > 0 {
		builder = builder.WithFetchAttempts(fetchAttempts)
	}
	if upstreamDelay > 0 {
		builder = builder.WithUpstreamDelay(upstreamDelay)
	}
	if len(userAgents) > 0 {
		builder = builder.WithUserAgents(userAgents)
	}
	if listTTL > 0 {
		builder = builder.WithListTTL(listTTL)
	}
	if scoreTTL > 0 {
		builder = builder.WithScoreTTL(scoreTTL)
	}
	if extraTTL > 0 {
		builder = builder.WithExtraTTL(extraTTL)
	}
	if cacheMaxEntries > 0 {
		builder = builder.WithCacheMaxEntries(cacheMaxEntries)
	}
	if enrichWorkers > 0 {
		builder = builder.WithEnrichWorkers(enrichWorkers)
	}
	if snapshotDir != "" {
		builder = builder.WithSnapshotDir(snapshotDir)
	}
	if len(corsOrigins) > 0 {
		builder = builder.WithCORSOrigins(corsOrigins)
	}
	if logLevel != "" {
		level, err := config.ParseLogLevel(logLevel)
		if err != nil {
			return config.Config{}, err
		}
		builder = builder.WithLogLevel(level)
	}

	return builder.Build()
}

func ResetFlags() {
	cfgFile = ""
	addr = ""
	baseURL = ""
	fetchTimeout = 0
	fetchAttempts = 0
	upstreamDelay = 0
	userAgents = []string{}
	listTTL = 0
	scoreTTL = 0
	extraTTL = 0
	cacheMaxEntries = 0
	enrichWorkers = 0
	snapshotDir = ""
	corsOrigins = []string{}
	logLevel = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetAddrForTest(a string) {
	addr = a
}

func SetBaseURLForTest(u string) {
	baseURL = u
}

func SetFetchTimeoutForTest(timeout time.Duration) {
	fetchTimeout = timeout
}

func SetFetchAttemptsForTest(attempts int) {
	fetchAttempts = attempts
}

func SetUpstreamDelayForTest(delay time.Duration) {
	upstreamDelay = delay
}

func SetUserAgentsForTest(agents []string) {
	userAgents = agents
}

func SetListTTLForTest(ttl time.Duration) {
	listTTL = ttl
}

func SetScoreTTLForTest(ttl time.Duration) {
	scoreTTL = ttl
}

func SetExtraTTLForTest(ttl time.Duration) {
	extraTTL = ttl
}

func SetCacheMaxEntriesForTest(max int) {
	cacheMaxEntries = max
}

func SetEnrichWorkersForTest(workers int) {
	enrichWorkers = workers
}

func SetSnapshotDirForTest(dir string) {
	snapshotDir = dir
}

func SetCORSOriginsForTest(origins []string) {
	corsOrigins = origins
}

func SetLogLevelForTest(level string) {
	logLevel = level
}
