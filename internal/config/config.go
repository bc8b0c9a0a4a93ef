package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/cricket-api/pkg/urlutil"
)

type Config struct {
	//===============
	// Server
	//===============
	// Address the HTTP server binds to, in [host]:port form.
	addr string
	// Origins the CORS layer accepts.
	corsOrigins []string

	//===============
	// Upstream
	//===============
	// Root of the scraped site. Every page URL is resolved against it.
	baseURL url.URL
	// Maximum time of a single fetch request
	fetchTimeout time.Duration
	// Total attempts per fetch, including the first one
	fetchAttempts int
	// Minimum waiting time enforced between two requests to the upstream host.
	// Zero disables pacing.
	upstreamDelay time.Duration
	// Browser user agents rotated across requests. Empty means the fetcher's
	// built-in pool.
	userAgents []string

	//===============
	// Cache
	//===============
	// How long the homepage match list stays fresh
	listTTL time.Duration
	// How long a scorecard snapshot stays fresh
	scoreTTL time.Duration
	// How long per-match extras (start time, status line) stay fresh
	extraTTL time.Duration
	// Upper bound on cached entries. Zero means unbounded
	cacheMaxEntries int

	//===============
	// Enrichment
	//===============
	// Concurrent detail-page fetches while enriching the match list
	enrichWorkers int

	//===============
	// Diagnostics
	//===============
	// Directory receiving snapshots of pages the extractor rejected.
	// Empty disables snapshots.
	snapshotDir string

	//===============
	// Logging
	//===============
	logLevel slog.Level

	// First error observed while sourcing values. Build surfaces it so the
	// With.../FromEnv chain stays fluent.
	err error
}

type configDTO struct {
	Addr            string        `json:"addr,omitempty"`
	CORSOrigins     []string      `json:"corsOrigins,omitempty"`
	BaseURL         string        `json:"baseUrl,omitempty"`
	FetchTimeout    time.Duration `json:"fetchTimeout,omitempty"`
	FetchAttempts   int           `json:"fetchAttempts,omitempty"`
	UpstreamDelay   time.Duration `json:"upstreamDelay,omitempty"`
	UserAgents      []string      `json:"userAgents,omitempty"`
	ListTTL         time.Duration `json:"listTtl,omitempty"`
	ScoreTTL        time.Duration `json:"scoreTtl,omitempty"`
	ExtraTTL        time.Duration `json:"extraTtl,omitempty"`
	CacheMaxEntries int           `json:"cacheMaxEntries,omitempty"`
	EnrichWorkers   int           `json:"enrichWorkers,omitempty"`
	SnapshotDir     string        `json:"snapshotDir,omitempty"`
	LogLevel        string        `json:"logLevel,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	builder := WithDefault()

	if dto.Addr != "" {
		builder = builder.WithAddr(dto.Addr)
	}
	if len(dto.CORSOrigins) > 0 {
		builder = builder.WithCORSOrigins(dto.CORSOrigins)
	}
	if dto.BaseURL != "" {
		u, err := url.Parse(dto.BaseURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: baseUrl: %s", ErrInvalidConfig, err.Error())
		}
		builder = builder.WithBaseURL(*u)
	}
	if dto.FetchTimeout != 0 {
		builder = builder.WithFetchTimeout(dto.FetchTimeout)
	}
	if dto.FetchAttempts != 0 {
		builder = builder.WithFetchAttempts(dto.FetchAttempts)
	}
	if dto.UpstreamDelay != 0 {
		builder = builder.WithUpstreamDelay(dto.UpstreamDelay)
	}
	if len(dto.UserAgents) > 0 {
		builder = builder.WithUserAgents(dto.UserAgents)
	}
	if dto.ListTTL != 0 {
		builder = builder.WithListTTL(dto.ListTTL)
	}
	if dto.ScoreTTL != 0 {
		builder = builder.WithScoreTTL(dto.ScoreTTL)
	}
	if dto.ExtraTTL != 0 {
		builder = builder.WithExtraTTL(dto.ExtraTTL)
	}
	if dto.CacheMaxEntries != 0 {
		builder = builder.WithCacheMaxEntries(dto.CacheMaxEntries)
	}
	if dto.EnrichWorkers != 0 {
		builder = builder.WithEnrichWorkers(dto.EnrichWorkers)
	}
	if dto.SnapshotDir != "" {
		builder = builder.WithSnapshotDir(dto.SnapshotDir)
	}
	if dto.LogLevel != "" {
		level, err := ParseLogLevel(dto.LogLevel)
		if err != nil {
			return Config{}, err
		}
		builder = builder.WithLogLevel(level)
	}

	return builder.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config preloaded with values that serve the
// public Cricbuzz site out of the box.
func WithDefault() *Config {
	defaultConfig := Config{
		addr: ":5001",
		corsOrigins: []string{
			"http://localhost:5001",
			"http://127.0.0.1:5001",
		},
		baseURL: url.URL{
			Scheme: "https",
			Host:   "www.cricbuzz.com",
		},
		fetchTimeout:    10 * time.Second,
		fetchAttempts:   1,
		upstreamDelay:   0,
		userAgents:      nil,
		listTTL:         15 * time.Second,
		scoreTTL:        5 * time.Second,
		extraTTL:        5 * time.Minute,
		cacheMaxEntries: 0,
		enrichWorkers:   5,
		snapshotDir:     "",
		logLevel:        slog.LevelInfo,
	}
	return &defaultConfig
}

// FromEnv overrides fields from CRICKET_API_* environment variables.
// Unset variables leave the current value in place. The first value that
// fails to parse is reported by Build.
func (c *Config) FromEnv() *Config {
	if v, ok := lookupEnv("CRICKET_API_ADDR"); ok {
		c.addr = v
	} else if port, ok := lookupEnv("PORT"); ok {
		c.addr = ":" + port
	}
	if v, ok := lookupEnv("CORS_ORIGINS"); ok {
		c.corsOrigins = splitOrigins(v)
	}
	if v, ok := lookupEnv("CRICKET_API_BASE_URL"); ok {
		u, err := url.Parse(v)
		if err != nil {
			c.fail(fmt.Errorf("%w: CRICKET_API_BASE_URL: %s", ErrInvalidConfig, err.Error()))
		} else {
			c.baseURL = *u
		}
	}
	c.envDuration("CRICKET_API_FETCH_TIMEOUT", &c.fetchTimeout)
	c.envInt("CRICKET_API_FETCH_ATTEMPTS", &c.fetchAttempts)
	c.envDuration("CRICKET_API_UPSTREAM_DELAY", &c.upstreamDelay)
	c.envDuration("CRICKET_API_LIST_TTL", &c.listTTL)
	c.envDuration("CRICKET_API_SCORE_TTL", &c.scoreTTL)
	c.envDuration("CRICKET_API_EXTRA_TTL", &c.extraTTL)
	c.envInt("CRICKET_API_CACHE_MAX_ENTRIES", &c.cacheMaxEntries)
	c.envInt("CRICKET_API_ENRICH_WORKERS", &c.enrichWorkers)
	if v, ok := lookupEnv("CRICKET_API_SNAPSHOT_DIR"); ok {
		c.snapshotDir = v
	}
	if v, ok := lookupEnv("CRICKET_API_LOG_LEVEL"); ok {
		level, err := ParseLogLevel(v)
		if err != nil {
			c.fail(err)
		} else {
			c.logLevel = level
		}
	}
	return c
}

func (c *Config) WithAddr(addr string) *Config {
	c.addr = addr
	return c
}

func (c *Config) WithCORSOrigins(origins []string) *Config {
	c.corsOrigins = origins
	return c
}

func (c *Config) WithBaseURL(u url.URL) *Config {
	c.baseURL = u
	return c
}

func (c *Config) WithFetchTimeout(timeout time.Duration) *Config {
	c.fetchTimeout = timeout
	return c
}

func (c *Config) WithFetchAttempts(attempts int) *Config {
	c.fetchAttempts = attempts
	return c
}

func (c *Config) WithUpstreamDelay(delay time.Duration) *Config {
	c.upstreamDelay = delay
	return c
}

func (c *Config) WithUserAgents(agents []string) *Config {
	c.userAgents = agents
	return c
}

func (c *Config) WithListTTL(ttl time.Duration) *Config {
	c.listTTL = ttl
	return c
}

func (c *Config) WithScoreTTL(ttl time.Duration) *Config {
	c.scoreTTL = ttl
	return c
}

func (c *Config) WithExtraTTL(ttl time.Duration) *Config {
	c.extraTTL = ttl
	return c
}

func (c *Config) WithCacheMaxEntries(max int) *Config {
	c.cacheMaxEntries = max
	return c
}

func (c *Config) WithEnrichWorkers(workers int) *Config {
	c.enrichWorkers = workers
	return c
}

func (c *Config) WithSnapshotDir(dir string) *Config {
	c.snapshotDir = dir
	return c
}

func (c *Config) WithLogLevel(level slog.Level) *Config {
	c.logLevel = level
	return c
}

func (c *Config) Build() (Config, error) {
	if c.err != nil {
		return Config{}, c.err
	}

	if c.addr == "" {
		return Config{}, fmt.Errorf("%w: addr cannot be empty", ErrInvalidConfig)
	}
	if !strings.Contains(c.addr, ":") {
		// A bare port number is accepted for compatibility with PORT-style
		// deployment environments.
		if _, err := strconv.Atoi(c.addr); err != nil {
			return Config{}, fmt.Errorf("%w: addr %q is not a listen address", ErrInvalidConfig, c.addr)
		}
		c.addr = ":" + c.addr
	}

	c.baseURL = urlutil.Canonicalize(c.baseURL)
	if c.baseURL.Scheme != "http" && c.baseURL.Scheme != "https" {
		return Config{}, fmt.Errorf("%w: base URL scheme must be http or https, got %q", ErrInvalidConfig, c.baseURL.Scheme)
	}
	if c.baseURL.Host == "" {
		return Config{}, fmt.Errorf("%w: base URL host cannot be empty", ErrInvalidConfig)
	}

	if c.fetchTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: fetch timeout must be positive", ErrInvalidConfig)
	}
	if c.fetchAttempts < 1 {
		return Config{}, fmt.Errorf("%w: fetch attempts must be at least 1", ErrInvalidConfig)
	}
	if c.upstreamDelay < 0 {
		return Config{}, fmt.Errorf("%w: upstream delay cannot be negative", ErrInvalidConfig)
	}
	if c.listTTL <= 0 || c.scoreTTL <= 0 || c.extraTTL <= 0 {
		return Config{}, fmt.Errorf("%w: cache TTLs must be positive", ErrInvalidConfig)
	}
	if c.cacheMaxEntries < 0 {
		return Config{}, fmt.Errorf("%w: cache max entries cannot be negative", ErrInvalidConfig)
	}
	if c.enrichWorkers < 1 {
		return Config{}, fmt.Errorf("%w: enrich workers must be at least 1", ErrInvalidConfig)
	}
	if len(c.corsOrigins) == 0 {
		return Config{}, fmt.Errorf("%w: at least one CORS origin is required", ErrInvalidConfig)
	}

	return *c, nil
}

func (c *Config) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Config) envDuration(key string, target *time.Duration) {
	v, ok := lookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.fail(fmt.Errorf("%w: %s: %s", ErrInvalidConfig, key, err.Error()))
		return
	}
	*target = d
}

func (c *Config) envInt(key string, target *int) {
	v, ok := lookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.fail(fmt.Errorf("%w: %s: %s", ErrInvalidConfig, key, err.Error()))
		return
	}
	*target = n
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

// ParseLogLevel maps a level name to its slog value. Matching is
// case-insensitive; unknown names report ErrInvalidConfig.
func ParseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, raw)
	}
}

func (c Config) Addr() string {
	return c.addr
}

func (c Config) CORSOrigins() []string {
	origins := make([]string, len(c.corsOrigins))
	copy(origins, c.corsOrigins)
	return origins
}

func (c Config) BaseURL() url.URL {
	return c.baseURL
}

func (c Config) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

func (c Config) FetchAttempts() int {
	return c.fetchAttempts
}

func (c Config) UpstreamDelay() time.Duration {
	return c.upstreamDelay
}

func (c Config) UserAgents() []string {
	agents := make([]string, len(c.userAgents))
	copy(agents, c.userAgents)
	return agents
}

func (c Config) ListTTL() time.Duration {
	return c.listTTL
}

func (c Config) ScoreTTL() time.Duration {
	return c.scoreTTL
}

func (c Config) ExtraTTL() time.Duration {
	return c.extraTTL
}

func (c Config) CacheMaxEntries() int {
	return c.cacheMaxEntries
}

func (c Config) EnrichWorkers() int {
	return c.enrichWorkers
}

func (c Config) SnapshotDir() string {
	return c.snapshotDir
}

func (c Config) LogLevel() slog.Level {
	return c.logLevel
}
