package cmd_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cmd "github.com/rohmanhakim/cricket-api/internal/cli"
	"github.com/rohmanhakim/cricket-api/internal/config"
)

// TestInitConfigNoFlags tests that InitConfigWithError returns the default
// config when no flags are set
func TestInitConfigNoFlags(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	defaultCfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.Addr() != defaultCfg.Addr() {
		t.Errorf("Expected Addr %s, got %s", defaultCfg.Addr(), cfg.Addr())
	}
	gotBaseURL := cfg.BaseURL()
	wantBaseURL := defaultCfg.BaseURL()
	if gotBaseURL.String() != wantBaseURL.String() {
		t.Errorf("Expected BaseURL %s, got %s", wantBaseURL.String(), gotBaseURL.String())
	}
	if cfg.FetchTimeout() != defaultCfg.FetchTimeout() {
		t.Errorf("Expected FetchTimeout %v, got %v", defaultCfg.FetchTimeout(), cfg.FetchTimeout())
	}
	if cfg.ListTTL() != defaultCfg.ListTTL() {
		t.Errorf("Expected ListTTL %v, got %v", defaultCfg.ListTTL(), cfg.ListTTL())
	}
	if cfg.EnrichWorkers() != defaultCfg.EnrichWorkers() {
		t.Errorf("Expected EnrichWorkers %d, got %d", defaultCfg.EnrichWorkers(), cfg.EnrichWorkers())
	}
}

// TestInitConfigWithAddr tests that the addr flag is properly applied
func TestInitConfigWithAddr(t *testing.T) {
	tests := []struct {
		name         string
		addr         string
		expectedAddr string
	}{
		{"Empty addr keeps default", "", ":5001"},
		{"Full listen address", "0.0.0.0:9000", "0.0.0.0:9000"},
		{"Bare port gets colon prefix", "8080", ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd.ResetFlags()
			cmd.SetAddrForTest(tt.addr)

			cfg, err := cmd.InitConfigWithError()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if cfg.Addr() != tt.expectedAddr {
				t.Errorf("Expected Addr %s, got %s", tt.expectedAddr, cfg.Addr())
			}
		})
	}
}

// TestInitConfigWithBaseURL tests that the base-url flag is properly applied
func TestInitConfigWithBaseURL(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetBaseURLForTest("https://Mirror.Example.Org/")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	baseURL := cfg.BaseURL()
	if baseURL.String() != "https://mirror.example.org" {
		t.Errorf("Expected canonical base URL, got %s", baseURL.String())
	}
}

// TestInitConfigWithInvalidBaseURL tests that a non-http base URL is rejected
func TestInitConfigWithInvalidBaseURL(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetBaseURLForTest("ftp://old.example.org")

	_, err := cmd.InitConfigWithError()
	if err == nil {
		t.Fatal("Expected error for ftp base URL, got nil")
	}
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

// TestInitConfigWithDurationFlags tests the duration flags
func TestInitConfigWithDurationFlags(t *testing.T) {
	tests := []struct {
		name     string
		set      func(time.Duration)
		get      func(config.Config) time.Duration
		value    time.Duration
		fallback time.Duration
	}{
		{"fetch-timeout", cmd.SetFetchTimeoutForTest, config.Config.FetchTimeout, 4 * time.Second, 10 * time.Second},
		{"list-ttl", cmd.SetListTTLForTest, config.Config.ListTTL, time.Minute, 15 * time.Second},
		{"score-ttl", cmd.SetScoreTTLForTest, config.Config.ScoreTTL, 2 * time.Second, 5 * time.Second},
		{"extra-ttl", cmd.SetExtraTTLForTest, config.Config.ExtraTTL, time.Hour, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name+" set", func(t *testing.T) {
			cmd.ResetFlags()
			tt.set(tt.value)

			cfg, err := cmd.InitConfigWithError()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := tt.get(cfg); got != tt.value {
				t.Errorf("Expected %v, got %v", tt.value, got)
			}
		})

		t.Run(tt.name+" zero keeps default", func(t *testing.T) {
			cmd.ResetFlags()
			tt.set(0)

			cfg, err := cmd.InitConfigWithError()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := tt.get(cfg); got != tt.fallback {
				t.Errorf("Expected default %v, got %v", tt.fallback, got)
			}
		})
	}
}

// TestInitConfigWithEnrichWorkers tests that the enrich-workers flag is
// properly applied
func TestInitConfigWithEnrichWorkers(t *testing.T) {
	tests := []struct {
		name     string
		workers  int
		expected int
	}{
		{"Zero keeps default", 0, 5},
		{"Positive overrides", 2, 2},
		{"Negative keeps default", -1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd.ResetFlags()
			cmd.SetEnrichWorkersForTest(tt.workers)

			cfg, err := cmd.InitConfigWithError()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.EnrichWorkers() != tt.expected {
				t.Errorf("Expected EnrichWorkers %d, got %d", tt.expected, cfg.EnrichWorkers())
			}
		})
	}
}

// TestInitConfigWithSnapshotDir tests that the snapshot-dir flag reaches
// the config
func TestInitConfigWithSnapshotDir(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetSnapshotDirForTest("/var/tmp/cricket-snapshots")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.SnapshotDir() != "/var/tmp/cricket-snapshots" {
		t.Errorf("Expected SnapshotDir '/var/tmp/cricket-snapshots', got '%s'", cfg.SnapshotDir())
	}
}

// TestInitConfigSnapshotsDisabledByDefault tests that snapshots stay off
// without the flag
func TestInitConfigSnapshotsDisabledByDefault(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.SnapshotDir() != "" {
		t.Errorf("Expected empty SnapshotDir, got '%s'", cfg.SnapshotDir())
	}
}

// TestInitConfigWithUserAgents tests that repeated user-agent flags reach
// the config
func TestInitConfigWithUserAgents(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetUserAgentsForTest([]string{"FlagBot/1.0", "FlagBot/2.0"})

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	agents := cfg.UserAgents()
	if len(agents) != 2 || agents[0] != "FlagBot/1.0" || agents[1] != "FlagBot/2.0" {
		t.Errorf("Unexpected UserAgents: %v", agents)
	}
}

// TestInitConfigWithCORSOrigins tests that repeated cors-origin flags
// replace the defaults
func TestInitConfigWithCORSOrigins(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetCORSOriginsForTest([]string{"https://scores.example.org"})

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	origins := cfg.CORSOrigins()
	if len(origins) != 1 || origins[0] != "https://scores.example.org" {
		t.Errorf("Unexpected CORSOrigins: %v", origins)
	}
}

// TestInitConfigWithLogLevel tests that the log-level flag is parsed
func TestInitConfigWithLogLevel(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetLogLevelForTest("debug")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("Expected LogLevel debug, got %v", cfg.LogLevel())
	}
}

// TestInitConfigWithInvalidLogLevel tests that an unknown level is rejected
func TestInitConfigWithInvalidLogLevel(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetLogLevelForTest("loud")

	_, err := cmd.InitConfigWithError()
	if err == nil {
		t.Fatal("Expected error for unknown log level, got nil")
	}
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

// TestInitConfigWithPartialConfigFile tests loading config from a partial
// config file
func TestInitConfigWithPartialConfigFile(t *testing.T) {
	cmd.ResetFlags()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.json")

	configContent := `{
		"addr": ":6001",
		"baseUrl": "https://mirror.example.org",
		"enrichWorkers": 2,
		"userAgents": ["FileBot/1.0"],
		"logLevel": "warn"
	}`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cmd.SetConfigFileForTest(configFile)

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Addr() != ":6001" {
		t.Errorf("Expected Addr ':6001', got %s", cfg.Addr())
	}
	baseURL := cfg.BaseURL()
	if baseURL.String() != "https://mirror.example.org" {
		t.Errorf("Expected BaseURL from file, got %s", baseURL.String())
	}
	if cfg.EnrichWorkers() != 2 {
		t.Errorf("Expected EnrichWorkers 2, got %d", cfg.EnrichWorkers())
	}
	if agents := cfg.UserAgents(); len(agents) != 1 || agents[0] != "FileBot/1.0" {
		t.Errorf("Unexpected UserAgents: %v", agents)
	}
	if cfg.LogLevel() != slog.LevelWarn {
		t.Errorf("Expected LogLevel warn, got %v", cfg.LogLevel())
	}

	// Fields the file does not mention keep their defaults.
	if cfg.ListTTL() != 15*time.Second {
		t.Errorf("Expected ListTTL to use default, got %v", cfg.ListTTL())
	}
	if cfg.FetchTimeout() != 10*time.Second {
		t.Errorf("Expected FetchTimeout to use default, got %v", cfg.FetchTimeout())
	}
}

// TestInitConfigFileWinsOverFlags tests that a config file bypasses flag
// overrides entirely
func TestInitConfigFileWinsOverFlags(t *testing.T) {
	cmd.ResetFlags()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.json")

	err := os.WriteFile(configFile, []byte(`{"addr": ":6001"}`), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cmd.SetConfigFileForTest(configFile)
	cmd.SetAddrForTest(":7777")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Addr() != ":6001" {
		t.Errorf("Expected config file addr ':6001' to win, got %s", cfg.Addr())
	}
}

// TestInitConfigWithNonExistentFile tests behavior when config file doesn't exist
func TestInitConfigWithNonExistentFile(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetConfigFileForTest("/path/that/does/not/exist/config.json")

	_, err := cmd.InitConfigWithError()
	if err == nil {
		t.Fatal("Expected error for non-existent config file, got none")
	}
	if !strings.Contains(err.Error(), "config file does not exist") {
		t.Errorf("Expected error about non-existent config file, got: %v", err)
	}
}

// TestInitConfigWithInvalidConfigFile tests behavior with invalid config file
func TestInitConfigWithInvalidConfigFile(t *testing.T) {
	cmd.ResetFlags()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "invalid.json")

	err := os.WriteFile(configFile, []byte(`{invalid json content}`), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cmd.SetConfigFileForTest(configFile)

	_, err = cmd.InitConfigWithError()
	if err == nil {
		t.Fatal("Expected error for invalid config file, got none")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("Expected error about parsing config file, got: %v", err)
	}
}

// TestResetFlags tests that ResetFlags properly resets all flag values
func TestResetFlags(t *testing.T) {
	cmd.SetConfigFileForTest("test.json")
	cmd.SetAddrForTest(":7777")
	cmd.SetBaseURLForTest("https://mirror.example.org")
	cmd.SetFetchTimeoutForTest(time.Minute)
	cmd.SetEnrichWorkersForTest(9)
	cmd.SetLogLevelForTest("debug")

	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	defaultCfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.Addr() != defaultCfg.Addr() {
		t.Errorf("After ResetFlags, expected Addr %s, got %s", defaultCfg.Addr(), cfg.Addr())
	}
	gotBaseURL := cfg.BaseURL()
	wantBaseURL := defaultCfg.BaseURL()
	if gotBaseURL.String() != wantBaseURL.String() {
		t.Errorf("After ResetFlags, expected BaseURL %s, got %s", wantBaseURL.String(), gotBaseURL.String())
	}
	if cfg.FetchTimeout() != defaultCfg.FetchTimeout() {
		t.Errorf("After ResetFlags, expected FetchTimeout %v, got %v", defaultCfg.FetchTimeout(), cfg.FetchTimeout())
	}
	if cfg.EnrichWorkers() != defaultCfg.EnrichWorkers() {
		t.Errorf("After ResetFlags, expected EnrichWorkers %d, got %d", defaultCfg.EnrichWorkers(), cfg.EnrichWorkers())
	}
	if cfg.LogLevel() != defaultCfg.LogLevel() {
		t.Errorf("After ResetFlags, expected LogLevel %v, got %v", defaultCfg.LogLevel(), cfg.LogLevel())
	}
}

// TestInitConfigCompleteIntegration tests a scenario with every flag set
func TestInitConfigCompleteIntegration(t *testing.T) {
	cmd.ResetFlags()

	cmd.SetAddrForTest("0.0.0.0:9000")
	cmd.SetBaseURLForTest("https://mirror.example.org")
	cmd.SetFetchTimeoutForTest(4 * time.Second)
	cmd.SetFetchAttemptsForTest(3)
	cmd.SetUpstreamDelayForTest(200 * time.Millisecond)
	cmd.SetUserAgentsForTest([]string{"FlagBot/1.0"})
	cmd.SetListTTLForTest(30 * time.Second)
	cmd.SetScoreTTLForTest(2 * time.Second)
	cmd.SetExtraTTLForTest(10 * time.Minute)
	cmd.SetCacheMaxEntriesForTest(128)
	cmd.SetEnrichWorkersForTest(3)
	cmd.SetSnapshotDirForTest("/var/tmp/cricket-snapshots")
	cmd.SetCORSOriginsForTest([]string{"https://scores.example.org"})
	cmd.SetLogLevelForTest("error")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("Expected Addr '0.0.0.0:9000', got %s", cfg.Addr())
	}
	baseURL := cfg.BaseURL()
	if baseURL.String() != "https://mirror.example.org" {
		t.Errorf("Expected BaseURL 'https://mirror.example.org', got %s", baseURL.String())
	}
	if cfg.FetchTimeout() != 4*time.Second {
		t.Errorf("Expected FetchTimeout 4s, got %v", cfg.FetchTimeout())
	}
	if cfg.FetchAttempts() != 3 {
		t.Errorf("Expected FetchAttempts 3, got %d", cfg.FetchAttempts())
	}
	if cfg.UpstreamDelay() != 200*time.Millisecond {
		t.Errorf("Expected UpstreamDelay 200ms, got %v", cfg.UpstreamDelay())
	}
	if cfg.ListTTL() != 30*time.Second {
		t.Errorf("Expected ListTTL 30s, got %v", cfg.ListTTL())
	}
	if cfg.ScoreTTL() != 2*time.Second {
		t.Errorf("Expected ScoreTTL 2s, got %v", cfg.ScoreTTL())
	}
	if cfg.ExtraTTL() != 10*time.Minute {
		t.Errorf("Expected ExtraTTL 10m, got %v", cfg.ExtraTTL())
	}
	if cfg.CacheMaxEntries() != 128 {
		t.Errorf("Expected CacheMaxEntries 128, got %d", cfg.CacheMaxEntries())
	}
	if cfg.EnrichWorkers() != 3 {
		t.Errorf("Expected EnrichWorkers 3, got %d", cfg.EnrichWorkers())
	}
	if cfg.SnapshotDir() != "/var/tmp/cricket-snapshots" {
		t.Errorf("Expected SnapshotDir '/var/tmp/cricket-snapshots', got '%s'", cfg.SnapshotDir())
	}
	if cfg.LogLevel() != slog.LevelError {
		t.Errorf("Expected LogLevel error, got %v", cfg.LogLevel())
	}
}

// TestInitConfigFlagsWinOverEnv tests that explicit flags override
// environment variables
func TestInitConfigFlagsWinOverEnv(t *testing.T) {
	cmd.ResetFlags()
	t.Setenv("CRICKET_API_ADDR", ":6000")
	cmd.SetAddrForTest(":7000")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Addr() != ":7000" {
		t.Errorf("Expected flag addr ':7000' to win over env, got %s", cfg.Addr())
	}
}
