package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains runtime settings for a subscriber process.
type Config struct {
	NodeID          string
	ClusterStreamID int32
	LogLevel        string

	ArchiveDir string

	MetricsAddr string
	PprofAddr   string

	TracingEnabled     bool
	TracingEndpoint    string
	TracingServiceName string

	// PollInterval paces repeated Poll calls; the Subscriber itself never
	// blocks, so something above it must decide how often to ask.
	PollInterval time.Duration
	PollLimit    int
}

// DefaultConfig returns a local-development configuration.
func DefaultConfig() Config {
	return Config{
		NodeID:             "subscriber-1",
		ClusterStreamID:    1,
		LogLevel:           "info",
		ArchiveDir:         "./var/archive",
		MetricsAddr:        ":8090",
		PprofAddr:          "",
		TracingEnabled:     false,
		TracingServiceName: "clustersub",
		PollInterval:       10 * time.Millisecond,
		PollLimit:          32,
	}
}

// LoadConfigFromEnv loads config from environment variables.
//
// Supported vars:
// - APP_NODE_ID
// - APP_CLUSTER_STREAM_ID (nonzero int32)
// - APP_LOG_LEVEL (debug|info|warn|error)
// - APP_ARCHIVE_DIR
// - APP_METRICS_ADDR
// - APP_PPROF_ADDR
// - APP_TRACING_ENABLED (bool)
// - APP_TRACING_ENDPOINT
// - APP_TRACING_SERVICE_NAME
// - APP_POLL_INTERVAL (duration, e.g. "10ms")
// - APP_POLL_LIMIT (positive int)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("APP_NODE_ID")); v != "" {
		cfg.NodeID = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_CLUSTER_STREAM_ID")); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("app: invalid APP_CLUSTER_STREAM_ID %q: %w", v, err)
		}
		cfg.ClusterStreamID = int32(n)
	}
	if v := strings.TrimSpace(os.Getenv("APP_LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("APP_ARCHIVE_DIR")); v != "" {
		cfg.ArchiveDir = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_PPROF_ADDR")); v != "" {
		cfg.PprofAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_TRACING_ENABLED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("app: invalid APP_TRACING_ENABLED %q: %w", v, err)
		}
		cfg.TracingEnabled = b
	}
	if v := strings.TrimSpace(os.Getenv("APP_TRACING_ENDPOINT")); v != "" {
		cfg.TracingEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_TRACING_SERVICE_NAME")); v != "" {
		cfg.TracingServiceName = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_POLL_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("app: invalid APP_POLL_INTERVAL %q: %w", v, err)
		}
		cfg.PollInterval = d
	}
	if v := strings.TrimSpace(os.Getenv("APP_POLL_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("app: invalid APP_POLL_LIMIT %q: %w", v, err)
		}
		cfg.PollLimit = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and supported.
func (c Config) Validate() error {
	if strings.TrimSpace(c.NodeID) == "" {
		return fmt.Errorf("app: node id is required")
	}
	if c.ClusterStreamID == 0 {
		return fmt.Errorf("app: cluster stream id must not be 0")
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("app: unsupported log level %q", c.LogLevel)
	}
	if strings.TrimSpace(c.ArchiveDir) == "" {
		return fmt.Errorf("app: archive dir is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("app: poll interval must be positive")
	}
	if c.PollLimit <= 0 {
		return fmt.Errorf("app: poll limit must be positive")
	}
	if c.TracingEnabled && strings.TrimSpace(c.TracingEndpoint) == "" {
		return fmt.Errorf("app: tracing endpoint is required when tracing is enabled")
	}
	return nil
}
