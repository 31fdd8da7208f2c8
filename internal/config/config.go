package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultURI      = "bolt://localhost:7687"
	DefaultUsername = "neo4j"
	DefaultDatabase = "neo4j"
	DefaultLLMModel = "gpt-4o-mini"

	DefaultSchemaSampleSize int32 = 1000
)

// Config holds the settings shared by the MCP server and the CLI.
type Config struct {
	URI       string
	Username  string
	Password  string
	Database  string
	ReadOnly  bool
	Telemetry bool

	// SchemaSampleSize bounds the relationships sampled by get-schema.
	SchemaSampleSize int32

	LogLevel  string
	LogFormat string

	// AnalyticsEndpoint receives audit events when Telemetry is enabled.
	AnalyticsEndpoint string
	// MetricsAddr serves /metrics when non-empty.
	MetricsAddr string
	// SinkDSN is the Postgres DSN of the extracted_claims result store; empty disables it.
	SinkDSN string

	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string

	Timeout time.Duration
}

// LoadConfig loads an optional .env file and reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	readOnly, err := parseBool("NEO4J_READ_ONLY", false)
	if err != nil {
		return nil, err
	}
	telemetry, err := parseBool("NEO4J_TELEMETRY", true)
	if err != nil {
		return nil, err
	}

	sampleSize := DefaultSchemaSampleSize
	if v := os.Getenv("NEO4J_SCHEMA_SAMPLE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid NEO4J_SCHEMA_SAMPLE_SIZE %q: %w", v, err)
		}
		sampleSize = int32(n)
	}

	timeout := 60 * time.Second
	if v := os.Getenv("CLAIMGRAPH_TIMEOUT"); v != "" {
		timeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CLAIMGRAPH_TIMEOUT %q: %w", v, err)
		}
	}

	cfg := &Config{
		URI:               getEnvWithDefault("NEO4J_URI", DefaultURI),
		Username:          getEnvWithDefault("NEO4J_USERNAME", DefaultUsername),
		Password:          os.Getenv("NEO4J_PASSWORD"),
		Database:          getEnvWithDefault("NEO4J_DATABASE", DefaultDatabase),
		ReadOnly:          readOnly,
		Telemetry:         telemetry,
		SchemaSampleSize:  sampleSize,
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvWithDefault("LOG_FORMAT", "text"),
		AnalyticsEndpoint: os.Getenv("CLAIMGRAPH_ANALYTICS_ENDPOINT"),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		SinkDSN:           os.Getenv("CLAIMS_SINK_DSN"),
		LLMAPIKey:         os.Getenv("OPENAI_API_KEY"),
		LLMModel:          getEnvWithDefault("OPENAI_MODEL", DefaultLLMModel),
		LLMBaseURL:        os.Getenv("OPENAI_BASE_URL"),
		Timeout:           timeout,
	}

	return cfg, nil
}

// Validate checks that the settings needed to reach the graph store are present.
func (c *Config) Validate() error {
	if c.URI == "" {
		return errors.New("NEO4J_URI is required")
	}
	if !strings.Contains(c.URI, "://") {
		return fmt.Errorf("NEO4J_URI %q must include a scheme (bolt://, neo4j://, neo4j+s://)", c.URI)
	}
	if c.Database == "" {
		return errors.New("NEO4J_DATABASE cannot be empty")
	}
	if c.SchemaSampleSize <= 0 {
		return fmt.Errorf("NEO4J_SCHEMA_SAMPLE_SIZE must be positive, got %d", c.SchemaSampleSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
