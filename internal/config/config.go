package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverPebble   = "pebble"
	StorageDriverMemory   = "memory"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	LogLevel        string
	BaseURI         string
	StorageDriver   string
	DatabaseURI     string
	DatabaseMaxConn int
	PebbleDir       string
	ShutdownTimeout time.Duration

	Dok     DokConfig
	Tracing TracingConfig
}

// TracingConfig controls span export. An empty OTLPEndpoint keeps spans in process.
type TracingConfig struct {
	OTLPEndpoint string
	SampleRate   float64
}

// DokConfig locates and authenticates against the owner service.
type DokConfig struct {
	Scheme   string
	Host     string
	Port     string
	Username string
	Password string
	Timeout  time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultLogLevel        = "info"
	defaultStorageDriver   = StorageDriverPostgres
	defaultDatabaseMaxConn = 10
	defaultPebbleDir       = "data/orders"
	defaultShutdownTimeout = 10 * time.Second

	defaultDokScheme   = "http"
	defaultDokHost     = "dok"
	defaultDokPort     = "8080"
	defaultDokUsername = "admin"
	defaultDokPassword = "p"
	defaultDokTimeout  = 5 * time.Second

	defaultTraceSampleRate = 1.0
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		LogLevel:        getString(lookup, "LOG_LEVEL", defaultLogLevel),
		BaseURI:         getString(lookup, "BASE_URI", ""),
		StorageDriver:   getString(lookup, "STORAGE_DRIVER", defaultStorageDriver),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		DatabaseMaxConn: getInt(lookup, "DATABASE_MAX_CONNS", defaultDatabaseMaxConn),
		PebbleDir:       getString(lookup, "PEBBLE_DIR", defaultPebbleDir),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		Dok: DokConfig{
			Scheme:   getString(lookup, "DOK_SERVICE_SCHEME", defaultDokScheme),
			Host:     getString(lookup, "DOK_SERVICE_HOST", defaultDokHost),
			Port:     getString(lookup, "DOK_SERVICE_PORT", defaultDokPort),
			Username: getString(lookup, "DOK_USERNAME", defaultDokUsername),
			Password: getString(lookup, "DOK_PASSWORD", defaultDokPassword),
			Timeout:  getDuration(lookup, "DOK_TIMEOUT", defaultDokTimeout),
		},
		Tracing: TracingConfig{
			OTLPEndpoint: getString(lookup, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			SampleRate:   getFloat(lookup, "OTEL_TRACES_SAMPLE_RATE", defaultTraceSampleRate),
		},
	}

	fs := flag.NewFlagSet("labor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		dokTimeoutStr      = cfg.Dok.Timeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.BaseURI, "base-uri", cfg.BaseURI, "Public base URI used in Location headers")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Order storage driver: postgres, pebble or memory")
	fs.StringVar(&cfg.PebbleDir, "pebble-dir", cfg.PebbleDir, "Directory of the embedded pebble store")
	fs.StringVar(&cfg.Dok.Host, "dok-host", cfg.Dok.Host, "Owner service host")
	fs.StringVar(&cfg.Dok.Port, "dok-port", cfg.Dok.Port, "Owner service port")
	fs.StringVar(&dokTimeoutStr, "dok-timeout", dokTimeoutStr, "Owner service request timeout, 0 disables")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.Tracing.OTLPEndpoint, "otlp-endpoint", cfg.Tracing.OTLPEndpoint, "OTLP gRPC collector endpoint, empty disables export")
	fs.Float64Var(&cfg.Tracing.SampleRate, "trace-sample-rate", cfg.Tracing.SampleRate, "Fraction of traces sampled, 0 to 1")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.Dok.Timeout, err = time.ParseDuration(dokTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid dok timeout: %w", err)
	}

	if passwordFile, ok := lookup("DOK_PASSWORD_FILE"); ok && passwordFile != "" {
		content, err := os.ReadFile(passwordFile)
		if err != nil {
			return nil, fmt.Errorf("read dok password file: %w", err)
		}
		cfg.Dok.Password = strings.TrimSpace(string(content))
	}

	if cfg.DatabaseMaxConn <= 0 {
		cfg.DatabaseMaxConn = defaultDatabaseMaxConn
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.Dok.Timeout < 0 {
		cfg.Dok.Timeout = defaultDokTimeout
	}

	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return nil, fmt.Errorf("trace sample rate must be between 0 and 1, got %v", cfg.Tracing.SampleRate)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.BaseURI = strings.TrimRight(cfg.BaseURI, "/")

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURI == "" {
			return nil, fmt.Errorf("database URI must be provided")
		}
	case StorageDriverPebble:
		if cfg.PebbleDir == "" {
			return nil, fmt.Errorf("pebble directory must be provided")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// BaseURL renders the owner service root, e.g. http://dok:8080.
func (c DokConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s:%s", c.Scheme, c.Host, c.Port)
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
