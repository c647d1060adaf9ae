package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"saldo/internal/log"
)

// Keys double as environment variable names.
const (
	KeyPort           = "PORT"
	KeyDataBackend    = "DATA_BACKEND"
	KeyDataDir        = "DATA_DIR"
	KeySQLiteDBPath   = "SQLITE_DB_PATH"
	KeyCurrencySymbol = "CURRENCY_SYMBOL"
	KeyLogLevel       = "LOG_LEVEL"
	KeyLogFormat      = "LOG_FORMAT"
	KeyAMQPURL        = "AMQP_URL"
	KeyAMQPExchange   = "AMQP_EXCHANGE"
	KeyAMQPQueue      = "AMQP_QUEUE"
	KeyRateLimit      = "RATE_LIMIT_PER_MINUTE"
)

var validBackends = []string{"file", "sqlite", "memory"}

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Storage
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// Presentation
	CurrencySymbol string

	// Logging
	LogLevel  string
	LogFormat string

	// AMQP change feed, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// NewViper returns a viper instance with every default set and environment
// lookup enabled. Callers may bind flags or read a config file into it.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, "8081")
	v.SetDefault(KeyRateLimit, 60)
	v.SetDefault(KeyDataBackend, "file")
	v.SetDefault(KeyDataDir, "./data")
	v.SetDefault(KeySQLiteDBPath, "./data/saldo.db")
	v.SetDefault(KeyCurrencySymbol, "₹")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "saldo")
	v.SetDefault(KeyAMQPQueue, "ledger_events")
	v.AutomaticEnv()
	return v
}

// ReadFile merges an optional YAML config file. A missing file is not an
// error.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		v.AddConfigPath(".")
		v.SetConfigName("saldo")
		v.SetConfigType("yaml")
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (path == "" && errors.Is(err, fs.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from the environment.
func Load() *Config {
	return FromViper(NewViper())
}

func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:               strings.TrimSpace(v.GetString(KeyPort)),
		RateLimitPerMinute: v.GetInt(KeyRateLimit),
		DataBackend:        strings.ToLower(strings.TrimSpace(v.GetString(KeyDataBackend))),
		DataDir:            v.GetString(KeyDataDir),
		SQLiteDBPath:       v.GetString(KeySQLiteDBPath),
		CurrencySymbol:     v.GetString(KeyCurrencySymbol),
		LogLevel:           v.GetString(KeyLogLevel),
		LogFormat:          strings.ToLower(v.GetString(KeyLogFormat)),
		AMQPURL:            v.GetString(KeyAMQPURL),
		AMQPExchange:       v.GetString(KeyAMQPExchange),
		AMQPQueue:          v.GetString(KeyAMQPQueue),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == "file" && c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty when using file backend")
	}
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.CurrencySymbol == "" {
		errs = append(errs, "currency symbol cannot be empty")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Logger builds the application logger from the logging settings.
func (c *Config) Logger() *log.Logger {
	level, _ := log.ParseLevel(c.LogLevel)
	return log.New(log.Config{Level: level, Format: c.LogFormat, Component: log.ComponentApp})
}
