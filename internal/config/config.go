// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SCRAPER_SCRAPER_MAX_WORKERS.
const EnvPrefix = "SCRAPER"

// DotEnvFile is loaded into the process environment before config resolution.
var DotEnvFile = ".env"

// Config captures every knob the scraper reads.
type Config struct {
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	IO       IOConfig       `mapstructure:"io"`
	Query    string         `mapstructure:"query"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Progress ProgressConfig `mapstructure:"progress"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ScraperConfig sizes the worker pool.
type ScraperConfig struct {
	MaxWorkers int `mapstructure:"max_workers"`
	QueueDepth int `mapstructure:"queue_depth"`
}

// HTTPConfig configures the HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	LogTraffic     bool   `mapstructure:"log_traffic"`
	MaxBodyBytes   int    `mapstructure:"max_body_bytes"`
}

// IOConfig names the input and output tables.
type IOConfig struct {
	Input     string `mapstructure:"input"`
	Output    string `mapstructure:"output"`
	URLColumn string `mapstructure:"url_column"`
}

// LoggingConfig selects the zap encoder and level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// ProgressConfig toggles structured progress event logging.
type ProgressConfig struct {
	LogEvents bool `mapstructure:"log_events"`
}

// MetricsConfig points at an optional Prometheus textfile written after a run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"input":            "io.input",
	"output":           "io.output",
	"column":           "io.url_column",
	"xpath":            "query",
	"workers":          "scraper.max_workers",
	"queue-depth":      "scraper.queue_depth",
	"timeout":          "http.timeout_seconds",
	"user-agent":       "http.user_agent",
	"log-traffic":      "http.log_traffic",
	"max-body-bytes":   "http.max_body_bytes",
	"log-level":        "logging.level",
	"dev":              "logging.development",
	"log-events":       "progress.log_events",
	"metrics-textfile": "metrics.textfile",
}

// Load resolves configuration from defaults, an optional file, SCRAPER_*
// environment variables and finally any flags in flags that were set.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Query = strings.TrimSpace(cfg.Query)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.max_workers", 10)
	v.SetDefault("scraper.queue_depth", 64)
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("http.user_agent", "xpath-scraper/1.0")
	v.SetDefault("http.log_traffic", false)
	v.SetDefault("http.max_body_bytes", 0)
	v.SetDefault("io.input", "input-urls.csv")
	v.SetDefault("io.output", "output-urls.csv")
	v.SetDefault("io.url_column", "URL")
	v.SetDefault("query", "")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("progress.log_events", false)
	v.SetDefault("metrics.textfile", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.MaxWorkers <= 0 {
		return fmt.Errorf("scraper.max_workers must be > 0")
	}
	if c.Scraper.QueueDepth <= 0 {
		return fmt.Errorf("scraper.queue_depth must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("http.max_body_bytes must be >= 0")
	}
	if strings.TrimSpace(c.IO.Input) == "" {
		return fmt.Errorf("io.input must be set")
	}
	if strings.TrimSpace(c.IO.Output) == "" {
		return fmt.Errorf("io.output must be set")
	}
	if strings.TrimSpace(c.IO.URLColumn) == "" {
		return fmt.Errorf("io.url_column must be set")
	}
	return nil
}

// RequestTimeout converts http.timeout_seconds into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
