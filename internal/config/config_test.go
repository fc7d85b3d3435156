package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Scraper.MaxWorkers)
	require.Equal(t, 64, cfg.Scraper.QueueDepth)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout())
	require.Equal(t, "xpath-scraper/1.0", cfg.HTTP.UserAgent)
	require.Equal(t, "input-urls.csv", cfg.IO.Input)
	require.Equal(t, "output-urls.csv", cfg.IO.Output)
	require.Equal(t, "URL", cfg.IO.URLColumn)
	require.Empty(t, cfg.Query)
	require.Equal(t, "info", cfg.Logging.Level)
	require.False(t, cfg.Progress.LogEvents)
	require.Empty(t, cfg.Metrics.Textfile)
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := `
scraper:
  max_workers: 4
  queue_depth: 8
http:
  timeout_seconds: 30
  user_agent: test-agent
  log_traffic: true
  max_body_bytes: 2048
io:
  input: in.csv
  output: out.csv
  url_column: Link
query: //title
logging:
  development: true
  level: debug
progress:
  log_events: true
metrics:
  textfile: metrics.prom
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, Config{
		Scraper:  ScraperConfig{MaxWorkers: 4, QueueDepth: 8},
		HTTP:     HTTPConfig{TimeoutSeconds: 30, UserAgent: "test-agent", LogTraffic: true, MaxBodyBytes: 2048},
		IO:       IOConfig{Input: "in.csv", Output: "out.csv", URLColumn: "Link"},
		Query:    "//title",
		Logging:  LoggingConfig{Development: true, Level: "debug"},
		Progress: ProgressConfig{LogEvents: true},
		Metrics:  MetricsConfig{Textfile: "metrics.prom"},
	}, cfg)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SCRAPER_SCRAPER_MAX_WORKERS", "3")
	t.Setenv("SCRAPER_IO_INPUT", "env.csv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("input", "input-urls.csv", "")
	flags.String("xpath", "", "")
	flags.Int("workers", 10, "")
	require.NoError(t, flags.Parse([]string{"--xpath", "//h1/text()", "--input", "flag.csv"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Scraper.MaxWorkers)
	require.Equal(t, "flag.csv", cfg.IO.Input)
	require.Equal(t, "//h1/text()", cfg.Query)
}

func TestLoadTrimsQuery(t *testing.T) {
	t.Setenv("SCRAPER_QUERY", "   ")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Empty(t, cfg.Query)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("xpath", "", "")
	require.NoError(t, flags.Parse([]string{"--xpath", "  //h1/text() \t"}))

	cfg, err = Load("", flags)
	require.NoError(t, err)
	require.Equal(t, "//h1/text()", cfg.Query)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.ErrorContains(t, err, "read config")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SCRAPER_DOTENV_MARKER=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SCRAPER_DOTENV_MARKER") })

	require.NoError(t, loadDotEnv(path))
	require.Equal(t, "loaded", os.Getenv("SCRAPER_DOTENV_MARKER"))
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
	require.NoError(t, loadDotEnv(""))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Scraper: ScraperConfig{MaxWorkers: 1, QueueDepth: 1},
		HTTP:    HTTPConfig{TimeoutSeconds: 1},
		IO:      IOConfig{Input: "in.csv", Output: "out.csv", URLColumn: "URL"},
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(*Config){
		"workers":     func(c *Config) { c.Scraper.MaxWorkers = 0 },
		"queue depth": func(c *Config) { c.Scraper.QueueDepth = -1 },
		"timeout":     func(c *Config) { c.HTTP.TimeoutSeconds = 0 },
		"body limit":  func(c *Config) { c.HTTP.MaxBodyBytes = -1 },
		"input":       func(c *Config) { c.IO.Input = " " },
		"output":      func(c *Config) { c.IO.Output = "" },
		"column":      func(c *Config) { c.IO.URLColumn = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
