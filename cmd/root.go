package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRootCmd creates the scraper command and its flags.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "xpath-scraper",
		Short: "Fetch a list of pages and extract one XPath expression from each.",
		Long: `xpath-scraper reads URLs from a CSV file, fetches them concurrently,
applies a single XPath expression to every page and writes the extracted
text (or the reason it could not be extracted) to a URL,Information CSV.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, cfgFile)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.StringP("input", "i", "input-urls.csv", "input CSV file with a URL column")
	flags.StringP("output", "o", "output-urls.csv", "output CSV file")
	flags.String("column", "URL", "name of the input column holding URLs")
	flags.StringP("xpath", "x", "", "XPath expression; prompted for when empty")
	flags.IntP("workers", "w", 10, "maximum concurrent fetches")
	flags.Int("queue-depth", 64, "pending URL buffer size")
	flags.Int("timeout", 10, "per-request timeout in seconds")
	flags.String("user-agent", "xpath-scraper/1.0", "User-Agent header")
	flags.Bool("log-traffic", false, "log HTTP requests and responses at debug level")
	flags.Int("max-body-bytes", 0, "reject responses larger than this many bytes (0 reads every body in full)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("dev", false, "human-readable development logging")
	flags.Bool("log-events", false, "log every progress event")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this file after the run")

	return cmd
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		zap.L().Fatal("command execution failed", zap.Error(err))
	}
}
