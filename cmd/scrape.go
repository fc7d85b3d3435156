package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/xpath-scraper/internal/clock/system"
	"github.com/JakeFAU/xpath-scraper/internal/config"
	"github.com/JakeFAU/xpath-scraper/internal/dispatcher"
	collyfetcher "github.com/JakeFAU/xpath-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/xpath-scraper/internal/id/uuid"
	"github.com/JakeFAU/xpath-scraper/internal/logging"
	"github.com/JakeFAU/xpath-scraper/internal/progress"
	"github.com/JakeFAU/xpath-scraper/internal/progress/sinks"
	"github.com/JakeFAU/xpath-scraper/internal/prompt"
	"github.com/JakeFAU/xpath-scraper/internal/scrape"
	"github.com/JakeFAU/xpath-scraper/internal/table"
)

const hubCloseTimeout = 5 * time.Second

func runScrape(cmd *cobra.Command, cfgFile string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	out := cmd.OutOrStdout()

	urls, err := table.ReadURLs(cfg.IO.Input, cfg.IO.URLColumn, logger)
	if err != nil {
		return fmt.Errorf("load urls: %w", err)
	}
	if len(urls) == 0 {
		fmt.Fprintln(out, "No URLs found in the input file.")
		return scrape.ErrNoURLs
	}

	query := strings.TrimSpace(cfg.Query)
	if query == "" {
		query, err = prompt.ReadQuery(cmd.InOrStdin(), out, prompt.QueryText)
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Processing %d URLs with XPath: %s\n", len(urls), query)

	registry := prometheus.NewRegistry()
	hub, err := newProgressHub(cmd.Context(), cfg, registry, logger)
	if err != nil {
		return err
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:    cfg.HTTP.UserAgent,
		Timeout:      cfg.RequestTimeout(),
		LogTraffic:   cfg.HTTP.LogTraffic,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Logger:       logger.Named("http"),
	})
	dispatch := dispatcher.New(
		fetcher,
		system.New(),
		uuid.New(),
		hub,
		progress.NewLineReporter(out),
		dispatcher.Config{
			MaxWorkers:     cfg.Scraper.MaxWorkers,
			QueueDepth:     cfg.Scraper.QueueDepth,
			RequestTimeout: cfg.RequestTimeout(),
		},
		logger.Named("dispatcher"),
	)

	outcomes, runErr := dispatch.Run(cmd.Context(), urls, query)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), hubCloseTimeout)
	defer cancel()
	if err := hub.Close(closeCtx); err != nil {
		logger.Warn("progress hub close failed", zap.Error(err))
	}
	if runErr != nil {
		return fmt.Errorf("run scraper: %w", runErr)
	}
	if errors.Is(cmd.Context().Err(), context.Canceled) {
		logger.Warn("run interrupted; unfinished urls recorded as errors")
	}

	if err := table.WriteOutcomes(cfg.IO.Output, outcomes); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	fmt.Fprintf(out, "Results saved to %s\n", cfg.IO.Output)

	if cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, registry); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	return nil
}

func newProgressHub(
	ctx context.Context,
	cfg config.Config,
	registry *prometheus.Registry,
	logger *zap.Logger,
) (*progress.Hub, error) {
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics sink: %w", err)
	}
	hubSinks := []progress.Sink{promSink}
	if cfg.Progress.LogEvents {
		hubSinks = append(hubSinks, sinks.NewLogSink(logger.Named("progress")))
	}
	return progress.NewHub(progress.Config{
		BaseContext: context.WithoutCancel(ctx),
		Logger:      logger.Named("progress"),
	}, hubSinks...), nil
}
