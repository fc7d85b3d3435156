// Package dispatcher runs a bounded pool of workers over a URL list and
// collects one outcome per URL.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/JakeFAU/xpath-scraper/internal/extract"
	"github.com/JakeFAU/xpath-scraper/internal/progress"
	"github.com/JakeFAU/xpath-scraper/internal/queue/memory"
	"github.com/JakeFAU/xpath-scraper/internal/scrape"
	"github.com/JakeFAU/xpath-scraper/internal/worker"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxWorkers     = 10
	DefaultQueueDepth     = 64
	DefaultRequestTimeout = 10 * time.Second
)

var errWorkersStopped = errors.New("worker pool stopped before processing url")

// Config controls pool sizing and per-request limits.
type Config struct {
	MaxWorkers     int
	QueueDepth     int
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = DefaultQueueDepth
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	return c
}

// Dispatcher fans URLs out to a pool of workers and gathers their outcomes.
type Dispatcher struct {
	fetcher  scrape.Fetcher
	clock    scrape.Clock
	ids      scrape.IDGenerator
	emitter  progress.Emitter
	reporter progress.Reporter
	cfg      Config
	logger   *zap.Logger
}

// New creates a Dispatcher. A nil emitter or reporter disables that output.
func New(
	fetcher scrape.Fetcher,
	clock scrape.Clock,
	ids scrape.IDGenerator,
	emitter progress.Emitter,
	reporter progress.Reporter,
	cfg Config,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	return &Dispatcher{
		fetcher:  fetcher,
		clock:    clock,
		ids:      ids,
		emitter:  emitter,
		reporter: reporter,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Run processes every URL exactly once with at most Config.MaxWorkers fetches
// in flight and returns the outcomes in completion order. Cancelling ctx makes
// the remaining fetches fail fast; their URLs are still recorded.
func (d *Dispatcher) Run(ctx context.Context, urls []string, query string) ([]scrape.Outcome, error) {
	if len(urls) == 0 {
		return nil, scrape.ErrNoURLs
	}
	id, err := d.ids.NewRawID()
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	runID := progress.UUIDToBytes(id)
	logger := d.logger.With(zap.Stringer("run_id", id))

	evaluator := extract.NewEvaluator(query)
	if err := evaluator.Err(); err != nil {
		logger.Warn("xpath expression is invalid; pages will be recorded as unexpected errors", zap.Error(err))
	}

	started := d.clock.Now()
	d.emit(progress.Event{RunID: runID, TS: started, Stage: progress.StageRunStart, Visits: int64(len(urls))})

	queue := memory.NewQueue(d.cfg.QueueDepth)
	workerCount := min(d.cfg.MaxWorkers, len(urls))
	results := make(chan scrape.Outcome, workerCount)

	var wg sync.WaitGroup
	for i := range workerCount {
		w := worker.New(
			queue,
			results,
			d.fetcher,
			evaluator,
			d.clock,
			worker.Config{RequestTimeout: d.cfg.RequestTimeout},
			logger.Named("worker").With(zap.Int("worker", i)),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}
	workersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	go d.produce(ctx, queue, urls, logger)

	outcomes := d.collect(runID, urls, results, workersDone)

	elapsed := d.clock.Now().Sub(started)
	d.emit(progress.Event{
		RunID:  runID,
		TS:     d.clock.Now(),
		Stage:  progress.StageRunDone,
		Visits: int64(len(outcomes)),
		Dur:    elapsed,
	})
	d.logSummary(logger, outcomes, elapsed)
	return outcomes, nil
}

func (d *Dispatcher) produce(ctx context.Context, queue *memory.Queue, urls []string, logger *zap.Logger) {
	defer queue.Close()
	enqueueCtx := context.WithoutCancel(ctx)
	for i, u := range urls {
		if err := queue.Enqueue(enqueueCtx, scrape.QueueItem{Index: i, URL: u}); err != nil {
			logger.Error("enqueue url failed", zap.String("url", u), zap.Error(err))
			return
		}
	}
}

// collect owns the progress counter. It stops after len(urls) outcomes, or
// once every worker has exited, in which case unprocessed URLs are recorded
// as errors.
func (d *Dispatcher) collect(
	runID [16]byte,
	urls []string,
	results <-chan scrape.Outcome,
	workersDone <-chan struct{},
) []scrape.Outcome {
	outcomes := make([]scrape.Outcome, 0, len(urls))
	seen := make([]bool, len(urls))
	record := func(o scrape.Outcome) {
		if o.Index >= 0 && o.Index < len(seen) {
			seen[o.Index] = true
		}
		outcomes = append(outcomes, o)
		d.reporter.Report(len(outcomes), o.URL, o.Reason())
		d.emitFetch(runID, o)
	}

	for len(outcomes) < len(urls) {
		select {
		case o := <-results:
			record(o)
		case <-workersDone:
			d.drain(results, record)
			for i, u := range urls {
				if !seen[i] && len(outcomes) < len(urls) {
					o := scrape.Recovered(u, errWorkersStopped)
					o.Index = i
					record(o)
				}
			}
			return outcomes
		}
	}
	return outcomes
}

func (d *Dispatcher) drain(results <-chan scrape.Outcome, record func(scrape.Outcome)) {
	for {
		select {
		case o := <-results:
			record(o)
		default:
			return
		}
	}
}

func (d *Dispatcher) emit(evt progress.Event) {
	if d.emitter == nil {
		return
	}
	d.emitter.Emit(evt)
}

func (d *Dispatcher) emitFetch(runID [16]byte, o scrape.Outcome) {
	evt := progress.Event{
		RunID:       runID,
		TS:          d.clock.Now(),
		Stage:       progress.StageFetchDone,
		Site:        progress.SiteLabel(o.URL),
		URL:         o.URL,
		Outcome:     o.Label(),
		Bytes:       o.Bytes,
		StatusClass: progress.ClassifyStatus(o.StatusCode),
		Dur:         o.Duration,
	}
	if o.Kind != scrape.KindSuccess {
		evt.Note = o.Text
	}
	d.emit(evt)
}

func (d *Dispatcher) logSummary(logger *zap.Logger, outcomes []scrape.Outcome, elapsed time.Duration) {
	counts := lo.CountValuesBy(outcomes, scrape.Outcome.Label)
	fields := []zap.Field{
		zap.Int("urls", len(outcomes)),
		zap.Duration("elapsed", elapsed),
	}
	for _, label := range []string{"success", "not_found", "http_failure", "network_error", "unexpected_error"} {
		fields = append(fields, zap.Int(label, counts[label]))
	}
	logger.Info("scrape run finished", fields...)
}
