// Package worker implements the per-URL fetch and extract loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/xpath-scraper/internal/extract"
	"github.com/JakeFAU/xpath-scraper/internal/scrape"
)

// Config controls Worker behavior.
type Config struct {
	// RequestTimeout bounds each fetch. Zero leaves the fetcher's own timeout in charge.
	RequestTimeout time.Duration
}

// Worker consumes queue items, fetches each URL and evaluates the query
// against the page. Every dequeued item produces exactly one Outcome on the
// results channel.
type Worker struct {
	queue     scrape.Queue
	results   chan<- scrape.Outcome
	fetcher   scrape.Fetcher
	evaluator *extract.Evaluator
	clock     scrape.Clock
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker.
func New(
	queue scrape.Queue,
	results chan<- scrape.Outcome,
	fetcher scrape.Fetcher,
	evaluator *extract.Evaluator,
	clock scrape.Clock,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:     queue,
		results:   results,
		fetcher:   fetcher,
		evaluator: evaluator,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run blocks until the queue is closed and drained. Cancelling ctx does not
// stop the loop early: queued URLs are still dequeued and end up as network
// errors, so no URL goes unrecorded.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(context.WithoutCancel(ctx))
		if err != nil {
			if !errors.Is(err, scrape.ErrQueueClosed) {
				w.logger.Error("queue dequeue failed", zap.Error(err))
			}
			return
		}
		w.logger.Debug("dequeued url", zap.Int("index", item.Index), zap.String("url", item.URL))
		w.results <- w.Process(ctx, item)
	}
}

// Process turns one queue item into its Outcome. It never panics.
func (w *Worker) Process(ctx context.Context, item scrape.QueueItem) (outcome scrape.Outcome) {
	start := w.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("url processing panicked", zap.String("url", item.URL), zap.Any("panic", r))
			outcome = scrape.Recovered(item.URL, fmt.Errorf("panic: %v", r))
		}
		outcome.Index = item.Index
		if outcome.Duration == 0 {
			outcome.Duration = w.clock.Now().Sub(start)
		}
	}()
	return w.handleURL(ctx, item.URL)
}

func (w *Worker) handleURL(ctx context.Context, url string) scrape.Outcome {
	fetchCtx := ctx
	if w.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, w.cfg.RequestTimeout)
		defer cancel()
	}

	resp, err := w.fetcher.Fetch(fetchCtx, scrape.FetchRequest{URL: url})
	if err != nil {
		w.logger.Debug("fetch failed", zap.String("url", url), zap.Error(err))
		return scrape.NetworkErrored(url, err)
	}
	bytes := int64(len(resp.Body))

	if resp.StatusCode != http.StatusOK {
		w.logger.Debug("unexpected status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		outcome := scrape.HTTPFailed(url, resp.StatusCode)
		outcome.Bytes = bytes
		return outcome
	}

	outcome := w.extract(url, resp.Body)
	outcome.Bytes = bytes
	return outcome
}

func (w *Worker) extract(url string, body []byte) scrape.Outcome {
	res := w.evaluator.Evaluate(body)
	if res.Kind == extract.ResultFailed {
		w.logger.Warn("xpath evaluation failed", zap.String("url", url), zap.Error(res.Err))
		return scrape.UnexpectedErrored(url, res.Err)
	}
	text, found := res.Text()
	if !found {
		return scrape.NotFound(url)
	}
	return scrape.Succeeded(url, text)
}
