package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/xpath-scraper/internal/progress"
)

// PrometheusSink exports scrape progress through Prometheus collectors: runs
// started, completed and in progress, plus per-outcome fetch counters.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runsRunning   prometheus.Gauge
	runRuntime    prometheus.Histogram

	fetchOutcomes *prometheus.CounterVec
	fetchBytes    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec

	tracker *runTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraper_runs_started_total",
			Help: "Total scrape runs that have started.",
		}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraper_runs_completed_total",
			Help: "Total scrape runs that processed every URL.",
		}),
		runsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scraper_runs_running",
			Help: "Current number of running scrape runs.",
		}),
		runRuntime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_run_runtime_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		fetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_fetch_outcomes_total",
			Help: "URL outcomes partitioned by outcome label and status class.",
		}, []string{"outcome", "status_class"}),
		fetchBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_fetch_bytes_total",
			Help: "Bytes downloaded per site.",
		}, []string{"site"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Per-URL processing time partitioned by status class.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"status_class"}),
		tracker: newRunTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runsRunning,
		s.runRuntime,
		s.fetchOutcomes,
		s.fetchBytes,
		s.fetchDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from the batch. It is safe for concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageRunStart:
			s.runsStarted.Inc()
			if s.tracker.start(evt.RunID) {
				s.runsRunning.Inc()
			}
		case progress.StageRunDone:
			s.runsCompleted.Inc()
			if evt.Dur > 0 {
				s.runRuntime.Observe(evt.Dur.Seconds())
			}
			if s.tracker.complete(evt.RunID) {
				s.runsRunning.Dec()
			}
		case progress.StageFetchDone:
			s.observeFetch(evt)
		}
	}
	return nil
}

func (s *PrometheusSink) observeFetch(evt progress.Event) {
	statusClass := string(evt.StatusClass)
	if statusClass == "" {
		statusClass = string(progress.StatusOther)
	}
	s.fetchOutcomes.WithLabelValues(evt.Outcome, statusClass).Inc()
	if evt.Bytes > 0 {
		site := evt.Site
		if site == "" {
			site = "unknown"
		}
		s.fetchBytes.WithLabelValues(site).Add(float64(evt.Bytes))
	}
	if evt.Dur > 0 {
		s.fetchDuration.WithLabelValues(statusClass).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type runTracker struct {
	mu      sync.Mutex
	running map[[16]byte]struct{}
}

func newRunTracker() *runTracker {
	return &runTracker{running: make(map[[16]byte]struct{})}
}

func (t *runTracker) start(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *runTracker) complete(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
