package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/xpath-scraper/internal/progress"
)

// LogSink writes one structured log entry per progress event.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.Stringer("run_id", evt.RunUUID()),
			zap.String("stage", string(evt.Stage)),
			zap.Time("ts", evt.TS),
		}
		switch evt.Stage {
		case progress.StageFetchDone:
			fields = append(fields,
				zap.String("site", evt.Site),
				zap.String("url", evt.URL),
				zap.String("outcome", evt.Outcome),
				zap.String("status_class", string(evt.StatusClass)),
				zap.Int64("bytes", evt.Bytes),
				zap.Duration("dur", evt.Dur),
			)
		default:
			fields = append(fields, zap.Int64("visits", evt.Visits), zap.Duration("dur", evt.Dur))
		}
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		s.logger.Info("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
