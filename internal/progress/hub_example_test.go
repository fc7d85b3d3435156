package progress_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JakeFAU/xpath-scraper/internal/progress"
)

type printSink struct{}

func (printSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		if evt.Stage == progress.StageFetchDone {
			fmt.Println(evt.Stage, evt.Site, evt.Outcome)
			continue
		}
		fmt.Println(evt.Stage, evt.Visits)
	}
	return nil
}

func (printSink) Close(context.Context) error { return nil }

func ExampleHub() {
	hub := progress.NewHub(progress.Config{MaxBatchWait: time.Minute}, printSink{})
	runID := progress.UUIDToBytes(uuid.New())

	hub.Emit(progress.Event{RunID: runID, TS: time.Now(), Stage: progress.StageRunStart, Visits: 1})
	hub.Emit(progress.Event{
		RunID:       runID,
		TS:          time.Now(),
		Stage:       progress.StageFetchDone,
		Site:        progress.SiteLabel("https://example.com/"),
		URL:         "https://example.com/",
		StatusClass: progress.ClassifyStatus(200),
		Outcome:     "success",
	})
	_ = hub.Close(context.Background())
	// Output:
	// RUN_START 1
	// FETCH_DONE example.com success
}
