package scrape

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Fetcher fetches a URL and returns the body plus metadata. Transport
// failures are returned as errors; non-200 statuses are not errors.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Queue provides enqueue/dequeue semantics for pending URLs.
type Queue interface {
	Enqueue(ctx context.Context, item QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
	Close()
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewRawID() (uuid.UUID, error)
}
