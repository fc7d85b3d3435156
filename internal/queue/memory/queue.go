// Package memory provides the bounded in-memory queue that feeds URLs to the
// worker pool.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/xpath-scraper/internal/scrape"
)

// Queue is a bounded in-memory queue with context-aware operations. Items
// still buffered when the queue is closed remain available to Dequeue.
type Queue struct {
	ch      chan scrape.QueueItem
	closeMu sync.RWMutex
	closed  bool
}

// NewQueue constructs a new queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{
		ch: make(chan scrape.QueueItem, capacity),
	}
}

// Enqueue pushes an item into the queue, blocking while the queue is full.
func (q *Queue) Enqueue(ctx context.Context, item scrape.QueueItem) error {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed {
		return scrape.ErrQueueClosed
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- item:
		return nil
	}
}

// Dequeue pops the next item. It returns scrape.ErrQueueClosed once the queue
// is closed and empty.
func (q *Queue) Dequeue(ctx context.Context) (scrape.QueueItem, error) {
	select {
	case <-ctx.Done():
		return scrape.QueueItem{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case item, ok := <-q.ch:
		if !ok {
			return scrape.QueueItem{}, scrape.ErrQueueClosed
		}
		return item, nil
	}
}

// Close stops accepting new items. It waits for in-progress Enqueue calls.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
