// Package coalesce tracks in-flight refresh subjects so that duplicate
// refresh requests for the same user collapse into a single queued job.
package coalesce

import (
	"context"
	"sync"
)

// Tracker records subjects with a refresh pending or running.
type Tracker interface {
	// Claim atomically checks whether id already has a pending refresh and
	// records it if not. Returns true if the id was already claimed.
	Claim(ctx context.Context, id string) bool

	// Release removes id from the pending set, allowing the next refresh
	// request for it to be queued again.
	Release(ctx context.Context, id string)

	// Size returns the number of currently claimed subjects.
	Size() int64
}

type inMemoryTracker struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewInMemoryTracker creates an unbounded in-memory tracker. The pending set
// is naturally bounded by the number of users with a refresh in flight.
func NewInMemoryTracker() Tracker {
	return &inMemoryTracker{pending: make(map[string]struct{})}
}

func (t *inMemoryTracker) Claim(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[id]; ok {
		return true
	}
	t.pending[id] = struct{}{}
	return false
}

func (t *inMemoryTracker) Release(ctx context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

func (t *inMemoryTracker) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int64(len(t.pending))
}
