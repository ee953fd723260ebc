package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/neplaunch/matchd/internal/adapters/mq/queue"
	"github.com/neplaunch/matchd/internal/domain/coalesce"
	"github.com/neplaunch/matchd/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

type fakeRefresher struct {
	mu        sync.Mutex
	refreshed []string
	err       error
}

func (f *fakeRefresher) RefreshMatches(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed = append(f.refreshed, userID)
	return f.err
}

func (f *fakeRefresher) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.refreshed))
	copy(out, f.refreshed)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWorkerProcessesJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))
	refresher := &fakeRefresher{}
	w := NewInMemoryWorker(q, refresher, nil, WithName("test-worker"))

	go w.Run(ctx)

	q.Enqueue(ctx, queue.Job{UserID: "u1"})
	q.Enqueue(ctx, queue.Job{UserID: "u2"})

	waitFor(t, func() bool { return len(refresher.seen()) == 2 })

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	if err := w.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	got := refresher.seen()
	if got[0] != "u1" || got[1] != "u2" {
		t.Fatalf("unexpected refresh order: %v", got)
	}
}

func TestWorkerContinuesAfterRefreshError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue()
	refresher := &fakeRefresher{err: errors.New("boom")}
	w := NewInMemoryWorker(q, refresher, nil)

	go w.Run(ctx)

	q.Enqueue(ctx, queue.Job{UserID: "u1"})
	q.Enqueue(ctx, queue.Job{UserID: "u2"})

	// Both jobs are attempted despite the first failing.
	waitFor(t, func() bool { return len(refresher.seen()) == 2 })
}

func TestWorkerReleasesCoalescingClaim(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue()
	tracker := coalesce.NewInMemoryTracker()
	refresher := &fakeRefresher{}
	w := NewInMemoryWorker(q, refresher, tracker)

	go w.Run(ctx)

	if dup := tracker.Claim(ctx, "u1"); dup {
		t.Fatal("first claim should not be a duplicate")
	}
	q.Enqueue(ctx, queue.Job{UserID: "u1"})

	waitFor(t, func() bool { return tracker.Size() == 0 })

	// The claim was released, so a new update can schedule another pass.
	if dup := tracker.Claim(ctx, "u1"); dup {
		t.Fatal("claim after release should not be a duplicate")
	}
}

func TestPoolStartAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue()
	refresher := &fakeRefresher{}
	pool := NewPool(4, q, refresher, nil)

	pool.Start(ctx)
	for i := 0; i < 20; i++ {
		q.Enqueue(ctx, queue.Job{UserID: "u" + string(rune('a'+i%5))})
	}
	waitFor(t, func() bool { return len(refresher.seen()) == 20 })

	if err := pool.Shutdown(context.Background()); err != nil {
		t.Fatalf("pool shutdown: %v", err)
	}
	if !q.IsClosed() {
		t.Fatal("pool shutdown should close the queue")
	}
}

func TestPoolDefaultsWorkerCount(t *testing.T) {
	q := queue.NewInMemoryQueue()
	pool := NewPool(0, q, &fakeRefresher{}, nil)
	if len(pool.workers) < 1 {
		t.Fatal("expected at least one worker")
	}
}
