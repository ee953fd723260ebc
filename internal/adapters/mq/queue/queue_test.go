package queue

import (
	"context"
	"testing"
	"time"
)

func TestEnqueueDequeue(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(10), WithBufferSize(10))

	job := Job{UserID: "u1", Reason: "profile_updated", EnqueuedAt: time.Now()}
	if !q.Enqueue(ctx, job) {
		t.Fatal("enqueue should succeed on an empty queue")
	}
	if got := q.Len(ctx); got != 1 {
		t.Fatalf("expected length 1, got %d", got)
	}

	select {
	case got := <-q.Dequeue(ctx):
		if got.UserID != "u1" || got.Reason != "profile_updated" {
			t.Fatalf("unexpected job: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for job")
	}
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(2), WithBufferSize(2))

	if !q.Enqueue(ctx, Job{UserID: "u1"}) || !q.Enqueue(ctx, Job{UserID: "u2"}) {
		t.Fatal("first two enqueues should succeed")
	}
	if q.Enqueue(ctx, Job{UserID: "u3"}) {
		t.Fatal("enqueue beyond capacity should be rejected")
	}
}

func TestEnqueueRejectsAfterClose(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue()

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Fatal("queue should report closed")
	}
	if q.Enqueue(ctx, Job{UserID: "u1"}) {
		t.Fatal("enqueue after close should be rejected")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("double close should be a no-op, got %v", err)
	}
}

func TestDequeueChannelClosesWithQueue(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue()

	q.Enqueue(ctx, Job{UserID: "u1"})
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ch := q.Dequeue(ctx)
	if got, ok := <-ch; !ok || got.UserID != "u1" {
		t.Fatalf("expected buffered job before close, got %+v ok=%v", got, ok)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel after draining")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
