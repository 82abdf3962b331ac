package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueue_RunsAllJobs(t *testing.T) {
	q := NewQueue("Test", 3, 16, 1)
	var ran atomic.Int32

	for i := 0; i < 10; i++ {
		if !q.Submit("job", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}) {
			t.Fatal("Submit() = false, want true")
		}
	}

	if err := q.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := ran.Load(); got != 10 {
		t.Errorf("ran %d jobs, want 10", got)
	}
}

func TestQueue_RetriesUntilSuccess(t *testing.T) {
	q := NewQueue("Test", 1, 4, 3)
	var calls atomic.Int32
	var mu sync.Mutex
	var results []error
	q.OnDone = func(name string, err error) {
		mu.Lock()
		results = append(results, err)
		mu.Unlock()
	}

	q.Submit("flaky", func(ctx context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("store unavailable")
		}
		return nil
	})
	q.Close(context.Background())

	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if len(results) != 1 || results[0] != nil {
		t.Errorf("OnDone results = %v, want one nil", results)
	}
}

func TestQueue_GivesUpAfterAttempts(t *testing.T) {
	q := NewQueue("Test", 1, 4, 2)
	var calls atomic.Int32
	var last error
	q.OnDone = func(name string, err error) { last = err }

	q.Submit("broken", func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	})
	q.Close(context.Background())

	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if last == nil {
		t.Error("OnDone error = nil, want failure")
	}
}

func TestQueue_RecoversPanics(t *testing.T) {
	q := NewQueue("Test", 1, 4, 1)
	var last error
	q.OnDone = func(name string, err error) { last = err }

	q.Submit("panics", func(ctx context.Context) error { panic("oops") })
	q.Close(context.Background())

	if last == nil {
		t.Error("panic was not reported as an error")
	}
}

func TestQueue_DropsWhenFull(t *testing.T) {
	q := NewQueue("Test", 1, 1, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	q.Submit("blocker", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started
	if !q.Submit("queued", func(ctx context.Context) error { return nil }) {
		t.Fatal("Submit() into free slot = false")
	}
	if q.Submit("overflow", func(ctx context.Context) error { return nil }) {
		t.Error("Submit() into full queue = true, want false")
	}

	close(release)
	q.Close(context.Background())

	if q.Submit("late", func(ctx context.Context) error { return nil }) {
		t.Error("Submit() after Close = true, want false")
	}
}

func TestQueue_CloseTimeoutCancelsJobs(t *testing.T) {
	q := NewQueue("Test", 1, 1, 1)
	started := make(chan struct{})

	q.Submit("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Close() error = %v, want deadline exceeded", err)
	}
}
