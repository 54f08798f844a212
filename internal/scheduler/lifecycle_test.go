package scheduler

import (
	"context"
	"testing"
	"time"

	"schedulerd/pkg/types"
)

func TestStartIsIdempotent(t *testing.T) {
	s := New(Config{})
	s.Start()
	s.Start() // must not spawn a second set of dispatch loops or panic
	defer s.Shutdown(InfiniteGrace)

	if !s.Running() {
		t.Fatal("want running after Start")
	}
}

// TestShutdownInfiniteGraceDrainsQueuedAsCancelled is spec §8 property 4:
// after Shutdown(InfiniteGrace) returns, the index is empty and every
// queued task was resolved as Cancelled.
func TestShutdownInfiniteGraceDrainsQueuedAsCancelled(t *testing.T) {
	s := New(Config{})
	// No workers: submissions stay Queued until shutdown drains them.
	s.Start()

	n := 5
	// Every handler fires from the drain path while Shutdown is still
	// blocking this goroutine, so the channel must hold all n results.
	results := make(chan types.TaskInfo, n)
	for i := 0; i < n; i++ {
		if _, err := s.Submit(types.ClassTTS, types.PriorityLow, i, func(info types.TaskInfo) {
			results <- info
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	if err := s.Shutdown(InfiniteGrace); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	for i := 0; i < n; i++ {
		select {
		case info := <-results:
			if info.Status != types.StatusCancelled {
				t.Fatalf("want cancelled, got %s", info.Status)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing completion %d after shutdown", i)
		}
	}

	s.indexMu.Lock()
	remaining := len(s.index)
	s.indexMu.Unlock()
	if remaining != 0 {
		t.Fatalf("want empty index after infinite-grace shutdown, got %d", remaining)
	}
}

func TestShutdownGraceExceededDisablesFurtherHandlers(t *testing.T) {
	release := make(chan struct{})
	w := &fakeWorker{id: "w1", caps: []types.Class{types.ClassLM}, fn: func(payload any, progress ProgressFunc) (any, error) {
		<-release
		return nil, nil
	}}
	s := New(Config{})
	_ = s.RegisterWorker(w)
	s.Start()
	defer close(release)

	fired := newResultChan()
	if _, err := s.Submit(types.ClassLM, types.PriorityLow, nil, func(info types.TaskInfo) {
		fired <- info
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	time.Sleep(20 * time.Millisecond) // let the dispatch loop pick it up

	err := s.Shutdown(10 * time.Millisecond)
	if !IsGraceExceeded(err) {
		t.Fatalf("want grace exceeded, got %v", err)
	}

	release <- struct{}{}
	select {
	case <-fired:
		t.Fatal("completion handler fired after grace was exceeded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDrainWaitsForOutstandingTasks(t *testing.T) {
	gate := make(chan struct{})
	w := &fakeWorker{id: "w1", caps: []types.Class{types.ClassImage}, fn: func(payload any, progress ProgressFunc) (any, error) {
		<-gate
		return nil, nil
	}}
	s := New(Config{})
	_ = s.RegisterWorker(w)
	s.Start()
	defer s.Shutdown(InfiniteGrace)

	if _, err := s.Submit(types.ClassImage, types.PriorityLow, nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	drained := make(chan error, 1)
	go func() {
		drained <- s.Drain(context.Background())
	}()

	select {
	case <-drained:
		t.Fatal("Drain returned before the running task finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(gate)
	select {
	case err := <-drained:
		if err != nil {
			t.Fatalf("drain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Drain never returned after task finished")
	}
}

func TestDrainRespectsContextDeadline(t *testing.T) {
	gate := make(chan struct{})
	w := &fakeWorker{id: "w1", caps: []types.Class{types.ClassImage}, fn: func(payload any, progress ProgressFunc) (any, error) {
		<-gate
		return nil, nil
	}}

	s := New(Config{})
	_ = s.RegisterWorker(w)
	s.Start()
	defer func() {
		close(gate)
		s.Shutdown(InfiniteGrace)
	}()

	if _, err := s.Submit(types.ClassImage, types.PriorityLow, nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	if err := s.Drain(ctx); err != context.DeadlineExceeded {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}
