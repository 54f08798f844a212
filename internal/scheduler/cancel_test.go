package scheduler

import (
	"testing"
	"time"

	"schedulerd/pkg/types"
)

func TestCancelQueuedTaskFiresCancelledCompletion(t *testing.T) {
	s := New(Config{})
	// No workers registered: the task will sit Queued until cancelled.
	s.Start()
	defer s.Shutdown(InfiniteGrace)

	results := newResultChan()
	id, err := s.Submit(types.ClassLM, types.PriorityLow, "p", func(info types.TaskInfo) {
		results <- info
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := s.Cancel(id); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	select {
	case info := <-results:
		if info.Status != types.StatusCancelled {
			t.Fatalf("want cancelled, got %s", info.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("completion handler never fired")
	}

	if _, err := s.Status(id); !IsNotFound(err) {
		t.Fatalf("want purged from index, got %v", err)
	}
}

func TestCancelUnknownTaskIsNotFound(t *testing.T) {
	s := New(Config{})
	s.Start()
	defer s.Shutdown(InfiniteGrace)

	if err := s.Cancel(types.TaskID(999)); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestCancelRunningTaskIsTooLate(t *testing.T) {
	s := New(Config{})
	started := make(chan struct{})
	release := make(chan struct{})
	w := &fakeWorker{id: "w1", caps: []types.Class{types.ClassTTS}, fn: func(payload any, progress ProgressFunc) (any, error) {
		close(started)
		<-release
		return payload, nil
	}}
	if err := s.RegisterWorker(w); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.Start()
	defer func() {
		close(release)
		s.Shutdown(InfiniteGrace)
	}()

	id, err := s.Submit(types.ClassTTS, types.PriorityLow, "p", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("worker never started")
	}

	if err := s.Cancel(id); !IsTooLate(err) {
		t.Fatalf("want too late, got %v", err)
	}
}

func TestCancelTwiceIsIdempotentOnSecondCall(t *testing.T) {
	s := New(Config{})
	s.Start()
	defer s.Shutdown(InfiniteGrace)

	id, err := s.Submit(types.ClassImage, types.PriorityLow, nil, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.Cancel(id); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := s.Cancel(id); !IsNotFound(err) {
		t.Fatalf("second cancel should see the task already purged, got %v", err)
	}
}
