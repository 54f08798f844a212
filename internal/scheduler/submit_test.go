package scheduler

import (
	"testing"

	"schedulerd/pkg/types"
)

func TestSubmitRejectsUnknownClass(t *testing.T) {
	s := New(Config{})
	s.Start()
	defer s.Shutdown(InfiniteGrace)

	if _, err := s.Submit(types.Class("bogus"), types.PriorityLow, nil, nil); !IsInvalidArgument(err) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestSubmitRejectsUnknownPriority(t *testing.T) {
	s := New(Config{})
	s.Start()
	defer s.Shutdown(InfiniteGrace)

	if _, err := s.Submit(types.ClassLM, types.Priority(99), nil, nil); !IsInvalidArgument(err) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}

func TestSubmitRejectsAfterShutdown(t *testing.T) {
	s := New(Config{})
	s.Start()
	if err := s.Shutdown(InfiniteGrace); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if _, err := s.Submit(types.ClassLM, types.PriorityLow, nil, nil); !IsShutdownInProgress(err) {
		t.Fatalf("want shutdown in progress, got %v", err)
	}
}

func TestSubmitAssignsMonotonicIDs(t *testing.T) {
	s := New(Config{})
	s.Start()
	defer s.Shutdown(InfiniteGrace)

	var last types.TaskID
	for i := 0; i < 20; i++ {
		id, err := s.Submit(types.ClassTTS, types.PriorityLow, i, nil)
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if id <= last {
			t.Fatalf("expected strictly increasing ids, got %d after %d", id, last)
		}
		last = id
	}
}

func TestSubmitUnknownTaskStatusIsNotFound(t *testing.T) {
	s := New(Config{})
	s.Start()
	defer s.Shutdown(InfiniteGrace)

	if _, err := s.Status(types.TaskID(12345)); !IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}
