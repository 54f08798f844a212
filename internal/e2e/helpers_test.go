package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"schedulerd/internal/httpapi"
	"schedulerd/internal/registry"
	"schedulerd/internal/scheduler"
	"schedulerd/pkg/types"
)

// echoWorker is a minimal scheduler.Worker used to drive the HTTP stack
// end-to-end without shelling out to a real inference engine.
type echoWorker struct {
	id   string
	caps []types.Class
	fn   func(payload any, progress scheduler.ProgressFunc) (any, error)
}

func (w *echoWorker) ID() string                    { return w.id }
func (w *echoWorker) Capabilities() []types.Class   { return w.caps }
func (w *echoWorker) Execute(ctx context.Context, payload any, progress scheduler.ProgressFunc) (any, error) {
	if w.fn != nil {
		return w.fn(payload, progress)
	}
	return payload, nil
}

// writeManifest writes one worker manifest JSON file into dir.
func writeManifest(t *testing.T, dir, id, class, engine string, settings map[string]any) {
	t.Helper()
	entry := registry.Entry{ID: id, Class: class, Engine: engine}
	if settings != nil {
		b, err := json.Marshal(settings)
		if err != nil {
			t.Fatalf("marshal settings: %v", err)
		}
		entry.Settings = b
	}
	b, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), b, 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", id, err)
	}
}

// newServer builds a scheduler registered with workers, starts it, and
// wraps it in an httptest.Server exposing the full HTTP surface.
func newServer(t *testing.T, cfg scheduler.Config, workers ...scheduler.Worker) (*httptest.Server, *scheduler.Scheduler) {
	t.Helper()
	sched := scheduler.New(cfg)
	for _, w := range workers {
		if err := sched.RegisterWorker(w); err != nil {
			t.Fatalf("register worker %s: %v", w.ID(), err)
		}
	}
	sched.Start()
	mux := httpapi.NewMux(sched)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		sched.Shutdown(scheduler.InfiniteGrace)
	})
	return srv, sched
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpDelete(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
