//go:build llama

package lm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"schedulerd/internal/scheduler"
	"schedulerd/pkg/types"
)

// CGOWorker runs inference in-process via go-llama.cpp, with no server
// hop. Built only with -tags=llama; default builds stay cgo-free and use
// HTTPWorker instead.
type CGOWorker struct {
	id      string
	ctxSize int
	threads int

	mu    sync.Mutex
	model *llama.LLama
}

// NewCGOWorker loads modelPath immediately; Execute reuses the loaded model.
func NewCGOWorker(id, modelPath string, ctxSize, threads int) (*CGOWorker, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("lm cgo worker: empty model path")
	}
	m, err := llama.New(modelPath, llama.SetContext(ctxSize))
	if err != nil {
		return nil, fmt.Errorf("lm cgo worker: load model: %w", err)
	}
	return &CGOWorker{id: id, ctxSize: ctxSize, threads: threads, model: m}, nil
}

func (w *CGOWorker) ID() string                  { return w.id }
func (w *CGOWorker) Capabilities() []types.Class { return []types.Class{types.ClassLM} }

func (w *CGOWorker) Execute(ctx context.Context, payload any, progress scheduler.ProgressFunc) (any, error) {
	req, err := coerceRequest(payload)
	if err != nil {
		return nil, fmt.Errorf("lm cgo worker: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model == nil {
		return nil, errors.New("lm cgo worker: model unloaded")
	}

	tokens := 0
	w.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		tokens++
		if req.MaxTokens > 0 {
			progress(float64(tokens) / float64(req.MaxTokens))
		}
		return true
	})

	po := []llama.PredictOption{
		llama.SetTokens(maxInt(1, req.MaxTokens)),
		llama.SetThreads(maxInt(1, w.threads)),
	}
	if req.TopP > 0 {
		po = append(po, llama.SetTopP(req.TopP))
	}
	if req.TopK > 0 {
		po = append(po, llama.SetTopK(req.TopK))
	}
	if req.Temperature > 0 {
		po = append(po, llama.SetTemperature(req.Temperature))
	}
	if len(req.Stop) > 0 {
		po = append(po, llama.SetStopWords(req.Stop...))
	}

	text, err := w.model.Predict(req.Prompt, po...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	progress(1.0)
	return Response{Text: text, FinishReason: "stop"}, nil
}

// Close frees the underlying model. Not part of the Worker interface;
// callers shut it down explicitly during process teardown.
func (w *CGOWorker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model != nil {
		w.model.Free()
		w.model = nil
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
