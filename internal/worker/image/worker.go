// Package image provides a Worker implementation for the Image class
// backed by a text-to-image HTTP generation endpoint, mirroring the
// prompt-in/result-out shape of a T2I task.
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"schedulerd/internal/scheduler"
	"schedulerd/pkg/types"
)

// Request is the payload a producer submits for an Image task.
type Request struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Response carries the generated image, returned as a URL or base64
// payload by the upstream engine; Result is left opaque to this package.
type Response struct {
	Result string `json:"result"` // URL or base64-encoded image
}

// coerceRequest accepts a Request submitted in-process or the
// map[string]any a JSON producer payload decodes to over HTTP.
func coerceRequest(payload any) (Request, error) {
	if req, ok := payload.(Request); ok {
		return req, nil
	}
	raw, ok := payload.(map[string]any)
	if !ok {
		return Request{}, fmt.Errorf("unexpected payload type %T", payload)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return Request{}, fmt.Errorf("re-encode payload: %w", err)
	}
	var req Request
	if err := json.Unmarshal(b, &req); err != nil {
		return Request{}, fmt.Errorf("decode payload: %w", err)
	}
	return req, nil
}

// Worker calls a text-to-image HTTP endpoint synchronously.
type Worker struct {
	id         string
	endpoint   string
	reqTimeout time.Duration
	client     *http.Client
}

// NewWorker constructs an HTTP-backed Image worker bound to endpoint.
func NewWorker(id, endpoint string, reqTimeout time.Duration) *Worker {
	return &Worker{id: id, endpoint: endpoint, reqTimeout: reqTimeout, client: &http.Client{}}
}

func (w *Worker) ID() string                  { return w.id }
func (w *Worker) Capabilities() []types.Class { return []types.Class{types.ClassImage} }

type generateRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type generateResponse struct {
	Result string `json:"result"`
}

func (w *Worker) Execute(ctx context.Context, payload any, progress scheduler.ProgressFunc) (any, error) {
	req, err := coerceRequest(payload)
	if err != nil {
		return nil, fmt.Errorf("image worker: %w", err)
	}

	if w.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.reqTimeout)
		defer cancel()
	}

	progress(0.05)
	body, err := json.Marshal(generateRequest{Prompt: req.Prompt, Width: req.Width, Height: req.Height})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("image generation http error: %s: %s", resp.Status, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("image worker: decode response: %w", err)
	}
	progress(1.0)
	return Response{Result: out.Result}, nil
}
