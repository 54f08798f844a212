// Package tts provides a Worker implementation for the TTS class backed
// by an external synthesis binary invoked as a subprocess per task —
// mirroring the original scheduler's CPU-task-processor pattern of
// wrapping a blocking external call behind the scheduler's Execute
// contract, rather than an in-process engine.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"schedulerd/internal/scheduler"
	"schedulerd/pkg/types"
)

// Request is the payload a producer submits for a TTS task.
type Request struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Response carries the synthesized audio bytes and the format they're encoded in.
type Response struct {
	Audio  []byte `json:"audio"`
	Format string `json:"format"`
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

// Worker shells out to an external synthesis binary per task. The binary
// is expected to read text on stdin and write audio bytes on stdout.
type Worker struct {
	id     string
	binary string
	args   []string
}

// NewWorker constructs a subprocess-backed TTS worker. args come first on
// the command line, followed by the voice flag the worker appends per
// request.
func NewWorker(id, binary string, args []string) *Worker {
	return &Worker{id: id, binary: binary, args: args}
}

func (w *Worker) ID() string                  { return w.id }
func (w *Worker) Capabilities() []types.Class { return []types.Class{types.ClassTTS} }

func (w *Worker) Execute(ctx context.Context, payload any, progress scheduler.ProgressFunc) (any, error) {
	req, err := coerceRequest(payload)
	if err != nil {
		return nil, fmt.Errorf("tts worker: %w", err)
	}

	args := append(append([]string{}, w.args...), "--voice", req.Voice)
	cmd := exec.CommandContext(ctx, w.binary, args...)
	cmd.Stdin = bytes.NewBufferString(req.Text)

	progress(0.1)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("tts worker: %s: %w: %s", w.binary, err, stderr.String())
	}
	progress(1.0)

	return Response{Audio: stdout.Bytes(), Format: "wav"}, nil
}
