package lm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"schedulerd/internal/scheduler"
	"schedulerd/pkg/types"
)

// HTTPWorker implements scheduler.Worker by talking to a running
// llama.cpp-compatible server over its OpenAI /v1/completions endpoint.
// This is the default LM engine: no cgo, works against any compatible
// server process the operator already has running.
type HTTPWorker struct {
	id         string
	baseURL    string
	apiKey     string
	reqTimeout time.Duration
	client     *http.Client
}

// NewHTTPWorker constructs an HTTP-backed LM worker bound to baseURL (e.g.
// "http://127.0.0.1:8080"). reqTimeout bounds a single generation call; 0
// means no per-request timeout beyond ctx.
func NewHTTPWorker(id, baseURL, apiKey string, reqTimeout time.Duration) *HTTPWorker {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &HTTPWorker{
		id:         id,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		reqTimeout: reqTimeout,
		client:     &http.Client{Transport: tr, Timeout: 0},
	}
}

func (w *HTTPWorker) ID() string                  { return w.id }
func (w *HTTPWorker) Capabilities() []types.Class { return []types.Class{types.ClassLM} }

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float32  `json:"temperature,omitempty"`
	TopP        float32  `json:"top_p,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	Stream      bool     `json:"stream"`
}

type streamChoice struct {
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type streamResponse struct {
	Choices []streamChoice `json:"choices"`
}

// Execute sends req to the server's completions endpoint and streams the
// response, reporting fractional progress as tokens arrive (an estimate
// against MaxTokens, since the server doesn't report a total).
func (w *HTTPWorker) Execute(ctx context.Context, payload any, progress scheduler.ProgressFunc) (any, error) {
	req, err := coerceRequest(payload)
	if err != nil {
		return nil, fmt.Errorf("lm worker: %w", err)
	}

	if w.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.reqTimeout)
		defer cancel()
	}

	body, err := json.Marshal(completionRequest{
		Prompt: req.Prompt, MaxTokens: req.MaxTokens, Temperature: req.Temperature,
		TopP: req.TopP, TopK: req.TopK, Stop: req.Stop, Stream: true,
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

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
		return nil, fmt.Errorf("lm server http error: %s: %s", resp.Status, string(b))
	}

	var out Response
	var sb strings.Builder
	tokens := 0
	r := bufio.NewReader(resp.Body)
	for {
		line, readErr := r.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(strings.ToLower(line), "data:") {
				data := strings.TrimSpace(line[len("data:"):])
				if data == "[DONE]" {
					break
				}
				var msg streamResponse
				if err := json.Unmarshal([]byte(data), &msg); err == nil && len(msg.Choices) > 0 {
					frag := msg.Choices[0].Delta.Content
					if frag != "" {
						sb.WriteString(frag)
						tokens++
						if req.MaxTokens > 0 {
							progress(float64(tokens) / float64(req.MaxTokens))
						}
					}
					if fr := msg.Choices[0].FinishReason; fr != "" {
						out.FinishReason = fr
					}
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, readErr
		}
	}
	out.Text = sb.String()
	progress(1.0)
	return out, nil
}
