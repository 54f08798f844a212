// Package lm provides Worker implementations for the LM class: a default
// HTTP-backed engine talking to an OpenAI-compatible completions endpoint,
// and an optional native engine built with the llama build tag.
package lm

import (
	"encoding/json"
	"fmt"
)

// Request is the payload a producer submits for an LM task.
type Request struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float32  `json:"temperature,omitempty"`
	TopP        float32  `json:"top_p,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Response is the result a worker returns on completion.
type Response struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// coerceRequest accepts either a Request submitted in-process or the
// map[string]any a JSON producer payload decodes to over HTTP, since the
// scheduler core treats payloads as opaque (spec §1) and only the worker
// knows its own wire shape.
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
