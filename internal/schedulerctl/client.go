// Package schedulerctl implements the HTTP client and Cobra command tree for
// schedulerctl, the operator CLI for a running schedulerd instance.
package schedulerctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"schedulerd/pkg/types"
)

// Client talks to a schedulerd HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a Client against baseURL (e.g. http://localhost:8080).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type submitRequest struct {
	Class    types.Class    `json:"class"`
	Priority types.Priority `json:"priority"`
	Payload  any            `json:"payload"`
}

type submitResponse struct {
	TaskID types.TaskID `json:"task_id"`
}

// Submit posts a new task and returns its assigned id.
func (c *Client) Submit(class types.Class, priority types.Priority, payload any) (types.TaskID, error) {
	body, err := json.Marshal(submitRequest{Class: class, Priority: priority, Payload: payload})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.http.Post(c.baseURL+"/v1/tasks", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return 0, apiError(resp)
	}
	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return out.TaskID, nil
}

// Status fetches the current TaskInfo for id.
func (c *Client) Status(id types.TaskID) (types.TaskInfo, error) {
	var info types.TaskInfo
	resp, err := c.http.Get(fmt.Sprintf("%s/v1/tasks/%d", c.baseURL, id))
	if err != nil {
		return info, fmt.Errorf("status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return info, apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("decode response: %w", err)
	}
	return info, nil
}

// Cancel requests cancellation of id.
func (c *Client) Cancel(id types.TaskID) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/tasks/%d", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

// Stats fetches the global scheduler snapshot.
func (c *Client) Stats() (types.StatsSnapshot, error) {
	var snap types.StatsSnapshot
	resp, err := c.http.Get(c.baseURL + "/v1/stats")
	if err != nil {
		return snap, fmt.Errorf("stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return snap, apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode response: %w", err)
	}
	return snap, nil
}

func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
}
