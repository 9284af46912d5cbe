// Package memoryapi is a thin HTTP client for the upstream simplemem-api
// backend. It carries no protocol logic of its own; the MCP tool surface
// forwards calls here.
package memoryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultEndpoint - localhost
const DefaultEndpoint = "http://localhost:8000"

// Client talks to simplemem-api.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// HealthStatus is the upstream health report.
type HealthStatus struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Initialized bool   `json:"simplemem_initialized"`
}

// Entry is a raw memory entry.
type Entry struct {
	EntryID             string `json:"entry_id"`
	LosslessRestatement string `json:"lossless_restatement"`
}

// Stats reports memory statistics.
type Stats struct {
	TotalEntries int    `json:"total_entries"`
	MemoryPath   string `json:"memory_path"`
	DBType       string `json:"db_type"`
}

// QueryResult is the answer to a semantic query.
type QueryResult struct {
	Answer string `json:"answer"`
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Health checks API health and initialization status.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AddDialogue adds a single dialogue entry.
func (c *Client) AddDialogue(ctx context.Context, speaker, content, timestamp string) error {
	payload := map[string]string{"speaker": speaker, "content": content}
	if timestamp != "" {
		payload["timestamp"] = timestamp
	}
	return c.do(ctx, http.MethodPost, "/dialogue", payload, nil)
}

// Finalize consolidates memories after dialogue ingestion.
func (c *Client) Finalize(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/finalize", struct{}{}, nil)
}

// Query asks a semantic question and returns the answer.
func (c *Client) Query(ctx context.Context, query string) (*QueryResult, error) {
	var result QueryResult
	if err := c.do(ctx, http.MethodPost, "/query", map[string]string{"query": query}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Retrieve fetches raw entries, most recent first.
func (c *Client) Retrieve(ctx context.Context, limit int) ([]Entry, error) {
	path := "/retrieve"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []Entry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Stats retrieves memory statistics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Clear deletes all memories. The upstream requires explicit confirmation.
func (c *Client) Clear(ctx context.Context, confirmation bool) error {
	return c.do(ctx, http.MethodDelete, "/clear", map[string]bool{"confirmation": confirmation}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "memoryapi marshal request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "memoryapi build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "memoryapi request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("memoryapi %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "memoryapi decode response")
	}
	return nil
}
