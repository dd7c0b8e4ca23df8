package recent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Summary is one sidebar entry of the recent-conversations listing.
type Summary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	LastMessage string `json:"lastMessage"`
	Time        string `json:"time"`
}

// Fetcher is the read contract the chat core consumes. Failures are
// tolerated by callers: the sidebar simply shows a stale or empty list.
type Fetcher interface {
	Fetch(ctx context.Context, sessionID string) ([]Summary, error)
}

// Client fetches conversation summaries from the backend, identifying the
// caller by session id header.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a Client against the given backend base URL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, sessionID string) ([]Summary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chats/recent", nil)
	if err != nil {
		return nil, fmt.Errorf("build recent chats request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recent chats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recent chats: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Chats []Summary `json:"chats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode recent chats: %w", err)
	}
	return payload.Chats, nil
}
