// Package status publishes the job result as a commit status on the
// triggering change, the single externally visible artifact of a run.
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// State is a commit status state accepted by the statuses API.
type State string

const (
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailure State = "failure"
	StateError   State = "error"
)

// Report is one status update for a commit.
type Report struct {
	State       State  `json:"state"`
	Context     string `json:"context"`
	Description string `json:"description"`
	TargetURL   string `json:"target_url,omitempty"`
}

// Client talks to the commit statuses API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the given API base URL. An empty baseURL
// selects the public endpoint.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// Publish attaches the report to the commit. repo is the "owner/name" slug.
func (c *Client) Publish(ctx context.Context, repo, sha string, report Report) error {
	if repo == "" || sha == "" {
		return fmt.Errorf("publish status: repository and sha are required")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/statuses/%s", c.baseURL, repo, sha)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("publish status: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("publish status: status=%d body=%s", res.StatusCode, string(respBody))
	}
	return nil
}
