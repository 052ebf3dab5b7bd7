package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/unclebandit/postcampaign-backend/internal/config"
)

// Request is what gets published: text plus at most one image.
type Request struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Response mirrors the posting API body. A transport failure is reported as
// an error instead.
type Response struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Client publishes a post to the social platform.
type Client interface {
	Post(ctx context.Context, req Request) (*Response, error)
}

// HTTPClient talks to the posting API over HTTP.
type HTTPClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a posting client with the configured timeout.
func NewHTTPClient(cfg config.PosterConfig) *HTTPClient {
	return &HTTPClient{
		endpoint: cfg.APIURL,
		token:    cfg.APIToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Post sends one post. API-level rejections come back as a Response with
// Success=false; only network, timeout and encoding problems return an error.
func (c *HTTPClient) Post(ctx context.Context, in Request) (*Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= 300 {
			return &Response{Success: false, Error: fmt.Sprintf("API returned status %d", resp.StatusCode)}, nil
		}
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.StatusCode >= 300 {
		out.Success = false
		if out.Error == "" {
			out.Error = fmt.Sprintf("API returned status %d", resp.StatusCode)
		}
	}
	return &out, nil
}

var _ Client = (*HTTPClient)(nil)
