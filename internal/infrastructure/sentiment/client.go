package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"NewsTrendMonitor/internal/domain"
	"NewsTrendMonitor/internal/ports"
)

// Client talks to the external sentiment-scoring service over HTTP. The model
// itself is a black box: text in, score and confidence out.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.SentimentAnalyzer = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Analyze sends the text for scoring.
func (c *Client) Analyze(ctx context.Context, text string) (domain.Sentiment, error) {
	var resp struct {
		Score      float64 `json:"score"`
		Confidence float64 `json:"confidence"`
	}

	if err := c.post(ctx, "/analyze", map[string]any{"text": text}, &resp); err != nil {
		return domain.Sentiment{}, err
	}

	return domain.Sentiment{Score: resp.Score, Confidence: resp.Confidence}, nil
}

// WarmUp sends a short probe so the model service loads its weights before
// the first real request. Failure is reported, not fatal.
func (c *Client) WarmUp(ctx context.Context) error {
	_, err := c.Analyze(ctx, "warm up")
	if err != nil {
		return fmt.Errorf("warm up sentiment service: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
