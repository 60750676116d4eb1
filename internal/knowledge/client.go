// Package knowledge queries the retrieval-augmented knowledge base webhook.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	app_errors "flow-chat/backend/internal/errors"
)

// NoAnswer is used when the webhook answered without any recognised field.
const NoAnswer = "No answer received"

// Searcher answers a query within a session.
type Searcher interface {
	Query(ctx context.Context, query, sessionID string) (*Answer, error)
}

// Answer is the normalised webhook response.
type Answer struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}

type Client struct {
	client *http.Client
	url    string
}

func NewClient(webhookURL string) *Client {
	return &Client{client: &http.Client{Timeout: 2 * time.Minute}, url: webhookURL}
}

type queryRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Query posts the question and normalises whatever shape comes back.
func (c *Client) Query(ctx context.Context, query, sessionID string) (*Answer, error) {
	if c.url == "" {
		return nil, fmt.Errorf("knowledge base webhook is not configured: %w", app_errors.ErrTransport)
	}
	body, err := json.Marshal(queryRequest{Message: query, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge base request failed: %w: %v", app_errors.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("knowledge base returned status %d: %w", resp.StatusCode, app_errors.ErrTransport)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read knowledge base response: %w: %v", app_errors.ErrTransport, err)
	}
	return Parse(raw, sessionID), nil
}

// Parse accepts the three shapes the webhook produces:
//   - plain text, taken as the whole answer
//   - [{"output": "...", "sources": [...]}]
//   - {"answer"|"response"|"result": "...", "sources": [...], "sessionId": "..."}
func Parse(raw []byte, sessionID string) *Answer {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return &Answer{Answer: string(raw), Sources: []string{}, SessionID: sessionID}
	}

	if arr, ok := data.([]any); ok && len(arr) > 0 {
		if first, ok := arr[0].(map[string]any); ok {
			if out := str(first["output"]); out != "" {
				return &Answer{Answer: out, Sources: strs(first["sources"]), SessionID: sessionID}
			}
		}
	}

	obj, _ := data.(map[string]any)
	answer := firstNonEmpty(str(obj["answer"]), str(obj["response"]), str(obj["result"]), NoAnswer)
	return &Answer{
		Answer:    answer,
		Sources:   strs(obj["sources"]),
		SessionID: firstNonEmpty(str(obj["sessionId"]), sessionID),
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strs(v any) []string {
	out := []string{}
	items, _ := v.([]any)
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
