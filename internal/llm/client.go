package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	app_errors "flow-chat/backend/internal/errors"
)

const (
	DefaultImageSize  = "1024x1024"
	DefaultVideoRatio = "9:16"
	DefaultVideoRes   = "720p"
	DefaultVideoSecs  = 8
)

// StreamResponse is one streamed fragment.
type StreamResponse struct {
	Content string
	Done    bool
	Error   string
}

// ChatStreamer streams a chat completion. Implementations close ch when done.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req *ChatRequest, ch chan<- StreamResponse) error
}

// ImageGenerator returns URLs of generated images.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req *ImageRequest) ([]string, error)
}

// VideoGenerator returns URLs of generated videos.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req *VideoRequest) ([]string, error)
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type VideoRequest struct {
	Model    string `json:"model"`
	Prompt   string `json:"prompt"`
	Ratio    string `json:"ratio"`
	Quality  string `json:"quality"`
	Duration int    `json:"duration"`
}

type mediaResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Client talks to an OpenAI-compatible API.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// StreamChat posts to /chat/completions with stream enabled and forwards each
// delta. Lines that fail to decode are skipped.
func (c *Client) StreamChat(ctx context.Context, req *ChatRequest, ch chan<- StreamResponse) error {
	defer close(ch)
	req.Stream = true

	resp, err := c.post(ctx, "/chat/completions", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	type streamChunk struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			break
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			slog.Warn("Skipping undecodable stream chunk", "error", err)
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		select {
		case ch <- StreamResponse{Content: chunk.Choices[0].Delta.Content}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream interrupted: %w: %v", app_errors.ErrTransport, err)
	}

	select {
	case ch <- StreamResponse{Done: true}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// GenerateImage posts to /images/generations. Zero N and Size take the defaults.
func (c *Client) GenerateImage(ctx context.Context, req *ImageRequest) ([]string, error) {
	if req.N <= 0 {
		req.N = 1
	}
	if req.Size == "" {
		req.Size = DefaultImageSize
	}
	return c.generateMedia(ctx, "/images/generations", req)
}

// GenerateVideo posts to /video/generations. Zero fields take the defaults.
func (c *Client) GenerateVideo(ctx context.Context, req *VideoRequest) ([]string, error) {
	if req.Ratio == "" {
		req.Ratio = DefaultVideoRatio
	}
	if req.Quality == "" {
		req.Quality = DefaultVideoRes
	}
	if req.Duration <= 0 {
		req.Duration = DefaultVideoSecs
	}
	return c.generateMedia(ctx, "/video/generations", req)
}

func (c *Client) generateMedia(ctx context.Context, path string, payload any) ([]string, error) {
	resp, err := c.post(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out mediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("could not decode %s response: %w: %v", path, app_errors.ErrParse, err)
	}
	urls := make([]string, 0, len(out.Data))
	for _, d := range out.Data {
		if d.URL != "" {
			urls = append(urls, d.URL)
		}
	}
	return urls, nil
}

// post sends payload as JSON. A non-200 answer is returned as ErrTransport
// carrying the body text.
func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w: %v", path, app_errors.ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d: %w: %s", path, resp.StatusCode, app_errors.ErrTransport, string(bodyBytes))
	}
	return resp, nil
}
