package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "flow-chat/backend/internal/errors"
)

func collect(ch <-chan StreamResponse) []StreamResponse {
	var out []StreamResponse
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestClient_StreamChat(t *testing.T) {
	var gotAuth string
	var gotBody ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range []string{
			`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
			`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
			`: keep-alive`,
			`data: not json`,
			`data: {"choices":[{"delta":{"content":"lo"}}]}`,
			`data: [DONE]`,
			`data: {"choices":[{"delta":{"content":"ignored"}}]}`,
		} {
			_, _ = fmt.Fprintf(w, "%s\n\n", line)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret")
	ch := make(chan StreamResponse, 16)
	err := client.StreamChat(context.Background(), &ChatRequest{
		Model:    "provider-5/gpt-4o",
		Messages: []Message{{Role: "user", Content: "hi"}},
	}, ch)
	require.NoError(t, err)

	got := collect(ch)
	require.Len(t, got, 3)
	assert.Equal(t, "Hel", got[0].Content)
	assert.Equal(t, "lo", got[1].Content)
	assert.True(t, got[2].Done)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.True(t, gotBody.Stream)
	assert.Equal(t, "provider-5/gpt-4o", gotBody.Model)
}

func TestClient_StreamChat_EndWithoutDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
	}))
	defer server.Close()

	ch := make(chan StreamResponse, 4)
	require.NoError(t, NewClient(server.URL, "").StreamChat(context.Background(), &ChatRequest{}, ch))
	got := collect(ch)
	require.Len(t, got, 2)
	assert.True(t, got[1].Done)
}

func TestClient_StreamChat_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	ch := make(chan StreamResponse, 1)
	err := NewClient(server.URL, "").StreamChat(context.Background(), &ChatRequest{}, ch)
	require.Error(t, err)
	assert.ErrorIs(t, err, app_errors.ErrTransport)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, open := <-ch
	assert.False(t, open, "channel is closed on failure")
}

func TestClient_GenerateImage(t *testing.T) {
	var got ImageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"url":"https://cdn/a.png"},{"url":""}]}`))
	}))
	defer server.Close()

	urls, err := NewClient(server.URL, "k").GenerateImage(context.Background(), &ImageRequest{Model: "provider-2/dall-e-3", Prompt: "a cat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/a.png"}, urls)
	assert.Equal(t, 1, got.N)
	assert.Equal(t, "1024x1024", got.Size)
}

func TestClient_GenerateVideo(t *testing.T) {
	var got VideoRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/video/generations", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	urls, err := NewClient(server.URL, "k").GenerateVideo(context.Background(), &VideoRequest{Model: "provider-6/wan-2.1", Prompt: "waves"})
	require.NoError(t, err)
	assert.Empty(t, urls)
	assert.Equal(t, VideoRequest{Model: "provider-6/wan-2.1", Prompt: "waves", Ratio: "9:16", Quality: "720p", Duration: 8}, got)
}

func TestClient_GenerateImage_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").GenerateImage(context.Background(), &ImageRequest{})
	assert.ErrorIs(t, err, app_errors.ErrParse)
}
