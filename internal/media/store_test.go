package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "flow-chat/backend/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	s := NewStore(t.TempDir(), "http://localhost:8000/media/")
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestStore_Put(t *testing.T) {
	s := newTestStore(t)

	u1, err := s.Put("u1", "42", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/media/u1/42/image-1700000000000.png", u1)

	data, err := os.ReadFile(filepath.Join(s.Dir(), "u1", "42", "image-1700000000000.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	u2, err := s.Put("u1", "42", strings.NewReader("other"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/media/u1/42/image-1700000000001.png", u2, "same millisecond does not overwrite")
}

func TestStore_Put_RejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	for _, bad := range []string{"", "..", "a/b", `a\b`} {
		_, err := s.Put(bad, "1", strings.NewReader("x"))
		assert.ErrorIs(t, err, app_errors.ErrValidation, bad)
	}
}

func TestStore_Mirror(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote-image"))
	}))
	defer server.Close()

	s := newTestStore(t)
	got, err := s.Mirror(context.Background(), "u1", "7", server.URL+"/a.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "http://localhost:8000/media/u1/7/"))

	_, err = s.Mirror(context.Background(), "u1", "7", server.URL+"/missing.png")
	assert.ErrorIs(t, err, app_errors.ErrTransport)
}

func TestStore_Put_RejectsOversized(t *testing.T) {
	s := newTestStore(t)
	s.maxBytes = 4

	_, err := s.Put("u1", "42", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrTooLarge)
	entries, err := os.ReadDir(filepath.Join(s.Dir(), "u1", "42"))
	require.NoError(t, err)
	assert.Empty(t, entries, "partial file is removed")

	_, err = s.Put("u1", "42", strings.NewReader("1234"))
	assert.NoError(t, err)
}

func TestStore_Mirror_RejectsOversized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/streamed.png" {
			// Flushing first drops Content-Length, so only the copy can notice.
			_, _ = w.Write([]byte("abc"))
			w.(http.Flusher).Flush()
		}
		_, _ = w.Write([]byte("defghij"))
	}))
	defer server.Close()

	s := newTestStore(t)
	s.maxBytes = 5
	for _, p := range []string{"/sized.png", "/streamed.png"} {
		_, err := s.Mirror(context.Background(), "u1", "7", server.URL+p)
		assert.ErrorIs(t, err, ErrTooLarge, p)
	}
}
