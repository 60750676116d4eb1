// Package media keeps copies of generated images so their URLs outlive the
// generator's temporary links.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	app_errors "flow-chat/backend/internal/errors"
)

// MaxDownloadBytes caps a mirrored file. Larger files are rejected, not cut.
const MaxDownloadBytes = 32 << 20

// ErrTooLarge is returned when a file exceeds the size cap.
var ErrTooLarge = errors.New("media file too large")

// Store writes blobs under <dir>/<user>/<session>/ and serves them from publicURL.
type Store struct {
	dir       string
	publicURL string
	client    *http.Client
	now       func() time.Time
	maxBytes  int64
}

func NewStore(dir, publicURL string) *Store {
	return &Store{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		client:    &http.Client{Timeout: time.Minute},
		now:       time.Now,
		maxBytes:  MaxDownloadBytes,
	}
}

// Dir is the root directory blobs are written to.
func (s *Store) Dir() string { return s.dir }

// Put stores an image and returns its public URL.
func (s *Store) Put(userID, sessionID string, r io.Reader) (string, error) {
	user, err := segment(userID)
	if err != nil {
		return "", err
	}
	sess, err := segment(sessionID)
	if err != nil {
		return "", err
	}
	folder := filepath.Join(s.dir, user, sess)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("could not create media folder: %w", err)
	}

	f, name, err := s.create(folder)
	if err != nil {
		return "", err
	}
	// One byte over the cap tells a full file from an oversized one.
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err == nil && n > s.maxBytes {
		err = fmt.Errorf("%w: more than %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("could not write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("could not close media file: %w", err)
	}
	return s.publicURL + "/" + path.Join(url.PathEscape(user), url.PathEscape(sess), name), nil
}

// Mirror downloads sourceURL and stores it with Put.
func (s *Store) Mirror(ctx context.Context, userID, sessionID, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("could not create download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w: %v", app_errors.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d: %w", resp.StatusCode, app_errors.ErrTransport)
	}
	if resp.ContentLength > s.maxBytes {
		return "", fmt.Errorf("%w: download announces %d bytes", ErrTooLarge, resp.ContentLength)
	}
	return s.Put(userID, sessionID, resp.Body)
}

// create opens image-<ms>.png exclusively, bumping the stamp on collision.
func (s *Store) create(folder string) (*os.File, string, error) {
	stamp := s.now().UnixMilli()
	for i := 0; i < 100; i++ {
		name := "image-" + strconv.FormatInt(stamp+int64(i), 10) + ".png"
		f, err := os.OpenFile(filepath.Join(folder, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("could not create media file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("could not allocate a media file name in %s", folder)
}

func segment(s string) (string, error) {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return "", fmt.Errorf("%w: invalid path segment %q", app_errors.ErrValidation, s)
	}
	return s, nil
}
