// Package identity resolves who is calling. An identity with a user id is
// authenticated and gets durable storage; anonymous identities are memory-only
// and are told apart by a per-browser client cookie.
package identity

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UserHeaderName = "X-User-ID"
	// ClientCookieName carries the id of an anonymous browser.
	ClientCookieName = "flow_client"

	clientCookieMaxAge = 365 * 24 * time.Hour
)

// Workspace key namespaces. A user id can never produce an anonymous key.
const (
	userKeyPrefix = "user:"
	anonKeyPrefix = "anon:"
)

type contextKey int

const identityKey contextKey = iota

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:@-]{1,128}$`)

// Identity is the resolved caller.
type Identity struct {
	UserID string
	// ClientID separates anonymous callers from each other. It is ignored
	// once UserID is set.
	ClientID string
}

// Anonymous is the unauthenticated identity without a client id.
var Anonymous = Identity{}

// Authenticated reports whether the caller has a durable user id.
func (i Identity) Authenticated() bool { return i.UserID != "" }

// Key returns the workspace key for i.
func (i Identity) Key() string {
	if i.Authenticated() {
		return userKeyPrefix + i.UserID
	}
	return anonKeyPrefix + i.ClientID
}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the identity from ctx, defaulting to Anonymous.
func FromContext(ctx context.Context) Identity {
	if v, ok := ctx.Value(identityKey).(Identity); ok {
		return v
	}
	return Anonymous
}

// Parse validates a raw user id. ok is false for malformed values.
func Parse(raw string) (id Identity, ok bool) {
	raw = strings.TrimSpace(raw)
	if !userIDPattern.MatchString(raw) {
		return Anonymous, false
	}
	return Identity{UserID: raw}, true
}

// Middleware reads the user id header. Malformed values are treated as absent.
// Callers without a user id are pinned to a client cookie, issued on first
// contact.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := Parse(r.Header.Get(UserHeaderName))
		if !ok {
			id = Identity{ClientID: clientID(w, r)}
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func clientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(ClientCookieName); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			return parsed.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(clientCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
