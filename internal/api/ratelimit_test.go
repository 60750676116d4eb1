package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flow-chat/backend/internal/identity"
)

func TestRateLimiter_PerCaller(t *testing.T) {
	l := NewRateLimiter(0.001, 2)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := l.Middleware(ok)

	call := func(userID, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", nil)
		req.RemoteAddr = addr
		if userID != "" {
			req = req.WithContext(identity.WithIdentity(req.Context(), identity.Identity{UserID: userID}))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, call("u1", "10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, call("u1", "10.0.0.2:1000"))
	assert.Equal(t, http.StatusTooManyRequests, call("u1", "10.0.0.3:1000"))

	// Other users and anonymous addresses have their own budget.
	assert.Equal(t, http.StatusNoContent, call("u2", "10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, call("", "10.0.0.9:1000"))
	assert.Equal(t, http.StatusNoContent, call("", "10.0.0.9:2000"))
	assert.Equal(t, http.StatusTooManyRequests, call("", "10.0.0.9:3000"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	assert.Nil(t, NewRateLimiter(0, 5))

	var l *RateLimiter
	called := false
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestRateLimiter_PrunesIdle(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	l.get("a")
	l.get("b")
	assert.Len(t, l.limiters, 2)

	now = now.Add(limiterIdle + time.Minute)
	l.get("b")
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "b")
}
