package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/interfaces"
)

// SessionHandler exposes the caller's in-memory sessions.
type SessionHandler struct {
	sessions interfaces.SessionService
}

func NewSessionHandler(sessions interfaces.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// ListSessions godoc
// @Summary      List sessions
// @Description  Returns session summaries, most recently updated first. q filters titles and message content.
// @Tags         Sessions
// @Produce      json
// @Param        X-User-ID  header  string  false  "Signed-in user id"
// @Param        q          query   string  false  "Search text"
// @Success      200  {array}  model.SessionSummary
// @Router       /v1/sessions [get]
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())
	respondWithJSON(w, http.StatusOK, h.sessions.List(r.Context(), ident, r.URL.Query().Get("q")))
}

// CreateSession godoc
// @Summary      Create a session
// @Description  Starts an empty session and makes it active.
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  model.Session
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sess)
}

// GetSession godoc
// @Summary      Get a session
// @Description  Returns the session with its messages and any response still streaming into it.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  service.SessionView
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Get(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// RenameSession godoc
// @Summary      Rename a session
// @Description  Sets an explicit title. Later messages no longer change it.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string                true  "Session ID"
// @Param        title      body      RenameSessionRequest  true  "New title"
// @Success      200        {object}  StatusResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/title [put]
func (h *SessionHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
	var req RenameSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.sessions.Rename(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "sessionID"), req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// DeleteSession godoc
// @Summary      Delete a session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [delete]
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "sessionID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// SetActive godoc
// @Summary      Select the active session
// @Description  An empty session_id clears the selection.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        active  body      SetActiveRequest  true  "Session to select"
// @Success      200     {object}  StatusResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /v1/sessions/active [put]
func (h *SessionHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := h.sessions.SetActive(r.Context(), identity.FromContext(r.Context()), req.SessionID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// SyncSessions godoc
// @Summary      Reload sessions from storage
// @Description  Replaces the in-memory sessions with the durable copy. Refused while a response is streaming.
// @Tags         Sessions
// @Produce      json
// @Success      200  {array}   model.SessionSummary
// @Failure      409  {object}  ErrorResponse
// @Router       /v1/sessions/sync [post]
func (h *SessionHandler) SyncSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sessions.Sync(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summaries)
}
