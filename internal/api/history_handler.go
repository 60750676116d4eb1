package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/interfaces"
	"flow-chat/backend/internal/model"
)

// HistoryHandler serves the per-turn chat history of signed-in users.
type HistoryHandler struct {
	history interfaces.HistoryService
}

func NewHistoryHandler(history interfaces.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// ListHistory godoc
// @Summary      List history
// @Description  Returns history entries, newest first. Anonymous callers get an empty list.
// @Tags         History
// @Produce      json
// @Param        X-User-ID   header  string  false  "Signed-in user id"
// @Param        type        query   string  false  "Chat type"  Enums(text, image, video, knowledge_search)
// @Param        session_id  query   string  false  "Session ID"
// @Param        start_date  query   string  false  "RFC 3339 lower bound"
// @Param        end_date    query   string  false  "RFC 3339 upper bound"
// @Param        limit       query   int     false  "Page size"  default(50)
// @Param        offset      query   int     false  "Page offset"
// @Success      200  {array}   model.HistoryEntry
// @Failure      400  {object}  ErrorResponse
// @Router       /v1/history [get]
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r.URL.Query())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.history.List(r.Context(), identity.FromContext(r.Context()), filter))
}

// SearchHistory godoc
// @Summary      Search history
// @Description  Case-insensitive search over prompts, responses and queries.
// @Tags         History
// @Produce      json
// @Param        q     query  string  true   "Search term"
// @Param        type  query  string  false  "Chat type"  Enums(text, image, video, knowledge_search)
// @Success      200  {array}   model.HistoryEntry
// @Failure      400  {object}  ErrorResponse
// @Router       /v1/history/search [get]
func (h *HistoryHandler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chatType, err := parseChatType(q.Get("type"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.history.Search(r.Context(), identity.FromContext(r.Context()), q.Get("q"), chatType))
}

// GetStats godoc
// @Summary      History statistics
// @Description  Counts per chat type and the first and last chat dates.
// @Tags         History
// @Produce      json
// @Success      200  {object}  model.HistoryStats
// @Failure      503  {object}  ErrorResponse
// @Router       /v1/history/stats [get]
func (h *HistoryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.history.Stats(r.Context(), identity.FromContext(r.Context()))
	if stats == nil {
		respondWithError(w, fmt.Errorf("history stats unavailable: %w", app_errors.ErrPersistence))
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// GetRecentSessions godoc
// @Summary      Recently active sessions
// @Tags         History
// @Produce      json
// @Param        limit  query  int  false  "Maximum ids"  default(10)
// @Success      200  {array}   string
// @Failure      400  {object}  ErrorResponse
// @Router       /v1/history/recent-sessions [get]
func (h *HistoryHandler) GetRecentSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseInt(r.URL.Query(), "limit")
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.history.RecentSessions(r.Context(), identity.FromContext(r.Context()), limit))
}

// DeleteEntry godoc
// @Summary      Delete a history entry
// @Tags         History
// @Produce      json
// @Param        entryID  path      string  true  "Entry ID"
// @Success      200      {object}  StatusResponse
// @Failure      403      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /v1/history/{entryID} [delete]
func (h *HistoryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.history.DeleteEntry(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "entryID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// DeleteSessionHistory godoc
// @Summary      Delete the history of one session
// @Tags         History
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  StatusResponse
// @Failure      403        {object}  ErrorResponse
// @Router       /v1/history/sessions/{sessionID} [delete]
func (h *HistoryHandler) DeleteSessionHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.DeleteSession(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "sessionID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// DeleteAllHistory godoc
// @Summary      Delete all history
// @Tags         History
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /v1/history [delete]
func (h *HistoryHandler) DeleteAllHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.DeleteAll(r.Context(), identity.FromContext(r.Context())); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// GetStatus godoc
// @Summary      Persistence status
// @Description  The last storage error and whether a load is in progress.
// @Tags         History
// @Produce      json
// @Success      200  {object}  persistence.Status
// @Router       /v1/status [get]
func (h *HistoryHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.history.Status())
}

func parseHistoryFilter(q url.Values) (model.HistoryFilter, error) {
	var f model.HistoryFilter
	var err error
	if f.ChatType, err = parseChatType(q.Get("type")); err != nil {
		return f, err
	}
	f.SessionID = q.Get("session_id")
	if f.Limit, err = parseInt(q, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = parseInt(q, "offset"); err != nil {
		return f, err
	}
	if f.StartDate, err = parseTime(q, "start_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = parseTime(q, "end_date"); err != nil {
		return f, err
	}
	return f, nil
}

func parseChatType(raw string) (model.ChatType, error) {
	if raw == "" {
		return "", nil
	}
	t := model.ChatType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown chat type '%s'", app_errors.ErrValidation, raw)
	}
	return t, nil
}

func parseInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", app_errors.ErrValidation, key)
	}
	return n, nil
}

func parseTime(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", app_errors.ErrValidation, key)
	}
	return &t, nil
}
