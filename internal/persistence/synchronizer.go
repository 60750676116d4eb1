// Package persistence mirrors in-memory sessions into the durable store.
//
// Every operation is best effort: failures are logged and kept in Status,
// never returned. Anonymous callers are skipped silently.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/repository"
	"flow-chat/backend/internal/session"
)

// DefaultRestoreLimit is how many history entries a restore reads.
const DefaultRestoreLimit = 100

const (
	restoredModel  = "gpt-4"
	knowledgeModel = "knowledge-base"
	// assistantOffset places a restored reply just after its prompt.
	assistantOffset = time.Second
)

// Status reports the outcome of the latest durable operation.
type Status struct {
	LastError   string     `json:"last_error,omitempty"`
	LastErrorAt *time.Time `json:"last_error_at,omitempty"`
	Loading     bool       `json:"loading"`
}

// Turn is one completed prompt/response exchange to record in history.
type Turn struct {
	SessionID string
	Type      model.ChatType
	Prompt    string
	Response  string
	Model     string
	MediaURLs []string
	Results   json.RawMessage
	Timestamp time.Time
}

type Synchronizer struct {
	repo         repository.Repository
	restoreLimit int

	mu      sync.Mutex
	status  Status
	loading int
}

func NewSynchronizer(repo repository.Repository, restoreLimit int) *Synchronizer {
	if restoreLimit <= 0 {
		restoreLimit = DefaultRestoreLimit
	}
	return &Synchronizer{repo: repo, restoreLimit: restoreLimit}
}

// Status returns a snapshot of the error and loading flags.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.status
	out.Loading = s.loading > 0
	return out
}

// Save upserts the whole session. Repeating it with the same session
// produces the same row since updated_at comes from the session.
func (s *Synchronizer) Save(ctx context.Context, ident identity.Identity, sess model.Session) {
	if !ident.Authenticated() {
		return
	}
	row := &model.StoredSession{
		UserID:    ident.UserID,
		SessionID: sess.ID,
		Title:     sess.Title,
		Messages:  sess.Messages,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	if err := s.repo.UpsertSession(ctx, row); err != nil {
		s.fail("save session", err, "session_id", sess.ID)
		return
	}
	slog.Debug("Session saved", "user_id", ident.UserID, "session_id", sess.ID, "messages", len(sess.Messages))
}

// LoadAll returns the user's sessions, most recently updated first. Stored
// sessions win; only when there are none is the history replayed.
func (s *Synchronizer) LoadAll(ctx context.Context, ident identity.Identity) []model.Session {
	if !ident.Authenticated() {
		return nil
	}
	s.setLoading(true)
	defer s.setLoading(false)

	rows, err := s.repo.ListSessions(ctx, ident.UserID)
	if err != nil {
		s.fail("load sessions", err)
	}
	if len(rows) > 0 {
		out := make([]model.Session, 0, len(rows))
		for _, row := range rows {
			out = append(out, fromStored(row))
		}
		sortByUpdated(out)
		slog.Info("Loaded sessions from storage", "user_id", ident.UserID, "count", len(out))
		return out
	}

	entries, err := s.repo.ListHistory(ctx, ident.UserID, model.HistoryFilter{Limit: s.restoreLimit})
	if err != nil {
		s.fail("restore from history", err)
		return nil
	}
	out := Restore(entries)
	slog.Info("Restored sessions from history", "user_id", ident.UserID, "entries", len(entries), "count", len(out))
	return out
}

// Rename updates the stored title. A session that was never saved is not an error.
func (s *Synchronizer) Rename(ctx context.Context, ident identity.Identity, sessionID, title string, updatedAt time.Time) {
	if !ident.Authenticated() {
		return
	}
	err := s.repo.UpdateSessionTitle(ctx, ident.UserID, sessionID, title, updatedAt)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.fail("rename session", err, "session_id", sessionID)
	}
}

// Delete removes the stored session. History entries are left alone.
func (s *Synchronizer) Delete(ctx context.Context, ident identity.Identity, sessionID string) {
	if !ident.Authenticated() {
		return
	}
	if err := s.repo.DeleteSession(ctx, ident.UserID, sessionID); err != nil {
		s.fail("delete session", err, "session_id", sessionID)
	}
}

// RecordTurn appends one history entry for a completed exchange.
func (s *Synchronizer) RecordTurn(ctx context.Context, ident identity.Identity, turn Turn) {
	if !ident.Authenticated() {
		return
	}
	entry, err := buildEntry(ident.UserID, turn)
	if err != nil {
		s.fail("record turn", err, "session_id", turn.SessionID)
		return
	}
	if err := s.repo.AddHistoryEntry(ctx, entry); err != nil {
		s.fail("record turn", err, "session_id", turn.SessionID, "chat_type", turn.Type)
	}
}

// BatchRecord stores several turns in one write.
func (s *Synchronizer) BatchRecord(ctx context.Context, ident identity.Identity, turns []Turn) {
	if !ident.Authenticated() || len(turns) == 0 {
		return
	}
	entries := make([]*model.HistoryEntry, 0, len(turns))
	for _, t := range turns {
		e, err := buildEntry(ident.UserID, t)
		if err != nil {
			s.fail("batch record", err, "session_id", t.SessionID)
			return
		}
		entries = append(entries, e)
	}
	if err := s.repo.AddHistoryEntries(ctx, entries); err != nil {
		s.fail("batch record", err, "count", len(entries))
	}
}

// DeleteEntry removes one history entry and reports success.
func (s *Synchronizer) DeleteEntry(ctx context.Context, ident identity.Identity, entryID string) bool {
	if !ident.Authenticated() {
		return false
	}
	if err := s.repo.DeleteHistoryEntry(ctx, ident.UserID, entryID); err != nil {
		s.fail("delete history entry", err, "entry_id", entryID)
		return false
	}
	return true
}

func (s *Synchronizer) DeleteSessionHistory(ctx context.Context, ident identity.Identity, sessionID string) bool {
	if !ident.Authenticated() {
		return false
	}
	if err := s.repo.DeleteSessionHistory(ctx, ident.UserID, sessionID); err != nil {
		s.fail("delete session history", err, "session_id", sessionID)
		return false
	}
	return true
}

func (s *Synchronizer) DeleteAllHistory(ctx context.Context, ident identity.Identity) bool {
	if !ident.Authenticated() {
		return false
	}
	if err := s.repo.DeleteAllHistory(ctx, ident.UserID); err != nil {
		s.fail("delete all history", err)
		return false
	}
	return true
}

func (s *Synchronizer) fail(op string, err error, attrs ...any) {
	slog.Error("Persistence operation failed", append([]any{"op", op, "error", err}, attrs...)...)
	now := time.Now().UTC()
	s.mu.Lock()
	s.status.LastError = fmt.Sprintf("%s: %v", op, err)
	s.status.LastErrorAt = &now
	s.mu.Unlock()
}

func (s *Synchronizer) setLoading(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.loading++
	} else if s.loading > 0 {
		s.loading--
	}
}

func fromStored(row *model.StoredSession) model.Session {
	msgs := row.Messages
	if msgs == nil {
		msgs = []model.Message{}
	}
	return model.Session{
		ID:        row.SessionID,
		Title:     row.Title,
		Messages:  msgs,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Renamed:   wasRenamed(row.Title, msgs),
	}
}

// wasRenamed infers the flag the row does not carry: a title that is neither
// the default nor derived from the first message was set by hand.
func wasRenamed(title string, msgs []model.Message) bool {
	if title == model.DefaultSessionTitle {
		return false
	}
	if len(msgs) == 0 {
		return true
	}
	return title != session.DeriveTitle(msgs[0].Content)
}

func buildEntry(userID string, t Turn) (*model.HistoryEntry, error) {
	if !t.Type.Valid() {
		return nil, fmt.Errorf("unknown chat type %q", t.Type)
	}
	ts := t.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	var content model.HistoryContent
	var meta map[string]any
	switch t.Type {
	case model.ChatTypeText:
		content = model.HistoryContent{Type: "conversation", Prompt: t.Prompt, Response: t.Response, Model: t.Model}
		meta = map[string]any{"model": t.Model, "response_length": len(t.Response), "prompt_length": len(t.Prompt)}
	case model.ChatTypeImage:
		content = model.HistoryContent{Type: "image_generation", Prompt: t.Prompt, Model: t.Model, ImageURLs: t.MediaURLs, ImageCount: len(t.MediaURLs)}
		meta = map[string]any{"model": t.Model, "image_count": len(t.MediaURLs), "prompt_length": len(t.Prompt), "image_urls": t.MediaURLs}
	case model.ChatTypeVideo:
		content = model.HistoryContent{Type: "video_generation", Prompt: t.Prompt, Model: t.Model, VideoURLs: t.MediaURLs, VideoCount: len(t.MediaURLs)}
		meta = map[string]any{"model": t.Model, "video_count": len(t.MediaURLs), "prompt_length": len(t.Prompt), "video_urls": t.MediaURLs}
	case model.ChatTypeKnowledgeSearch:
		count := resultCount(t.Results)
		content = model.HistoryContent{Type: "knowledge_search", Query: t.Prompt, Results: t.Results, ResultCount: count}
		meta = map[string]any{"query_length": len(t.Prompt), "result_count": count}
	}

	return &model.HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChatType:  t.Type,
		Content:   content,
		Timestamp: ts,
		Metadata:  meta,
		SessionID: t.SessionID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// resultCount is the array length for array results and 1 otherwise.
func resultCount(raw json.RawMessage) int {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return len(arr)
	}
	return 1
}

// Restore rebuilds sessions from history entries. Entries are grouped by
// session id and replayed oldest first; each becomes a user message and,
// when a reply was recorded, an assistant message one second later.
func Restore(entries []*model.HistoryEntry) []model.Session {
	groups := make(map[string][]*model.HistoryEntry)
	var ids []string
	for _, e := range entries {
		if e == nil || e.SessionID == "" {
			continue
		}
		if _, seen := groups[e.SessionID]; !seen {
			ids = append(ids, e.SessionID)
		}
		groups[e.SessionID] = append(groups[e.SessionID], e)
	}

	out := make([]model.Session, 0, len(ids))
	for _, id := range ids {
		group := groups[id]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Timestamp.Before(group[j].Timestamp) })
		if sess, ok := replay(id, group); ok {
			out = append(out, sess)
		}
	}
	sortByUpdated(out)
	return out
}

func replay(sessionID string, group []*model.HistoryEntry) (model.Session, bool) {
	title := model.RestoredSessionTitle
	lastModel := restoredModel
	msgs := []model.Message{}

	for i, e := range group {
		c := e.Content
		ts := e.Timestamp.UTC()
		userText := c.Prompt
		if e.ChatType == model.ChatTypeKnowledgeSearch {
			userText = c.Query
		}
		if userText != "" {
			msgs = append(msgs, model.Message{ID: e.ID + "_user", Role: model.RoleUser, Content: userText, Timestamp: ts})
			if i == 0 {
				title = session.DeriveTitle(userText)
			}
		}

		reply := model.Message{ID: e.ID + "_assistant", Role: model.RoleAssistant, Timestamp: ts.Add(assistantOffset)}
		switch e.ChatType {
		case model.ChatTypeText:
			if c.Response == "" {
				continue
			}
			reply.Content = c.Response
			reply.Model = orDefault(c.Model, lastModel)
		case model.ChatTypeKnowledgeSearch:
			if len(c.Results) == 0 || string(c.Results) == "null" {
				continue
			}
			reply.Content = resultText(c.Results)
			reply.Model = knowledgeModel
		case model.ChatTypeImage:
			if c.ImageURLs == nil {
				continue
			}
			n := orCount(c.ImageCount, len(c.ImageURLs))
			reply.Content = fmt.Sprintf("Generated %d %s based on your prompt.", n, plural("image", n))
			reply.Model = orDefault(c.Model, lastModel)
			for _, u := range c.ImageURLs {
				reply.Attachments = append(reply.Attachments, model.Attachment{Kind: model.AttachmentImage, URL: u})
			}
		case model.ChatTypeVideo:
			if c.VideoURLs == nil {
				continue
			}
			n := orCount(c.VideoCount, len(c.VideoURLs))
			reply.Content = fmt.Sprintf("Generated %d %s based on your prompt.", n, plural("video", n))
			reply.Model = orDefault(c.Model, lastModel)
			reply.VideoURLs = append([]string(nil), c.VideoURLs...)
		default:
			continue
		}
		if e.ChatType != model.ChatTypeKnowledgeSearch {
			lastModel = reply.Model
		}
		msgs = append(msgs, reply)
	}

	if len(msgs) == 0 {
		return model.Session{}, false
	}
	return model.Session{
		ID:        sessionID,
		Title:     title,
		Messages:  msgs,
		CreatedAt: group[0].Timestamp.UTC(),
		UpdatedAt: group[len(group)-1].Timestamp.UTC(),
	}, true
}

// resultText prefers a plain string, then an "answer" field, then raw JSON.
func resultText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Answer != "" {
		return obj.Answer
	}
	return strings.TrimSpace(string(raw))
}

func sortByUpdated(sessions []model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt) })
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orCount(n, fallback int) int {
	if n == 0 {
		return fallback
	}
	return n
}

func plural(word string, n int) string {
	if n > 1 {
		return word + "s"
	}
	return word
}
