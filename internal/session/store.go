// Package session holds the in-memory session collection of one workspace.
//
// All mutations are keyed by an explicit session id. The active pointer is
// display state only and no operation depends on it.
package session

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/model"
)

// TitleLength is the number of characters kept when a title is derived.
const TitleLength = 50

// Store is the session collection with a most-recently-updated-first ordering.
type Store struct {
	mu       sync.RWMutex
	owner    string
	sessions map[string]*model.Session
	order    []string
	active   string
	lastID   int64

	notifier Notifier
	now      func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. Events are tagged with owner.
func NewStore(owner string, notifier Notifier, opts ...Option) *Store {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	s := &Store{
		owner:    owner,
		sessions: make(map[string]*model.Session),
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Owner returns the key events are tagged with.
func (s *Store) Owner() string { return s.owner }

// CreateSession inserts an empty session at the front and makes it active.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	now := s.now().UTC()
	id := s.nextIDLocked(now)
	s.sessions[id] = &model.Session{
		ID:        id,
		Title:     model.DefaultSessionTitle,
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.order = append([]string{id}, s.order...)
	s.active = id
	s.mu.Unlock()

	s.emit(Event{Type: EventSessionCreated, SessionID: id, Title: model.DefaultSessionTitle})
	s.emit(Event{Type: EventActiveChanged, SessionID: id})
	return id
}

// AppendMessage appends msg to the session and returns the stored copy.
// A missing id or timestamp is filled in. Timestamps never go backwards
// within a session.
func (s *Store) AppendMessage(sessionID string, msg model.Message) (model.Message, error) {
	if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
		return model.Message{}, fmt.Errorf("%w: unknown role %q", app_errors.ErrValidation, msg.Role)
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return model.Message{}, fmt.Errorf("session %s: %w", sessionID, app_errors.ErrNotFound)
	}

	now := s.now().UTC()
	msg = msg.Clone()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	for _, existing := range sess.Messages {
		if existing.ID == msg.ID {
			s.mu.Unlock()
			return model.Message{}, fmt.Errorf("message %s already in session %s: %w", msg.ID, sessionID, app_errors.ErrConflict)
		}
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	if n := len(sess.Messages); n > 0 && msg.Timestamp.Before(sess.Messages[n-1].Timestamp) {
		msg.Timestamp = sess.Messages[n-1].Timestamp
	}

	sess.Messages = append(sess.Messages, msg)
	if len(sess.Messages) == 1 && !sess.Renamed {
		if title := DeriveTitle(msg.Content); title != "" {
			sess.Title = title
		}
	}
	sess.UpdatedAt = latest(sess.UpdatedAt, now, msg.Timestamp)
	s.moveToFrontLocked(sessionID)
	title := sess.Title
	stored := msg.Clone()
	s.mu.Unlock()

	out := stored.Clone()
	s.emit(Event{Type: EventMessageAppended, SessionID: sessionID, Title: title, Message: &out})
	return stored, nil
}

// RenameSession sets an explicit title. It wins over title derivation.
func (s *Store) RenameSession(sessionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("session %s: %w", sessionID, app_errors.ErrNotFound)
	}
	sess.Title = title
	sess.Renamed = true
	sess.UpdatedAt = latest(sess.UpdatedAt, s.now().UTC())
	s.moveToFrontLocked(sessionID)
	s.mu.Unlock()

	s.emit(Event{Type: EventSessionRenamed, SessionID: sessionID, Title: title})
	return nil
}

// DeleteSession removes a session. Deleting the active session clears the pointer.
func (s *Store) DeleteSession(sessionID string) error {
	s.mu.Lock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("session %s: %w", sessionID, app_errors.ErrNotFound)
	}
	delete(s.sessions, sessionID)
	s.removeFromOrderLocked(sessionID)
	clearedActive := s.active == sessionID
	if clearedActive {
		s.active = ""
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventSessionDeleted, SessionID: sessionID})
	if clearedActive {
		s.emit(Event{Type: EventActiveChanged})
	}
	return nil
}

// SetActive selects a session for display. An empty id clears the selection.
func (s *Store) SetActive(sessionID string) error {
	s.mu.Lock()
	if sessionID != "" {
		if _, ok := s.sessions[sessionID]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("session %s: %w", sessionID, app_errors.ErrNotFound)
		}
	}
	s.active = sessionID
	s.mu.Unlock()

	s.emit(Event{Type: EventActiveChanged, SessionID: sessionID})
	return nil
}

// ActiveID returns the active session id, or "" when none is selected.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Exists reports whether the session is present.
func (s *Store) Exists(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// Get returns a deep copy of one session.
func (s *Store) Get(sessionID string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return model.Session{}, fmt.Errorf("session %s: %w", sessionID, app_errors.ErrNotFound)
	}
	return sess.Clone(), nil
}

// List returns deep copies of all sessions, most recently updated first.
func (s *Store) List() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.sessions[id].Clone())
	}
	return out
}

// Summaries lists sessions without message bodies. A non-empty query keeps
// only sessions whose title or any message contains it, ignoring case.
func (s *Store) Summaries(query string) []model.SessionSummary {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SessionSummary, 0, len(s.order))
	for _, id := range s.order {
		sess := s.sessions[id]
		if q != "" && !matches(sess, q) {
			continue
		}
		sum := sess.Summary()
		sum.Active = id == s.active
		out = append(out, sum)
	}
	return out
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Replace swaps in a freshly loaded collection. The most recently updated
// session becomes active.
func (s *Store) Replace(sessions []model.Session) {
	loaded := make([]model.Session, len(sessions))
	for i, sess := range sessions {
		loaded[i] = sess.Clone()
	}
	sort.SliceStable(loaded, func(i, j int) bool { return loaded[i].UpdatedAt.After(loaded[j].UpdatedAt) })

	s.mu.Lock()
	s.sessions = make(map[string]*model.Session, len(loaded))
	s.order = s.order[:0]
	for i := range loaded {
		sess := &loaded[i]
		if _, dup := s.sessions[sess.ID]; dup {
			continue
		}
		if sess.Messages == nil {
			sess.Messages = []model.Message{}
		}
		s.sessions[sess.ID] = sess
		s.order = append(s.order, sess.ID)
		if numeric, err := strconv.ParseInt(sess.ID, 10, 64); err == nil && numeric > s.lastID {
			s.lastID = numeric
		}
	}
	s.active = ""
	if len(s.order) > 0 {
		s.active = s.order[0]
	}
	active := s.active
	s.mu.Unlock()

	s.emit(Event{Type: EventSessionsLoaded})
	s.emit(Event{Type: EventActiveChanged, SessionID: active})
}

// Emit publishes an event through the store's notifier, tagged with its owner.
func (s *Store) Emit(e Event) { s.emit(e) }

func (s *Store) emit(e Event) {
	e.Owner = s.owner
	s.notifier.Notify(e)
}

// nextIDLocked returns a millisecond timestamp id, strictly greater than any
// id handed out before.
func (s *Store) nextIDLocked(now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for {
		if _, taken := s.sessions[strconv.FormatInt(id, 10)]; !taken {
			break
		}
		id++
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) moveToFrontLocked(id string) {
	s.removeFromOrderLocked(id)
	s.order = append([]string{id}, s.order...)
}

func (s *Store) removeFromOrderLocked(id string) {
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// DeriveTitle cuts content to TitleLength characters and marks the cut with "...".
func DeriveTitle(content string) string {
	if utf8.RuneCountInString(content) <= TitleLength {
		return content
	}
	return string([]rune(content)[:TitleLength]) + "..."
}

func matches(sess *model.Session, q string) bool {
	if strings.Contains(strings.ToLower(sess.Title), q) {
		return true
	}
	for _, m := range sess.Messages {
		if strings.Contains(strings.ToLower(m.Content), q) {
			return true
		}
	}
	return false
}

func latest(ts ...time.Time) time.Time {
	var out time.Time
	for _, t := range ts {
		if t.After(out) {
			out = t
		}
	}
	return out
}
