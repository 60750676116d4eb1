package model

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultSessionTitle is the title of a session that has no messages yet.
	DefaultSessionTitle = "New Chat"
	// RestoredSessionTitle is used when a session rebuilt from history has no usable prompt.
	RestoredSessionTitle = "Restored Conversation"
)

const (
	AttachmentImage = "image"
	AttachmentFile  = "file"
)

// Attachment is an image or file reference carried by a message.
type Attachment struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// Message stores a single message in a session.
type Message struct {
	ID          string       `json:"id"`
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Model       string       `json:"model,omitempty"` // Model that produced an assistant message.
	Attachments []Attachment `json:"attachments,omitempty"`
	VideoURLs   []string     `json:"video_urls,omitempty"`
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	out := m
	if m.Attachments != nil {
		out.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	if m.VideoURLs != nil {
		out.VideoURLs = append([]string(nil), m.VideoURLs...)
	}
	return out
}

// Session is one conversation held in memory.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Renamed is set once the title was chosen explicitly. A renamed session
	// keeps its title when the first message arrives.
	Renamed bool `json:"renamed,omitempty"`
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	return out
}

// Summary drops the message bodies.
func (s Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Title:        s.Title,
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// SessionSummary is the sidebar view of a session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Active       bool      `json:"active"`
}

// StoredSession is one row of the whole-session storage shape.
type StoredSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatType classifies a history entry.
type ChatType string

const (
	ChatTypeText            ChatType = "text"
	ChatTypeImage           ChatType = "image"
	ChatTypeVideo           ChatType = "video"
	ChatTypeKnowledgeSearch ChatType = "knowledge_search"
)

// Valid reports whether t is one of the known chat types.
func (t ChatType) Valid() bool {
	switch t {
	case ChatTypeText, ChatTypeImage, ChatTypeVideo, ChatTypeKnowledgeSearch:
		return true
	}
	return false
}

// HistoryContent is the JSON payload of a history entry. Which fields are
// set depends on the entry's ChatType.
type HistoryContent struct {
	Type        string          `json:"type,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
	Response    string          `json:"response,omitempty"`
	Model       string          `json:"model,omitempty"`
	ImageURLs   []string        `json:"image_urls,omitempty"`
	ImageCount  int             `json:"image_count,omitempty"`
	VideoURLs   []string        `json:"video_urls,omitempty"`
	VideoCount  int             `json:"video_count,omitempty"`
	Query       string          `json:"query,omitempty"`
	Results     json.RawMessage `json:"results,omitempty"`
	ResultCount int             `json:"result_count,omitempty"`
}

// SearchText is the text history search matches against: prompt, response,
// query and every string value in the results. Field names and URLs are left
// out.
func (c HistoryContent) SearchText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{c.Prompt, c.Response, c.Query} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(c.Results) > 0 {
		var results any
		if err := json.Unmarshal(c.Results, &results); err == nil {
			parts = collectStrings(results, parts)
		}
	}
	return strings.Join(parts, "\n")
}

func collectStrings(v any, into []string) []string {
	switch v := v.(type) {
	case string:
		if v != "" {
			into = append(into, v)
		}
	case []any:
		for _, item := range v {
			into = collectStrings(item, into)
		}
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(v)) {
			into = collectStrings(v[k], into)
		}
	}
	return into
}

// HistoryEntry is one prompt/response turn in the per-turn history shape.
type HistoryEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	ChatType  ChatType       `json:"chat_type"`
	Content   HistoryContent `json:"message_content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// HistoryFilter narrows a history listing. Zero values mean "no constraint".
type HistoryFilter struct {
	ChatType  ChatType
	SessionID string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// HistoryStats aggregates a user's history.
type HistoryStats struct {
	TotalChats        int        `json:"total_chats"`
	TextChats         int        `json:"text_chats"`
	ImageChats        int        `json:"image_chats"`
	VideoChats        int        `json:"video_chats"`
	KnowledgeSearches int        `json:"knowledge_searches"`
	TotalSessions     int        `json:"total_sessions"`
	FirstChatDate     *time.Time `json:"first_chat_date,omitempty"`
	LastChatDate      *time.Time `json:"last_chat_date,omitempty"`
}

const (
	StreamEventSession = "session"
	StreamEventDelta   = "delta"
	StreamEventMessage = "message"
	StreamEventError   = "error"
)

// StreamEvent is one chunk sent to a client while a message is processed.
type StreamEvent struct {
	Type      string   `json:"type"`
	SessionID string   `json:"session_id,omitempty"`
	Content   string   `json:"content,omitempty"`
	Message   *Message `json:"message,omitempty"`
	Done      bool     `json:"done,omitempty"`
	Error     string   `json:"error,omitempty"`
}
