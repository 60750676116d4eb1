package repository

import (
	"context"
	"time"

	"flow-chat/backend/internal/model"
)

// DefaultHistoryLimit applies when a history filter carries no limit.
const DefaultHistoryLimit = 50

// Repository defines the interface for data storage operations.
// It covers both durable shapes: whole sessions keyed by (user, session)
// and per-turn history entries.
type Repository interface {
	UpsertSession(ctx context.Context, session *model.StoredSession) error
	GetSession(ctx context.Context, userID, sessionID string) (*model.StoredSession, error)
	ListSessions(ctx context.Context, userID string) ([]*model.StoredSession, error)
	UpdateSessionTitle(ctx context.Context, userID, sessionID, title string, updatedAt time.Time) error
	DeleteSession(ctx context.Context, userID, sessionID string) error

	AddHistoryEntry(ctx context.Context, entry *model.HistoryEntry) error
	AddHistoryEntries(ctx context.Context, entries []*model.HistoryEntry) error
	GetHistoryEntry(ctx context.Context, userID, entryID string) (*model.HistoryEntry, error)
	ListHistory(ctx context.Context, userID string, filter model.HistoryFilter) ([]*model.HistoryEntry, error)
	SearchHistory(ctx context.Context, userID, term string, chatType model.ChatType) ([]*model.HistoryEntry, error)
	HistoryStats(ctx context.Context, userID string) (*model.HistoryStats, error)
	DeleteHistoryEntry(ctx context.Context, userID, entryID string) error
	DeleteSessionHistory(ctx context.Context, userID, sessionID string) error
	DeleteAllHistory(ctx context.Context, userID string) error
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func historyLimit(f model.HistoryFilter) int {
	if f.Limit <= 0 {
		return DefaultHistoryLimit
	}
	return f.Limit
}
