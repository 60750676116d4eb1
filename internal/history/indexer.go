// Package history answers read-only questions about recorded turns.
// Failures and anonymous callers yield empty results, never errors.
package history

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/repository"
)

// DefaultRecentSessions is how many session ids RecentSessions returns by default.
const DefaultRecentSessions = 10

// recentOverfetch makes room for sessions with many entries.
const recentOverfetch = 5

type Indexer struct {
	repo repository.Repository
}

func NewIndexer(repo repository.Repository) *Indexer {
	return &Indexer{repo: repo}
}

// List returns entries matching filter, newest first.
func (x *Indexer) List(ctx context.Context, ident identity.Identity, filter model.HistoryFilter) []*model.HistoryEntry {
	if !ident.Authenticated() {
		return []*model.HistoryEntry{}
	}
	entries, err := x.repo.ListHistory(ctx, ident.UserID, filter)
	if err != nil {
		slog.Error("Failed to list history", "user_id", ident.UserID, "error", err)
		return []*model.HistoryEntry{}
	}
	return nonNil(entries)
}

// SessionHistory returns every entry of one session, newest first.
func (x *Indexer) SessionHistory(ctx context.Context, ident identity.Identity, sessionID string) []*model.HistoryEntry {
	return x.List(ctx, ident, model.HistoryFilter{SessionID: sessionID})
}

// Search matches term case-insensitively against entry content. An empty
// chatType searches all types.
func (x *Indexer) Search(ctx context.Context, ident identity.Identity, term string, chatType model.ChatType) []*model.HistoryEntry {
	term = strings.TrimSpace(term)
	if !ident.Authenticated() || term == "" {
		return []*model.HistoryEntry{}
	}
	entries, err := x.repo.SearchHistory(ctx, ident.UserID, term, chatType)
	if err != nil {
		slog.Error("Failed to search history", "user_id", ident.UserID, "error", err)
		return []*model.HistoryEntry{}
	}
	return nonNil(entries)
}

// Entry returns one entry, or nil when it is missing or unreadable.
func (x *Indexer) Entry(ctx context.Context, ident identity.Identity, entryID string) *model.HistoryEntry {
	if !ident.Authenticated() {
		return nil
	}
	e, err := x.repo.GetHistoryEntry(ctx, ident.UserID, entryID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("Failed to get history entry", "entry_id", entryID, "error", err)
		}
		return nil
	}
	return e
}

// Stats returns aggregate counts, or nil on failure.
func (x *Indexer) Stats(ctx context.Context, ident identity.Identity) *model.HistoryStats {
	if !ident.Authenticated() {
		return nil
	}
	stats, err := x.repo.HistoryStats(ctx, ident.UserID)
	if err != nil {
		slog.Error("Failed to compute history stats", "user_id", ident.UserID, "error", err)
		return nil
	}
	return stats
}

// RecentSessions returns up to limit distinct session ids, most recently
// active first.
func (x *Indexer) RecentSessions(ctx context.Context, ident identity.Identity, limit int) []string {
	if limit <= 0 {
		limit = DefaultRecentSessions
	}
	entries := x.List(ctx, ident, model.HistoryFilter{Limit: limit * recentOverfetch})

	seen := make(map[string]struct{}, limit)
	out := make([]string, 0, limit)
	for _, e := range entries {
		if e.SessionID == "" {
			continue
		}
		if _, dup := seen[e.SessionID]; dup {
			continue
		}
		seen[e.SessionID] = struct{}{}
		out = append(out, e.SessionID)
		if len(out) == limit {
			break
		}
	}
	return out
}

func nonNil(entries []*model.HistoryEntry) []*model.HistoryEntry {
	if entries == nil {
		return []*model.HistoryEntry{}
	}
	return entries
}
