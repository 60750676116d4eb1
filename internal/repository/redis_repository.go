package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"flow-chat/backend/internal/model"
)

type redisRepository struct {
	rdb *redis.Client
}

// NewRedisRepository stores both shapes as JSON strings indexed by per-user
// sorted sets. Filtering and aggregation happen in memory.
func NewRedisRepository(rdb *redis.Client) Repository {
	return &redisRepository{rdb: rdb}
}

// Key Generation Helpers
func (r *redisRepository) sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("chat_storage:%s:%s", userID, sessionID)
}
func (r *redisRepository) userSessionsKey(userID string) string {
	return fmt.Sprintf("user:%s:sessions", userID)
}
func (r *redisRepository) entryKey(entryID string) string { return fmt.Sprintf("chat_history:%s", entryID) }
func (r *redisRepository) userHistoryKey(userID string) string {
	return fmt.Sprintf("user:%s:history", userID)
}

// --- Whole-session shape ---

func (r *redisRepository) UpsertSession(ctx context.Context, s *model.StoredSession) error {
	existing, err := r.GetSession(ctx, s.UserID, s.SessionID)
	switch {
	case err == nil:
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
	default:
		return fmt.Errorf("could not read existing session: %w", err)
	}

	s.Messages = nonNilMessages(s.Messages)
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, r.sessionKey(s.UserID, s.SessionID), data, 0)
	pipe.ZAdd(ctx, r.userSessionsKey(s.UserID), redis.Z{Score: float64(toMillis(s.UpdatedAt)), Member: s.SessionID})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetSession(ctx context.Context, userID, sessionID string) (*model.StoredSession, error) {
	data, err := r.rdb.Get(ctx, r.sessionKey(userID, sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var s model.StoredSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not decode session %s: %w", sessionID, err)
	}
	return &s, nil
}

func (r *redisRepository) ListSessions(ctx context.Context, userID string) ([]*model.StoredSession, error) {
	ids, err := r.rdb.ZRevRange(ctx, r.userSessionsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	sessions := make([]*model.StoredSession, 0, len(ids))
	for _, id := range ids {
		s, err := r.GetSession(ctx, userID, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *redisRepository) UpdateSessionTitle(ctx context.Context, userID, sessionID, title string, updatedAt time.Time) error {
	s, err := r.GetSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	s.Title = title
	s.UpdatedAt = updatedAt
	return r.UpsertSession(ctx, s)
}

func (r *redisRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, r.sessionKey(userID, sessionID))
	pipe.ZRem(ctx, r.userSessionsKey(userID), sessionID)
	_, err := pipe.Exec(ctx)
	return err
}

// --- Per-turn history shape ---

func (r *redisRepository) AddHistoryEntry(ctx context.Context, e *model.HistoryEntry) error {
	return r.AddHistoryEntries(ctx, []*model.HistoryEntry{e})
}

func (r *redisRepository) AddHistoryEntries(ctx context.Context, entries []*model.HistoryEntry) error {
	pipe := r.rdb.TxPipeline()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("could not marshal history entry: %w", err)
		}
		pipe.Set(ctx, r.entryKey(e.ID), data, 0)
		pipe.ZAdd(ctx, r.userHistoryKey(e.UserID), redis.Z{Score: float64(toMillis(e.Timestamp)), Member: e.ID})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetHistoryEntry(ctx context.Context, userID, entryID string) (*model.HistoryEntry, error) {
	data, err := r.rdb.Get(ctx, r.entryKey(entryID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var e model.HistoryEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("could not decode history entry %s: %w", entryID, err)
	}
	if e.UserID != userID {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *redisRepository) ListHistory(ctx context.Context, userID string, f model.HistoryFilter) ([]*model.HistoryEntry, error) {
	all, err := r.allHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched := []*model.HistoryEntry{}
	for _, e := range all {
		if f.ChatType != "" && e.ChatType != f.ChatType {
			continue
		}
		if f.SessionID != "" && e.SessionID != f.SessionID {
			continue
		}
		if f.StartDate != nil && e.Timestamp.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && e.Timestamp.After(*f.EndDate) {
			continue
		}
		matched = append(matched, e)
	}
	if f.Offset >= len(matched) {
		return []*model.HistoryEntry{}, nil
	}
	end := f.Offset + historyLimit(f)
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Offset:end], nil
}

func (r *redisRepository) SearchHistory(ctx context.Context, userID, term string, chatType model.ChatType) ([]*model.HistoryEntry, error) {
	all, err := r.allHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	matched := []*model.HistoryEntry{}
	for _, e := range all {
		if chatType != "" && e.ChatType != chatType {
			continue
		}
		if strings.Contains(strings.ToLower(e.Content.SearchText()), needle) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (r *redisRepository) HistoryStats(ctx context.Context, userID string) (*model.HistoryStats, error) {
	all, err := r.allHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &model.HistoryStats{TotalChats: len(all)}
	sessions := make(map[string]struct{})
	for _, e := range all {
		switch e.ChatType {
		case model.ChatTypeText:
			stats.TextChats++
		case model.ChatTypeImage:
			stats.ImageChats++
		case model.ChatTypeVideo:
			stats.VideoChats++
		case model.ChatTypeKnowledgeSearch:
			stats.KnowledgeSearches++
		}
		if e.SessionID != "" {
			sessions[e.SessionID] = struct{}{}
		}
		ts := e.Timestamp
		if stats.FirstChatDate == nil || ts.Before(*stats.FirstChatDate) {
			stats.FirstChatDate = &ts
		}
		if stats.LastChatDate == nil || ts.After(*stats.LastChatDate) {
			stats.LastChatDate = &ts
		}
	}
	stats.TotalSessions = len(sessions)
	return stats, nil
}

func (r *redisRepository) DeleteHistoryEntry(ctx context.Context, userID, entryID string) error {
	if _, err := r.GetHistoryEntry(ctx, userID, entryID); err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, r.entryKey(entryID))
	pipe.ZRem(ctx, r.userHistoryKey(userID), entryID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisRepository) DeleteSessionHistory(ctx context.Context, userID, sessionID string) error {
	all, err := r.allHistory(ctx, userID)
	if err != nil {
		return err
	}
	var ids []string
	for _, e := range all {
		if e.SessionID == sessionID {
			ids = append(ids, e.ID)
		}
	}
	return r.deleteEntries(ctx, userID, ids)
}

func (r *redisRepository) DeleteAllHistory(ctx context.Context, userID string) error {
	ids, err := r.rdb.ZRange(ctx, r.userHistoryKey(userID), 0, -1).Result()
	if err != nil {
		return err
	}
	if err := r.deleteEntries(ctx, userID, ids); err != nil {
		return err
	}
	return r.rdb.Del(ctx, r.userHistoryKey(userID)).Err()
}

func (r *redisRepository) deleteEntries(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = r.entryKey(id)
		members[i] = id
	}
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, r.userHistoryKey(userID), members...)
	_, err := pipe.Exec(ctx)
	return err
}

// allHistory returns every entry of userID, newest first.
func (r *redisRepository) allHistory(ctx context.Context, userID string) ([]*model.HistoryEntry, error) {
	ids, err := r.rdb.ZRevRange(ctx, r.userHistoryKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.entryKey(id)
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]*model.HistoryEntry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e model.HistoryEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		entries = append(entries, &e)
	}
	return entries, nil
}
