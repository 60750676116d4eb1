package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flow-chat/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

const historyColumns = "id, user_id, chat_type, message_content, timestamp, metadata, session_id, created_at, updated_at"

// insertHistory also fills search_text, the lowercased searchable text of the
// content.
const insertHistory = "INSERT INTO chat_history (" + historyColumns + ", search_text) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// UpsertSession writes the whole session keyed by (user_id, session_id).
// Writing the same session twice leaves one row with the same content.
func (r *sqliteRepository) UpsertSession(ctx context.Context, s *model.StoredSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	messages, err := json.Marshal(nonNilMessages(s.Messages))
	if err != nil {
		return fmt.Errorf("could not marshal messages: %w", err)
	}
	query := `
		INSERT INTO chat_storage (id, user_id, session_id, title, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, session_id) DO UPDATE SET
			title = excluded.title,
			messages = excluded.messages,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.SessionID, s.Title, string(messages),
		toMillis(s.CreatedAt), toMillis(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("could not upsert session: %w", err)
	}
	return nil
}

func (r *sqliteRepository) GetSession(ctx context.Context, userID, sessionID string) (*model.StoredSession, error) {
	query := "SELECT id, user_id, session_id, title, messages, created_at, updated_at FROM chat_storage WHERE user_id = ? AND session_id = ?"
	row := r.db.QueryRowContext(ctx, query, userID, sessionID)
	s, err := scanStoredSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *sqliteRepository) ListSessions(ctx context.Context, userID string) ([]*model.StoredSession, error) {
	query := "SELECT id, user_id, session_id, title, messages, created_at, updated_at FROM chat_storage WHERE user_id = ? ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.StoredSession
	for rows.Next() {
		s, err := scanStoredSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sqliteRepository) UpdateSessionTitle(ctx context.Context, userID, sessionID, title string, updatedAt time.Time) error {
	query := "UPDATE chat_storage SET title = ?, updated_at = ? WHERE user_id = ? AND session_id = ?"
	res, err := r.db.ExecContext(ctx, query, title, toMillis(updatedAt), userID, sessionID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *sqliteRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	query := "DELETE FROM chat_storage WHERE user_id = ? AND session_id = ?"
	_, err := r.db.ExecContext(ctx, query, userID, sessionID)
	return err
}

func (r *sqliteRepository) AddHistoryEntry(ctx context.Context, e *model.HistoryEntry) error {
	args, err := historyArgs(e)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, insertHistory, args...); err != nil {
		return fmt.Errorf("could not insert history entry: %w", err)
	}
	return nil
}

// AddHistoryEntries inserts all entries in one transaction.
func (r *sqliteRepository) AddHistoryEntries(ctx context.Context, entries []*model.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertHistory)
	if err != nil {
		return fmt.Errorf("could not prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		args, err := historyArgs(e)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("could not insert history entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (r *sqliteRepository) GetHistoryEntry(ctx context.Context, userID, entryID string) (*model.HistoryEntry, error) {
	query := "SELECT " + historyColumns + " FROM chat_history WHERE user_id = ? AND id = ?"
	e, err := scanHistoryEntry(r.db.QueryRowContext(ctx, query, userID, entryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *sqliteRepository) ListHistory(ctx context.Context, userID string, f model.HistoryFilter) ([]*model.HistoryEntry, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + historyColumns + " FROM chat_history WHERE user_id = ?")
	args := []any{userID}
	if f.ChatType != "" {
		sb.WriteString(" AND chat_type = ?")
		args = append(args, string(f.ChatType))
	}
	if f.SessionID != "" {
		sb.WriteString(" AND session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.StartDate != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, toMillis(*f.StartDate))
	}
	if f.EndDate != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, toMillis(*f.EndDate))
	}
	sb.WriteString(" ORDER BY timestamp DESC LIMIT ? OFFSET ?")
	args = append(args, historyLimit(f), f.Offset)

	return r.queryHistory(ctx, sb.String(), args...)
}

// SearchHistory matches term case-insensitively against the text of the
// content. Both sides are lowercased in Go, so non-ASCII terms match too.
func (r *sqliteRepository) SearchHistory(ctx context.Context, userID, term string, chatType model.ChatType) ([]*model.HistoryEntry, error) {
	query := "SELECT " + historyColumns + " FROM chat_history WHERE user_id = ? AND search_text LIKE ? ESCAPE '\\'"
	args := []any{userID, "%" + escapeLike(strings.ToLower(term)) + "%"}
	if chatType != "" {
		query += " AND chat_type = ?"
		args = append(args, string(chatType))
	}
	query += " ORDER BY timestamp DESC"
	return r.queryHistory(ctx, query, args...)
}

func (r *sqliteRepository) HistoryStats(ctx context.Context, userID string) (*model.HistoryStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN chat_type = 'text' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN chat_type = 'image' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN chat_type = 'video' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN chat_type = 'knowledge_search' THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT session_id),
			MIN(timestamp),
			MAX(timestamp)
		FROM chat_history
		WHERE user_id = ?
	`
	var stats model.HistoryStats
	var first, last sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalChats, &stats.TextChats, &stats.ImageChats, &stats.VideoChats,
		&stats.KnowledgeSearches, &stats.TotalSessions, &first, &last,
	)
	if err != nil {
		return nil, err
	}
	if first.Valid {
		t := fromMillis(first.Int64)
		stats.FirstChatDate = &t
	}
	if last.Valid {
		t := fromMillis(last.Int64)
		stats.LastChatDate = &t
	}
	return &stats, nil
}

func (r *sqliteRepository) DeleteHistoryEntry(ctx context.Context, userID, entryID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM chat_history WHERE user_id = ? AND id = ?", userID, entryID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *sqliteRepository) DeleteSessionHistory(ctx context.Context, userID, sessionID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chat_history WHERE user_id = ? AND session_id = ?", userID, sessionID)
	return err
}

func (r *sqliteRepository) DeleteAllHistory(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chat_history WHERE user_id = ?", userID)
	return err
}

func (r *sqliteRepository) queryHistory(ctx context.Context, query string, args ...any) ([]*model.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*model.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStoredSession(row scanner) (*model.StoredSession, error) {
	var s model.StoredSession
	var messages string
	var createdAt, updatedAt int64
	if err := row.Scan(&s.ID, &s.UserID, &s.SessionID, &s.Title, &messages, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(messages), &s.Messages); err != nil {
		return nil, fmt.Errorf("could not decode messages of session %s: %w", s.SessionID, err)
	}
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}

func scanHistoryEntry(row scanner) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	var chatType, content string
	var metadata, sessionID sql.NullString
	var ts, createdAt, updatedAt int64
	if err := row.Scan(&e.ID, &e.UserID, &chatType, &content, &ts, &metadata, &sessionID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.ChatType = model.ChatType(chatType)
	if err := json.Unmarshal([]byte(content), &e.Content); err != nil {
		return nil, fmt.Errorf("could not decode content of entry %s: %w", e.ID, err)
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
			return nil, fmt.Errorf("could not decode metadata of entry %s: %w", e.ID, err)
		}
	}
	if sessionID.Valid {
		e.SessionID = sessionID.String
	}
	e.Timestamp = fromMillis(ts)
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return &e, nil
}

func historyArgs(e *model.HistoryEntry) ([]any, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	content, err := json.Marshal(e.Content)
	if err != nil {
		return nil, fmt.Errorf("could not marshal history content: %w", err)
	}
	var metadata sql.NullString
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, fmt.Errorf("could not marshal history metadata: %w", err)
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}
	var sessionID sql.NullString
	if e.SessionID != "" {
		sessionID = sql.NullString{String: e.SessionID, Valid: true}
	}
	return []any{
		e.ID, e.UserID, string(e.ChatType), string(content), toMillis(e.Timestamp),
		metadata, sessionID, toMillis(e.CreatedAt), toMillis(e.UpdatedAt),
		strings.ToLower(e.Content.SearchText()),
	}, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNilMessages(m []model.Message) []model.Message {
	if m == nil {
		return []model.Message{}
	}
	return m
}
