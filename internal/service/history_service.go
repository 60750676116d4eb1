package service

import (
	"context"
	"fmt"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/history"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/persistence"
)

// HistoryService serves the per-turn history: reads through the indexer,
// deletions through the synchronizer.
type HistoryService struct {
	indexer *history.Indexer
	sync    *persistence.Synchronizer
}

func NewHistoryService(indexer *history.Indexer, synchronizer *persistence.Synchronizer) *HistoryService {
	return &HistoryService{indexer: indexer, sync: synchronizer}
}

// List returns the caller's entries, newest first. Anonymous callers get an
// empty list.
func (s *HistoryService) List(ctx context.Context, ident identity.Identity, filter model.HistoryFilter) []*model.HistoryEntry {
	return s.indexer.List(ctx, ident, filter)
}

// Search runs a case-insensitive text search over prompts, responses and
// knowledge results, optionally restricted to one chat type.
func (s *HistoryService) Search(ctx context.Context, ident identity.Identity, term string, chatType model.ChatType) []*model.HistoryEntry {
	return s.indexer.Search(ctx, ident, term, chatType)
}

// Stats returns per-type counts and the first and last turn dates. It is nil
// when storage could not be read.
func (s *HistoryService) Stats(ctx context.Context, ident identity.Identity) *model.HistoryStats {
	return s.indexer.Stats(ctx, ident)
}

// RecentSessions lists the ids of the sessions with the newest turns.
func (s *HistoryService) RecentSessions(ctx context.Context, ident identity.Identity, limit int) []string {
	return s.indexer.RecentSessions(ctx, ident, limit)
}

// DeleteEntry removes one entry owned by the caller.
func (s *HistoryService) DeleteEntry(ctx context.Context, ident identity.Identity, entryID string) error {
	if err := requireUser(ident); err != nil {
		return err
	}
	// Entries of other users look the same as missing ones.
	if s.indexer.Entry(ctx, ident, entryID) == nil {
		return fmt.Errorf("history entry %s: %w", entryID, app_errors.ErrNotFound)
	}
	if !s.sync.DeleteEntry(ctx, ident, entryID) {
		return fmt.Errorf("could not delete history entry %s: %w", entryID, app_errors.ErrPersistence)
	}
	return nil
}

// DeleteSession removes every entry of one session. The session itself is
// left alone.
func (s *HistoryService) DeleteSession(ctx context.Context, ident identity.Identity, sessionID string) error {
	if err := requireUser(ident); err != nil {
		return err
	}
	if !s.sync.DeleteSessionHistory(ctx, ident, sessionID) {
		return fmt.Errorf("could not delete history of session %s: %w", sessionID, app_errors.ErrPersistence)
	}
	return nil
}

// DeleteAll clears the caller's whole history.
func (s *HistoryService) DeleteAll(ctx context.Context, ident identity.Identity) error {
	if err := requireUser(ident); err != nil {
		return err
	}
	if !s.sync.DeleteAllHistory(ctx, ident) {
		return fmt.Errorf("could not delete history: %w", app_errors.ErrPersistence)
	}
	return nil
}

// Status reports the synchronizer's last error and loading flag.
func (s *HistoryService) Status() persistence.Status {
	return s.sync.Status()
}

func requireUser(ident identity.Identity) error {
	if !ident.Authenticated() {
		return fmt.Errorf("%w: history requires a signed-in user", app_errors.ErrPermission)
	}
	return nil
}
