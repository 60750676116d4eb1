package service

import (
	"context"

	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/stream"
)

// SessionView is a session together with any response still being streamed into it.
type SessionView struct {
	model.Session
	Active bool          `json:"active"`
	Draft  *stream.Draft `json:"draft,omitempty"`
}

// SessionService exposes the session store of the caller's workspace.
type SessionService struct {
	workspaces *Workspaces
}

func NewSessionService(ws *Workspaces) *SessionService {
	return &SessionService{workspaces: ws}
}

// List returns session summaries, most recently updated first, optionally
// filtered by a case-insensitive query.
func (s *SessionService) List(ctx context.Context, ident identity.Identity, query string) []model.SessionSummary {
	return s.workspaces.Get(ctx, ident).Store.Summaries(query)
}

// Create starts an empty session and makes it active.
func (s *SessionService) Create(ctx context.Context, ident identity.Identity) (*model.Session, error) {
	w := s.workspaces.Get(ctx, ident)
	sess, err := w.Store.Get(w.Store.CreateSession())
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Get returns one session along with its draft, if a response is streaming.
func (s *SessionService) Get(ctx context.Context, ident identity.Identity, sessionID string) (*SessionView, error) {
	w := s.workspaces.Get(ctx, ident)
	sess, err := w.Store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	view := &SessionView{Session: sess, Active: w.Store.ActiveID() == sessionID}
	if d, ok := w.Runs.Draft(sessionID); ok {
		view.Draft = &d
	}
	return view, nil
}

// Rename sets an explicit title. Later messages never replace it.
func (s *SessionService) Rename(ctx context.Context, ident identity.Identity, sessionID, title string) error {
	return s.workspaces.Get(ctx, ident).Store.RenameSession(sessionID, title)
}

// Delete drops the session from the workspace and, for signed-in users, its
// stored row. History entries are kept.
func (s *SessionService) Delete(ctx context.Context, ident identity.Identity, sessionID string) error {
	return s.workspaces.Get(ctx, ident).Store.DeleteSession(sessionID)
}

// SetActive selects the displayed session; an empty id clears the selection.
func (s *SessionService) SetActive(ctx context.Context, ident identity.Identity, sessionID string) error {
	return s.workspaces.Get(ctx, ident).Store.SetActive(sessionID)
}

// Sync reloads the workspace from the durable store.
func (s *SessionService) Sync(ctx context.Context, ident identity.Identity) ([]model.SessionSummary, error) {
	w, err := s.workspaces.Reload(ctx, ident)
	if err != nil {
		return nil, err
	}
	return w.Store.Summaries(""), nil
}
