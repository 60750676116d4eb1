package interfaces

import (
	"context"

	"flow-chat/backend/internal/command"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/persistence"
	"flow-chat/backend/internal/service"
)

// The API layer depends on these contracts rather than the concrete services.

// ChatService processes submissions through the command dispatcher.
type ChatService interface {
	Send(ctx context.Context, ident identity.Identity, req *service.SendRequest, out chan<- model.StreamEvent) error
	Palette(input string) command.Palette
	SelectCommand(prefix string) (command.Selection, error)
}

// SessionService manages the caller's in-memory sessions.
type SessionService interface {
	List(ctx context.Context, ident identity.Identity, query string) []model.SessionSummary
	Create(ctx context.Context, ident identity.Identity) (*model.Session, error)
	Get(ctx context.Context, ident identity.Identity, sessionID string) (*service.SessionView, error)
	Rename(ctx context.Context, ident identity.Identity, sessionID, title string) error
	Delete(ctx context.Context, ident identity.Identity, sessionID string) error
	SetActive(ctx context.Context, ident identity.Identity, sessionID string) error
	Sync(ctx context.Context, ident identity.Identity) ([]model.SessionSummary, error)
}

// HistoryService reads and prunes the per-turn history.
type HistoryService interface {
	List(ctx context.Context, ident identity.Identity, filter model.HistoryFilter) []*model.HistoryEntry
	Search(ctx context.Context, ident identity.Identity, term string, chatType model.ChatType) []*model.HistoryEntry
	Stats(ctx context.Context, ident identity.Identity) *model.HistoryStats
	RecentSessions(ctx context.Context, ident identity.Identity, limit int) []string
	DeleteEntry(ctx context.Context, ident identity.Identity, entryID string) error
	DeleteSession(ctx context.Context, ident identity.Identity, sessionID string) error
	DeleteAll(ctx context.Context, ident identity.Identity) error
	Status() persistence.Status
}

// SettingsService manages the generation defaults.
type SettingsService interface {
	Get(ctx context.Context) (*service.Settings, error)
	Save(ctx context.Context, settings *service.Settings) error
}

// ModelService lists the model catalog.
type ModelService interface {
	List(ctx context.Context) *service.Catalog
}
