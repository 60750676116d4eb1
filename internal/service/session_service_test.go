package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flow-chat/backend/internal/database"
	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/persistence"
	"flow-chat/backend/internal/repository"
	"flow-chat/backend/internal/repository/mocks"
	"flow-chat/backend/internal/service"
	"flow-chat/backend/internal/session"
)

func setupSessionService(t *testing.T) (*service.SessionService, *service.Workspaces, repository.Repository) {
	db, err := database.InitDB(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewSQLiteRepository(db)
	ws := service.NewWorkspaces(persistence.NewSynchronizer(repo, 0), nil)
	return service.NewSessionService(ws), ws, repo
}

func TestSessionService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, ws, repo := setupSessionService(t)

	created, err := svc.Create(ctx, signedIn)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSessionTitle, created.Title)

	view, err := svc.Get(ctx, signedIn, created.ID)
	require.NoError(t, err)
	assert.True(t, view.Active)
	assert.Nil(t, view.Draft)

	require.NoError(t, svc.Rename(ctx, signedIn, created.ID, "Trip plans"))
	ws.Wait()
	stored, err := repo.GetSession(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip plans", stored.Title)

	summaries := svc.List(ctx, signedIn, "trip")
	require.Len(t, summaries, 1)
	assert.Equal(t, created.ID, summaries[0].ID)
	assert.Empty(t, svc.List(ctx, signedIn, "nothing matches"))

	require.NoError(t, svc.Delete(ctx, signedIn, created.ID))
	ws.Wait()
	_, err = repo.GetSession(ctx, "u1", created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Get(ctx, signedIn, created.ID)
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
	assert.ErrorIs(t, svc.Rename(ctx, signedIn, created.ID, "x"), app_errors.ErrNotFound)
}

func TestSessionService_SetActive(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupSessionService(t)

	first, err := svc.Create(ctx, identity.Anonymous)
	require.NoError(t, err)
	_, err = svc.Create(ctx, identity.Anonymous)
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, identity.Anonymous, first.ID))
	view, err := svc.Get(ctx, identity.Anonymous, first.ID)
	require.NoError(t, err)
	assert.True(t, view.Active)

	assert.ErrorIs(t, svc.SetActive(ctx, identity.Anonymous, "missing"), app_errors.ErrNotFound)
}

func TestSessionService_Sync(t *testing.T) {
	ctx := context.Background()
	svc, _, repo := setupSessionService(t)

	now := time.UnixMilli(1_700_000_000_000).UTC()
	require.NoError(t, repo.UpsertSession(ctx, &model.StoredSession{
		UserID:    "u1",
		SessionID: "42",
		Title:     "From another device",
		Messages:  []model.Message{{ID: "m1", Role: model.RoleUser, Content: "hello", Timestamp: now}},
		CreatedAt: now,
		UpdatedAt: now,
	}))

	summaries, err := svc.Sync(ctx, signedIn)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "From another device", summaries[0].Title)

	view, err := svc.Get(ctx, signedIn, "42")
	require.NoError(t, err)
	assert.True(t, view.Renamed)
	require.Len(t, view.Messages, 1)
}

func TestWorkspaces_LoadsOncePerIdentity(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("ListSessions", mock.Anything, "u1").Return([]*model.StoredSession{}, nil).Once()
	repo.On("ListHistory", mock.Anything, "u1", mock.Anything).Return([]*model.HistoryEntry{
		{
			ID:        "e1",
			SessionID: "7",
			ChatType:  model.ChatTypeText,
			Content:   model.HistoryContent{Prompt: "hi", Response: "hello"},
			Timestamp: time.UnixMilli(1000).UTC(),
		},
	}, nil).Once()

	ws := service.NewWorkspaces(persistence.NewSynchronizer(repo, 0), nil)
	ctx := context.Background()

	w := ws.Get(ctx, signedIn)
	assert.Same(t, w, ws.Get(ctx, signedIn))
	sess, err := w.Store.Get("7")
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 2)

	anon := ws.Get(ctx, identity.Anonymous)
	assert.NotSame(t, w, anon)
	assert.Equal(t, 0, anon.Store.Len())
}

func TestWorkspaces_ReloadRefusedWhileStreaming(t *testing.T) {
	svc, ws, _ := setupSessionService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, signedIn)
	require.NoError(t, err)
	run, err := ws.Get(ctx, signedIn).Runs.Begin(created.ID)
	require.NoError(t, err)

	_, err = svc.Sync(ctx, signedIn)
	assert.ErrorIs(t, err, app_errors.ErrInvalidState)

	require.NoError(t, run.Discard())
	_, err = svc.Sync(ctx, signedIn)
	assert.NoError(t, err)
}

func TestWorkspaces_ForwardsEventsWithOwner(t *testing.T) {
	var got []session.Event
	events := session.NotifierFunc(func(e session.Event) { got = append(got, e) })

	ws := service.NewWorkspaces(persistence.NewSynchronizer(mocks.NewMockRepository(t), 0), events)
	w := ws.Get(context.Background(), identity.Anonymous)
	id := w.Store.CreateSession()
	run, err := w.Runs.Begin(id)
	require.NoError(t, err)
	require.NoError(t, run.Fragment("x"))
	require.NoError(t, run.Discard())

	require.NotEmpty(t, got)
	for _, e := range got {
		assert.Equal(t, identity.Anonymous.Key(), e.Owner)
	}
}

func TestWorkspaces_ReservedUserIDIsNotAnonymous(t *testing.T) {
	ctx := context.Background()
	_, ws, repo := setupSessionService(t)

	reserved, ok := identity.Parse("anonymous")
	require.True(t, ok)
	owner := ws.Get(ctx, reserved)
	ownerSession := owner.Store.CreateSession()

	anon := ws.Get(ctx, identity.Anonymous)
	require.NotSame(t, owner, anon)
	assert.False(t, anon.Store.Exists(ownerSession))

	id := anon.Store.CreateSession()
	_, err := anon.Store.AppendMessage(id, model.Message{Role: model.RoleUser, Content: "anon secret"})
	require.NoError(t, err)
	ws.Wait()

	rows, err := repo.ListSessions(ctx, "anonymous")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ownerSession, rows[0].SessionID)
}

func TestWorkspaces_AnonymousClientsAreSeparate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupSessionService(t)
	alice := identity.Identity{ClientID: "client-a"}
	bob := identity.Identity{ClientID: "client-b"}

	created, err := svc.Create(ctx, alice)
	require.NoError(t, err)

	assert.Len(t, svc.List(ctx, alice, ""), 1)
	assert.Empty(t, svc.List(ctx, bob, ""))
	assert.ErrorIs(t, svc.Delete(ctx, bob, created.ID), app_errors.ErrNotFound)
	_, err = svc.Get(ctx, alice, created.ID)
	assert.NoError(t, err)
}

func TestWorkspaces_EvictsIdleAnonymous(t *testing.T) {
	ctx := context.Background()
	svc, ws, _ := setupSessionService(t)
	now := time.UnixMilli(1_700_000_000_000)
	ws.SetClock(func() time.Time { return now })

	idle := identity.Identity{ClientID: "idle"}
	busy := identity.Identity{ClientID: "busy"}
	_, err := svc.Create(ctx, idle)
	require.NoError(t, err)
	_, err = svc.Create(ctx, signedIn)
	require.NoError(t, err)
	busySession, err := svc.Create(ctx, busy)
	require.NoError(t, err)
	run, err := ws.Get(ctx, busy).Runs.Begin(busySession.ID)
	require.NoError(t, err)

	now = now.Add(3 * time.Hour)
	assert.Empty(t, svc.List(ctx, idle, ""))
	assert.Len(t, svc.List(ctx, signedIn, ""), 1)
	assert.Len(t, svc.List(ctx, busy, ""), 1)
	require.NoError(t, run.Discard())
}
