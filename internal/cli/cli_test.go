package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"flow-chat/backend/internal/database"
	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/repository"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.db")
	db, err := database.InitDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	repo := repository.NewSQLiteRepository(db)
	base := time.UnixMilli(1718000000000).UTC()

	require.NoError(t, repo.UpsertSession(ctx, &model.StoredSession{
		UserID:    "alice",
		SessionID: "s1",
		Title:     "Trip plans",
		Messages: []model.Message{
			{ID: "m1", Role: model.RoleUser, Content: "Where should we go?", Timestamp: base},
			{ID: "m2", Role: model.RoleAssistant, Content: "Lisbon is lovely in May.", Timestamp: base.Add(time.Second), Model: "chat-a"},
		},
		CreatedAt: base,
		UpdatedAt: base.Add(time.Second),
	}))
	require.NoError(t, repo.AddHistoryEntries(ctx, []*model.HistoryEntry{
		{
			ID: "h1", UserID: "alice", ChatType: model.ChatTypeText, SessionID: "s1",
			Content:   model.HistoryContent{Prompt: "lighthouse at dusk", Response: "A poem"},
			Timestamp: base, CreatedAt: base, UpdatedAt: base,
		},
		{
			ID: "h2", UserID: "alice", ChatType: model.ChatTypeImage, SessionID: "s1",
			Content:   model.HistoryContent{Prompt: "a sleepy cat", ImageURLs: []string{"http://img/1.png"}, ImageCount: 1},
			Timestamp: base.Add(time.Minute), CreatedAt: base, UpdatedAt: base,
		},
	}))
	return path
}

func runCommand(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--db", dbPath))
	err := cmd.Execute()
	return out.String(), err
}

func TestSessionsList(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runCommand(t, dbPath, "sessions", "list", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 session(s)")
	assert.Contains(t, out, "Trip plans")
	assert.Contains(t, out, "s1")

	out, err = runCommand(t, dbPath, "sessions", "list", "--user", "alice", "-q", "budget")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found")

	out, err = runCommand(t, dbPath, "sessions", "list", "--user", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found")
}

func TestSessionsList_UserFromEnvironment(t *testing.T) {
	dbPath := seedDatabase(t)
	t.Setenv("FLOW_USER", "alice")

	out, err := runCommand(t, dbPath, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Trip plans")
}

func TestSessionsList_RequiresUser(t *testing.T) {
	dbPath := seedDatabase(t)

	_, err := runCommand(t, dbPath, "sessions", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, app_errors.ErrValidation)

	_, err = runCommand(t, dbPath, "sessions", "list", "--user", "not valid")
	assert.ErrorIs(t, err, app_errors.ErrValidation)
}

func TestSessionsShow(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runCommand(t, dbPath, "sessions", "show", "s1", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Trip plans")
	assert.Contains(t, out, "Where should we go?")
	assert.Contains(t, out, "assistant (chat-a)")

	_, err = runCommand(t, dbPath, "sessions", "show", "missing", "--user", "alice")
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
}

func TestSessionsExport(t *testing.T) {
	dbPath := seedDatabase(t)

	t.Run("JSON", func(t *testing.T) {
		out, err := runCommand(t, dbPath, "sessions", "export", "s1", "--user", "alice")
		require.NoError(t, err)
		var got model.Session
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "Trip plans", got.Title)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "chat-a", got.Messages[1].Model)
	})

	t.Run("YAML to file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "s1.yaml")
		_, err := runCommand(t, dbPath, "sessions", "export", "s1", "--user", "alice", "--format", "yaml", "-o", target)
		require.NoError(t, err)

		raw, err := os.ReadFile(target)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, yaml.Unmarshal(raw, &got))
		assert.Equal(t, "Trip plans", got["title"])
		assert.Len(t, got["messages"], 2)
	})

	t.Run("Unknown format", func(t *testing.T) {
		_, err := runCommand(t, dbPath, "sessions", "export", "s1", "--user", "alice", "--format", "xml")
		assert.ErrorIs(t, err, app_errors.ErrValidation)
	})

	t.Run("Missing session", func(t *testing.T) {
		_, err := runCommand(t, dbPath, "sessions", "export", "nope", "--user", "alice")
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	})
}

func TestHistoryCommands(t *testing.T) {
	dbPath := seedDatabase(t)

	out, err := runCommand(t, dbPath, "history", "list", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 entries")

	out, err = runCommand(t, dbPath, "history", "list", "--user", "alice", "--type", "image")
	require.NoError(t, err)
	assert.Contains(t, out, "a sleepy cat")
	assert.NotContains(t, out, "lighthouse")

	_, err = runCommand(t, dbPath, "history", "list", "--user", "alice", "--type", "audio")
	assert.ErrorIs(t, err, app_errors.ErrValidation)

	_, err = runCommand(t, dbPath, "history", "list", "--user", "alice", "--since", "yesterday")
	assert.ErrorIs(t, err, app_errors.ErrValidation)

	out, err = runCommand(t, dbPath, "history", "search", "LIGHTHOUSE", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "h1")
	assert.NotContains(t, out, "h2")

	out, err = runCommand(t, dbPath, "history", "stats", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "History statistics")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "Knowledge")

	out, err = runCommand(t, dbPath, "history", "recent", "--user", "alice")
	require.NoError(t, err)
	assert.Equal(t, "s1\n", out)
}

func TestUnknownStore(t *testing.T) {
	dbPath := seedDatabase(t)
	_, err := runCommand(t, dbPath, "sessions", "list", "--user", "alice", "--store", "mongo")
	assert.ErrorIs(t, err, app_errors.ErrValidation)
}
