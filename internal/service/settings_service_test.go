package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/service"
)

func setupSettingsService(t *testing.T) (*service.SettingsService, *sql.DB, sqlmock.Sqlmock) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)

	models := service.NewModelService(testCatalogConfig())
	return service.NewSettingsService(db, models), db, mockDB
}

func expectSave(mockDB sqlmock.Sqlmock, chat, image, video, prompt string) {
	mockDB.ExpectBegin()
	prep := mockDB.ExpectPrepare("INSERT INTO settings")
	prep.ExpectExec().WithArgs("chat_model", chat).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("image_model", image).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("video_model", video).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("system_prompt", prompt).WillReturnResult(sqlmock.NewResult(1, 1))
	mockDB.ExpectCommit()
}

func TestSettingsService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Get existing settings", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("system_prompt", "be brief").
			AddRow("chat_model", "chat-b").
			AddRow("image_model", "img-b").
			AddRow("video_model", "vid-a")
		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(rows)

		settings, err := settingsService.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "be brief", settings.SystemPrompt)
		assert.Equal(t, "chat-b", settings.ChatModel)
		assert.Equal(t, "img-b", settings.ImageModel)
		assert.Equal(t, "vid-a", settings.VideoModel)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Success - Self-heal missing models", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("system_prompt", "be brief").
			AddRow("chat_model", "")
		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(rows)
		expectSave(mockDB, "chat-a", "img-a", "vid-a", "be brief")

		settings, err := settingsService.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "chat-a", settings.ChatModel)
		assert.Equal(t, "img-a", settings.ImageModel)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - Query error", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnError(errors.New("db is locked"))

		_, err := settingsService.Get(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db is locked")

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSettingsService_InitAndGet(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Empty table gets defaults", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))
		expectSave(mockDB, "chat-a", "img-a", "vid-a", "")

		settings, err := settingsService.InitAndGet(ctx)
		require.NoError(t, err)
		assert.Equal(t, "chat-a", settings.ChatModel)
		assert.Equal(t, "vid-a", settings.VideoModel)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Success - Complete settings are not rewritten", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("chat_model", "chat-b").
			AddRow("image_model", "img-a").
			AddRow("video_model", "vid-a")
		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(rows)

		settings, err := settingsService.InitAndGet(ctx)
		require.NoError(t, err)
		assert.Equal(t, "chat-b", settings.ChatModel)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - Save error", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))
		mockDB.ExpectBegin().WillReturnError(errors.New("read-only"))

		_, err := settingsService.InitAndGet(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save initial settings")

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSettingsService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		expectSave(mockDB, "chat-b", "img-b", "vid-a", "short answers")

		err := settingsService.Save(ctx, &service.Settings{
			ChatModel: "chat-b", ImageModel: "img-b", VideoModel: "vid-a", SystemPrompt: "short answers",
		})
		require.NoError(t, err)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	testCases := []struct {
		name     string
		settings service.Settings
		message  string
	}{
		{
			name:     "Failure - Unknown chat model",
			settings: service.Settings{ChatModel: "gone", ImageModel: "img-a", VideoModel: "vid-a"},
			message:  "chat model 'gone' is not available",
		},
		{
			name:     "Failure - Unknown image model",
			settings: service.Settings{ChatModel: "chat-a", ImageModel: "chat-a", VideoModel: "vid-a"},
			message:  "image model 'chat-a' is not available",
		},
		{
			name:     "Failure - Unknown video model",
			settings: service.Settings{ChatModel: "chat-a", ImageModel: "img-a", VideoModel: "vid-z"},
			message:  "video model 'vid-z' is not available",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settingsService, db, mockDB := setupSettingsService(t)
			defer func() { _ = db.Close() }()

			err := settingsService.Save(ctx, &tc.settings)
			require.Error(t, err)
			assert.ErrorIs(t, err, app_errors.ErrValidation)
			assert.Contains(t, err.Error(), tc.message)

			assert.NoError(t, mockDB.ExpectationsWereMet())
		})
	}

	t.Run("Failure - Exec error rolls back", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectBegin()
		prep := mockDB.ExpectPrepare("INSERT INTO settings")
		prep.ExpectExec().WithArgs("chat_model", "chat-a").WillReturnError(errors.New("constraint"))
		mockDB.ExpectRollback()

		err := settingsService.Save(ctx, &service.Settings{ChatModel: "chat-a", ImageModel: "img-a", VideoModel: "vid-a"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save setting chat_model")

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}
