package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	app_errors "flow-chat/backend/internal/errors"
)

const (
	keyChatModel    = "chat_model"
	keyImageModel   = "image_model"
	keyVideoModel   = "video_model"
	keySystemPrompt = "system_prompt"
)

// Settings are the generation defaults used when a request names no model.
type Settings struct {
	ChatModel    string `json:"chat_model" validate:"required" example:"provider-5/gpt-4o"`
	ImageModel   string `json:"image_model" validate:"required" example:"provider-2/dall-e-3"`
	VideoModel   string `json:"video_model" validate:"required" example:"provider-6/wan-2.1"`
	SystemPrompt string `json:"system_prompt" validate:"max=4000"`
}

type SettingsService struct {
	db     *sql.DB
	models *ModelService
}

func NewSettingsService(db *sql.DB, models *ModelService) *SettingsService {
	return &SettingsService{db: db, models: models}
}

// InitAndGet loads the settings and stores catalog defaults for missing keys.
func (s *SettingsService) InitAndGet(ctx context.Context) (*Settings, error) {
	settings, err := s.read(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if settings == nil {
		settings = &Settings{}
	}
	if s.fillDefaults(settings) {
		slog.Info("Initializing generation settings with catalog defaults", "chat_model", settings.ChatModel)
		if err := s.saveToDB(ctx, settings); err != nil {
			return nil, fmt.Errorf("failed to save initial settings: %w", err)
		}
	}
	return settings, nil
}

// Get returns the stored settings. Missing models are healed from the catalog.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	settings, err := s.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if s.fillDefaults(settings) {
		slog.Warn("Settings were incomplete, restoring catalog defaults")
		if err := s.saveToDB(ctx, settings); err != nil {
			return nil, fmt.Errorf("failed to save healed settings: %w", err)
		}
	}
	return settings, nil
}

// Save validates every model against the catalog before writing.
func (s *SettingsService) Save(ctx context.Context, settings *Settings) error {
	if !s.models.IsChatModel(settings.ChatModel) {
		return fmt.Errorf("%w: chat model '%s' is not available", app_errors.ErrValidation, settings.ChatModel)
	}
	if !s.models.IsImageModel(settings.ImageModel) {
		return fmt.Errorf("%w: image model '%s' is not available", app_errors.ErrValidation, settings.ImageModel)
	}
	if !s.models.IsVideoModel(settings.VideoModel) {
		return fmt.Errorf("%w: video model '%s' is not available", app_errors.ErrValidation, settings.VideoModel)
	}
	return s.saveToDB(ctx, settings)
}

func (s *SettingsService) read(ctx context.Context) (*Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := &Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		switch key {
		case keyChatModel:
			settings.ChatModel = value
		case keyImageModel:
			settings.ImageModel = value
		case keyVideoModel:
			settings.VideoModel = value
		case keySystemPrompt:
			settings.SystemPrompt = value
		}
	}
	return settings, rows.Err()
}

func (s *SettingsService) fillDefaults(settings *Settings) bool {
	c := s.models.List(context.Background())
	changed := false
	if settings.ChatModel == "" && c.DefaultChatModel != "" {
		settings.ChatModel = c.DefaultChatModel
		changed = true
	}
	if settings.ImageModel == "" && c.DefaultImageModel != "" {
		settings.ImageModel = c.DefaultImageModel
		changed = true
	}
	if settings.VideoModel == "" && c.DefaultVideoModel != "" {
		settings.VideoModel = c.DefaultVideoModel
		changed = true
	}
	return changed
}

func (s *SettingsService) saveToDB(ctx context.Context, settings *Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, kv := range [][2]string{
		{keyChatModel, settings.ChatModel},
		{keyImageModel, settings.ImageModel},
		{keyVideoModel, settings.VideoModel},
		{keySystemPrompt, settings.SystemPrompt},
	} {
		if _, err := stmt.ExecContext(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}
