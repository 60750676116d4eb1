package service

import (
	"context"
	"slices"

	"flow-chat/backend/internal/config"
)

// Catalog lists the models each generation path accepts.
type Catalog struct {
	ChatModels        []string `json:"chat_models"`
	ImageModels       []string `json:"image_models"`
	VideoModels       []string `json:"video_models"`
	DefaultChatModel  string   `json:"default_chat_model"`
	DefaultImageModel string   `json:"default_image_model"`
	DefaultVideoModel string   `json:"default_video_model"`
}

// ModelService answers which models exist and which one to fall back to.
type ModelService struct {
	catalog Catalog
}

// NewModelService builds the catalog from configuration. Defaults are always
// part of their list.
func NewModelService(cfg *config.Config) *ModelService {
	c := Catalog{
		ChatModels:        config.List(cfg.ChatModels),
		ImageModels:       config.List(cfg.ImageModels),
		VideoModels:       config.List(cfg.VideoModel),
		DefaultChatModel:  cfg.DefaultChatModel,
		DefaultImageModel: cfg.DefaultImageModel,
	}
	if len(c.VideoModels) > 0 {
		c.DefaultVideoModel = c.VideoModels[0]
	}
	if c.DefaultChatModel != "" && !slices.Contains(c.ChatModels, c.DefaultChatModel) {
		c.ChatModels = append([]string{c.DefaultChatModel}, c.ChatModels...)
	}
	if c.DefaultImageModel == "" && len(c.ImageModels) > 0 {
		c.DefaultImageModel = c.ImageModels[0]
	}
	if c.DefaultImageModel != "" && !slices.Contains(c.ImageModels, c.DefaultImageModel) {
		c.ImageModels = append([]string{c.DefaultImageModel}, c.ImageModels...)
	}
	return &ModelService{catalog: c}
}

// List returns a copy of the catalog.
func (s *ModelService) List(ctx context.Context) *Catalog {
	c := s.catalog
	c.ChatModels = slices.Clone(c.ChatModels)
	c.ImageModels = slices.Clone(c.ImageModels)
	c.VideoModels = slices.Clone(c.VideoModels)
	return &c
}

func (s *ModelService) ImageModels() []string { return slices.Clone(s.catalog.ImageModels) }

// IsChatModel reports whether name is in the chat catalog.
func (s *ModelService) IsChatModel(name string) bool {
	return slices.Contains(s.catalog.ChatModels, name)
}

func (s *ModelService) IsImageModel(name string) bool {
	return slices.Contains(s.catalog.ImageModels, name)
}

func (s *ModelService) IsVideoModel(name string) bool {
	return slices.Contains(s.catalog.VideoModels, name)
}

// ResolveChatModel returns name when it is a known chat model, else fallback,
// else the catalog default.
func (s *ModelService) ResolveChatModel(name, fallback string) string {
	if s.IsChatModel(name) {
		return name
	}
	if s.IsChatModel(fallback) {
		return fallback
	}
	return s.catalog.DefaultChatModel
}
