package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/interfaces"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/service"
)

// ChatHandler handles message submission, the command palette and settings.
type ChatHandler struct {
	chat     interfaces.ChatService
	settings interfaces.SettingsService
}

func NewChatHandler(chat interfaces.ChatService, settings interfaces.SettingsService) *ChatHandler {
	return &ChatHandler{chat: chat, settings: settings}
}

// HandleSendMessage godoc
// @Summary      Send a message
// @Description  Routes the message to chat, image, video or knowledge generation and streams the result. The first event always carries the stored user message and its session id.
// @Tags         Messages
// @Accept       json
// @Produce      text/event-stream
// @Param        X-User-ID  header  string               false  "Signed-in user id"
// @Param        message    body    service.SendRequest  true   "Message"
// @Success      200        {object}  model.StreamEvent  "Stream of events"
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Failure      429        {object}  ErrorResponse
// @Router       /v1/messages [post]
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req service.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	ident := identity.FromContext(r.Context())
	events := make(chan model.StreamEvent)
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.chat.Send(r.Context(), ident, &req, events)
	}()

	// Nothing has been written yet, so a failure before the first event can
	// still be a plain HTTP error.
	first, ok := <-events
	if !ok {
		if err := <-errCh; err != nil {
			respondWithError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
		return
	}

	setStreamHeaders(w)
	w.WriteHeader(http.StatusOK)

	for ev, open := first, true; open; ev, open = <-events {
		if err := h.writeEvent(w, ev); err != nil {
			slog.Warn("Could not write to message stream, client likely disconnected", "session_id", ev.SessionID, "error", err)
			go drain(events)
			return
		}
	}
	if err := <-errCh; err != nil {
		slog.Error("Message processing failed after streaming began", "error", err)
		sendStreamError(w, "Message processing failed")
	}
}

func (h *ChatHandler) writeEvent(w http.ResponseWriter, ev model.StreamEvent) error {
	if ev.Type == model.StreamEventError {
		sendStreamError(w, ev.Error)
		return nil
	}
	return writeStreamEvent(w, ev)
}

// drain lets a detached generation finish without a reader.
func drain(events <-chan model.StreamEvent) {
	for range events {
	}
}

// HandlePalette godoc
// @Summary      Command palette
// @Description  Returns the slash-command suggestions matching partially typed input.
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Param        palette  body      PaletteRequest  true  "Typed input"
// @Success      200      {object}  command.Palette
// @Failure      400      {object}  ErrorResponse
// @Router       /v1/commands/palette [post]
func (h *ChatHandler) HandlePalette(w http.ResponseWriter, r *http.Request) {
	var req PaletteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.chat.Palette(req.Input))
}

// HandleSelectCommand godoc
// @Summary      Choose a command
// @Description  Returns the input and RAG mode that result from choosing a palette entry.
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Param        command  body      SelectCommandRequest  true  "Chosen prefix"
// @Success      200      {object}  command.Selection
// @Failure      400      {object}  ErrorResponse
// @Router       /v1/commands/select [post]
func (h *ChatHandler) HandleSelectCommand(w http.ResponseWriter, r *http.Request) {
	var req SelectCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	sel, err := h.chat.SelectCommand(req.Prefix)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sel)
}

// GetSettings godoc
// @Summary      Get settings
// @Description  Returns the generation defaults.
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  service.Settings
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/settings [get]
func (h *ChatHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary      Update settings
// @Description  Replaces the generation defaults. Every model must be in the catalog.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        settings  body      service.Settings  true  "New settings"
// @Success      200       {object}  service.Settings
// @Failure      400       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /v1/settings [post]
func (h *ChatHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings service.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&settings); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.settings.Save(r.Context(), &settings); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}
