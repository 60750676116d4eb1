package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"flow-chat/backend/internal/command"
	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/knowledge"
	"flow-chat/backend/internal/llm"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/persistence"
	"flow-chat/backend/internal/stream"
)

const (
	NoticeChat      = "Sorry, I encountered an error while processing your request. Please try again."
	NoticeImage     = "Sorry, I encountered an error while generating the image. Please try again."
	NoticeVideo     = "Sorry, I encountered an error while generating the video. Please try again."
	NoticeKnowledge = "Sorry, I encountered an error while searching the knowledge base. Please try again."
	NoticeNoImage   = "Sorry, no image was generated. Please try again."
	NoticeNoVideo   = "Sorry, no video was generated. Please try again."

	KnowledgeModel = "knowledge-base"
)

// SendRequest is one user submission.
type SendRequest struct {
	SessionID   string             `json:"session_id" example:"1718000000000"`
	Content     string             `json:"content" validate:"required,max=32000" example:"/image a lighthouse at dusk"`
	Model       string             `json:"model" example:"provider-5/gpt-4o"`
	RAGMode     bool               `json:"rag_mode"`
	Attachments []model.Attachment `json:"attachments,omitempty" validate:"max=10,dive"`
}

// MediaMirror copies a generated file to durable storage.
type MediaMirror interface {
	Mirror(ctx context.Context, userID, sessionID, sourceURL string) (string, error)
}

type settingsReader interface {
	Get(ctx context.Context) (*Settings, error)
}

// Providers are the external generators the chat service calls.
type Providers struct {
	Chat      llm.ChatStreamer
	Images    llm.ImageGenerator
	Videos    llm.VideoGenerator
	Knowledge knowledge.Searcher
	Media     MediaMirror
}

type ChatService struct {
	workspaces *Workspaces
	dispatcher *command.Dispatcher
	providers  Providers
	models     *ModelService
	settings   settingsReader
	sync       *persistence.Synchronizer
}

func NewChatService(ws *Workspaces, dispatcher *command.Dispatcher, providers Providers, models *ModelService, settings *SettingsService, synchronizer *persistence.Synchronizer) *ChatService {
	s := &ChatService{
		workspaces: ws,
		dispatcher: dispatcher,
		providers:  providers,
		models:     models,
		sync:       synchronizer,
	}
	if settings != nil {
		s.settings = settings
	}
	return s
}

// Palette reports the command suggestions for partially typed input.
func (s *ChatService) Palette(input string) command.Palette {
	return s.dispatcher.Palette(input)
}

// SelectCommand returns the input and RAG mode for a chosen palette entry.
func (s *ChatService) SelectCommand(prefix string) (command.Selection, error) {
	if !s.dispatcher.Known(prefix) {
		return command.Selection{}, fmt.Errorf("%w: unknown command '%s'", app_errors.ErrValidation, prefix)
	}
	input, ragMode := s.dispatcher.Select(prefix)
	return command.Selection{Input: input, RAGMode: ragMode}, nil
}

// Send processes one submission and closes out when done. Errors returned
// before any event was sent mean nothing was changed, except that a new
// session may have been created. The generation itself is detached from ctx:
// once ctx ends, events stop flowing but the result still lands in its session.
func (s *ChatService) Send(ctx context.Context, ident identity.Identity, req *SendRequest, out chan<- model.StreamEvent) error {
	defer close(out)

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return fmt.Errorf("%w: message content cannot be empty", app_errors.ErrValidation)
	}

	// Shutdown drains tracked sends before storage closes.
	defer s.workspaces.track()()

	w := s.workspaces.Get(ctx, ident)
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = w.Store.CreateSession()
	} else if !w.Store.Exists(sessionID) {
		return fmt.Errorf("session %s: %w", sessionID, app_errors.ErrNotFound)
	}

	route := s.dispatcher.Route(content, req.Model, req.RAGMode)

	var run *stream.Run
	if route.Path == command.PathChat {
		var err error
		if run, err = w.Runs.Begin(sessionID); err != nil {
			return err
		}
	}

	userMsg, err := w.Store.AppendMessage(sessionID, model.Message{
		Role:        model.RoleUser,
		Content:     content,
		Attachments: req.Attachments,
	})
	if err != nil {
		if run != nil {
			_ = run.Discard()
		}
		return err
	}

	f := &forwarder{ctx: ctx, out: out}
	f.send(model.StreamEvent{Type: model.StreamEventSession, SessionID: sessionID, Message: &userMsg})

	t := &turn{w: w, ident: ident, sessionID: sessionID, prompt: route.Prompt, prefs: s.preferences(ctx), f: f}
	genCtx := context.WithoutCancel(ctx)
	switch route.Path {
	case command.PathChat:
		s.streamChat(genCtx, t, run, req.Model)
	case command.PathImage:
		s.generateImage(genCtx, t, req.Model)
	case command.PathVideo:
		s.generateVideo(genCtx, t, req.Model)
	case command.PathKnowledge:
		s.queryKnowledge(genCtx, t)
	}
	return nil
}

// turn carries the state of one Send across the path handlers.
type turn struct {
	w         *Workspace
	ident     identity.Identity
	sessionID string
	prompt    string
	prefs     Settings
	f         *forwarder
}

func (s *ChatService) streamChat(ctx context.Context, t *turn, run *stream.Run, requested string) {
	modelName := s.models.ResolveChatModel(requested, t.prefs.ChatModel)

	sess, err := t.w.Store.Get(t.sessionID)
	if err != nil {
		_ = run.Discard()
		t.f.send(model.StreamEvent{Type: model.StreamEventError, SessionID: t.sessionID, Error: "session no longer exists", Done: true})
		return
	}
	messages := make([]llm.Message, 0, len(sess.Messages)+1)
	if t.prefs.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: t.prefs.SystemPrompt})
	}
	for _, m := range sess.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	ch := make(chan llm.StreamResponse)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.providers.Chat.StreamChat(ctx, &llm.ChatRequest{Model: modelName, Messages: messages}, ch)
	}()

	var streamErr string
	for resp := range ch {
		if resp.Error != "" {
			streamErr = resp.Error
			continue
		}
		if resp.Content == "" {
			continue
		}
		if err := run.Fragment(resp.Content); err != nil {
			slog.Warn("Dropping fragment for finished run", "session_id", t.sessionID, "error", err)
			continue
		}
		t.f.send(model.StreamEvent{Type: model.StreamEventDelta, SessionID: t.sessionID, Content: resp.Content})
	}
	err = <-errCh
	// An error chunk mid-stream fails the run even if StreamChat returned nil.
	if err == nil && streamErr != "" {
		err = fmt.Errorf("%w: %s", app_errors.ErrTransport, streamErr)
	}

	// Deleted mid-stream: there is nowhere to put the response.
	if !t.w.Store.Exists(t.sessionID) {
		_ = run.Discard()
		slog.Info("Session deleted while streaming, response discarded", "session_id", t.sessionID)
		t.f.send(model.StreamEvent{Type: model.StreamEventError, SessionID: t.sessionID, Error: "session no longer exists", Done: true})
		return
	}

	if err != nil {
		slog.Error("Chat completion failed", "session_id", t.sessionID, "model", modelName, "error", err)
		msg, ferr := run.Fail(NoticeChat)
		t.finish(msg, ferr)
		return
	}

	msg, err := run.Complete(modelName)
	t.finish(msg, err)
	if err == nil {
		s.record(t, persistence.Turn{Type: model.ChatTypeText, Response: msg.Content, Model: modelName})
	}
}

// generateImage uses the requested model when it is an image model, else the
// configured default.
func (s *ChatService) generateImage(ctx context.Context, t *turn, requested string) {
	modelName := requested
	if !s.models.IsImageModel(modelName) {
		modelName = t.prefs.ImageModel
	}

	urls, err := s.providers.Images.GenerateImage(ctx, &llm.ImageRequest{Model: modelName, Prompt: t.prompt})
	if err != nil {
		slog.Error("Image generation failed", "session_id", t.sessionID, "model", modelName, "error", err)
		t.reply(model.Message{Role: model.RoleAssistant, Content: NoticeImage, Model: modelName})
		return
	}
	// A successful call with nothing in it still gets a notice.
	if len(urls) == 0 {
		t.reply(model.Message{Role: model.RoleAssistant, Content: NoticeNoImage, Model: modelName})
		return
	}

	urls = s.mirror(ctx, t, urls)
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: fmt.Sprintf("I've generated an image for you based on your prompt: \"%s\"", t.prompt),
		Model:   modelName,
	}
	for _, u := range urls {
		msg.Attachments = append(msg.Attachments, model.Attachment{Kind: model.AttachmentImage, URL: u})
	}
	if t.reply(msg) {
		s.record(t, persistence.Turn{Type: model.ChatTypeImage, Model: modelName, MediaURLs: urls})
	}
}

func (s *ChatService) generateVideo(ctx context.Context, t *turn, requested string) {
	modelName := requested
	if !s.models.IsVideoModel(modelName) {
		modelName = t.prefs.VideoModel
	}

	urls, err := s.providers.Videos.GenerateVideo(ctx, &llm.VideoRequest{Model: modelName, Prompt: t.prompt})
	if err != nil {
		slog.Error("Video generation failed", "session_id", t.sessionID, "model", modelName, "error", err)
		t.reply(model.Message{Role: model.RoleAssistant, Content: NoticeVideo, Model: modelName})
		return
	}
	if len(urls) == 0 {
		t.reply(model.Message{Role: model.RoleAssistant, Content: NoticeNoVideo, Model: modelName})
		return
	}

	noun := "video"
	if len(urls) > 1 {
		noun = "videos"
	}
	msg := model.Message{
		Role:      model.RoleAssistant,
		Content:   fmt.Sprintf("I've generated %d %s for you based on your prompt: \"%s\"", len(urls), noun, t.prompt),
		Model:     modelName,
		VideoURLs: urls,
	}
	if t.reply(msg) {
		s.record(t, persistence.Turn{Type: model.ChatTypeVideo, Model: modelName, MediaURLs: urls})
	}
}

// queryKnowledge asks the knowledge webhook. The answer and its sources are
// indexed together so history search covers both.
func (s *ChatService) queryKnowledge(ctx context.Context, t *turn) {
	ans, err := s.providers.Knowledge.Query(ctx, t.prompt, t.sessionID)
	if err != nil {
		slog.Error("Knowledge base query failed", "session_id", t.sessionID, "error", err)
		t.reply(model.Message{Role: model.RoleAssistant, Content: NoticeKnowledge, Model: KnowledgeModel})
		return
	}

	if t.reply(model.Message{Role: model.RoleAssistant, Content: ans.Answer, Model: KnowledgeModel}) {
		results, err := json.Marshal(ans)
		if err != nil {
			slog.Warn("Could not encode knowledge results", "error", err)
			return
		}
		s.record(t, persistence.Turn{Type: model.ChatTypeKnowledgeSearch, Results: results})
	}
}

// mirror copies generated images to blob storage for authenticated users.
// A failed copy keeps the generator's URL.
func (s *ChatService) mirror(ctx context.Context, t *turn, urls []string) []string {
	if s.providers.Media == nil || !t.ident.Authenticated() {
		return urls
	}
	out := make([]string, len(urls))
	for i, u := range urls {
		stored, err := s.providers.Media.Mirror(ctx, t.ident.UserID, t.sessionID, u)
		if err != nil {
			slog.Warn("Could not mirror generated image, keeping original URL", "session_id", t.sessionID, "error", err)
			out[i] = u
			continue
		}
		out[i] = stored
	}
	return out
}

func (s *ChatService) record(t *turn, rec persistence.Turn) {
	if !t.ident.Authenticated() {
		return
	}
	rec.SessionID = t.sessionID
	rec.Prompt = t.prompt
	s.workspaces.Go(func(ctx context.Context) {
		s.sync.RecordTurn(ctx, t.ident, rec)
	})
}

// preferences returns the stored settings, or catalog defaults when they
// cannot be read.
func (s *ChatService) preferences(ctx context.Context) Settings {
	c := s.models.List(ctx)
	defaults := Settings{ChatModel: c.DefaultChatModel, ImageModel: c.DefaultImageModel, VideoModel: c.DefaultVideoModel}
	if s.settings == nil {
		return defaults
	}
	stored, err := s.settings.Get(ctx)
	if err != nil {
		slog.Warn("Could not read settings, using catalog defaults", "error", err)
		return defaults
	}
	return *stored
}

// reply appends a single assistant message and reports whether it landed.
func (t *turn) reply(msg model.Message) bool {
	stored, err := t.w.Store.AppendMessage(t.sessionID, msg)
	t.finish(stored, err)
	return err == nil
}

func (t *turn) finish(msg model.Message, err error) {
	if err != nil {
		slog.Warn("Could not append response", "session_id", t.sessionID, "error", err)
		t.f.send(model.StreamEvent{Type: model.StreamEventError, SessionID: t.sessionID, Error: "session no longer exists", Done: true})
		return
	}
	t.f.send(model.StreamEvent{Type: model.StreamEventMessage, SessionID: t.sessionID, Message: &msg, Done: true})
}

// forwarder sends events until the client goes away, then drops them.
type forwarder struct {
	ctx  context.Context
	out  chan<- model.StreamEvent
	gone bool
}

func (f *forwarder) send(ev model.StreamEvent) {
	if f.gone {
		return
	}
	select {
	case f.out <- ev:
	case <-f.ctx.Done():
		f.gone = true
	}
}
