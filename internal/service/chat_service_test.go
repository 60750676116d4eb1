package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flow-chat/backend/internal/command"
	"flow-chat/backend/internal/config"
	"flow-chat/backend/internal/database"
	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/knowledge"
	kbmocks "flow-chat/backend/internal/knowledge/mocks"
	"flow-chat/backend/internal/llm"
	llmmocks "flow-chat/backend/internal/llm/mocks"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/persistence"
	"flow-chat/backend/internal/repository"
	"flow-chat/backend/internal/service"
)

var signedIn = identity.Identity{UserID: "u1"}

func testCatalogConfig() *config.Config {
	return &config.Config{
		DefaultChatModel:  "chat-a",
		ChatModels:        "chat-a,chat-b",
		ImageModels:       "img-a,img-b",
		DefaultImageModel: "img-a",
		VideoModel:        "vid-a",
	}
}

type chatFixture struct {
	svc    *service.ChatService
	ws     *service.Workspaces
	repo   repository.Repository
	chat   *llmmocks.MockChatStreamer
	images *llmmocks.MockImageGenerator
	videos *llmmocks.MockVideoGenerator
	kb     *kbmocks.MockSearcher
}

func setupChatService(t *testing.T) *chatFixture {
	db, err := database.InitDB(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &chatFixture{
		repo:   repository.NewSQLiteRepository(db),
		chat:   llmmocks.NewMockChatStreamer(t),
		images: llmmocks.NewMockImageGenerator(t),
		videos: llmmocks.NewMockVideoGenerator(t),
		kb:     kbmocks.NewMockSearcher(t),
	}
	synchronizer := persistence.NewSynchronizer(f.repo, 0)
	f.ws = service.NewWorkspaces(synchronizer, nil)
	models := service.NewModelService(testCatalogConfig())
	providers := service.Providers{Chat: f.chat, Images: f.images, Videos: f.videos, Knowledge: f.kb}
	f.svc = service.NewChatService(f.ws, command.NewDispatcher(models.ImageModels()), providers, models, nil, synchronizer)
	return f
}

func (f *chatFixture) send(t *testing.T, ident identity.Identity, req *service.SendRequest) ([]model.StreamEvent, error) {
	t.Helper()
	out := make(chan model.StreamEvent, 64)
	err := f.svc.Send(context.Background(), ident, req, out)
	var events []model.StreamEvent
	for ev := range out {
		events = append(events, ev)
	}
	return events, err
}

func (f *chatFixture) session(t *testing.T, ident identity.Identity, id string) model.Session {
	t.Helper()
	sess, err := f.ws.Get(context.Background(), ident).Store.Get(id)
	require.NoError(t, err)
	return sess
}

// streamChunks makes the streamer mock emit chunks and close the channel.
func streamChunks(chunks ...string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		ch := args.Get(2).(chan<- llm.StreamResponse)
		for _, c := range chunks {
			ch <- llm.StreamResponse{Content: c}
		}
		ch <- llm.StreamResponse{Done: true}
		close(ch)
	}
}

func TestChatService_Send_Chat(t *testing.T) {
	f := setupChatService(t)
	f.chat.On("StreamChat", mock.Anything, mock.MatchedBy(func(r *llm.ChatRequest) bool {
		return r.Model == "chat-a" && len(r.Messages) == 1 && r.Messages[0].Content == "hi"
	}), mock.Anything).Run(streamChunks("Hel", "lo")).Return(nil).Once()

	events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "  hi  "})
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, model.StreamEventSession, events[0].Type)
	require.NotNil(t, events[0].Message)
	assert.Equal(t, "hi", events[0].Message.Content)
	sessionID := events[0].SessionID
	assert.NotEmpty(t, sessionID)

	assert.Equal(t, model.StreamEventDelta, events[1].Type)
	assert.Equal(t, "Hel", events[1].Content)
	assert.Equal(t, "lo", events[2].Content)

	last := events[3]
	assert.Equal(t, model.StreamEventMessage, last.Type)
	assert.True(t, last.Done)
	assert.Equal(t, "Hello", last.Message.Content)
	assert.Equal(t, "chat-a", last.Message.Model)

	sess := f.session(t, identity.Anonymous, sessionID)
	assert.Equal(t, "hi", sess.Title)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, model.RoleAssistant, sess.Messages[1].Role)
}

func TestChatService_Send_ChatUsesRequestedModel(t *testing.T) {
	f := setupChatService(t)
	f.chat.On("StreamChat", mock.Anything, mock.MatchedBy(func(r *llm.ChatRequest) bool {
		return r.Model == "chat-b"
	}), mock.Anything).Run(streamChunks("ok")).Return(nil).Once()

	events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "hi", Model: "chat-b"})
	require.NoError(t, err)
	assert.Equal(t, "chat-b", events[len(events)-1].Message.Model)
}

func TestChatService_Send_ChatFailure(t *testing.T) {
	f := setupChatService(t)
	f.chat.On("StreamChat", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ch := args.Get(2).(chan<- llm.StreamResponse)
		ch <- llm.StreamResponse{Content: "partial"}
		close(ch)
	}).Return(errors.New("connection reset")).Once()

	events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "hi"})
	require.NoError(t, err)

	last := events[len(events)-1]
	assert.Equal(t, model.StreamEventMessage, last.Type)
	assert.Equal(t, service.NoticeChat, last.Message.Content)

	sess := f.session(t, identity.Anonymous, events[0].SessionID)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, service.NoticeChat, sess.Messages[1].Content)
}

func TestChatService_Send_Rejections(t *testing.T) {
	t.Run("Empty content", func(t *testing.T) {
		f := setupChatService(t)
		events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "   "})
		assert.ErrorIs(t, err, app_errors.ErrValidation)
		assert.Empty(t, events)
		assert.Equal(t, 0, f.ws.Get(context.Background(), identity.Anonymous).Store.Len())
	})

	t.Run("Unknown session", func(t *testing.T) {
		f := setupChatService(t)
		events, err := f.send(t, identity.Anonymous, &service.SendRequest{SessionID: "nope", Content: "hi"})
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
		assert.Empty(t, events)
	})

	t.Run("Second send while streaming", func(t *testing.T) {
		f := setupChatService(t)
		started := make(chan struct{})
		release := make(chan struct{})
		f.chat.On("StreamChat", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			ch := args.Get(2).(chan<- llm.StreamResponse)
			close(started)
			<-release
			close(ch)
		}).Return(nil).Once()

		sessionID := f.ws.Get(context.Background(), identity.Anonymous).Store.CreateSession()
		done := make(chan error, 1)
		go func() {
			out := make(chan model.StreamEvent, 16)
			done <- f.svc.Send(context.Background(), identity.Anonymous, &service.SendRequest{SessionID: sessionID, Content: "first"}, out)
		}()
		<-started

		_, err := f.send(t, identity.Anonymous, &service.SendRequest{SessionID: sessionID, Content: "second"})
		assert.ErrorIs(t, err, app_errors.ErrInvalidState)

		close(release)
		require.NoError(t, <-done)
		assert.Len(t, f.session(t, identity.Anonymous, sessionID).Messages, 2)
	})
}

func TestChatService_Send_ClientGone(t *testing.T) {
	f := setupChatService(t)
	f.chat.On("StreamChat", mock.Anything, mock.Anything, mock.Anything).Run(streamChunks("still", " here")).Return(nil).Once()

	sessionID := f.ws.Get(context.Background(), identity.Anonymous).Store.CreateSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nobody reads out; the response must land in the session anyway.
	out := make(chan model.StreamEvent)
	err := f.svc.Send(ctx, identity.Anonymous, &service.SendRequest{SessionID: sessionID, Content: "hi"}, out)
	require.NoError(t, err)

	sess := f.session(t, identity.Anonymous, sessionID)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "still here", sess.Messages[1].Content)
}

func TestChatService_Send_Image(t *testing.T) {
	t.Run("Command prefix", func(t *testing.T) {
		f := setupChatService(t)
		f.images.On("GenerateImage", mock.Anything, &llm.ImageRequest{Model: "img-a", Prompt: "a lighthouse"}).
			Return([]string{"https://cdn.example/1.png"}, nil).Once()

		events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "/image a lighthouse"})
		require.NoError(t, err)
		require.Len(t, events, 2)

		msg := events[1].Message
		assert.Equal(t, `I've generated an image for you based on your prompt: "a lighthouse"`, msg.Content)
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, model.AttachmentImage, msg.Attachments[0].Kind)
		assert.Equal(t, "https://cdn.example/1.png", msg.Attachments[0].URL)
		assert.Equal(t, "img-a", msg.Model)
	})

	t.Run("Selected image model", func(t *testing.T) {
		f := setupChatService(t)
		f.images.On("GenerateImage", mock.Anything, &llm.ImageRequest{Model: "img-b", Prompt: "a fox"}).
			Return([]string{"u"}, nil).Once()

		_, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "a fox", Model: "img-b"})
		require.NoError(t, err)
	})

	t.Run("No image returned", func(t *testing.T) {
		f := setupChatService(t)
		f.images.On("GenerateImage", mock.Anything, mock.Anything).Return([]string{}, nil).Once()

		events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "/image x"})
		require.NoError(t, err)
		assert.Equal(t, service.NoticeNoImage, events[len(events)-1].Message.Content)
	})

	t.Run("Generator error", func(t *testing.T) {
		f := setupChatService(t)
		f.images.On("GenerateImage", mock.Anything, mock.Anything).Return(nil, app_errors.ErrTransport).Once()

		events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "/image x"})
		require.NoError(t, err)
		assert.Equal(t, service.NoticeImage, events[len(events)-1].Message.Content)
	})
}

func TestChatService_Send_Video(t *testing.T) {
	f := setupChatService(t)
	f.videos.On("GenerateVideo", mock.Anything, &llm.VideoRequest{Model: "vid-a", Prompt: "waves"}).
		Return([]string{"v1.mp4", "v2.mp4"}, nil).Once()

	events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "/video waves"})
	require.NoError(t, err)

	msg := events[len(events)-1].Message
	assert.Equal(t, `I've generated 2 videos for you based on your prompt: "waves"`, msg.Content)
	assert.Equal(t, []string{"v1.mp4", "v2.mp4"}, msg.VideoURLs)
}

func TestChatService_Send_Knowledge(t *testing.T) {
	t.Run("RAG command", func(t *testing.T) {
		f := setupChatService(t)
		f.kb.On("Query", mock.Anything, "what is go", mock.Anything).
			Return(&knowledge.Answer{Answer: "A language."}, nil).Once()

		events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "/rag what is go"})
		require.NoError(t, err)

		msg := events[len(events)-1].Message
		assert.Equal(t, "A language.", msg.Content)
		assert.Equal(t, service.KnowledgeModel, msg.Model)
	})

	t.Run("RAG mode wins over image prefix", func(t *testing.T) {
		f := setupChatService(t)
		f.kb.On("Query", mock.Anything, "/image cat", mock.Anything).
			Return(&knowledge.Answer{Answer: "none"}, nil).Once()

		_, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "/image cat", RAGMode: true})
		require.NoError(t, err)
	})

	t.Run("Query error", func(t *testing.T) {
		f := setupChatService(t)
		f.kb.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, app_errors.ErrTransport).Once()

		events, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "/rag x"})
		require.NoError(t, err)
		assert.Equal(t, service.NoticeKnowledge, events[len(events)-1].Message.Content)
	})
}

func TestChatService_Send_PersistsForSignedInUser(t *testing.T) {
	f := setupChatService(t)
	f.chat.On("StreamChat", mock.Anything, mock.Anything, mock.Anything).Run(streamChunks("hello")).Return(nil).Once()
	ctx := context.Background()

	events, err := f.send(t, signedIn, &service.SendRequest{Content: "hi"})
	require.NoError(t, err)
	sessionID := events[0].SessionID
	f.ws.Wait()

	stored, err := f.repo.GetSession(ctx, "u1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, "hi", stored.Title)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "hello", stored.Messages[1].Content)

	entries, err := f.repo.ListHistory(ctx, "u1", model.HistoryFilter{SessionID: sessionID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ChatTypeText, entries[0].ChatType)
	assert.Equal(t, "hi", entries[0].Content.Prompt)
	assert.Equal(t, "hello", entries[0].Content.Response)
}

func TestChatService_Send_AnonymousIsNotPersisted(t *testing.T) {
	f := setupChatService(t)
	f.chat.On("StreamChat", mock.Anything, mock.Anything, mock.Anything).Run(streamChunks("hello")).Return(nil).Once()

	_, err := f.send(t, identity.Anonymous, &service.SendRequest{Content: "hi"})
	require.NoError(t, err)
	f.ws.Wait()

	entries, err := f.repo.ListHistory(context.Background(), identity.Anonymous.UserID, model.HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChatService_Palette(t *testing.T) {
	f := setupChatService(t)

	p := f.svc.Palette("/im")
	assert.True(t, p.Open)
	require.Len(t, p.Suggestions, 2)
	assert.Equal(t, command.PrefixImage, p.Suggestions[0].Prefix)
	assert.Equal(t, command.PrefixImprove, p.Suggestions[1].Prefix)

	assert.False(t, f.svc.Palette("/image cat").Open)
}

func TestChatService_SelectCommand(t *testing.T) {
	f := setupChatService(t)

	sel, err := f.svc.SelectCommand(command.PrefixRAG)
	require.NoError(t, err)
	assert.Equal(t, command.Selection{Input: "/rag ", RAGMode: true}, sel)

	sel, err = f.svc.SelectCommand(command.PrefixVideo)
	require.NoError(t, err)
	assert.Equal(t, command.Selection{Input: "/video "}, sel)

	_, err = f.svc.SelectCommand("/unknown")
	assert.ErrorIs(t, err, app_errors.ErrValidation)
}

func TestWorkspaces_DrainWaitsForGenerations(t *testing.T) {
	f := setupChatService(t)
	started := make(chan struct{})
	release := make(chan struct{})
	f.chat.On("StreamChat", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
		streamChunks("late reply")(args)
	}).Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		out := make(chan model.StreamEvent, 16)
		done <- f.svc.Send(context.Background(), signedIn, &service.SendRequest{Content: "hi"}, out)
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.ws.Drain(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, f.ws.Drain(context.Background()))
	require.NoError(t, <-done)

	rows, err := f.repo.ListSessions(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Messages, 2)
	assert.Equal(t, "late reply", rows[0].Messages[1].Content)
}
