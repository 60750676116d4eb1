package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"flow-chat/backend/internal/api"
	"flow-chat/backend/internal/command"
	"flow-chat/backend/internal/config"
	"flow-chat/backend/internal/database"
	"flow-chat/backend/internal/history"
	"flow-chat/backend/internal/knowledge"
	"flow-chat/backend/internal/llm"
	"flow-chat/backend/internal/media"
	"flow-chat/backend/internal/persistence"
	"flow-chat/backend/internal/repository"
	"flow-chat/backend/internal/service"
	"flow-chat/backend/internal/session"
)

const shutdownTimeout = 20 * time.Second

// App holds the wired server and the resources it must release.
type App struct {
	DB         *sql.DB
	Redis      *redis.Client
	Server     *http.Server
	Workspaces *service.Workspaces
}

// NewApp opens storage and wires every service behind the HTTP router.
func NewApp(cfg *config.Config) (*App, error) {
	setupLogger(cfg.LogLevel)
	ctx := context.Background()

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)

	a := &App{DB: db}
	repo, err := a.openRepository(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	models := service.NewModelService(cfg)
	settingsService := service.NewSettingsService(db, models)
	prefs, err := settingsService.InitAndGet(ctx)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize generation settings: %w", err)
	}
	slog.Info("Loaded generation settings", "chat_model", prefs.ChatModel, "image_model", prefs.ImageModel, "video_model", prefs.VideoModel)

	if cfg.MediaDir != "" {
		if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
			slog.Warn("Could not create media directory, generated images will keep their original URLs", "dir", cfg.MediaDir, "error", err)
		}
	}

	events := session.NewBroadcaster()
	synchronizer := persistence.NewSynchronizer(repo, cfg.HistoryRestoreLimit)
	a.Workspaces = service.NewWorkspaces(synchronizer, events)

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey)
	providers := service.Providers{
		Chat:      llmClient,
		Images:    llmClient,
		Videos:    llmClient,
		Knowledge: knowledge.NewClient(cfg.RAGWebhookURL),
	}
	if cfg.MediaDir != "" {
		providers.Media = media.NewStore(cfg.MediaDir, cfg.MediaPublicURL)
	}

	dispatcher := command.NewDispatcher(models.ImageModels())
	chatService := service.NewChatService(a.Workspaces, dispatcher, providers, models, settingsService, synchronizer)
	sessionService := service.NewSessionService(a.Workspaces)
	historyService := service.NewHistoryService(history.NewIndexer(repo), synchronizer)

	router := api.NewRouter(api.Handlers{
		Chat:     api.NewChatHandler(chatService, settingsService),
		Sessions: api.NewSessionHandler(sessionService),
		History:  api.NewHistoryHandler(historyService),
		Models:   api.NewModelHandler(models),
		Events:   api.NewEventsHandler(events, nil),
		Limiter:  api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		MediaDir: cfg.MediaDir,
	})

	a.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}
	return a, nil
}

// openRepository picks the durable store for sessions and history. Settings
// always stay in SQLite.
func (a *App) openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	if cfg.StoreDriver != config.DriverRedis {
		return repository.NewSQLiteRepository(a.DB), nil
	}

	a.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.Redis.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	slog.Info("Successfully connected to Redis.", "addr", cfg.RedisAddr)
	return repository.NewRedisRepository(a.Redis), nil
}

// Close waits for in-flight responses and their writes, then releases storage.
func (a *App) Close() error {
	if a.Workspaces != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := a.Workspaces.Drain(ctx)
		cancel()
		if err != nil {
			slog.Warn("Closing storage with responses still in flight", "error", err)
		}
	}
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	a, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to start application", "error", err)
		return 1
	}
	logConfigSource()
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("Failed to release resources", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort, "store", cfg.StoreDriver)
		serveErr <- a.Server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}
	stop()

	slog.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return 1
	}
	slog.Info("Server stopped")
	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
