package api

import (
	"net/http"
	"time"

	// Registers the generated API definitions with swag.
	_ "flow-chat/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"flow-chat/backend/internal/identity"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Chat     *ChatHandler
	Sessions *SessionHandler
	History  *HistoryHandler
	Models   *ModelHandler
	Events   *EventsHandler
	Limiter  *RateLimiter
	MediaDir string
}

// NewRouter creates the chi router with all application routes.
func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if h.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(h.MediaDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(identity.Middleware)

		// Plain JSON routes get a timeout so hung clients don't pin connections.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/settings", h.Chat.GetSettings)
			r.Post("/settings", h.Chat.UpdateSettings)
			r.Post("/commands/palette", h.Chat.HandlePalette)
			r.Post("/commands/select", h.Chat.HandleSelectCommand)

			r.Get("/sessions", h.Sessions.ListSessions)
			r.Post("/sessions", h.Sessions.CreateSession)
			r.Put("/sessions/active", h.Sessions.SetActive)
			r.Post("/sessions/sync", h.Sessions.SyncSessions)
			r.Get("/sessions/{sessionID}", h.Sessions.GetSession)
			r.Put("/sessions/{sessionID}/title", h.Sessions.RenameSession)
			r.Delete("/sessions/{sessionID}", h.Sessions.DeleteSession)

			r.Get("/history", h.History.ListHistory)
			r.Delete("/history", h.History.DeleteAllHistory)
			r.Get("/history/search", h.History.SearchHistory)
			r.Get("/history/stats", h.History.GetStats)
			r.Get("/history/recent-sessions", h.History.GetRecentSessions)
			r.Delete("/history/sessions/{sessionID}", h.History.DeleteSessionHistory)
			r.Delete("/history/{entryID}", h.History.DeleteEntry)

			r.Get("/models", h.Models.HandleListModels)
			r.Get("/status", h.History.GetStatus)
		})

		// Long-lived connections must not have a timeout.
		r.Group(func(r chi.Router) {
			r.With(h.Limiter.Middleware).Post("/messages", h.Chat.HandleSendMessage)
			r.Get("/events", h.Events.ServeHTTP)
		})
	})

	return r
}
