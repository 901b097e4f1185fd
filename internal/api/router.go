package api

import (
	"net/http"

	"github.com/bcnelson/yatube/internal/api/handler"
	"github.com/bcnelson/yatube/internal/api/middleware"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/web"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Dependencies are the collaborators of the root router.
type Dependencies struct {
	Store        storage.Storage
	BootstrapKey string
	Logger       *zap.Logger
	Web          web.Dependencies
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Web.Logger == nil {
		deps.Web.Logger = logger
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount web UI (no Content-Type middleware - serves HTML)
	r.Mount("/", web.NewRouter(deps.Web))

	// API routes (auth required, JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(deps.Store, deps.BootstrapKey, logger))

		// API Keys
		keyHandler := handler.NewAPIKeyHandler(deps.Store)
		r.Post("/keys", keyHandler.Create)
		r.Get("/keys", keyHandler.List)
		r.Delete("/keys/{id}", keyHandler.Delete)

		// Groups
		groupHandler := handler.NewGroupHandler(deps.Web.Groups)
		r.Post("/groups", groupHandler.Create)
		r.Get("/groups", groupHandler.List)
		r.Get("/groups/{slug}", groupHandler.Get)
		r.Put("/groups/{slug}", groupHandler.Update)

		// Posts (read-only)
		postHandler := handler.NewPostHandler(deps.Web.Listing)
		r.Get("/posts", postHandler.List)
		r.Get("/posts/{id}", postHandler.Get)
		r.Get("/groups/{slug}/posts", postHandler.ListByGroup)
		r.Get("/profiles/{username}/posts", postHandler.ListByAuthor)
	})

	return r
}
