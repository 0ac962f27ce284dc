package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/videocollect/internal/api/apierr"
	"github.com/mcoot/videocollect/internal/api/handler"
	"github.com/mcoot/videocollect/internal/api/middleware"
	"github.com/mcoot/videocollect/internal/factory"
)

// Route names
const (
	RouteHealth          = "api.health"
	RouteParticipantList = "api.participants.list"
	RouteParticipantView = "api.participants.view"
	RouteVideoList       = "api.videos.list"
)

// PublicRoutes are reachable without a session
var PublicRoutes = []string{RouteHealth}

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger *slog.Logger
	App    *factory.App
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) *mux.Router {
	app := cfg.App
	r := mux.NewRouter()

	// Create handlers
	healthHandler := handler.NewHealthHandler(app, cfg.Logger)
	participantHandler := handler.NewParticipantHandler(app.ParticipantService)
	videoHandler := handler.NewVideoHandler(app.VideoService)

	public := make(map[string]bool, len(PublicRoutes))
	for _, name := range PublicRoutes {
		public[name] = true
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger, RouteHealth))
	api.Use(middleware.Auth(app.Sessions, public, cfg.Logger))
	api.NotFoundHandler = http.HandlerFunc(notFound)

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet).Name(RouteHealth)
	api.HandleFunc("/participants", participantHandler.List).Methods(http.MethodGet).Name(RouteParticipantList)
	api.HandleFunc("/participants/{id}", participantHandler.Get).Methods(http.MethodGet).Name(RouteParticipantView)
	api.HandleFunc("/videos", videoHandler.List).Methods(http.MethodGet).Name(RouteVideoList)

	for _, name := range PublicRoutes {
		if r.Get(name) == nil {
			panic(fmt.Sprintf("public API route %q is not registered", name))
		}
	}
	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}
