package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/mcoot/videocollect/internal/factory"
	"github.com/mcoot/videocollect/internal/web/handler"
	"github.com/mcoot/videocollect/internal/web/middleware"
	"github.com/mcoot/videocollect/internal/web/static"
)

// Route names. The authentication gate matches on these.
const (
	RouteIndex             = "index"
	RouteHome              = "home"
	RouteInstructions      = "instructions"
	RouteRecord            = "record"
	RouteUpload            = "upload"
	RoutePreview           = "preview"
	RouteVideoFile         = "videos.file"
	RouteVideoSave         = "videos.save"
	RouteVideoDiscard      = "videos.discard"
	RouteVideoList         = "videos.list"
	RouteParticipantNew    = "participants.new"
	RouteParticipantCreate = "participants.create"
	RouteParticipantList   = "participants.list"
	RouteParticipantView   = "participants.view"
	RouteParticipantEdit   = "participants.edit"
	RouteParticipantUpdate = "participants.update"
	RouteParticipantDelete = "participants.delete"
	RouteLogin             = "login"
	RouteLoginSubmit       = "login.submit"
	RouteLogout            = "logout"
	RouteStatic            = "static"
)

// PublicRoutes are reachable without logging in
var PublicRoutes = []string{RouteIndex, RouteLogin, RouteLoginSubmit, RouteStatic}

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger *slog.Logger
	App    *factory.App
}

// NewRouter creates a new web router with all routes configured.
// It panics if a route is unnamed or a public route name is not registered.
func NewRouter(cfg RouterConfig) *mux.Router {
	app := cfg.App
	r := mux.NewRouter()

	// Create handlers
	homeHandler := handler.NewHomeHandler(app.ParticipantService, app.VideoService, app.MaxUploadBytes, cfg.Logger)
	authHandler := handler.NewAuthHandler(app.AuthService, app.Sessions, cfg.Logger)
	participantHandler := handler.NewParticipantHandler(app.ParticipantService, cfg.Logger)
	captureHandler := handler.NewCaptureHandler(app.CaptureService, app.Sessions, app.Videos, app.MaxUploadBytes, cfg.Logger)
	videoHandler := handler.NewVideoHandler(app.VideoService, cfg.Logger)

	public := make(map[string]bool, len(PublicRoutes))
	for _, name := range PublicRoutes {
		public[name] = true
	}

	sessionMiddleware := middleware.Session(app.Sessions, cfg.Logger)
	flashMiddleware := middleware.Flash()

	// Middleware runs once a route has matched, so the gate sees its name
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger, RouteStatic))
	r.Use(sessionMiddleware)
	r.Use(flashMiddleware)
	r.Use(middleware.Gate(public, http.HandlerFunc(homeHandler.Denied)))

	r.NotFoundHandler = sessionMiddleware(flashMiddleware(http.HandlerFunc(handler.NotFound)))

	r.PathPrefix("/static/").
		Handler(http.StripPrefix("/static/", http.FileServerFS(static.FS))).
		Methods(http.MethodGet, http.MethodHead).
		Name(RouteStatic)

	// Pages
	r.HandleFunc("/", homeHandler.Index).Methods(http.MethodGet).Name(RouteIndex)
	r.HandleFunc("/home", homeHandler.Home).Methods(http.MethodGet).Name(RouteHome)
	r.HandleFunc("/instructions", homeHandler.Instructions).Methods(http.MethodGet).Name(RouteInstructions)

	// Auth
	r.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet).Name(RouteLogin)
	r.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost).Name(RouteLoginSubmit)
	r.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet).Name(RouteLogout)

	// Capture workflow
	r.HandleFunc("/record", homeHandler.Record).Methods(http.MethodGet).Name(RouteRecord)
	r.HandleFunc("/upload", captureHandler.Upload).Methods(http.MethodPost).Name(RouteUpload)
	r.HandleFunc("/preview", captureHandler.Preview).Methods(http.MethodGet).Name(RoutePreview)
	r.HandleFunc("/videos/{filename}", captureHandler.ServeVideo).Methods(http.MethodGet, http.MethodHead).Name(RouteVideoFile)
	r.HandleFunc("/save_video", captureHandler.Save).Methods(http.MethodPost).Name(RouteVideoSave)
	r.HandleFunc("/discard_video", captureHandler.Discard).Methods(http.MethodPost).Name(RouteVideoDiscard)
	r.HandleFunc("/list_videos", videoHandler.List).Methods(http.MethodGet).Name(RouteVideoList)

	// Participants
	r.HandleFunc("/add_participant", participantHandler.New).Methods(http.MethodGet).Name(RouteParticipantNew)
	r.HandleFunc("/add_participant", participantHandler.Create).Methods(http.MethodPost).Name(RouteParticipantCreate)
	r.HandleFunc("/participants", participantHandler.List).Methods(http.MethodGet).Name(RouteParticipantList)
	r.HandleFunc("/participant/{id}", participantHandler.View).Methods(http.MethodGet).Name(RouteParticipantView)
	r.HandleFunc("/participant/{id}/edit", participantHandler.Edit).Methods(http.MethodGet).Name(RouteParticipantEdit)
	r.HandleFunc("/participant/{id}/edit", participantHandler.Update).Methods(http.MethodPost).Name(RouteParticipantUpdate)
	r.HandleFunc("/participant/{id}/delete", participantHandler.Delete).Methods(http.MethodPost).Name(RouteParticipantDelete)

	if err := VerifyRouteNames(r, PublicRoutes); err != nil {
		panic(err)
	}
	return r
}

// VerifyRouteNames checks that every route on r is named and that every
// name in public is registered
func VerifyRouteNames(r *mux.Router, public []string) error {
	var registered []string
	err := r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		name := route.GetName()
		if name == "" {
			tmpl, _ := route.GetPathTemplate()
			return fmt.Errorf("route %q has no name", tmpl)
		}
		registered = append(registered, name)
		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range public {
		if !slices.Contains(registered, name) {
			return fmt.Errorf("public route %q is not registered", name)
		}
	}
	return nil
}
