package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/videocollect/internal/services/auth"
	"github.com/mcoot/videocollect/internal/session"
	"github.com/mcoot/videocollect/internal/web/middleware"
	"github.com/mcoot/videocollect/internal/web/templates/layout"
	"github.com/mcoot/videocollect/internal/web/templates/pages"
)

// AuthHandler handles login and logout
type AuthHandler struct {
	authService *auth.Service
	sessions    *session.Manager
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// LoginPage renders the login form
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r.Context()).Authenticated() {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}

	data := pages.LoginData{PageData: pageData(r, "Log in")}
	render(w, r, http.StatusOK, pages.Login(data))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, "")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.authService.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.renderLoginError(w, r, username)
		return
	}
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	s := middleware.GetSession(r.Context())
	s.SetUser(user)
	if err := h.sessions.Rotate(r.Context(), w, s); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	redirectWithFlash(w, r, "/home", middleware.FlashSuccess, "Welcome, "+user.Name+"!")
}

// Logout destroys the session, including any staged video
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())
	if err := h.sessions.Destroy(r.Context(), w, s); err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	redirectWithFlash(w, r, "/", middleware.FlashInfo, "You have been logged out")
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, username string) {
	data := pages.LoginData{
		PageData: pageData(r, "Log in"),
		Username: username,
	}
	data.Flash = &layout.FlashMessage{Type: middleware.FlashWarning, Message: "Invalid username or password"}
	render(w, r, http.StatusOK, pages.Login(data))
}
