package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/web/middleware"
	"github.com/mcoot/videocollect/internal/web/templates/layout"
	"github.com/mcoot/videocollect/internal/web/templates/pages"
)

// pageData fills the layout fields shared by every page
func pageData(r *http.Request, title string) layout.PageData {
	s := middleware.GetSession(r.Context())
	data := layout.PageData{
		Title: title,
		Flash: middleware.GetFlash(r.Context()),
	}
	if s.Authenticated() {
		data.LoggedIn = true
		data.UserName = s.UserFullname
	}
	return data
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Default().Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

// renderError maps an error to a 404 or 500 page
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrParticipantNotFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrVideoFileNotFound),
		errors.Is(err, model.ErrInvalidFilename):
		NotFound(w, r)
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		data := pages.ErrorData{
			PageData: pageData(r, "Internal Server Error"),
			Status:   http.StatusInternalServerError,
			Message:  "Something went wrong. Please try again later.",
		}
		render(w, r, http.StatusInternalServerError, pages.Error(data))
	}
}

// NotFound renders the 404 page
func NotFound(w http.ResponseWriter, r *http.Request) {
	data := pages.ErrorData{
		PageData: pageData(r, "Not Found"),
		Status:   http.StatusNotFound,
		Message:  "The page you requested does not exist.",
	}
	render(w, r, http.StatusNotFound, pages.Error(data))
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, url, flashType, message string) {
	middleware.SetFlash(w, flashType, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}
