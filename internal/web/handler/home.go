package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/services/participant"
	"github.com/mcoot/videocollect/internal/services/video"
	"github.com/mcoot/videocollect/internal/web/middleware"
	"github.com/mcoot/videocollect/internal/web/templates/layout"
	"github.com/mcoot/videocollect/internal/web/templates/pages"
)

// HomeHandler handles the landing, dashboard, instructions and record pages
type HomeHandler struct {
	participants   *participant.Service
	videos         *video.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(participants *participant.Service, videos *video.Service, maxUploadBytes int64, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		participants:   participants,
		videos:         videos,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Index renders the public landing page
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := pages.LandingData{PageData: pageData(r, "Welcome")}
	render(w, r, http.StatusOK, pages.Landing(data))
}

// Denied renders the landing page with a login notice in place of a
// protected page
func (h *HomeHandler) Denied(w http.ResponseWriter, r *http.Request) {
	data := pages.LandingData{PageData: pageData(r, "Welcome")}
	data.Flash = &layout.FlashMessage{Type: middleware.FlashWarning, Message: middleware.AuthRequiredMessage}
	render(w, r, http.StatusOK, pages.Landing(data))
}

// Home renders the dashboard
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	stats, err := h.videos.Stats(r.Context())
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	data := pages.HomeData{
		PageData:          pageData(r, "Home"),
		TotalParticipants: stats.Participants,
		TotalVideos:       stats.Videos,
	}
	render(w, r, http.StatusOK, pages.Home(data))
}

// Instructions renders the recording protocol page
func (h *HomeHandler) Instructions(w http.ResponseWriter, r *http.Request) {
	data := pages.InstructionsData{PageData: pageData(r, "Instructions")}
	render(w, r, http.StatusOK, pages.Instructions(data))
}

// Record renders the capture page, preselecting ?participant_id= if given
func (h *HomeHandler) Record(w http.ResponseWriter, r *http.Request) {
	list, err := h.participants.List(r.Context(), model.ParticipantFilter{OrderByName: true})
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	// An unparseable id just means nothing is preselected
	selected, _ := participant.ParseID(r.URL.Query().Get("participant_id"))

	data := pages.RecordData{
		PageData:     pageData(r, "Record"),
		Participants: list,
		SelectedID:   selected,
		MaxUploadMB:  h.maxUploadBytes >> 20,
	}
	render(w, r, http.StatusOK, pages.Record(data))
}
