package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/videocollect/internal/services/video"
	"github.com/mcoot/videocollect/internal/web/templates/pages"
)

// VideoHandler handles the video listing
type VideoHandler struct {
	videos *video.Service
	logger *slog.Logger
}

// NewVideoHandler creates a new VideoHandler
func NewVideoHandler(videos *video.Service, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		videos: videos,
		logger: logger,
	}
}

// List renders every saved video
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.videos.List(r.Context())
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	data := pages.VideosData{
		PageData: pageData(r, "Videos"),
		Videos:   list,
	}
	render(w, r, http.StatusOK, pages.Videos(data))
}
