package handler

import (
	"net/http"

	"github.com/mcoot/videocollect/internal/api/response"
	"github.com/mcoot/videocollect/internal/services/video"
)

// VideoHandler serves video data as JSON
type VideoHandler struct {
	videos *video.Service
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videos *video.Service) *VideoHandler {
	return &VideoHandler{
		videos: videos,
	}
}

// List handles GET /api/videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.videos.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.VideosFromModel(list))
}
