package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/videocollect/internal/api/response"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/services/capture"
	"github.com/mcoot/videocollect/internal/session"
	"github.com/mcoot/videocollect/internal/videostore"
	"github.com/mcoot/videocollect/internal/web/middleware"
	"github.com/mcoot/videocollect/internal/web/templates/pages"
)

// Upload field names
const (
	uploadFileField        = "video"
	uploadParticipantField = "participant_id"
)

// multipart parts beyond this are spooled to disk
const uploadMemoryLimit = 32 << 20

// UploadResponse is the JSON reply to a successful upload
type UploadResponse struct {
	Success    string `json:"success"`
	PreviewURL string `json:"preview_url"`
}

// UploadError is the JSON reply to a rejected upload
type UploadError struct {
	Error string `json:"error"`
}

// CaptureHandler drives upload, preview, save and discard of a video.
// The staged video is kept in the session between steps.
type CaptureHandler struct {
	capture        *capture.Service
	sessions       *session.Manager
	videos         *videostore.Store
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewCaptureHandler creates a new CaptureHandler
func NewCaptureHandler(captureService *capture.Service, sessions *session.Manager, videos *videostore.Store, maxUploadBytes int64, logger *slog.Logger) *CaptureHandler {
	return &CaptureHandler{
		capture:        captureService,
		sessions:       sessions,
		videos:         videos,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload accepts a multipart video for a participant and stages it
func (h *CaptureHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			uploadError(w, "File too large")
			return
		}
		uploadError(w, "No file part")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile(uploadFileField)
	if errors.Is(err, http.ErrMissingFile) {
		// A part without a filename is parsed as a plain value
		if _, ok := r.MultipartForm.Value[uploadFileField]; ok {
			uploadError(w, "No selected file")
			return
		}
		uploadError(w, "No file part")
		return
	}
	if err != nil {
		uploadError(w, "No file part")
		return
	}
	defer func() { _ = file.Close() }()

	s := middleware.GetSession(r.Context())
	staged, err := h.capture.Upload(r.Context(), s.Staged, r.FormValue(uploadParticipantField), file)
	if errors.Is(err, capture.ErrUnknownParticipant) {
		uploadError(w, "Unknown participant")
		return
	}
	if errors.Is(err, capture.ErrCaptureConflict) {
		response.JSON(w, http.StatusConflict, UploadError{Error: "Another video for this participant was captured at the same time, please upload again"})
		return
	}
	if err != nil {
		h.logger.Error("failed to store upload", "error", err)
		response.JSON(w, http.StatusInternalServerError, UploadError{Error: "Failed to store file"})
		return
	}

	s.Staged = staged
	if err := h.sessions.Save(r.Context(), w, s); err != nil {
		h.logger.Error("failed to save session", "error", err)
		response.JSON(w, http.StatusInternalServerError, UploadError{Error: "Failed to store file"})
		return
	}

	response.JSON(w, http.StatusOK, UploadResponse{
		Success:    "File uploaded successfully",
		PreviewURL: "/preview",
	})
}

// Preview renders the staged video for review
func (h *CaptureHandler) Preview(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	preview, err := h.capture.Preview(r.Context(), s.Staged)
	switch {
	case errors.Is(err, capture.ErrNothingStaged):
		redirectWithFlash(w, r, "/record", middleware.FlashWarning, "No video to preview. Please record or upload one first.")
		return
	case errors.Is(err, capture.ErrParticipantGone):
		h.clearStage(w, r, s, "The participant for this video no longer exists.")
		return
	case errors.Is(err, model.ErrVideoFileNotFound):
		h.clearStage(w, r, s, "The uploaded video could not be found. Please upload it again.")
		return
	case err != nil:
		renderError(w, r, h.logger, err)
		return
	}

	data := pages.PreviewData{
		PageData:    pageData(r, "Review recording"),
		Staged:      preview.Staged,
		Participant: preview.Participant,
	}
	render(w, r, http.StatusOK, pages.Preview(data))
}

// Save commits the staged video with a score and comment
func (h *CaptureHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/preview", middleware.FlashError, "Invalid form data")
		return
	}

	s := middleware.GetSession(r.Context())
	_, err := h.capture.Save(r.Context(), s.Staged, s.UserID, r.PostFormValue("score"), r.PostFormValue("comment"))
	switch {
	case errors.Is(err, capture.ErrNothingStaged):
		redirectWithFlash(w, r, "/record", middleware.FlashWarning, "No video to save. Please record or upload one first.")
		return
	case errors.Is(err, capture.ErrInvalidScore):
		redirectWithFlash(w, r, "/preview", middleware.FlashError, "Score must be a whole number")
		return
	case errors.Is(err, capture.ErrCommentTooLong):
		redirectWithFlash(w, r, "/preview", middleware.FlashError, "Comment is too long")
		return
	case errors.Is(err, capture.ErrParticipantGone):
		h.clearStage(w, r, s, "The participant for this video no longer exists.")
		return
	case err != nil:
		renderError(w, r, h.logger, err)
		return
	}

	s.Staged = nil
	if err := h.sessions.Save(r.Context(), w, s); err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	redirectWithFlash(w, r, "/list_videos", middleware.FlashSuccess, "Video saved successfully")
}

// Discard drops the staged video
func (h *CaptureHandler) Discard(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	err := h.capture.Discard(r.Context(), s.Staged)
	if errors.Is(err, capture.ErrNothingStaged) {
		redirectWithFlash(w, r, "/record", middleware.FlashWarning, "No video to discard.")
		return
	}
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	s.Staged = nil
	if err := h.sessions.Save(r.Context(), w, s); err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	redirectWithFlash(w, r, "/record", middleware.FlashInfo, "Recording discarded")
}

// ServeVideo streams a stored file by exact name
func (h *CaptureHandler) ServeVideo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]

	f, err := h.videos.Open(name)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *CaptureHandler) clearStage(w http.ResponseWriter, r *http.Request, s *session.Session, message string) {
	s.Staged = nil
	if err := h.sessions.Save(r.Context(), w, s); err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	redirectWithFlash(w, r, "/record", middleware.FlashWarning, message)
}

func uploadError(w http.ResponseWriter, message string) {
	response.JSON(w, http.StatusBadRequest, UploadError{Error: message})
}
