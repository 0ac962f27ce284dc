package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/videocollect/internal/api/response"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/services/participant"
)

// ParticipantHandler serves participant data as JSON
type ParticipantHandler struct {
	participants *participant.Service
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(participants *participant.Service) *ParticipantHandler {
	return &ParticipantHandler{
		participants: participants,
	}
}

// List handles GET /api/participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.ParticipantFilter{Search: r.URL.Query().Get("search")}
	list, err := h.participants.List(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantSummariesFromModel(list))
}

// Get handles GET /api/participants/{id}
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := participant.ParseID(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, NewInvalidRequestError("participant id must be a positive integer"))
		return
	}

	detail, err := h.participants.View(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantDetailFromService(detail))
}
