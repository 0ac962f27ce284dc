package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/services/participant"
	"github.com/mcoot/videocollect/internal/web/middleware"
	"github.com/mcoot/videocollect/internal/web/templates/pages"
)

// ParticipantHandler handles participant management pages
type ParticipantHandler struct {
	participants *participant.Service
	logger       *slog.Logger
}

// NewParticipantHandler creates a new ParticipantHandler
func NewParticipantHandler(participants *participant.Service, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		participants: participants,
		logger:       logger,
	}
}

// New renders an empty participant form
func (h *ParticipantHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "Add participant", "/add_participant", false, pages.ParticipantFormValues{}, nil)
}

// Create handles the add participant form
func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.parseForm(w, r, "Add participant", false)
	if !ok {
		return
	}

	s := middleware.GetSession(r.Context())
	p, err := h.participants.Create(r.Context(), s.UserID, in)
	var verr *participant.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(w, r, "Add participant", "/add_participant", false, formValues(in), verr.Fields)
		return
	}
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	redirectWithFlash(w, r, participantURL(p.ID), middleware.FlashSuccess, "Participant added successfully")
}

// List renders participants, optionally filtered by ?search=
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	list, err := h.participants.List(r.Context(), model.ParticipantFilter{Search: search})
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	data := pages.ParticipantsData{
		PageData:     pageData(r, "Participants"),
		Participants: list,
		Search:       search,
	}
	render(w, r, http.StatusOK, pages.Participants(data))
}

// View renders a participant and its videos
func (h *ParticipantHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := participant.ParseID(mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	detail, err := h.participants.View(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	data := pages.ParticipantViewData{
		PageData:    pageData(r, detail.Participant.Name),
		Participant: detail.Participant,
		CreatorName: detail.CreatorName,
		Videos:      detail.Videos,
	}
	render(w, r, http.StatusOK, pages.ParticipantView(data))
}

// Edit renders the edit form filled with the stored values
func (h *ParticipantHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := participant.ParseID(mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	p, err := h.participants.Get(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	values := pages.ParticipantFormValues{
		Name:        p.Name,
		DateOfBirth: p.DateOfBirth.Format(model.DateLayout),
		Gender:      p.Gender,
	}
	h.renderForm(w, r, "Edit participant", editURL(id), true, values, nil)
}

// Update handles the edit form
func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := participant.ParseID(mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	in, ok := h.parseForm(w, r, "Edit participant", true)
	if !ok {
		return
	}

	_, err = h.participants.Update(r.Context(), id, in)
	var verr *participant.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(w, r, "Edit participant", editURL(id), true, formValues(in), verr.Fields)
		return
	}
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	redirectWithFlash(w, r, participantURL(id), middleware.FlashSuccess, "Participant updated successfully")
}

// Delete removes a participant with all of its videos
func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := participant.ParseID(mux.Vars(r)["id"])
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	if err := h.participants.Delete(r.Context(), id); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	redirectWithFlash(w, r, "/participants", middleware.FlashWarning, "Participant and their videos deleted")
}

// parseForm reads the participant fields, re-rendering the form titled
// title when the body cannot be parsed
func (h *ParticipantHandler) parseForm(w http.ResponseWriter, r *http.Request, title string, editing bool) (participant.Input, bool) {
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, title, r.URL.Path, editing, pages.ParticipantFormValues{}, map[string]string{
			participant.FieldName: "Invalid form data",
		})
		return participant.Input{}, false
	}
	return participant.Input{
		Name:        r.PostFormValue(participant.FieldName),
		DateOfBirth: r.PostFormValue(participant.FieldDateOfBirth),
		Gender:      r.PostFormValue(participant.FieldGender),
		Pathology:   r.PostFormValue(participant.FieldPathology),
	}, true
}

func (h *ParticipantHandler) renderForm(w http.ResponseWriter, r *http.Request, title, action string, editing bool, values pages.ParticipantFormValues, fieldErrors map[string]string) {
	data := pages.ParticipantFormData{
		PageData: pageData(r, title),
		Action:   action,
		Editing:  editing,
		Values:   values,
		Errors:   fieldErrors,
	}
	render(w, r, http.StatusOK, pages.ParticipantForm(data))
}

func formValues(in participant.Input) pages.ParticipantFormValues {
	return pages.ParticipantFormValues{
		Name:        in.Name,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		Pathology:   in.Pathology,
	}
}

func participantURL(id model.ParticipantID) string {
	return fmt.Sprintf("/participant/%d", id)
}

func editURL(id model.ParticipantID) string {
	return participantURL(id) + "/edit"
}
