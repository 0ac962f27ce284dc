package participant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/videocollect/internal/dependencies/clock"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/storage"
	"github.com/mcoot/videocollect/internal/videostore"
)

// Form field names, shared with the HTML forms
const (
	FieldName        = "name"
	FieldDateOfBirth = "date_of_birth"
	FieldGender      = "gender"
	FieldPathology   = "pathology"
)

// ValidationError carries per-field messages for re-rendering a form
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid participant: " + strings.Join(parts, "; ")
}

// Input is the raw form submission for a participant
type Input struct {
	Name        string
	DateOfBirth string
	Gender      string
	Pathology   string
}

// Detail is a participant with its recorded videos
type Detail struct {
	Participant *model.Participant
	// CreatorName is empty when the creating user no longer exists
	CreatorName string
	Videos      []model.VideoWithCreator
}

// Service manages study participants
type Service struct {
	storage storage.Storage
	videos  *videostore.Store
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new participant Service
func New(storage storage.Storage, videos *videostore.Store, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		videos:  videos,
		clock:   clock,
		logger:  logger,
	}
}

// Create validates the input and stores a participant created by userID
func (s *Service) Create(ctx context.Context, userID model.UserID, in Input) (*model.Participant, error) {
	dob, err := in.validate(true)
	if err != nil {
		return nil, err
	}

	p := &model.Participant{
		Name:        strings.TrimSpace(in.Name),
		DateOfBirth: dob,
		Gender:      strings.TrimSpace(in.Gender),
		Pathology:   strings.TrimSpace(in.Pathology),
		CreatedAt:   s.clock.Now(),
		CreatedBy:   userID,
	}
	if err := s.storage.CreateParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}

	s.logger.Info("participant created", "participant_id", p.ID, "created_by", userID)
	return p, nil
}

// List returns participant summaries matching the filter
func (s *Service) List(ctx context.Context, filter model.ParticipantFilter) ([]model.ParticipantSummary, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.storage.ListParticipants(ctx, filter)
}

// Get returns a participant or model.ErrParticipantNotFound
func (s *Service) Get(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	return s.storage.GetParticipant(ctx, id)
}

// View returns the participant together with its videos
func (s *Service) View(ctx context.Context, id model.ParticipantID) (*Detail, error) {
	p, err := s.storage.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &Detail{Participant: p}

	creator, err := s.storage.GetUser(ctx, p.CreatedBy)
	switch {
	case err == nil:
		detail.CreatorName = creator.Name
	case !errors.Is(err, model.ErrUserNotFound):
		return nil, err
	}

	detail.Videos, err = s.storage.ListVideosForParticipant(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Update changes name, date of birth and gender. Pathology is left as stored.
func (s *Service) Update(ctx context.Context, id model.ParticipantID, in Input) (*model.Participant, error) {
	p, err := s.storage.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}

	dob, err := in.validate(false)
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.DateOfBirth = dob
	p.Gender = strings.TrimSpace(in.Gender)
	if err := s.storage.UpdateParticipant(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("participant updated", "participant_id", id)
	return p, nil
}

// Delete removes the participant and its videos, then their files.
// File removal is best effort; the rows are already gone.
func (s *Service) Delete(ctx context.Context, id model.ParticipantID) error {
	videos, err := s.storage.ListVideosForParticipant(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteParticipant(ctx, id); err != nil {
		return err
	}

	for _, v := range videos {
		if err := s.videos.Remove(v.Filename); err != nil {
			s.logger.Warn("failed to remove video file", "file", v.Filename, "error", err)
		}
	}

	s.logger.Info("participant deleted", "participant_id", id, "videos", len(videos))
	return nil
}

// ParseID parses a participant id from a path or form value
func ParseID(raw string) (model.ParticipantID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrParticipantNotFound
	}
	return model.ParticipantID(id), nil
}

func (in Input) validate(withPathology bool) (time.Time, error) {
	fields := make(map[string]string)

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		fields[FieldName] = "Name is required"
	case utf8.RuneCountInString(name) > model.MaxParticipantNameLen:
		fields[FieldName] = fmt.Sprintf("Name must be at most %d characters", model.MaxParticipantNameLen)
	}

	gender := strings.TrimSpace(in.Gender)
	switch {
	case gender == "":
		fields[FieldGender] = "Gender is required"
	case utf8.RuneCountInString(gender) > model.MaxGenderLen:
		fields[FieldGender] = fmt.Sprintf("Gender must be at most %d characters", model.MaxGenderLen)
	}

	if withPathology && utf8.RuneCountInString(strings.TrimSpace(in.Pathology)) > model.MaxPathologyLen {
		fields[FieldPathology] = fmt.Sprintf("Pathology must be at most %d characters", model.MaxPathologyLen)
	}

	var dob time.Time
	if strings.TrimSpace(in.DateOfBirth) == "" {
		fields[FieldDateOfBirth] = "Date of birth is required"
	} else {
		parsed, err := model.ParseDateOfBirth(in.DateOfBirth)
		if errors.Is(err, model.ErrInvalidDate) {
			fields[FieldDateOfBirth] = "Date of birth must be formatted as YYYY-MM-DD"
		}
		dob = parsed
	}

	if len(fields) > 0 {
		return time.Time{}, &ValidationError{Fields: fields}
	}
	return dob, nil
}
