package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mcoot/videocollect/internal/dependencies/clock"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/storage"
	"github.com/mcoot/videocollect/internal/videostore"
)

// Errors
var (
	ErrNoFile             = errors.New("no file part")
	ErrNoFilename         = errors.New("no selected file")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrFileTooLarge       = errors.New("file too large")
	ErrNothingStaged      = errors.New("no video staged")
	ErrParticipantGone    = errors.New("participant no longer exists")
	ErrInvalidScore       = errors.New("score must be an integer")
	ErrCommentTooLong     = errors.New("comment too long")
	ErrCaptureConflict    = errors.New("a video for this participant was captured in the same second")
)

// Preview is a staged video ready for review
type Preview struct {
	Staged      *model.StagedVideo
	Participant *model.Participant
}

// PruneReport summarises an orphan sweep
type PruneReport struct {
	Scanned int      `json:"scanned"`
	Removed []string `json:"removed"`
	DryRun  bool     `json:"dry_run"`
}

// Service drives the upload, preview and save workflow.
// The staged video lives with the caller (the session) and is passed in
// and returned explicitly.
type Service struct {
	storage storage.Storage
	videos  *videostore.Store
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new capture Service
func New(storage storage.Storage, videos *videostore.Store, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		videos:  videos,
		clock:   clock,
		logger:  logger,
	}
}

// Upload stores the bytes for rawParticipantID and returns the new stage.
// A previous stage's file is removed unless the new upload overwrote it.
// An upload never replaces a file it does not own: only the caller's own
// unsaved stage may be overwritten, any other existing file is a conflict.
func (s *Service) Upload(ctx context.Context, previous *model.StagedVideo, rawParticipantID string, body io.Reader) (*model.StagedVideo, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawParticipantID), 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrUnknownParticipant
	}
	participantID := model.ParticipantID(id)
	if _, err := s.storage.GetParticipant(ctx, participantID); err != nil {
		if errors.Is(err, model.ErrParticipantNotFound) {
			return nil, ErrUnknownParticipant
		}
		return nil, err
	}

	capturedAt := s.clock.Now().UTC().Truncate(time.Second)
	filename := model.VideoFilename(participantID, capturedAt)
	replace := false
	if previous != nil && previous.Filename == filename {
		inUse, err := s.fileInUse(ctx, filename)
		if err != nil {
			return nil, err
		}
		replace = !inUse
	}

	var size int64
	if replace {
		size, err = s.videos.Save(filename, body)
	} else {
		size, err = s.videos.Create(filename, body)
	}
	if errors.Is(err, videostore.ErrExists) {
		return nil, ErrCaptureConflict
	}
	if err != nil {
		return nil, err
	}

	if previous != nil && previous.Filename != filename {
		s.removeFile(ctx, previous.Filename)
	}

	staged := &model.StagedVideo{
		Token:         uuid.NewString(),
		Filename:      filename,
		ParticipantID: participantID,
		CapturedAt:    capturedAt,
	}
	s.logger.Info("video staged",
		"participant_id", participantID,
		"file", filename,
		"bytes", size,
		"token", staged.Token,
	)
	return staged, nil
}

// Preview validates that the staged video can still be saved
func (s *Service) Preview(ctx context.Context, staged *model.StagedVideo) (*Preview, error) {
	if staged == nil {
		return nil, ErrNothingStaged
	}

	p, err := s.storage.GetParticipant(ctx, staged.ParticipantID)
	if errors.Is(err, model.ErrParticipantNotFound) {
		s.removeFile(ctx, staged.Filename)
		return nil, ErrParticipantGone
	}
	if err != nil {
		return nil, err
	}

	if !s.videos.Exists(staged.Filename) {
		return nil, model.ErrVideoFileNotFound
	}

	return &Preview{Staged: staged, Participant: p}, nil
}

// Save commits the staged video with the reviewer's score and comment.
// The video's creation time is the capture time, not the save time.
func (s *Service) Save(ctx context.Context, staged *model.StagedVideo, userID model.UserID, rawScore, comment string) (*model.Video, error) {
	if staged == nil {
		return nil, ErrNothingStaged
	}

	// Scores are stored as a 32-bit integer column
	score, err := strconv.ParseInt(strings.TrimSpace(rawScore), 10, 32)
	if err != nil {
		return nil, ErrInvalidScore
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > model.MaxCommentLen {
		return nil, ErrCommentTooLong
	}

	v := &model.Video{
		ParticipantID: staged.ParticipantID,
		Filename:      staged.Filename,
		Score:         int(score),
		Comment:       comment,
		CreatedAt:     staged.CapturedAt,
		CreatedBy:     userID,
	}
	if err := s.storage.CreateVideo(ctx, v); err != nil {
		if errors.Is(err, storage.ErrForeignKey) {
			s.removeFile(ctx, staged.Filename)
			return nil, ErrParticipantGone
		}
		return nil, fmt.Errorf("save video: %w", err)
	}

	s.logger.Info("video saved",
		"video_id", v.ID,
		"participant_id", v.ParticipantID,
		"file", v.Filename,
		"score", v.Score,
	)
	return v, nil
}

// Discard drops the staged video and its file
func (s *Service) Discard(ctx context.Context, staged *model.StagedVideo) error {
	if staged == nil {
		return ErrNothingStaged
	}
	if err := s.releaseFile(ctx, staged.Filename); err != nil {
		return err
	}
	s.logger.Info("video discarded", "participant_id", staged.ParticipantID, "file", staged.Filename)
	return nil
}

// Prune removes upload files that no saved video references and that are
// older than the grace period. Staged files younger than it are kept.
func (s *Service) Prune(ctx context.Context, olderThan time.Duration, dryRun bool) (*PruneReport, error) {
	files, err := s.videos.List()
	if err != nil {
		return nil, err
	}
	referenced, err := s.storage.VideoFilenames(ctx)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		keep[name] = struct{}{}
	}

	cutoff := s.clock.Now().Add(-olderThan)
	report := &PruneReport{Scanned: len(files), Removed: []string{}, DryRun: dryRun}
	for _, f := range files {
		if _, ok := keep[f.Name]; ok {
			continue
		}
		if !f.ModTime.Before(cutoff) {
			continue
		}
		if !dryRun {
			if err := s.videos.Remove(f.Name); err != nil {
				return report, err
			}
		}
		report.Removed = append(report.Removed, f.Name)
	}

	s.logger.Info("orphan videos pruned",
		"scanned", report.Scanned,
		"removed", len(report.Removed),
		"dry_run", dryRun,
	)
	return report, nil
}

func (s *Service) removeFile(ctx context.Context, name string) {
	if err := s.releaseFile(ctx, name); err != nil {
		s.logger.Warn("failed to remove video file", "file", name, "error", err)
	}
}

// releaseFile removes a staged file unless a saved video references it
func (s *Service) releaseFile(ctx context.Context, name string) error {
	inUse, err := s.fileInUse(ctx, name)
	if err != nil {
		return err
	}
	if inUse {
		s.logger.Warn("staged file belongs to a saved video, keeping it", "file", name)
		return nil
	}
	return s.videos.Remove(name)
}

func (s *Service) fileInUse(ctx context.Context, name string) (bool, error) {
	names, err := s.storage.VideoFilenames(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}
