package capture

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/videocollect/internal/dependencies/mocks"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/storage/memory"
	"github.com/mcoot/videocollect/internal/testutil"
	"github.com/mcoot/videocollect/internal/videostore"
)

type ServiceSuite struct {
	suite.Suite
	storage     *memory.Storage
	videos      *videostore.Store
	clock       *mocks.MockClock
	service     *Service
	ctx         context.Context
	user        *model.User
	participant *model.Participant
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	var err error
	s.storage = memory.New()
	s.videos, err = videostore.New(filepath.Join(s.T().TempDir(), "videos"))
	s.Require().NoError(err)
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 9, 14, 5, 7, 250, time.UTC))
	s.service = New(s.storage, s.videos, s.clock, testutil.NopLogger())
	s.ctx = context.Background()

	s.user = &model.User{Name: "Alice Smith", Username: "alice", PasswordHash: "x"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.user))
	s.participant = &model.Participant{Name: "Ana", Gender: "F", CreatedBy: s.user.ID}
	s.Require().NoError(s.storage.CreateParticipant(s.ctx, s.participant))
}

func (s *ServiceSuite) upload(previous *model.StagedVideo) *model.StagedVideo {
	staged, err := s.service.Upload(s.ctx, previous, "1", strings.NewReader("video bytes"))
	s.Require().NoError(err)
	return staged
}

// Upload tests

func (s *ServiceSuite) TestUploadStagesFile() {
	staged := s.upload(nil)

	s.Equal("video_1_20240309140507.mp4", staged.Filename)
	s.Equal(s.participant.ID, staged.ParticipantID)
	s.Equal(time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC), staged.CapturedAt)
	s.NotEmpty(staged.Token)
	s.True(s.videos.Exists(staged.Filename))
}

func (s *ServiceSuite) TestUploadUnknownParticipant() {
	for _, raw := range []string{"", "abc", "42"} {
		_, err := s.service.Upload(s.ctx, nil, raw, strings.NewReader("x"))
		s.ErrorIs(err, ErrUnknownParticipant, raw)
	}
	files, _ := s.videos.List()
	s.Empty(files)
}

func (s *ServiceSuite) TestReuploadReplacesPreviousFile() {
	first := s.upload(nil)
	s.clock.Advance(3 * time.Second)
	second := s.upload(first)

	s.NotEqual(first.Filename, second.Filename)
	s.NotEqual(first.Token, second.Token)
	s.False(s.videos.Exists(first.Filename))
	s.True(s.videos.Exists(second.Filename))
}

func (s *ServiceSuite) TestReuploadSameSecondKeepsFile() {
	first := s.upload(nil)
	second := s.upload(first)

	s.Equal(first.Filename, second.Filename)
	s.True(s.videos.Exists(second.Filename))
}

func (s *ServiceSuite) readFile(name string) string {
	data, err := os.ReadFile(filepath.Join(s.videos.Dir(), name))
	s.Require().NoError(err)
	return string(data)
}

func (s *ServiceSuite) TestUploadSameSecondFromAnotherStageConflicts() {
	first := s.upload(nil)

	_, err := s.service.Upload(s.ctx, nil, "1", strings.NewReader("other bytes"))

	s.ErrorIs(err, ErrCaptureConflict)
	s.Equal("video bytes", s.readFile(first.Filename))
}

func (s *ServiceSuite) TestUploadSameSecondAfterSaveKeepsSavedFile() {
	staged := s.upload(nil)
	_, err := s.service.Save(s.ctx, staged, s.user.ID, "3", "")
	s.Require().NoError(err)

	_, err = s.service.Upload(s.ctx, staged, "1", strings.NewReader("other bytes"))
	s.ErrorIs(err, ErrCaptureConflict)
	_, err = s.service.Upload(s.ctx, nil, "1", strings.NewReader("other bytes"))
	s.ErrorIs(err, ErrCaptureConflict)

	s.Equal("video bytes", s.readFile(staged.Filename))
}

func (s *ServiceSuite) TestReuploadKeepsFileOfSavedVideo() {
	staged := s.upload(nil)
	// A second session holding a stage for the same file
	shared := *staged
	shared.Token = "other-session"
	_, err := s.service.Save(s.ctx, staged, s.user.ID, "3", "")
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	next, err := s.service.Upload(s.ctx, &shared, "1", strings.NewReader("new bytes"))
	s.Require().NoError(err)

	s.True(s.videos.Exists(staged.Filename))
	s.True(s.videos.Exists(next.Filename))
}

// Preview tests

func (s *ServiceSuite) TestPreviewNothingStaged() {
	_, err := s.service.Preview(s.ctx, nil)
	s.ErrorIs(err, ErrNothingStaged)
}

func (s *ServiceSuite) TestPreviewReturnsParticipant() {
	staged := s.upload(nil)

	preview, err := s.service.Preview(s.ctx, staged)
	s.Require().NoError(err)
	s.Equal("Ana", preview.Participant.Name)
}

func (s *ServiceSuite) TestPreviewParticipantGone() {
	staged := s.upload(nil)
	s.Require().NoError(s.storage.DeleteParticipant(s.ctx, s.participant.ID))

	_, err := s.service.Preview(s.ctx, staged)
	s.ErrorIs(err, ErrParticipantGone)
	s.False(s.videos.Exists(staged.Filename))
}

func (s *ServiceSuite) TestPreviewMissingFile() {
	staged := s.upload(nil)
	s.Require().NoError(s.videos.Remove(staged.Filename))

	_, err := s.service.Preview(s.ctx, staged)
	s.ErrorIs(err, model.ErrVideoFileNotFound)
}

// Save tests

func (s *ServiceSuite) TestSaveUsesCaptureTime() {
	staged := s.upload(nil)
	s.clock.Advance(10 * time.Minute)

	v, err := s.service.Save(s.ctx, staged, s.user.ID, "4", "good")
	s.Require().NoError(err)
	s.Equal(staged.CapturedAt, v.CreatedAt)

	videos, err := s.storage.ListVideos(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(videos, 1)
	s.Equal(s.participant.ID, videos[0].ParticipantID)
	s.Equal(4, videos[0].Score)
	s.Equal("good", videos[0].Comment)
	s.Equal(time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC), videos[0].CreatedAt)
	s.Equal(s.user.ID, videos[0].CreatedBy)
}

func (s *ServiceSuite) TestSaveNothingStaged() {
	_, err := s.service.Save(s.ctx, nil, s.user.ID, "4", "")
	s.ErrorIs(err, ErrNothingStaged)
}

func (s *ServiceSuite) TestSaveRejectsNonIntegerScore() {
	staged := s.upload(nil)
	for _, raw := range []string{"", "four", "4.5", "3000000000", "-2147483649"} {
		_, err := s.service.Save(s.ctx, staged, s.user.ID, raw, "")
		s.ErrorIs(err, ErrInvalidScore, raw)
	}
	count, _ := s.storage.CountVideos(s.ctx)
	s.Zero(count)
}

func (s *ServiceSuite) TestSaveAcceptsScoreRangeBounds() {
	staged := s.upload(nil)
	v, err := s.service.Save(s.ctx, staged, s.user.ID, "2147483647", "")
	s.Require().NoError(err)
	s.Equal(2147483647, v.Score)

	s.clock.Advance(time.Second)
	staged = s.upload(nil)
	v, err = s.service.Save(s.ctx, staged, s.user.ID, " -2147483648 ", "")
	s.Require().NoError(err)
	s.Equal(-2147483648, v.Score)
}

func (s *ServiceSuite) TestSaveRejectsLongComment() {
	staged := s.upload(nil)

	_, err := s.service.Save(s.ctx, staged, s.user.ID, "1", strings.Repeat("c", model.MaxCommentLen+1))
	s.ErrorIs(err, ErrCommentTooLong)
}

func (s *ServiceSuite) TestSaveParticipantGone() {
	staged := s.upload(nil)
	s.Require().NoError(s.storage.DeleteParticipant(s.ctx, s.participant.ID))

	_, err := s.service.Save(s.ctx, staged, s.user.ID, "1", "")
	s.ErrorIs(err, ErrParticipantGone)
}

// Discard tests

func (s *ServiceSuite) TestDiscardRemovesFile() {
	staged := s.upload(nil)

	s.Require().NoError(s.service.Discard(s.ctx, staged))
	s.False(s.videos.Exists(staged.Filename))

	s.ErrorIs(s.service.Discard(s.ctx, nil), ErrNothingStaged)
}

func (s *ServiceSuite) TestDiscardKeepsFileOfSavedVideo() {
	staged := s.upload(nil)
	shared := *staged
	shared.Token = "other-session"
	_, err := s.service.Save(s.ctx, staged, s.user.ID, "3", "")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Discard(s.ctx, &shared))

	s.True(s.videos.Exists(staged.Filename))
	s.Equal("video bytes", s.readFile(staged.Filename))
}

// Prune tests

func (s *ServiceSuite) age(name string, d time.Duration) {
	old := s.clock.Now().Add(-d)
	s.Require().NoError(os.Chtimes(filepath.Join(s.videos.Dir(), name), old, old))
}

func (s *ServiceSuite) TestPruneRemovesOnlyOldOrphans() {
	saved := s.upload(nil)
	_, err := s.service.Save(s.ctx, saved, s.user.ID, "3", "")
	s.Require().NoError(err)
	s.age(saved.Filename, 48*time.Hour)

	s.clock.Advance(time.Minute)
	orphan := s.upload(nil)
	s.age(orphan.Filename, 48*time.Hour)

	s.clock.Advance(time.Minute)
	fresh := s.upload(nil)
	s.age(fresh.Filename, time.Hour)

	report, err := s.service.Prune(s.ctx, 24*time.Hour, true)
	s.Require().NoError(err)
	s.Equal(3, report.Scanned)
	s.Equal([]string{orphan.Filename}, report.Removed)
	s.True(s.videos.Exists(orphan.Filename))

	report, err = s.service.Prune(s.ctx, 24*time.Hour, false)
	s.Require().NoError(err)
	s.Equal([]string{orphan.Filename}, report.Removed)
	s.False(s.videos.Exists(orphan.Filename))
	s.True(s.videos.Exists(saved.Filename))
	s.True(s.videos.Exists(fresh.Filename))
}
