package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/session"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.store = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StoreSuite) TestSaveAndLoad() {
	captured := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	sess := &session.Session{
		ID:           "sid-1",
		UserID:       3,
		UserFullname: "Alice Smith",
		Username:     "alice",
		Staged: &model.StagedVideo{
			Token:         "tok",
			Filename:      "video_7_20240309140507.mp4",
			ParticipantID: 7,
			CapturedAt:    captured,
		},
	}
	s.Require().NoError(s.store.Save(s.ctx, sess, time.Hour))

	loaded, err := s.store.Load(s.ctx, "sid-1")
	s.Require().NoError(err)
	s.Equal(model.UserID(3), loaded.UserID)
	s.Equal("Alice Smith", loaded.UserFullname)
	s.Require().NotNil(loaded.Staged)
	s.True(captured.Equal(loaded.Staged.CapturedAt))
}

func (s *StoreSuite) TestKeyIsPrefixed() {
	s.Require().NoError(s.store.Save(s.ctx, &session.Session{ID: "abc"}, time.Hour))
	s.True(s.mini.Exists("videocollect:session:abc"))
	s.Equal(time.Hour, s.mini.TTL("videocollect:session:abc"))
}

func (s *StoreSuite) TestLoadNotFound() {
	_, err := s.store.Load(s.ctx, "missing")
	s.ErrorIs(err, session.ErrNotFound)
}

func (s *StoreSuite) TestExpiry() {
	s.Require().NoError(s.store.Save(s.ctx, &session.Session{ID: "short"}, time.Minute))
	s.mini.FastForward(2 * time.Minute)

	_, err := s.store.Load(s.ctx, "short")
	s.ErrorIs(err, session.ErrNotFound)
}

func (s *StoreSuite) TestDelete() {
	s.Require().NoError(s.store.Save(s.ctx, &session.Session{ID: "gone"}, time.Hour))
	s.Require().NoError(s.store.Delete(s.ctx, "gone"))

	_, err := s.store.Load(s.ctx, "gone")
	s.ErrorIs(err, session.ErrNotFound)
}

func (s *StoreSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
