package video

import (
	"context"
	"log/slog"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/storage"
)

// Stats are the dashboard totals
type Stats struct {
	Participants int `json:"participants"`
	Videos       int `json:"videos"`
}

// Service exposes read-only views over saved videos
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new video Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{storage: storage, logger: logger}
}

// List returns every saved video with its creator's name, ordered by id
func (s *Service) List(ctx context.Context) ([]model.VideoWithCreator, error) {
	videos, err := s.storage.ListVideos(ctx)
	if err != nil {
		s.logger.Error("failed to list videos", "error", err)
		return nil, err
	}
	s.logger.Debug("videos listed", "count", len(videos))
	return videos, nil
}

// Stats counts participants and videos
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	participants, err := s.storage.CountParticipants(ctx)
	if err != nil {
		s.logger.Error("failed to count participants", "error", err)
		return Stats{}, err
	}
	videos, err := s.storage.CountVideos(ctx)
	if err != nil {
		s.logger.Error("failed to count videos", "error", err)
		return Stats{}, err
	}
	s.logger.Debug("stats computed", "participants", participants, "videos", videos)
	return Stats{Participants: participants, Videos: videos}, nil
}
