package storage

import (
	"context"

	"github.com/mcoot/videocollect/internal/model"
)

// Storage defines the interface for data persistence.
//
// Fetch-by-id methods are the single not-found primitive for each entity:
// they return model.ErrUserNotFound or model.ErrParticipantNotFound rather
// than a nil record.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Participant operations
	CreateParticipant(ctx context.Context, p *model.Participant) error
	GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error)
	UpdateParticipant(ctx context.Context, p *model.Participant) error
	// DeleteParticipant removes the participant together with all of its videos
	DeleteParticipant(ctx context.Context, id model.ParticipantID) error
	ListParticipants(ctx context.Context, filter model.ParticipantFilter) ([]model.ParticipantSummary, error)
	CountParticipants(ctx context.Context) (int, error)

	// Video operations
	CreateVideo(ctx context.Context, v *model.Video) error
	ListVideos(ctx context.Context) ([]model.VideoWithCreator, error)
	ListVideosForParticipant(ctx context.Context, id model.ParticipantID) ([]model.VideoWithCreator, error)
	CountVideos(ctx context.Context) (int, error)
	// VideoFilenames returns the file names referenced by every saved video
	VideoFilenames(ctx context.Context) ([]string, error)

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error
	Close() error
}
