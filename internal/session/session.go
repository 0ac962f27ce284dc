package session

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/videocollect/internal/model"
)

// ErrNotFound is returned by a Store when the id is unknown or expired
var ErrNotFound = errors.New("session not found")

// Session is the server-side state behind a session cookie
type Session struct {
	ID           string             `json:"id"`
	UserID       model.UserID       `json:"user_id,omitempty"`
	UserFullname string             `json:"user_fullname,omitempty"`
	Username     string             `json:"username,omitempty"`
	Staged       *model.StagedVideo `json:"staged,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Authenticated reports whether a user has logged in on this session
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

// SetUser records the logged in user
func (s *Session) SetUser(u *model.User) {
	s.UserID = u.ID
	s.UserFullname = u.Name
	s.Username = u.Username
}

// Store persists sessions by id
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}
