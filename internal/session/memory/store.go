package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mcoot/videocollect/internal/dependencies/clock"
	"github.com/mcoot/videocollect/internal/session"
)

// ErrClosed is returned by Ping once the store has been closed
var ErrClosed = errors.New("session store closed")

type entry struct {
	session   session.Session
	expiresAt time.Time
}

// Store keeps sessions in process memory
type Store struct {
	clock clock.Clock

	mu       sync.RWMutex
	sessions map[string]entry
	closed   bool
}

// New creates an in-memory session store
func New(clk clock.Clock) *Store {
	return &Store{
		clock:    clk,
		sessions: make(map[string]entry),
	}
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

func (s *Store) Load(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, session.ErrNotFound
	}
	if s.clock.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, session.ErrNotFound
	}

	out := e.session
	if e.session.Staged != nil {
		staged := *e.session.Staged
		out.Staged = &staged
	}
	return &out, nil
}

func (s *Store) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	stored := *sess
	if sess.Staged != nil {
		staged := *sess.Staged
		stored.Staged = &staged
	}
	s.mu.Lock()
	s.sessions[sess.ID] = entry{session: stored, expiresAt: s.clock.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// CleanExpired removes expired sessions (call periodically)
func (s *Store) CleanExpired() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close drops every session
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.sessions = make(map[string]entry)
	s.mu.Unlock()
	return nil
}
