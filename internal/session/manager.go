package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/videocollect/internal/dependencies/clock"
)

// CookieName is the name of the session cookie
const CookieName = "session"

// Config holds session cookie settings
type Config struct {
	Secret []byte
	// TTL bounds how long an idle session survives server-side
	TTL time.Duration
	// Secure marks the cookie HTTPS-only
	Secure bool
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TTL:    12 * time.Hour,
		Secure: true,
	}
}

// Manager binds server-side sessions to signed browser cookies
type Manager struct {
	store  Store
	signer *Signer
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// NewManager creates a session manager
func NewManager(store Store, clk clock.Clock, cfg Config, logger *slog.Logger) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Manager{
		store:  store,
		signer: NewSigner(cfg.Secret, clk),
		clock:  clk,
		cfg:    cfg,
		logger: logger,
	}
}

// Store returns the backing session store
func (m *Manager) Store() Store {
	return m.store
}

// Load returns the session referenced by the request cookie.
// A missing, forged or expired cookie yields a fresh unsaved session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return m.fresh(), nil
	}

	id, err := m.signer.Verify(cookie.Value)
	if err != nil {
		m.logger.Debug("discarding invalid session cookie", "error", err)
		return m.fresh(), nil
	}

	s, err := m.store.Load(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return m.fresh(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// Save persists the session and (re)issues its cookie
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Save(ctx, s, m.cfg.TTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	token, err := m.signer.Sign(s.ID, m.cfg.TTL)
	if err != nil {
		return err
	}
	// No MaxAge: the cookie ends with the browser session
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Rotate moves the session to a new id, invalidating the old one
func (m *Manager) Rotate(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	s.ID = uuid.NewString()
	return m.Save(ctx, w, s)
}

// Destroy removes the session entirely and expires its cookie
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) fresh() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: m.clock.Now(),
	}
}
