package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
	ErrMissingField       = errors.New("name, username and password are required")
)

// Service verifies staff credentials and provisions accounts
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
	cost    int
}

// Config holds configuration for the auth service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage: storage,
		logger:  logger,
		cost:    cfg.BcryptCost,
	}
}

// Login returns the user whose password matches the stored hash.
// Unknown users, wrong passwords and empty fields are indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.logger.Warn("login failed", "username", username, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login failed", "username", username, "reason", "bad password")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// CreateUser hashes the password and stores a new account
func (s *Service) CreateUser(ctx context.Context, name, username, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	username = strings.TrimSpace(username)
	if name == "" || username == "" || password == "" {
		return nil, ErrMissingField
	}

	_, err := s.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateUsername) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUser returns a user by id
func (s *Service) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}
