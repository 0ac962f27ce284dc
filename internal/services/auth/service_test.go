package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/videocollect/internal/storage/memory"
	"github.com/mcoot/videocollect/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger(), Config{BcryptCost: bcrypt.MinCost})
	s.ctx = context.Background()
}

// CreateUser tests

func (s *ServiceSuite) TestCreateUserHashesPassword() {
	user, err := s.service.CreateUser(s.ctx, "Alice Smith", "alice", "password123")
	s.Require().NoError(err)
	s.NotZero(user.ID)

	stored, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice Smith", stored.Name)
	s.NotEqual("password123", stored.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func (s *ServiceSuite) TestCreateUserDuplicateUsername() {
	_, _ = s.service.CreateUser(s.ctx, "Alice Smith", "alice", "password123")

	_, err := s.service.CreateUser(s.ctx, "Another Alice", "alice", "different")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestCreateUserRequiresFields() {
	_, err := s.service.CreateUser(s.ctx, " ", "alice", "password123")
	s.ErrorIs(err, ErrMissingField)

	_, err = s.service.CreateUser(s.ctx, "Alice", "alice", "")
	s.ErrorIs(err, ErrMissingField)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	created, _ := s.service.CreateUser(s.ctx, "Alice Smith", "alice", "password123")

	user, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)
	s.Equal(created.ID, user.ID)
	s.Equal("Alice Smith", user.Name)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, _ = s.service.CreateUser(s.ctx, "Alice Smith", "alice", "password123")

	_, err := s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginEmptyFields() {
	_, _ = s.service.CreateUser(s.ctx, "Alice Smith", "alice", "password123")

	_, err := s.service.Login(s.ctx, "", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Login(s.ctx, "alice", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginIsCaseSensitive() {
	_, _ = s.service.CreateUser(s.ctx, "Alice Smith", "alice", "password123")

	_, err := s.service.Login(s.ctx, "alice", "PASSWORD123")
	s.ErrorIs(err, ErrInvalidCredentials)
}
