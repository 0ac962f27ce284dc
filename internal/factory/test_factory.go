package factory

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/videocollect/internal/dependencies/mocks"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/services/auth"
	"github.com/mcoot/videocollect/internal/session"
	sessionmemory "github.com/mcoot/videocollect/internal/session/memory"
	"github.com/mcoot/videocollect/internal/storage/memory"
	"github.com/mcoot/videocollect/internal/testutil"
	"github.com/mcoot/videocollect/internal/videostore"
)

// Test account created by NewTestApp
const (
	TestUserName     = "Alice Smith"
	TestUserUsername = "alice"
	TestUserPassword = "password123"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	// User is the pre-created staff account
	User *model.User
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Videos are written to a temporary directory owned by t.
func NewTestApp(t testing.TB) *TestApp {
	t.Helper()

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	videos, err := videostore.New(filepath.Join(t.TempDir(), "videos"))
	if err != nil {
		t.Fatalf("create video store: %v", err)
	}

	sessionCfg := session.DefaultConfig()
	sessionCfg.Secret = []byte("test-session-secret")
	sessionCfg.Secure = false

	app := newWithDependencies(dependencies{
		store:        store,
		sessionStore: sessionmemory.New(mockClock),
		videos:       videos,
		clock:        mockClock,
		sessionCfg:   sessionCfg,
		authCfg:      auth.Config{BcryptCost: bcrypt.MinCost},
		maxUpload:    1 << 20,
		logger:       testutil.NopLogger(),
	})

	user, err := app.AuthService.CreateUser(t.Context(), TestUserName, TestUserUsername, TestUserPassword)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		User:      user,
	}
}

// CreateParticipant stores a participant created by the test user
func (t *TestApp) CreateParticipant(tb testing.TB, name string) *model.Participant {
	tb.Helper()
	p := &model.Participant{
		Name:        name,
		DateOfBirth: time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
		CreatedAt:   t.MockClock.Now(),
		CreatedBy:   t.User.ID,
	}
	if err := t.Storage.CreateParticipant(tb.Context(), p); err != nil {
		tb.Fatalf("create participant: %v", err)
	}
	return p
}
