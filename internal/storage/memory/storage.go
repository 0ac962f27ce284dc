package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Identifiers are assigned from per-table sequences like a serial column.
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	participants  map[model.ParticipantID]*model.Participant
	videos        map[model.VideoID]*model.Video

	nextUserID        model.UserID
	nextParticipantID model.ParticipantID
	nextVideoID       model.VideoID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		participants:  make(map[model.ParticipantID]*model.Participant),
		videos:        make(map[model.VideoID]*model.Video),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usernameIndex[user.Username]; exists {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateUsername, user.Username)
	}
	s.nextUserID++
	user.ID = s.nextUserID
	stored := *user
	s.users[user.ID] = &stored
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.CreatedBy]; !ok {
		return fmt.Errorf("%w: creator %d", storage.ErrForeignKey, p.CreatedBy)
	}
	s.nextParticipantID++
	p.ID = s.nextParticipantID
	stored := *p
	s.participants[p.ID] = &stored
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	out := *p
	return &out, nil
}

func (s *Storage) UpdateParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.participants[p.ID]
	if !ok {
		return model.ErrParticipantNotFound
	}
	existing.Name = p.Name
	existing.DateOfBirth = p.DateOfBirth
	existing.Gender = p.Gender
	existing.Pathology = p.Pathology
	return nil
}

func (s *Storage) DeleteParticipant(ctx context.Context, id model.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[id]; !ok {
		return model.ErrParticipantNotFound
	}
	for vid, v := range s.videos {
		if v.ParticipantID == id {
			delete(s.videos, vid)
		}
	}
	delete(s.participants, id)
	return nil
}

func (s *Storage) ListParticipants(ctx context.Context, filter model.ParticipantFilter) ([]model.ParticipantSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[model.ParticipantID]int)
	for _, v := range s.videos {
		counts[v.ParticipantID]++
	}

	result := make([]model.ParticipantSummary, 0, len(s.participants))
	for _, p := range s.participants {
		if !filter.Matches(p.Name) {
			continue
		}
		summary := model.ParticipantSummary{
			Participant: *p,
			VideoCount:  counts[p.ID],
		}
		if creator, ok := s.users[p.CreatedBy]; ok {
			summary.CreatorName = creator.Name
		}
		result = append(result, summary)
	}

	sort.Slice(result, func(i, j int) bool {
		if filter.OrderByName {
			a, b := strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)
			if a != b {
				return a < b
			}
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Storage) CountParticipants(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants), nil
}

// Video operations

func (s *Storage) CreateVideo(ctx context.Context, v *model.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[v.ParticipantID]; !ok {
		return fmt.Errorf("%w: participant %d", storage.ErrForeignKey, v.ParticipantID)
	}
	if _, ok := s.users[v.CreatedBy]; !ok {
		return fmt.Errorf("%w: creator %d", storage.ErrForeignKey, v.CreatedBy)
	}
	s.nextVideoID++
	v.ID = s.nextVideoID
	stored := *v
	s.videos[v.ID] = &stored
	return nil
}

func (s *Storage) ListVideos(ctx context.Context) ([]model.VideoWithCreator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := s.videosWhere(func(*model.Video) bool { return true })
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Storage) ListVideosForParticipant(ctx context.Context, id model.ParticipantID) ([]model.VideoWithCreator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := s.videosWhere(func(v *model.Video) bool { return v.ParticipantID == id })
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Storage) CountVideos(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos), nil
}

func (s *Storage) VideoFilenames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.videos))
	for _, v := range s.videos {
		names = append(names, v.Filename)
	}
	sort.Strings(names)
	return names, nil
}

// videosWhere must be called with the read lock held
func (s *Storage) videosWhere(keep func(*model.Video) bool) []model.VideoWithCreator {
	result := make([]model.VideoWithCreator, 0)
	for _, v := range s.videos {
		if !keep(v) {
			continue
		}
		row := model.VideoWithCreator{Video: *v}
		if creator, ok := s.users[v.CreatedBy]; ok {
			row.CreatorName = creator.Name
		}
		result = append(result, row)
	}
	return result
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}
