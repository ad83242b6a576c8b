package user

import (
	"context"
	"sync"

	"github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
)

// InMemoryUserStore keeps accounts in process memory, indexed by lowercase email.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	nextID  id.UserID
	users   map[id.UserID]models.User
	byEmail map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]models.User),
		byEmail: make(map[string]id.UserID),
	}
}

// Create assigns the next ID. A taken email yields sentinel.ErrConflict.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := models.NormalizeEmail(user.Email)
	if _, taken := s.byEmail[email]; taken {
		return nil, sentinel.ErrConflict
	}
	s.nextID++
	stored := *user
	stored.ID = s.nextID
	stored.Email = email
	s.users[stored.ID] = stored
	s.byEmail[email] = stored.ID
	out := stored
	return &out, nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u := s.users[userID]
	return &u, nil
}

// Update replaces the mutable fields of an existing account. Email changes
// are re-indexed and checked for uniqueness.
func (s *InMemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	email := models.NormalizeEmail(user.Email)
	if email != current.Email {
		if _, taken := s.byEmail[email]; taken {
			return sentinel.ErrConflict
		}
		delete(s.byEmail, current.Email)
		s.byEmail[email] = user.ID
	}
	updated := *user
	updated.Email = email
	updated.CreatedAt = current.CreatedAt
	s.users[user.ID] = updated
	return nil
}

// Delete removes an account. Used to compensate a failed onboarding when no
// transaction spans both stores.
func (s *InMemoryUserStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.users, userID)
	return nil
}
