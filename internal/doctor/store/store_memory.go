package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	authmodels "github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
)

// AccountReader resolves the account half of a doctor. The postgres store
// gets this from a JOIN; the memory store asks the user store.
type AccountReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*authmodels.User, error)
}

// InMemoryStore keeps doctor profiles in process memory.
type InMemoryStore struct {
	mu         sync.RWMutex
	accounts   AccountReader
	profiles   map[id.UserID]models.Profile
	byAgrement map[string]id.UserID
}

func NewInMemoryStore(accounts AccountReader) *InMemoryStore {
	return &InMemoryStore{
		accounts:   accounts,
		profiles:   make(map[id.UserID]models.Profile),
		byAgrement: make(map[string]id.UserID),
	}
}

// Create stores a profile. A second profile for the same account or a
// reused agrement number yields sentinel.ErrConflict.
func (s *InMemoryStore) Create(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.DoctorID]; exists {
		return sentinel.ErrConflict
	}
	if _, taken := s.byAgrement[profile.AgrementNumber]; taken {
		return sentinel.ErrConflict
	}
	s.profiles[profile.DoctorID] = *profile
	s.byAgrement[profile.AgrementNumber] = profile.DoctorID
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, doctorID id.UserID) (*models.Doctor, error) {
	s.mu.RLock()
	profile, ok := s.profiles[doctorID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.join(ctx, profile)
}

func (s *InMemoryStore) FindByAgrement(ctx context.Context, agrementNumber string) (*models.Doctor, error) {
	s.mu.RLock()
	doctorID, ok := s.byAgrement[strings.TrimSpace(agrementNumber)]
	var profile models.Profile
	if ok {
		profile = s.profiles[doctorID]
	}
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.join(ctx, profile)
}

// Update replaces the profile fields. Account fields are owned by the user store.
func (s *InMemoryStore) Update(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.profiles[profile.DoctorID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.AgrementNumber != profile.AgrementNumber {
		if owner, taken := s.byAgrement[profile.AgrementNumber]; taken && owner != profile.DoctorID {
			return sentinel.ErrConflict
		}
		delete(s.byAgrement, current.AgrementNumber)
		s.byAgrement[profile.AgrementNumber] = profile.DoctorID
	}
	s.profiles[profile.DoctorID] = *profile
	return nil
}

// List orders doctors by last name then first name.
func (s *InMemoryStore) List(ctx context.Context, page certmodels.Page) ([]*models.Doctor, int, error) {
	doctors, err := s.all(ctx)
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(doctors, func(a, b *models.Doctor) int {
		if c := strings.Compare(a.Account.LastName, b.Account.LastName); c != 0 {
			return c
		}
		if c := strings.Compare(a.Account.FirstName, b.Account.FirstName); c != 0 {
			return c
		}
		return cmp.Compare(a.Account.ID, b.Account.ID)
	})
	total := len(doctors)
	start := min(page.Offset(), total)
	end := min(start+page.Limit, total)
	return doctors[start:end], total, nil
}

func (s *InMemoryStore) Count(ctx context.Context) (models.Counts, error) {
	doctors, err := s.all(ctx)
	if err != nil {
		return models.Counts{}, err
	}
	counts := models.Counts{Total: len(doctors)}
	for _, d := range doctors {
		if d.Account.IsActive {
			counts.Active++
		}
	}
	return counts, nil
}

func (s *InMemoryStore) all(ctx context.Context) ([]*models.Doctor, error) {
	s.mu.RLock()
	profiles := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	s.mu.RUnlock()

	doctors := make([]*models.Doctor, 0, len(profiles))
	for _, p := range profiles {
		d, err := s.join(ctx, p)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, nil
}

func (s *InMemoryStore) join(ctx context.Context, profile models.Profile) (*models.Doctor, error) {
	account, err := s.accounts.FindByID(ctx, profile.DoctorID)
	if err != nil {
		return nil, err
	}
	return &models.Doctor{Account: *account, Profile: profile}, nil
}
