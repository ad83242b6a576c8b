package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
)

// InMemoryStore keeps certificates in process memory. Records are copied on
// the way in and out so callers cannot mutate stored state.
type InMemoryStore struct {
	mu         sync.RWMutex
	nextID     id.CertificateID
	byID       map[id.CertificateID]models.Certificate
	byPublicID map[id.PublicID]id.CertificateID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:       make(map[id.CertificateID]models.Certificate),
		byPublicID: make(map[id.PublicID]id.CertificateID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, cert *models.Certificate) (*models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPublicID[cert.PublicID]; exists {
		return nil, sentinel.ErrConflict
	}
	s.nextID++
	stored := *cert
	stored.ID = s.nextID
	s.byID[stored.ID] = stored
	s.byPublicID[stored.PublicID] = stored.ID

	out := stored
	return &out, nil
}

func (s *InMemoryStore) FindByPublicID(_ context.Context, publicID id.PublicID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	certID, ok := s.byPublicID[publicID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := s.byID[certID]
	return &c, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, certID id.CertificateID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[certID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryStore) ListByIssuer(ctx context.Context, issuerID id.UserID, page models.Page) ([]*models.Certificate, int, error) {
	return s.List(ctx, models.Filter{IssuerID: issuerID}, page)
}

func (s *InMemoryStore) List(_ context.Context, filter models.Filter, page models.Page) ([]*models.Certificate, int, error) {
	s.mu.RLock()
	matched := make([]models.Certificate, 0, len(s.byID))
	for _, c := range s.byID {
		if matches(c, filter) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(matched)
	total := len(matched)

	start := min(page.Offset(), total)
	end := min(start+page.Limit, total)
	out := make([]*models.Certificate, 0, end-start)
	for i := start; i < end; i++ {
		c := matched[i]
		out = append(out, &c)
	}
	return out, total, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, c := range s.byID {
		counts[c.Status]++
	}
	return counts, nil
}

func (s *InMemoryStore) CountByIssuer(_ context.Context, issuerID id.UserID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.byID {
		if c.IssuerID == issuerID && !c.IssueDate.Before(since) {
			n++
		}
	}
	return n, nil
}

func matches(c models.Certificate, f models.Filter) bool {
	if !f.IssuerID.IsZero() && c.IssuerID != f.IssuerID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, c.Status) {
		return false
	}
	return true
}

// sortNewestFirst orders by issue date descending, breaking ties on ID so
// pagination is stable.
func sortNewestFirst(certs []models.Certificate) {
	slices.SortFunc(certs, func(a, b models.Certificate) int {
		if c := b.IssueDate.Compare(a.IssueDate); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}
