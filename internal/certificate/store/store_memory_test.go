package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
)

var base = time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)

func newCert(t *testing.T, issuer id.UserID, issued time.Time) *models.Certificate {
	t.Helper()
	c, err := models.NewCertificate(id.NewPublicID(), issuer, models.Applicant{
		FirstName:       "Jean",
		LastName:        "Dupont",
		DateOfBirth:     time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Address:         "Brazzaville",
		MedicalFindings: "RAS",
		IsFit:           true,
	}, issued)
	require.NoError(t, err)
	return c
}

func TestCreateAssignsIDsAndRejectsDuplicatePublicID(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	cert := newCert(t, 7, base)

	first, err := s.Create(ctx, cert)
	require.NoError(t, err)
	assert.Equal(t, id.CertificateID(1), first.ID)

	_, err = s.Create(ctx, cert)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	found, err := s.FindByPublicID(ctx, cert.PublicID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = s.FindByID(ctx, 99)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	created, err := s.Create(ctx, newCert(t, 7, base))
	require.NoError(t, err)

	created.ApplicantFirstName = "changed"
	found, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jean", found.ApplicantFirstName)
}

func TestListOrdersNewestFirstAndPaginates(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	for i := range 5 {
		_, err := s.Create(ctx, newCert(t, 7, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, newCert(t, 8, base))
	require.NoError(t, err)

	page, total, err := s.ListByIssuer(ctx, 7, models.NewPage(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].IssueDate.After(page[1].IssueDate))

	last, _, err := s.ListByIssuer(ctx, 7, models.NewPage(3, 2))
	require.NoError(t, err)
	assert.Len(t, last, 1)

	n, err := s.CountByIssuer(ctx, 7, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, counts[models.StatusIssued])

	filtered, total, err := s.List(ctx, models.Filter{Statuses: []models.Status{models.StatusRevoked}}, models.NewPage(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, filtered)
}

func TestConcurrentCreateSamePublicID(t *testing.T) {
	s := NewInMemoryStore()
	cert := newCert(t, 7, base)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(context.Background(), cert); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
}
