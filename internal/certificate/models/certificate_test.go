package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/signature"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

func validApplicant() Applicant {
	return Applicant{
		FirstName:       "Jean",
		LastName:        "Dupont",
		DateOfBirth:     time.Date(1990, 5, 1, 15, 30, 0, 0, time.UTC),
		Address:         "12 avenue de la Paix, Brazzaville",
		MedicalFindings: "Vision 10/10, audition normale",
		IsFit:           true,
	}
}

func TestNewCertificate(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	publicID, err := id.ParsePublicID("3f2c8a1e-7b4d-4c6a-9e1f-2a5b8c7d9e0f")
	require.NoError(t, err)

	t.Run("seals an issued certificate", func(t *testing.T) {
		c, err := NewCertificate(publicID, 7, validApplicant(), now)
		require.NoError(t, err)

		assert.Equal(t, StatusIssued, c.Status)
		assert.Equal(t, now, c.IssueDate)
		assert.Equal(t, time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), c.ApplicantDOB)
		assert.Equal(t, "9e28438e54b107083819d54ee58440d2625479bfec2ba9be76f58ba42bd89d91", c.Signature)
		assert.True(t, c.HasValidSignature())
		assert.Equal(t, "Jean Dupont", c.ApplicantDisplayName())
		assert.True(t, c.IsOwnedBy(7))
		assert.False(t, c.IsOwnedBy(8))
	})

	t.Run("signed fields come from the record", func(t *testing.T) {
		c, err := NewCertificate(publicID, 7, validApplicant(), now)
		require.NoError(t, err)
		assert.Equal(t, signature.Fields{
			FirstName:   "Jean",
			LastName:    "Dupont",
			DateOfBirth: "1990-05-01",
			IsFit:       true,
			PublicID:    "3f2c8a1e-7b4d-4c6a-9e1f-2a5b8c7d9e0f",
		}, c.SignedFields())

		c.IsFit = false
		assert.False(t, c.HasValidSignature())
	})

	invalid := []struct {
		name     string
		publicID id.PublicID
		issuer   id.UserID
		mutate   func(a *Applicant)
	}{
		{"nil public id", id.PublicID{}, 7, func(*Applicant) {}},
		{"missing issuer", publicID, 0, func(*Applicant) {}},
		{"blank first name", publicID, 7, func(a *Applicant) { a.FirstName = "  " }},
		{"missing dob", publicID, 7, func(a *Applicant) { a.DateOfBirth = time.Time{} }},
		{"missing findings", publicID, 7, func(a *Applicant) { a.MedicalFindings = "" }},
		{"delimiter in last name", publicID, 7, func(a *Applicant) { a.LastName = "Marc|Dupont" }},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			a := validApplicant()
			tc.mutate(&a)
			_, err := NewCertificate(tc.publicID, tc.issuer, a, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestIssueCommandApplicant(t *testing.T) {
	base := func() IssueCommand {
		fit := true
		return IssueCommand{
			FirstName:       "Jean",
			LastName:        "Dupont",
			DateOfBirth:     "1990-05-01",
			Address:         "Brazzaville",
			MedicalFindings: "RAS",
			IsFit:           &fit,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *IssueCommand)
		field  string
		reason string
	}{
		{"delimiter in first name", func(c *IssueCommand) { c.FirstName = "Jean|Marc" }, "applicant_first_name", "must not contain |"},
		{"delimiter in last name", func(c *IssueCommand) { c.LastName = "Marc|Dupont" }, "applicant_last_name", "must not contain |"},
		{"first name wider than its column", func(c *IssueCommand) { c.FirstName = strings.Repeat("é", MaxApplicantNameLength+1) }, "applicant_first_name", "must be at most 100 characters"},
		{"last name wider than its column", func(c *IssueCommand) { c.LastName = strings.Repeat("a", MaxApplicantNameLength+1) }, "applicant_last_name", "must be at most 100 characters"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := base()
			tc.mutate(&cmd)
			_, err := cmd.Applicant()
			require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, map[string]string{tc.field: tc.reason}, dErrors.Fields(err))
		})
	}

	t.Run("a name of exactly the column width is accepted", func(t *testing.T) {
		cmd := base()
		cmd.LastName = strings.Repeat("é", MaxApplicantNameLength)
		a, err := cmd.Applicant()
		require.NoError(t, err)
		assert.Equal(t, cmd.LastName, a.LastName)
	})
}

func TestStatus(t *testing.T) {
	for _, s := range AllStatuses {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStatus("pending")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	assert.True(t, StatusIssued.CanTransitionTo(StatusRevoked))
	assert.False(t, StatusRevoked.CanTransitionTo(StatusIssued))
	assert.False(t, StatusExpired.CanTransitionTo(StatusVerified))
	assert.True(t, StatusRevoked.IsTerminal())
	assert.False(t, StatusIssued.IsTerminal())
}

func TestPage(t *testing.T) {
	p := NewPage(0, 0)
	assert.Equal(t, Page{Number: 1, Limit: DefaultPageLimit}, p)
	assert.Equal(t, 0, p.Offset())

	p = NewPage(3, 500)
	assert.Equal(t, MaxPageLimit, p.Limit)
	assert.Equal(t, 200, p.Offset())

	assert.Equal(t, 0, NewPage(1, 10).TotalPages(0))
	assert.Equal(t, 3, NewPage(1, 10).TotalPages(21))
}

func TestNewStatsZeroInitialised(t *testing.T) {
	stats := NewStats()
	assert.Len(t, stats.ByStatus, len(AllStatuses))
	for _, s := range AllStatuses {
		v, ok := stats.ByStatus[s]
		assert.True(t, ok)
		assert.Zero(t, v)
	}
}
