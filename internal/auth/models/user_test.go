package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)

	t.Run("normalises and activates", func(t *testing.T) {
		u, err := NewUser("  Marie@Clinic.CG ", "$2a$10$hash", id.RoleDoctor, " Marie ", "Nkounkou", " 06 000 ", now)
		require.NoError(t, err)
		assert.Equal(t, "marie@clinic.cg", u.Email)
		assert.Equal(t, "Marie", u.FirstName)
		assert.Equal(t, "06 000", u.PhoneNumber)
		assert.True(t, u.IsActive)
		assert.Equal(t, now, u.CreatedAt)
	})

	tests := []struct {
		name  string
		email string
		hash  string
		role  id.Role
		first string
	}{
		{"invalid email", "not-an-email", "h", id.RoleDoctor, "Marie"},
		{"display name in email", "Marie <marie@clinic.cg>", "h", id.RoleDoctor, "Marie"},
		{"missing hash", "marie@clinic.cg", "", id.RoleDoctor, "Marie"},
		{"unknown role", "marie@clinic.cg", "h", id.Role("superuser"), "Marie"},
		{"blank name", "marie@clinic.cg", "h", id.RoleAdmin, "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.hash, tt.role, tt.first, "Nkounkou", "", now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}
