package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

// TestParsePublicID_Invariants validates the parsing invariant:
// "public identifiers are canonical version 4 UUIDs".
//
// Justification: this is the only input the anonymous verification path
// accepts, so malformed input must be rejected before any store lookup.
func TestParsePublicID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePublicID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePublicID("not-a-uuid")
		require.ErrorIs(t, err, dErrors.New(dErrors.CodeValidation, "invalid certificate identifier format"))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePublicID(uuid.Nil.String())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects non-v4 UUIDs", func(t *testing.T) {
		v1 := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
		_, err := ParsePublicID(v1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects braces and urn forms", func(t *testing.T) {
		u := uuid.New().String()
		for _, s := range []string{"{" + u + "}", "urn:uuid:" + u, strings.ReplaceAll(u, "-", "")} {
			_, err := ParsePublicID(s)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), s)
		}
	})

	t.Run("normalises upper case", func(t *testing.T) {
		u := uuid.New()
		id, err := ParsePublicID(strings.ToUpper(u.String()))
		require.NoError(t, err)
		assert.Equal(t, u.String(), id.String())
	})

	t.Run("accepts generated identifiers", func(t *testing.T) {
		generated := NewPublicID()
		id, err := ParsePublicID(generated.String())
		require.NoError(t, err)
		assert.Equal(t, generated, id)
	})
}

func TestParseNumericIDs(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"1", true},
		{" 42 ", true},
		{"0", false},
		{"-3", false},
		{"abc", false},
		{"", false},
		{"1e3", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			uid, err := ParseUserID(tc.in)
			cid, cerr := ParseCertificateID(tc.in)
			if tc.valid {
				require.NoError(t, err)
				require.NoError(t, cerr)
				assert.False(t, uid.IsZero())
				assert.Equal(t, uid.String(), cid.String())
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			assert.True(t, dErrors.HasCode(cerr, dErrors.CodeInvalidInput))
		})
	}
}

func TestRoles(t *testing.T) {
	for _, r := range []Role{RoleDoctor, RoleStaff, RoleAdmin} {
		parsed, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	_, err := ParseRole("patient")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	assert.False(t, RoleDoctor.IsAdministrative())
	assert.True(t, RoleStaff.IsAdministrative())
	assert.True(t, RoleAdmin.IsAdministrative())
}
