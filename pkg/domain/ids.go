// Package domain holds the typed identifiers shared across services.
//
// Parse functions are trust-boundary checks: anything reaching a service as a
// typed ID has already been validated, so services never re-parse strings.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

// UserID identifies an account. Doctor profiles share their account's ID.
type UserID int64

// CertificateID is the store-assigned sequential identifier of a certificate.
type CertificateID int64

// PublicID is the random identifier embedded in a certificate's QR code.
type PublicID uuid.UUID

func (id UserID) String() string        { return strconv.FormatInt(int64(id), 10) }
func (id UserID) IsZero() bool          { return id <= 0 }
func (id CertificateID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id CertificateID) IsZero() bool   { return id <= 0 }

// String renders the canonical lowercase form used for storage and signing.
func (id PublicID) String() string { return uuid.UUID(id).String() }
func (id PublicID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewPublicID returns a fresh random (version 4) public identifier.
func NewPublicID() PublicID {
	return PublicID(uuid.New())
}

// ParseUserID parses a positive decimal account ID from a path or claim.
func ParseUserID(s string) (UserID, error) {
	v, err := parsePositive(s, "user ID")
	if err != nil {
		return 0, err
	}
	return UserID(v), nil
}

func ParseCertificateID(s string) (CertificateID, error) {
	v, err := parsePositive(s, "certificate ID")
	if err != nil {
		return 0, err
	}
	return CertificateID(v), nil
}

func parsePositive(s, name string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, name+" is required")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, name+" must be a positive integer")
	}
	return v, nil
}

// ParsePublicID accepts only the canonical 36-character hyphenated form of a
// version 4, RFC 4122 variant UUID. Upper-case hex is accepted and normalised.
// The error never says which check failed.
func ParsePublicID(s string) (PublicID, error) {
	invalid := dErrors.New(dErrors.CodeValidation, "invalid certificate identifier format")
	if len(s) != 36 {
		return PublicID{}, invalid
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return PublicID{}, invalid
	}
	if parsed.Version() != 4 || parsed.Variant() != uuid.RFC4122 {
		return PublicID{}, invalid
	}
	return PublicID(parsed), nil
}

// Role is an account's authorization role.
type Role string

const (
	RoleDoctor Role = "doctor"
	RoleStaff  Role = "dgtt_staff"
	RoleAdmin  Role = "dgtt_admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleDoctor, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsAdministrative reports whether the role belongs to licensing-authority staff.
func (r Role) IsAdministrative() bool {
	return r == RoleStaff || r == RoleAdmin
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}
