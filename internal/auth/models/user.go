package models

import (
	"net/mail"
	"strings"
	"time"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

// User is an account that can sign in: a doctor or licensing-authority staff.
//
// Invariants:
//   - Email is stored lowercased and is unique across accounts
//   - Role is one of doctor, dgtt_staff, dgtt_admin
//   - PasswordHash is a bcrypt hash, never the cleartext
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	Role         id.Role
	FirstName    string
	LastName     string
	PhoneNumber  string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates and builds an active account. ID is assigned by the store.
func NewUser(email, passwordHash string, role id.Role, firstName, lastName, phone string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email must be a valid address")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown role")
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "first and last name are required")
	}
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		FirstName:    firstName,
		LastName:     lastName,
		PhoneNumber:  strings.TrimSpace(phone),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a bare address such as a@b.cg.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// LoginResult is returned to a successfully authenticated caller.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      *User
}
