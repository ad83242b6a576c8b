// Package secrets produces random credentials and bcrypt hashes for
// account passwords.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

const (
	// TemporaryPasswordBytes of entropy, rendered as 16 hex characters.
	TemporaryPasswordBytes = 8
	signingKeyBytes        = 32
)

func random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read %d random bytes: %w", n, err)
	}
	return b, nil
}

// Generate returns a 256-bit key, URL-safe base64 without padding, sized for
// JWT_SIGNING_KEY.
func Generate() (string, error) {
	b, err := random(signingKeyBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateTemporaryPassword returns the one-time password an administrator
// hands to a newly registered doctor.
func GenerateTemporaryPassword() (string, error) {
	b, err := random(TemporaryPasswordBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", dErrors.New(dErrors.CodeInvalidInput, "password exceeds 72 bytes")
	case err != nil:
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

// Verify returns a CodeInvalidInput error on mismatch so callers can map it
// to a generic credentials failure.
func Verify(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return dErrors.New(dErrors.CodeInvalidInput, "password mismatch")
	default:
		return fmt.Errorf("bcrypt compare: %w", err)
	}
}
