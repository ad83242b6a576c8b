// Package signature derives and checks the tamper-evidence digest of a certificate.
//
// The canonical form is the five signed fields joined by "|" in this order:
//
//	firstName|lastName|dateOfBirth|isFit|publicID
//
// with the date as YYYY-MM-DD, the fitness flag as "true"/"false", and the
// public ID in lowercase hyphenated form. The digest is the lowercase hex
// SHA-256 of that string. Issuance and verification must both go through
// Compute; changing the order, the delimiter, or any rendering breaks every
// certificate already issued.
//
// Name fields must not contain the delimiter: "Jean|Marc"+"Dupont" and
// "Jean"+"Marc|Dupont" share a canonical form. Callers reject such values
// with Representable before anything is signed. The other fields are
// rendered here and cannot contain it.
//
// This is an integrity check, not a signature in the asymmetric sense: anyone
// with write access to the store can produce a consistent (fields, digest) pair.
package signature

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
)

// Delimiter separates fields in the canonical string.
const Delimiter = "|"

// Size is the length of a digest in hex characters.
const Size = sha256.Size * 2

// Fields are the immutable certificate values bound by the digest.
type Fields struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	IsFit       bool
	PublicID    string
}

// Canonical renders fields in the fixed order with the fixed delimiter.
func Canonical(f Fields) string {
	return strings.Join([]string{
		f.FirstName,
		f.LastName,
		f.DateOfBirth,
		strconv.FormatBool(f.IsFit),
		strings.ToLower(f.PublicID),
	}, Delimiter)
}

// Representable reports whether v can be placed in a signed field without
// making the canonical form ambiguous.
func Representable(v string) bool {
	return !strings.Contains(v, Delimiter)
}

// Compute returns the lowercase hex SHA-256 of the canonical form.
func Compute(f Fields) string {
	sum := sha256.Sum256([]byte(Canonical(f)))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest and compares it in constant time.
func Verify(f Fields, candidate string) bool {
	expected := Compute(f)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}

// IsWellFormed reports whether s looks like a digest produced by Compute.
// Verification uses it to tell a corrupted digest column from a record whose
// fields were edited.
func IsWellFormed(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
