package models

import (
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

// Status is the lifecycle state of a certificate.
type Status string

const (
	StatusIssued   Status = "issued"
	StatusVerified Status = "verified"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

// AllStatuses lists every status in display order. Stats are zero-initialised from it.
var AllStatuses = []Status{StatusIssued, StatusVerified, StatusExpired, StatusRevoked}

func (s Status) IsValid() bool {
	switch s {
	case StatusIssued, StatusVerified, StatusExpired, StatusRevoked:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status must be one of: issued, verified, expired, revoked")
	}
	return s, nil
}

// transitions is the table future administrative workflows must go through.
// Nothing in this version executes a transition: verification is read-only
// and expiry/revocation triggers are not defined yet.
var transitions = map[Status][]Status{
	StatusIssued:   {StatusVerified, StatusExpired, StatusRevoked},
	StatusVerified: {StatusExpired, StatusRevoked},
	StatusExpired:  {StatusRevoked},
	StatusRevoked:  nil,
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}
