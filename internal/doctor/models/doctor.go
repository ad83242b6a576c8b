package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	authmodels "github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sanitize"
)

// columnWidths are the VARCHAR limits of the users and doctors tables, keyed
// by request field name.
var columnWidths = map[string]int{
	"email":           255,
	"first_name":      100,
	"last_name":       100,
	"phone_number":    30,
	"agrement_number": 50,
	"specialty":       100,
}

// CheckWidths adds a field error for each set value wider than its column.
// Fields that already carry an error keep it.
func CheckWidths(fields map[string]string, values map[string]*string) {
	for name, v := range values {
		limit, bounded := columnWidths[name]
		if !bounded || v == nil {
			continue
		}
		if _, taken := fields[name]; !taken && utf8.RuneCountInString(*v) > limit {
			fields[name] = fmt.Sprintf("must be at most %d characters", limit)
		}
	}
}

// Profile is the professional record attached to a doctor's account. It
// shares the account's ID.
//
// Invariants:
//   - AgrementNumber (the practising licence number) is unique and non-empty
//   - TempPasswordHash and TempPasswordExpiry are set together or not at all
type Profile struct {
	DoctorID           id.UserID
	AgrementNumber     string
	Specialty          string
	OfficeAddress      string
	TempPasswordHash   string
	TempPasswordExpiry *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewProfile validates and builds a profile for an existing account.
func NewProfile(doctorID id.UserID, agrementNumber, specialty, officeAddress string, now time.Time) (*Profile, error) {
	if doctorID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "doctor account is required")
	}
	agrementNumber = strings.TrimSpace(agrementNumber)
	if agrementNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "agrement number is required")
	}
	return &Profile{
		DoctorID:       doctorID,
		AgrementNumber: agrementNumber,
		Specialty:      strings.TrimSpace(specialty),
		OfficeAddress:  strings.TrimSpace(officeAddress),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// SetTemporaryPassword records the hash of a one-time password and its expiry.
func (p *Profile) SetTemporaryPassword(hash string, expiresAt time.Time) {
	p.TempPasswordHash = hash
	p.TempPasswordExpiry = &expiresAt
}

// Doctor joins an account with its profile.
type Doctor struct {
	Account authmodels.User
	Profile Profile
}

// DisplayName is the name printed on verification results.
func (d *Doctor) DisplayName() string {
	return DisplayName(d.Account.FirstName, d.Account.LastName)
}

func DisplayName(first, last string) string {
	return "Dr " + strings.TrimSpace(first+" "+last)
}

// ProfilePatch lists the fields a doctor may change on their own profile.
// Nil means "leave unchanged".
type ProfilePatch struct {
	FirstName     *string
	LastName      *string
	PhoneNumber   *string
	Specialty     *string
	OfficeAddress *string
}

func (p *ProfilePatch) Normalize() {
	p.FirstName = sanitize.TextPtr(p.FirstName)
	p.LastName = sanitize.TextPtr(p.LastName)
	p.PhoneNumber = sanitize.TextPtr(p.PhoneNumber)
	p.Specialty = sanitize.TextPtr(p.Specialty)
	p.OfficeAddress = sanitize.TextPtr(p.OfficeAddress)
}

func (p *ProfilePatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.PhoneNumber == nil &&
		p.Specialty == nil && p.OfficeAddress == nil
}

// Validate rejects blanking out a name and values wider than their column.
func (p *ProfilePatch) Validate() error {
	fields := make(map[string]string)
	if p.FirstName != nil && *p.FirstName == "" {
		fields["first_name"] = "cannot be empty"
	}
	if p.LastName != nil && *p.LastName == "" {
		fields["last_name"] = "cannot be empty"
	}
	CheckWidths(fields, map[string]*string{
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
		"phone_number": p.PhoneNumber,
		"specialty":    p.Specialty,
	})
	if len(fields) > 0 {
		return dErrors.WithFields(dErrors.CodeValidation, "invalid profile update", fields)
	}
	return nil
}

// Apply copies the set fields onto the account and profile.
func (p *ProfilePatch) Apply(d *Doctor, now time.Time) {
	if p.FirstName != nil {
		d.Account.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		d.Account.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		d.Account.PhoneNumber = *p.PhoneNumber
	}
	if p.Specialty != nil {
		d.Profile.Specialty = *p.Specialty
	}
	if p.OfficeAddress != nil {
		d.Profile.OfficeAddress = *p.OfficeAddress
	}
	d.Account.UpdatedAt = now
	d.Profile.UpdatedAt = now
}

// Counts are doctor totals for the admin dashboard.
type Counts struct {
	Total  int
	Active int
}

// Carnet summarises a doctor's issuing activity.
type Carnet struct {
	TotalIssued    int
	IssuedThisYear int
}
