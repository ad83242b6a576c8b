package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/signature"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sanitize"
)

// MaxApplicantNameLength is the width of the applicant name columns.
const MaxApplicantNameLength = 100

// IssueCommand is the doctor-supplied content of a new certificate. The
// issuer never comes from here; it is taken from the authenticated caller.
type IssueCommand struct {
	FirstName       string
	LastName        string
	DateOfBirth     string
	Address         string
	MedicalFindings string
	IsFit           *bool
	ExpiryDate      string
}

// Normalize strips markup and surrounding whitespace from every text field.
// It runs before signing so the digest binds the stored values.
func (c *IssueCommand) Normalize() {
	c.FirstName = sanitize.Text(c.FirstName)
	c.LastName = sanitize.Text(c.LastName)
	c.DateOfBirth = strings.TrimSpace(c.DateOfBirth)
	c.Address = sanitize.Text(c.Address)
	c.MedicalFindings = sanitize.Text(c.MedicalFindings)
	c.ExpiryDate = strings.TrimSpace(c.ExpiryDate)
}

// Applicant validates the command and returns the parsed applicant content.
// All problems are reported together, keyed by request field name.
func (c *IssueCommand) Applicant() (Applicant, error) {
	fields := make(map[string]string)
	required := func(name, v string) {
		if v == "" {
			fields[name] = "is required"
		}
	}
	signedName := func(name, v string) {
		switch {
		case v == "":
			fields[name] = "is required"
		case !signature.Representable(v):
			fields[name] = "must not contain " + signature.Delimiter
		case utf8.RuneCountInString(v) > MaxApplicantNameLength:
			fields[name] = fmt.Sprintf("must be at most %d characters", MaxApplicantNameLength)
		}
	}
	signedName("applicant_first_name", c.FirstName)
	signedName("applicant_last_name", c.LastName)
	required("applicant_address", c.Address)
	required("medical_findings", c.MedicalFindings)

	var dob time.Time
	if c.DateOfBirth == "" {
		fields["applicant_dob"] = "is required"
	} else {
		parsed, err := time.Parse(DateLayout, c.DateOfBirth)
		if err != nil {
			fields["applicant_dob"] = "must be a valid date (YYYY-MM-DD)"
		}
		dob = parsed
	}

	if c.IsFit == nil {
		fields["is_fit"] = "is required"
	}

	var expiry *time.Time
	if c.ExpiryDate != "" {
		parsed, err := ParseDate(c.ExpiryDate)
		if err != nil {
			fields["expiry_date"] = "must be a valid date (YYYY-MM-DD or RFC3339)"
		} else {
			expiry = &parsed
		}
	}

	if len(fields) > 0 {
		return Applicant{}, dErrors.WithFields(dErrors.CodeValidation, "invalid certificate request", fields)
	}
	return Applicant{
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		DateOfBirth:     dob,
		Address:         c.Address,
		MedicalFindings: c.MedicalFindings,
		IsFit:           *c.IsFit,
		ExpiryDate:      expiry,
	}, nil
}

// ParseDate accepts a calendar date or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
