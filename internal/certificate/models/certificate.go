package models

import (
	"strings"
	"time"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/signature"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

// DateLayout is the calendar-date rendering used in storage, signing, and responses.
const DateLayout = "2006-01-02"

// Certificate is a medical fitness certificate issued to a licence applicant.
//
// Invariants:
//   - PublicID is a random v4 UUID, unique across all certificates, never reused
//   - IssuerID is the doctor who issued it and comes from the authenticated caller
//   - Applicant, medical, and issue-date fields are immutable after creation
//   - Signature is computed once at creation and never overwritten
//   - Status starts as issued
//
// ID is assigned by the store on Create and is zero before that.
type Certificate struct {
	ID                 id.CertificateID `json:"id"`
	PublicID           id.PublicID      `json:"public_id"`
	IssuerID           id.UserID        `json:"doctor_id"`
	ApplicantFirstName string           `json:"applicant_first_name"`
	ApplicantLastName  string           `json:"applicant_last_name"`
	ApplicantDOB       time.Time        `json:"applicant_dob"`
	ApplicantAddress   string           `json:"applicant_address"`
	MedicalFindings    string           `json:"medical_findings"`
	IsFit              bool             `json:"is_fit"`
	IssueDate          time.Time        `json:"issue_date"`
	ExpiryDate         *time.Time       `json:"expiry_date,omitempty"`
	Status             Status           `json:"status"`
	Signature          string           `json:"-"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Applicant groups the applicant and medical content captured at issuance.
type Applicant struct {
	FirstName       string
	LastName        string
	DateOfBirth     time.Time
	Address         string
	MedicalFindings string
	IsFit           bool
	ExpiryDate      *time.Time
}

// NewCertificate builds an issued certificate and seals it with its signature.
func NewCertificate(publicID id.PublicID, issuerID id.UserID, a Applicant, now time.Time) (*Certificate, error) {
	if publicID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "public identifier is required")
	}
	if issuerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "issuer is required")
	}
	if strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant name is required")
	}
	if !signature.Representable(a.FirstName) || !signature.Representable(a.LastName) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant name contains the signature delimiter")
	}
	if a.DateOfBirth.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant date of birth is required")
	}
	if strings.TrimSpace(a.Address) == "" || strings.TrimSpace(a.MedicalFindings) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "address and medical findings are required")
	}

	c := &Certificate{
		PublicID:           publicID,
		IssuerID:           issuerID,
		ApplicantFirstName: a.FirstName,
		ApplicantLastName:  a.LastName,
		ApplicantDOB:       TruncateToDate(a.DateOfBirth),
		ApplicantAddress:   a.Address,
		MedicalFindings:    a.MedicalFindings,
		IsFit:              a.IsFit,
		IssueDate:          now,
		ExpiryDate:         a.ExpiryDate,
		Status:             StatusIssued,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	c.Signature = signature.Compute(c.SignedFields())
	return c, nil
}

// SignedFields returns the values bound by the signature, read from the record.
func (c *Certificate) SignedFields() signature.Fields {
	return signature.Fields{
		FirstName:   c.ApplicantFirstName,
		LastName:    c.ApplicantLastName,
		DateOfBirth: c.ApplicantDOB.Format(DateLayout),
		IsFit:       c.IsFit,
		PublicID:    c.PublicID.String(),
	}
}

// HasValidSignature recomputes the digest over the stored fields.
func (c *Certificate) HasValidSignature() bool {
	return signature.Verify(c.SignedFields(), c.Signature)
}

// IsOwnedBy reports whether the given account issued this certificate.
func (c *Certificate) IsOwnedBy(userID id.UserID) bool {
	return c.IssuerID == userID
}

// ApplicantDisplayName is "First Last".
func (c *Certificate) ApplicantDisplayName() string {
	return strings.TrimSpace(c.ApplicantFirstName + " " + c.ApplicantLastName)
}

// TruncateToDate drops the time of day, keeping the calendar date in UTC.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
