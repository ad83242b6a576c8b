package models

import (
	"time"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
)

// IssueResult is what the issuing doctor gets back. It never carries the
// signature or the signed field preimage beyond the display name.
type IssueResult struct {
	ID                   id.CertificateID
	PublicID             id.PublicID
	ScannablePayload     string
	Status               Status
	IssueDate            time.Time
	IsFit                bool
	ApplicantDisplayName string
}

// VerificationReason explains a negative verification outcome.
type VerificationReason string

const (
	ReasonTampered VerificationReason = "tampered"
	ReasonNotFound VerificationReason = "not_found"
)

// RedactedView is the public subset of a certificate shown to anonymous
// verifiers. Address, internal ID, and digest are intentionally absent.
type RedactedView struct {
	ApplicantFirstName string
	ApplicantLastName  string
	ApplicantDOB       time.Time
	IsFit              bool
	IssueDate          time.Time
	ExpiryDate         *time.Time
	Status             Status
	DoctorName         string
}

// VerificationResult is the typed outcome of verifying a public identifier.
// Certificate is set only when IsValid is true.
type VerificationResult struct {
	IsValid     bool
	Reason      VerificationReason
	Certificate *RedactedView
}

// NewRedactedView projects a certificate onto the public verification contract.
func NewRedactedView(c *Certificate, doctorName string) *RedactedView {
	return &RedactedView{
		ApplicantFirstName: c.ApplicantFirstName,
		ApplicantLastName:  c.ApplicantLastName,
		ApplicantDOB:       c.ApplicantDOB,
		IsFit:              c.IsFit,
		IssueDate:          c.IssueDate,
		ExpiryDate:         c.ExpiryDate,
		Status:             c.Status,
		DoctorName:         doctorName,
	}
}

// Summary is the list-row form used by histories and admin listings.
type Summary struct {
	ID                 id.CertificateID
	PublicID           id.PublicID
	IssuerID           id.UserID
	ApplicantFirstName string
	ApplicantLastName  string
	IssueDate          time.Time
	Status             Status
	IsFit              bool
}

func NewSummary(c *Certificate) Summary {
	return Summary{
		ID:                 c.ID,
		PublicID:           c.PublicID,
		IssuerID:           c.IssuerID,
		ApplicantFirstName: c.ApplicantFirstName,
		ApplicantLastName:  c.ApplicantLastName,
		IssueDate:          c.IssueDate,
		Status:             c.Status,
		IsFit:              c.IsFit,
	}
}

// Page bounds a listing query.
type Page struct {
	Number int
	Limit  int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// NewPage clamps page number and limit to sane bounds.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages returns ceil(total/limit).
func (p Page) TotalPages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// ListResult is one page of certificate summaries.
type ListResult struct {
	Items []Summary
	Total int
	Page  Page
}

// Filter narrows admin listings.
type Filter struct {
	IssuerID id.UserID
	Statuses []Status
}

// Stats are certificate counts by status. Every status is present, even at zero.
type Stats struct {
	Total    int
	ByStatus map[Status]int
}

// NewStats returns zeroed counts for all statuses.
func NewStats() Stats {
	by := make(map[Status]int, len(AllStatuses))
	for _, s := range AllStatuses {
		by[s] = 0
	}
	return Stats{ByStatus: by}
}

// IssuerCounts feeds the doctor's carnet summary.
type IssuerCounts struct {
	Total    int
	ThisYear int
}
