package handler

import (
	"time"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
)

// IssueRequest uses the field names of the issuing form.
type IssueRequest struct {
	ApplicantFirstName string `json:"applicant_first_name"`
	ApplicantLastName  string `json:"applicant_last_name"`
	ApplicantDOB       string `json:"applicant_dob"`
	ApplicantAddress   string `json:"applicant_address"`
	MedicalFindings    string `json:"medical_findings"`
	IsFit              *bool  `json:"is_fit"`
	ExpiryDate         string `json:"expiry_date,omitempty"`
}

func (r IssueRequest) toCommand() models.IssueCommand {
	return models.IssueCommand{
		FirstName:       r.ApplicantFirstName,
		LastName:        r.ApplicantLastName,
		DateOfBirth:     r.ApplicantDOB,
		Address:         r.ApplicantAddress,
		MedicalFindings: r.MedicalFindings,
		IsFit:           r.IsFit,
		ExpiryDate:      r.ExpiryDate,
	}
}

type IssueResponse struct {
	Message       string `json:"message"`
	CertificateID int64  `json:"certificateId"`
	PublicID      string `json:"publicId"`
	QRPayload     string `json:"qrPayload"`
	Status        string `json:"status"`
	IssueDate     string `json:"issueDate"`
	IsFit         bool   `json:"isFit"`
	Applicant     string `json:"applicant"`
}

func toIssueResponse(r *models.IssueResult) IssueResponse {
	return IssueResponse{
		Message:       "certificate issued successfully",
		CertificateID: int64(r.ID),
		PublicID:      r.PublicID.String(),
		QRPayload:     r.ScannablePayload,
		Status:        string(r.Status),
		IssueDate:     r.IssueDate.UTC().Format(time.RFC3339),
		IsFit:         r.IsFit,
		Applicant:     r.ApplicantDisplayName,
	}
}

// VerifiedCertificate is the public subset shown to verifiers.
type VerifiedCertificate struct {
	ApplicantFirstName string  `json:"applicantFirstName"`
	ApplicantLastName  string  `json:"applicantLastName"`
	ApplicantDOB       string  `json:"applicantDob"`
	IsFit              bool    `json:"isFit"`
	IssueDate          string  `json:"issueDate"`
	ExpiryDate         *string `json:"expiryDate,omitempty"`
	Status             string  `json:"status"`
	DoctorName         string  `json:"doctorName"`
}

type VerifyResponse struct {
	IsValid     bool                 `json:"isValid"`
	Reason      string               `json:"reason,omitempty"`
	Message     string               `json:"message,omitempty"`
	Certificate *VerifiedCertificate `json:"certificate,omitempty"`
}

func toVerifyResponse(r *models.VerificationResult) VerifyResponse {
	if !r.IsValid {
		return VerifyResponse{
			IsValid: false,
			Reason:  string(r.Reason),
			Message: "certificate data may have been tampered with",
		}
	}
	v := r.Certificate
	out := &VerifiedCertificate{
		ApplicantFirstName: v.ApplicantFirstName,
		ApplicantLastName:  v.ApplicantLastName,
		ApplicantDOB:       v.ApplicantDOB.Format(models.DateLayout),
		IsFit:              v.IsFit,
		IssueDate:          v.IssueDate.UTC().Format(time.RFC3339),
		Status:             string(v.Status),
		DoctorName:         v.DoctorName,
	}
	if v.ExpiryDate != nil {
		expiry := v.ExpiryDate.Format(models.DateLayout)
		out.ExpiryDate = &expiry
	}
	return VerifyResponse{IsValid: true, Message: "certificate verified successfully", Certificate: out}
}

// CertificateResponse is the full record for the issuing doctor and staff.
// The digest is never included.
type CertificateResponse struct {
	ID                 int64   `json:"id"`
	PublicID           string  `json:"public_id"`
	DoctorID           int64   `json:"doctor_id"`
	ApplicantFirstName string  `json:"applicant_first_name"`
	ApplicantLastName  string  `json:"applicant_last_name"`
	ApplicantDOB       string  `json:"applicant_dob"`
	ApplicantAddress   string  `json:"applicant_address"`
	MedicalFindings    string  `json:"medical_findings"`
	IsFit              bool    `json:"is_fit"`
	IssueDate          string  `json:"issue_date"`
	ExpiryDate         *string `json:"expiry_date,omitempty"`
	Status             string  `json:"status"`
}

func toCertificateResponse(c *models.Certificate) CertificateResponse {
	resp := CertificateResponse{
		ID:                 int64(c.ID),
		PublicID:           c.PublicID.String(),
		DoctorID:           int64(c.IssuerID),
		ApplicantFirstName: c.ApplicantFirstName,
		ApplicantLastName:  c.ApplicantLastName,
		ApplicantDOB:       c.ApplicantDOB.Format(models.DateLayout),
		ApplicantAddress:   c.ApplicantAddress,
		MedicalFindings:    c.MedicalFindings,
		IsFit:              c.IsFit,
		IssueDate:          c.IssueDate.UTC().Format(time.RFC3339),
		Status:             string(c.Status),
	}
	if c.ExpiryDate != nil {
		expiry := c.ExpiryDate.Format(models.DateLayout)
		resp.ExpiryDate = &expiry
	}
	return resp
}

type SummaryResponse struct {
	ID                 int64  `json:"id"`
	PublicID           string `json:"public_id"`
	DoctorID           int64  `json:"doctor_id"`
	ApplicantFirstName string `json:"applicant_first_name"`
	ApplicantLastName  string `json:"applicant_last_name"`
	IssueDate          string `json:"issue_date"`
	Status             string `json:"status"`
	IsFit              bool   `json:"is_fit"`
}

type ListResponse struct {
	TotalItems   int               `json:"total_items"`
	TotalPages   int               `json:"total_pages"`
	CurrentPage  int               `json:"current_page"`
	Certificates []SummaryResponse `json:"certificates"`
}

// ToListResponse is shared with the admin listing.
func ToListResponse(list *models.ListResult) ListResponse {
	resp := ListResponse{
		TotalItems:   list.Total,
		TotalPages:   list.Page.TotalPages(list.Total),
		CurrentPage:  list.Page.Number,
		Certificates: make([]SummaryResponse, 0, len(list.Items)),
	}
	for _, c := range list.Items {
		resp.Certificates = append(resp.Certificates, SummaryResponse{
			ID:                 int64(c.ID),
			PublicID:           c.PublicID.String(),
			DoctorID:           int64(c.IssuerID),
			ApplicantFirstName: c.ApplicantFirstName,
			ApplicantLastName:  c.ApplicantLastName,
			IssueDate:          c.IssueDate.UTC().Format(time.RFC3339),
			Status:             string(c.Status),
			IsFit:              c.IsFit,
		})
	}
	return resp
}
