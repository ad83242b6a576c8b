package handler

import (
	"github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
)

type UpdateProfileRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	PhoneNumber   *string `json:"phone_number"`
	Specialty     *string `json:"specialty"`
	OfficeAddress *string `json:"office_address"`
}

func (r UpdateProfileRequest) toPatch() models.ProfilePatch {
	return models.ProfilePatch{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		PhoneNumber:   r.PhoneNumber,
		Specialty:     r.Specialty,
		OfficeAddress: r.OfficeAddress,
	}
}

// ProfileResponse never carries password material.
type ProfileResponse struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	IsActive       bool   `json:"is_active"`
	AgrementNumber string `json:"agrement_number"`
	Specialty      string `json:"specialty,omitempty"`
	OfficeAddress  string `json:"office_address,omitempty"`
}

func toProfileResponse(d *models.Doctor) ProfileResponse {
	return ProfileResponse{
		ID:             int64(d.Account.ID),
		Email:          d.Account.Email,
		FirstName:      d.Account.FirstName,
		LastName:       d.Account.LastName,
		PhoneNumber:    d.Account.PhoneNumber,
		IsActive:       d.Account.IsActive,
		AgrementNumber: d.Profile.AgrementNumber,
		Specialty:      d.Profile.Specialty,
		OfficeAddress:  d.Profile.OfficeAddress,
	}
}

type HistoryItem struct {
	ID                 int64  `json:"id"`
	PublicID           string `json:"public_id"`
	ApplicantFirstName string `json:"applicant_first_name"`
	ApplicantLastName  string `json:"applicant_last_name"`
	IssueDate          string `json:"issue_date"`
	Status             string `json:"status"`
	IsFit              bool   `json:"is_fit"`
}

type HistoryResponse struct {
	TotalItems   int           `json:"total_items"`
	TotalPages   int           `json:"total_pages"`
	CurrentPage  int           `json:"current_page"`
	Certificates []HistoryItem `json:"certificates"`
}

type CarnetResponse struct {
	TotalCertificatesIssued    int `json:"total_certificates_issued"`
	CertificatesIssuedThisYear int `json:"certificates_issued_this_year"`
}
