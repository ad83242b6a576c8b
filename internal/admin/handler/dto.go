package handler

import (
	"time"

	"github.com/bossygit/digital-medical-certificate-system/internal/admin/models"
	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	doctormodels "github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	audit "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit"
)

type AddDoctorRequest struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	AgrementNumber string `json:"agrement_number"`
	PhoneNumber    string `json:"phone_number"`
	Specialty      string `json:"specialty"`
	OfficeAddress  string `json:"office_address"`
}

func (r AddDoctorRequest) toCommand() models.AddDoctorCommand {
	return models.AddDoctorCommand{
		Email:          r.Email,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		AgrementNumber: r.AgrementNumber,
		PhoneNumber:    r.PhoneNumber,
		Specialty:      r.Specialty,
		OfficeAddress:  r.OfficeAddress,
	}
}

// AddDoctorResponse is the only place the temporary password ever appears.
type AddDoctorResponse struct {
	Message           string `json:"message"`
	DoctorID          int64  `json:"doctor_id"`
	UserID            int64  `json:"user_id"`
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporary_password"`
	ExpiresAt         string `json:"temporary_password_expires_at"`
}

type UpdateDoctorRequest struct {
	Email          *string `json:"email"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	PhoneNumber    *string `json:"phone_number"`
	AgrementNumber *string `json:"agrement_number"`
	Specialty      *string `json:"specialty"`
	OfficeAddress  *string `json:"office_address"`
}

func (r UpdateDoctorRequest) toPatch() models.DoctorPatch {
	return models.DoctorPatch{
		Email:          r.Email,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		PhoneNumber:    r.PhoneNumber,
		AgrementNumber: r.AgrementNumber,
		Specialty:      r.Specialty,
		OfficeAddress:  r.OfficeAddress,
	}
}

type StatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// DoctorResponse omits the temporary password hash and expiry.
type DoctorResponse struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	IsActive       bool   `json:"is_active"`
	AgrementNumber string `json:"agrement_number"`
	Specialty      string `json:"specialty,omitempty"`
	OfficeAddress  string `json:"office_address,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toDoctorResponse(d *doctormodels.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:             int64(d.Account.ID),
		Email:          d.Account.Email,
		FirstName:      d.Account.FirstName,
		LastName:       d.Account.LastName,
		PhoneNumber:    d.Account.PhoneNumber,
		IsActive:       d.Account.IsActive,
		AgrementNumber: d.Profile.AgrementNumber,
		Specialty:      d.Profile.Specialty,
		OfficeAddress:  d.Profile.OfficeAddress,
		CreatedAt:      d.Profile.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type DoctorListResponse struct {
	TotalItems  int              `json:"total_items"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
	Doctors     []DoctorResponse `json:"doctors"`
}

func toDoctorListResponse(list *models.DoctorList) DoctorListResponse {
	resp := DoctorListResponse{
		TotalItems:  list.Total,
		TotalPages:  list.Page.TotalPages(list.Total),
		CurrentPage: list.Page.Number,
		Doctors:     make([]DoctorResponse, 0, len(list.Doctors)),
	}
	for _, d := range list.Doctors {
		resp.Doctors = append(resp.Doctors, toDoctorResponse(d))
	}
	return resp
}

type StatsResponse struct {
	TotalCertificates int            `json:"total_certificates"`
	CountByStatus     map[string]int `json:"count_by_status"`
}

func toStatsResponse(stats certmodels.Stats) StatsResponse {
	by := make(map[string]int, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		by[string(status)] = n
	}
	return StatsResponse{TotalCertificates: stats.Total, CountByStatus: by}
}

type DashboardResponse struct {
	StatsResponse
	TotalDoctors  int `json:"total_doctors"`
	ActiveDoctors int `json:"active_doctors"`
}

type AuditEntry struct {
	Timestamp  string         `json:"timestamp"`
	Category   string         `json:"category"`
	UserID     int64          `json:"user_id,omitempty"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	IP         string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

type AuditResponse struct {
	Entries []AuditEntry `json:"entries"`
}

func toAuditResponse(events []audit.Event) AuditResponse {
	resp := AuditResponse{Entries: make([]AuditEntry, 0, len(events))}
	for _, e := range events {
		resp.Entries = append(resp.Entries, AuditEntry{
			Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
			Category:   string(e.Category),
			UserID:     int64(e.UserID),
			Action:     e.Action,
			TargetType: e.TargetType,
			TargetID:   e.TargetID,
			IP:         e.IP,
			UserAgent:  e.UserAgent,
			RequestID:  e.RequestID,
			Details:    e.Details,
		})
	}
	return resp
}
