package models

import (
	"strings"
	"time"

	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	doctormodels "github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sanitize"
)

// AddDoctorCommand onboards a doctor. Specialty, office, and phone are optional.
type AddDoctorCommand struct {
	Email          string
	FirstName      string
	LastName       string
	AgrementNumber string
	PhoneNumber    string
	Specialty      string
	OfficeAddress  string
}

func (c *AddDoctorCommand) Normalize() {
	c.Email = strings.TrimSpace(c.Email)
	c.FirstName = sanitize.Text(c.FirstName)
	c.LastName = sanitize.Text(c.LastName)
	c.AgrementNumber = sanitize.Text(c.AgrementNumber)
	c.PhoneNumber = sanitize.Text(c.PhoneNumber)
	c.Specialty = sanitize.Text(c.Specialty)
	c.OfficeAddress = sanitize.Text(c.OfficeAddress)
}

func (c *AddDoctorCommand) Validate() error {
	fields := make(map[string]string)
	if c.Email == "" {
		fields["email"] = "is required"
	}
	if c.FirstName == "" {
		fields["first_name"] = "is required"
	}
	if c.LastName == "" {
		fields["last_name"] = "is required"
	}
	if c.AgrementNumber == "" {
		fields["agrement_number"] = "is required"
	}
	doctormodels.CheckWidths(fields, map[string]*string{
		"email":           &c.Email,
		"first_name":      &c.FirstName,
		"last_name":       &c.LastName,
		"phone_number":    &c.PhoneNumber,
		"agrement_number": &c.AgrementNumber,
		"specialty":       &c.Specialty,
	})
	if len(fields) > 0 {
		return dErrors.WithFields(dErrors.CodeValidation, "invalid doctor", fields)
	}
	return nil
}

// AddDoctorResult carries the one-time password back to the operator. It
// is never logged or audited.
type AddDoctorResult struct {
	DoctorID          id.UserID
	Email             string
	TemporaryPassword string
	ExpiresAt         time.Time
}

// DoctorPatch is an administrator's edit of a doctor. Nil means unchanged.
type DoctorPatch struct {
	Email          *string
	FirstName      *string
	LastName       *string
	PhoneNumber    *string
	AgrementNumber *string
	Specialty      *string
	OfficeAddress  *string
}

func (p *DoctorPatch) Normalize() {
	if p.Email != nil {
		e := strings.TrimSpace(*p.Email)
		p.Email = &e
	}
	p.FirstName = sanitize.TextPtr(p.FirstName)
	p.LastName = sanitize.TextPtr(p.LastName)
	p.PhoneNumber = sanitize.TextPtr(p.PhoneNumber)
	p.AgrementNumber = sanitize.TextPtr(p.AgrementNumber)
	p.Specialty = sanitize.TextPtr(p.Specialty)
	p.OfficeAddress = sanitize.TextPtr(p.OfficeAddress)
}

func (p *DoctorPatch) IsEmpty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.PhoneNumber == nil &&
		p.AgrementNumber == nil && p.Specialty == nil && p.OfficeAddress == nil
}

func (p *DoctorPatch) Validate() error {
	fields := make(map[string]string)
	for name, v := range map[string]*string{
		"email":           p.Email,
		"first_name":      p.FirstName,
		"last_name":       p.LastName,
		"agrement_number": p.AgrementNumber,
	} {
		if v != nil && *v == "" {
			fields[name] = "cannot be empty"
		}
	}
	doctormodels.CheckWidths(fields, map[string]*string{
		"email":           p.Email,
		"first_name":      p.FirstName,
		"last_name":       p.LastName,
		"phone_number":    p.PhoneNumber,
		"agrement_number": p.AgrementNumber,
		"specialty":       p.Specialty,
	})
	if len(fields) > 0 {
		return dErrors.WithFields(dErrors.CodeValidation, "invalid doctor update", fields)
	}
	return nil
}

// Apply writes the set fields onto d. The self-service subset goes through
// the doctor's own patch so both paths stay in step.
func (p *DoctorPatch) Apply(d *doctormodels.Doctor, now time.Time) {
	if p.Email != nil {
		d.Account.Email = *p.Email
	}
	if p.AgrementNumber != nil {
		d.Profile.AgrementNumber = *p.AgrementNumber
	}
	self := doctormodels.ProfilePatch{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PhoneNumber:   p.PhoneNumber,
		Specialty:     p.Specialty,
		OfficeAddress: p.OfficeAddress,
	}
	self.Apply(d, now)
}

type DoctorList struct {
	Doctors []*doctormodels.Doctor
	Total   int
	Page    certmodels.Page
}

// Dashboard is the administrator's landing summary.
type Dashboard struct {
	Certificates certmodels.Stats
	Doctors      doctormodels.Counts
}
