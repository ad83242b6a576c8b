package audit

import (
	"context"
	"time"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// Categories drive retention and routing downstream of the outbox.
type EventCategory string

const (
	// CategoryCompliance covers events with legal or regulatory significance:
	// certificate issuance and changes to doctor accounts.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// failed logins, tamper detections, throttling.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory
	Timestamp  time.Time
	UserID     id.UserID // acting account, zero for anonymous verifiers
	Action     string
	TargetType string
	TargetID   string
	IP         string
	UserAgent  string
	RequestID  string
	Details    map[string]any
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	// Certificate events
	EventCertificateIssued             AuditEvent = "certificate_issued"
	EventCertificateIssueFailed        AuditEvent = "certificate_issue_failed"
	EventCertificateVerified           AuditEvent = "certificate_verified"
	EventCertificateVerificationFailed AuditEvent = "certificate_verification_failed"
	EventCertificateViewed             AuditEvent = "certificate_viewed"

	// Auth events
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventLoginFailed    AuditEvent = "login_failed"
	EventLogout         AuditEvent = "logout"

	// Doctor events
	EventDoctorProfileUpdated AuditEvent = "doctor_profile_updated"

	// Admin events
	EventAdminAddDoctor      AuditEvent = "admin_add_doctor"
	EventAdminUpdateDoctor   AuditEvent = "admin_update_doctor"
	EventAdminActivateDoctor AuditEvent = "admin_activate_doctor"
	EventAdminSuspendDoctor  AuditEvent = "admin_suspend_doctor"
	EventAdminSeeded         AuditEvent = "admin_seeded"

	// Rate limit events
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventCertificateIssued:    CategoryCompliance,
	EventDoctorProfileUpdated: CategoryCompliance,
	EventAdminAddDoctor:       CategoryCompliance,
	EventAdminUpdateDoctor:    CategoryCompliance,
	EventAdminActivateDoctor:  CategoryCompliance,
	EventAdminSeeded:          CategoryCompliance,

	EventCertificateIssueFailed:        CategorySecurity,
	EventCertificateVerificationFailed: CategorySecurity,
	EventLoginFailed:                   CategorySecurity,
	EventAdminSuspendDoctor:            CategorySecurity,
	EventRateLimitExceeded:             CategorySecurity,

	EventCertificateVerified: CategoryOperations,
	EventCertificateViewed:   CategoryOperations,
	EventLoginSucceeded:      CategoryOperations,
	EventLogout:              CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Normalize fills the category and timestamp when the emitter left them empty.
func (e *Event) Normalize(now time.Time) {
	if e.Category == "" {
		e.Category = AuditEvent(e.Action).Category()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
}
