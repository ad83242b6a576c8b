package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/postgres"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	txcontext "github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
)

// PostgresStore persists certificates in PostgreSQL. Content columns are
// written once on insert; there is no update path.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed certificate store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const certificateColumns = `
	id, public_id, doctor_id, applicant_first_name, applicant_last_name, applicant_dob,
	applicant_address, issue_date, expiry_date, medical_findings, is_fit,
	digital_signature, status, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, cert *models.Certificate) (*models.Certificate, error) {
	query := `
		INSERT INTO certificates (
			public_id, doctor_id, applicant_first_name, applicant_last_name, applicant_dob,
			applicant_address, issue_date, expiry_date, medical_findings, is_fit,
			digital_signature, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	var newID int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(cert.PublicID),
		int64(cert.IssuerID),
		cert.ApplicantFirstName,
		cert.ApplicantLastName,
		cert.ApplicantDOB,
		cert.ApplicantAddress,
		cert.IssueDate,
		cert.ExpiryDate,
		cert.MedicalFindings,
		cert.IsFit,
		cert.Signature,
		string(cert.Status),
		cert.CreatedAt,
		cert.UpdatedAt,
	).Scan(&newID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("insert certificate: %w", err)
	}
	stored := *cert
	stored.ID = id.CertificateID(newID)
	return &stored, nil
}

func (s *PostgresStore) FindByPublicID(ctx context.Context, publicID id.PublicID) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE public_id = $1`
	cert, err := scanCertificate(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(publicID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find certificate by public id: %w", err)
	}
	return cert, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = $1`
	cert, err := scanCertificate(s.execer(ctx).QueryRowContext(ctx, query, int64(certID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find certificate by id: %w", err)
	}
	return cert, nil
}

func (s *PostgresStore) ListByIssuer(ctx context.Context, issuerID id.UserID, page models.Page) ([]*models.Certificate, int, error) {
	return s.List(ctx, models.Filter{IssuerID: issuerID}, page)
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter, page models.Page) ([]*models.Certificate, int, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM certificates` + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count certificates: %w", err)
	}
	if total == 0 {
		return []*models.Certificate{}, 0, nil
	}

	listArgs := append(args, page.Limit, page.Offset())
	listQuery := fmt.Sprintf(`SELECT %s FROM certificates%s ORDER BY issue_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		certificateColumns, where, len(args)+1, len(args)+2)
	rows, err := s.execer(ctx).QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	certs := make([]*models.Certificate, 0, page.Limit)
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate certificates: %w", err)
	}
	return certs, total, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	statuses := make([]string, len(models.AllStatuses))
	for i, st := range models.AllStatuses {
		statuses[i] = string(st)
	}
	query := `SELECT status, COUNT(*) FROM certificates WHERE status = ANY($1) GROUP BY status`
	rows, err := s.execer(ctx).QueryContext(ctx, query, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("count certificates by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) CountByIssuer(ctx context.Context, issuerID id.UserID, since time.Time) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM certificates WHERE doctor_id = $1 AND issue_date >= $2`
	if err := s.execer(ctx).QueryRowContext(ctx, query, int64(issuerID), since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count certificates by issuer: %w", err)
	}
	return n, nil
}

func buildWhere(f models.Filter) (string, []any) {
	var clauses []string
	var args []any
	if !f.IssuerID.IsZero() {
		args = append(args, int64(f.IssuerID))
		clauses = append(clauses, fmt.Sprintf("doctor_id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*models.Certificate, error) {
	var (
		c        models.Certificate
		rawID    int64
		publicID uuid.UUID
		doctorID int64
		expiry   sql.NullTime
		status   string
	)
	err := row.Scan(
		&rawID,
		&publicID,
		&doctorID,
		&c.ApplicantFirstName,
		&c.ApplicantLastName,
		&c.ApplicantDOB,
		&c.ApplicantAddress,
		&c.IssueDate,
		&expiry,
		&c.MedicalFindings,
		&c.IsFit,
		&c.Signature,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ID = id.CertificateID(rawID)
	c.PublicID = id.PublicID(publicID)
	c.IssuerID = id.UserID(doctorID)
	c.ApplicantDOB = models.TruncateToDate(c.ApplicantDOB)
	c.Status = models.Status(status)
	if expiry.Valid {
		t := expiry.Time
		c.ExpiryDate = &t
	}
	return &c, nil
}
