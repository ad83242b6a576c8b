package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	certmodels "github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/doctor/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/postgres"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	txcontext "github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
)

const agrementConstraint = "doctors_agrement_number_key"

// PostgresStore persists doctor profiles and reads them joined with users.
type PostgresStore struct {
	db *sql.DB
}

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

const doctorSelect = `
	SELECT u.id, u.email, u.password_hash, u.role, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
	       COALESCE(u.phone_number, ''), u.is_active, u.created_at, u.updated_at,
	       d.agrement_number, COALESCE(d.specialty, ''), COALESCE(d.office_address, ''),
	       COALESCE(d.temp_password_hash, ''), d.temp_password_expiry, d.created_at, d.updated_at
	FROM doctors d
	JOIN users u ON u.id = d.doctor_id`

func (s *PostgresStore) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO doctors (doctor_id, agrement_number, specialty, office_address,
			temp_password_hash, temp_password_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		int64(profile.DoctorID),
		profile.AgrementNumber,
		profile.Specialty,
		profile.OfficeAddress,
		profile.TempPasswordHash,
		profile.TempPasswordExpiry,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, agrementConstraint, "doctors_pkey") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert doctor profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, doctorID id.UserID) (*models.Doctor, error) {
	return s.findOne(ctx, doctorSelect+` WHERE d.doctor_id = $1`, int64(doctorID))
}

func (s *PostgresStore) FindByAgrement(ctx context.Context, agrementNumber string) (*models.Doctor, error) {
	return s.findOne(ctx, doctorSelect+` WHERE d.agrement_number = $1`, agrementNumber)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Doctor, error) {
	d, err := scanDoctor(s.execer(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE doctors
		SET agrement_number = $2, specialty = $3, office_address = $4,
		    temp_password_hash = NULLIF($5, ''), temp_password_expiry = $6, updated_at = $7
		WHERE doctor_id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		int64(profile.DoctorID),
		profile.AgrementNumber,
		profile.Specialty,
		profile.OfficeAddress,
		profile.TempPasswordHash,
		profile.TempPasswordExpiry,
		profile.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, agrementConstraint) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update doctor profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update doctor profile: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, page certmodels.Page) ([]*models.Doctor, int, error) {
	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count doctors: %w", err)
	}
	if total == 0 {
		return []*models.Doctor{}, 0, nil
	}

	query := doctorSelect + ` ORDER BY u.last_name, u.first_name, u.id LIMIT $1 OFFSET $2`
	rows, err := s.execer(ctx).QueryContext(ctx, query, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	doctors := make([]*models.Doctor, 0, page.Limit)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate doctors: %w", err)
	}
	return doctors, total, nil
}

func (s *PostgresStore) Count(ctx context.Context) (models.Counts, error) {
	var counts models.Counts
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE u.is_active)
		FROM doctors d JOIN users u ON u.id = d.doctor_id
	`
	if err := s.execer(ctx).QueryRowContext(ctx, query).Scan(&counts.Total, &counts.Active); err != nil {
		return models.Counts{}, fmt.Errorf("count doctors: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row rowScanner) (*models.Doctor, error) {
	var (
		d      models.Doctor
		userID int64
		role   string
		expiry sql.NullTime
	)
	err := row.Scan(
		&userID,
		&d.Account.Email,
		&d.Account.PasswordHash,
		&role,
		&d.Account.FirstName,
		&d.Account.LastName,
		&d.Account.PhoneNumber,
		&d.Account.IsActive,
		&d.Account.CreatedAt,
		&d.Account.UpdatedAt,
		&d.Profile.AgrementNumber,
		&d.Profile.Specialty,
		&d.Profile.OfficeAddress,
		&d.Profile.TempPasswordHash,
		&expiry,
		&d.Profile.CreatedAt,
		&d.Profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Account.ID = id.UserID(userID)
	d.Account.Role = id.Role(role)
	d.Profile.DoctorID = d.Account.ID
	if expiry.Valid {
		t := expiry.Time
		d.Profile.TempPasswordExpiry = &t
	}
	return &d, nil
}
