package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/postgres"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
	txcontext "github.com/bossygit/digital-medical-certificate-system/pkg/platform/tx"
)

// PostgresStore persists accounts in the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const userColumns = `id, email, password_hash, role, first_name, last_name, phone_number, is_active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, role, first_name, last_name, phone_number, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var newID int64
	err := s.execer(ctx).QueryRowContext(ctx, query,
		models.NormalizeEmail(user.Email),
		user.PasswordHash,
		string(user.Role),
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&newID)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	stored := *user
	stored.ID = id.UserID(newID)
	stored.Email = models.NormalizeEmail(user.Email)
	return &stored, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, int64(userID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`, models.NormalizeEmail(email))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u     models.User
		rawID int64
		role  string
		phone sql.NullString
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, arg).Scan(
		&rawID, &u.Email, &u.PasswordHash, &role, &u.FirstName, &u.LastName,
		&phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = id.UserID(rawID)
	u.Role = id.Role(role)
	u.PhoneNumber = phone.String
	return &u, nil
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, password_hash = $3, first_name = $4, last_name = $5,
		    phone_number = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		int64(user.ID),
		models.NormalizeEmail(user.Email),
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.IsActive,
		user.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, int64(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
