package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	upsertRevocation = `INSERT INTO token_revocations (jti, expires_at) VALUES ($1, $2)
ON CONFLICT (jti) DO UPDATE SET expires_at = GREATEST(token_revocations.expires_at, EXCLUDED.expires_at)`
	selectRevocation = `SELECT expires_at FROM token_revocations WHERE jti = $1`
	purgeRevocations = `DELETE FROM token_revocations WHERE expires_at <= $1`
)

// PostgresTRL keeps revocations in token_revocations for deployments with a
// database but no Redis. Lapsed rows are removed by PurgeExpired.
type PostgresTRL struct {
	db  *sql.DB
	now Clock
}

type PostgresTRLOption func(*PostgresTRL)

func WithPostgresClock(clock Clock) PostgresTRLOption {
	return func(t *PostgresTRL) {
		if clock != nil {
			t.now = clock
		}
	}
}

func NewPostgresTRL(db *sql.DB, opts ...PostgresTRLOption) *PostgresTRL {
	t := &PostgresTRL{db: db, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *PostgresTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	expires, skip, err := until(t.now(), jti, ttl)
	if skip || err != nil {
		return err
	}
	if _, err := t.db.ExecContext(ctx, upsertRevocation, jti, expires); err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}
	return nil
}

func (t *PostgresTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	var expires time.Time
	switch err := t.db.QueryRowContext(ctx, selectRevocation, jti).Scan(&expires); {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("load revocation: %w", err)
	}
	return t.now().Before(expires), nil
}

// PurgeExpired removes revocations for tokens that have expired anyway and
// reports how many rows went.
func (t *PostgresTRL) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := t.db.ExecContext(ctx, purgeRevocations, t.now())
	if err != nil {
		return 0, fmt.Errorf("purge revocations: %w", err)
	}
	return res.RowsAffected()
}
