package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryTRL serves single-instance deployments and tests.
type InMemoryTRL struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   Clock
}

func NewInMemoryTRL(clock Clock) *InMemoryTRL {
	if clock == nil {
		clock = time.Now
	}
	return &InMemoryTRL{until: map[string]time.Time{}, now: clock}
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	now := t.now()
	expires, skip, err := until(now, jti, ttl)
	if skip || err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweep(now)
	t.until[jti] = expires
	return nil
}

func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	expires, ok := t.until[jti]
	return ok && t.now().Before(expires), nil
}

// sweep drops lapsed entries; called under mu on every write.
func (t *InMemoryTRL) sweep(now time.Time) {
	for jti, expires := range t.until {
		if !now.Before(expires) {
			delete(t.until, jti)
		}
	}
}
