// Package revocation tracks access tokens withdrawn by logout before their
// natural expiry. Three backends share one contract: a revoked jti stays
// revoked until the token itself would have expired, then it is forgotten.
package revocation

import (
	"fmt"
	"time"

	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/sentinel"
)

type Clock func() time.Time

// until computes when a revocation may be dropped. skip reports a request
// without a jti, which is a no-op for every backend.
func until(now time.Time, jti string, ttl time.Duration) (expires time.Time, skip bool, err error) {
	if jti == "" {
		return time.Time{}, true, nil
	}
	if ttl <= 0 {
		return time.Time{}, false, fmt.Errorf("revocation of %q needs a positive ttl, got %s: %w", jti, ttl, sentinel.ErrInvalidState)
	}
	return now.Add(ttl), false, nil
}
