package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/ratelimit/store/bucket"
	"github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit/publisher"
	auditmemory "github.com/bossygit/digital-medical-certificate-system/pkg/platform/audit/store/memory"
	"github.com/bossygit/digital-medical-certificate-system/pkg/requestcontext"
	"github.com/bossygit/digital-medical-certificate-system/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, models.Policy) (*models.Result, error) {
	return nil, errors.New("redis unavailable")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withIP(ip string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ip, "test-agent")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TestPerIP(t *testing.T) {
	policy := models.Policy{Limit: 2, Window: time.Minute}
	audits := auditmemory.NewInMemoryStore()
	m := New(bucket.NewInMemoryBucketStore(), quietLogger(), WithAuditPublisher(publisher.NewPublisher(audits)))
	h := withIP("203.0.113.9", m.PerIP("verify", policy)(okHandler()))

	testutil.Given(t, "a client within its budget", func(t *testing.T) {
		rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/verify/x"))
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))
	})

	testutil.When(t, "the client exceeds the limit", func(t *testing.T) {
		testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/verify/x"))
		rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/verify/x"))

		testutil.Then(t, "it gets 429 with Retry-After", func(t *testing.T) {
			testutil.AssertStatus(t, rr, http.StatusTooManyRequests)
			body := testutil.UnmarshalResponse[models.ExceededResponse](t, rr)
			assert.Equal(t, "rate_limit_exceeded", body.Error)
			assert.Positive(t, body.RetryAfter)
			assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
			assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		})

		testutil.Then(t, "the event is audited", func(t *testing.T) {
			events, err := audits.ListRecent(context.Background(), 10)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, "rate_limit_exceeded", events[0].Action)
			assert.Equal(t, "203.0.113.9", events[0].IP)
		})
	})

	testutil.Then(t, "another address is unaffected", func(t *testing.T) {
		other := withIP("198.51.100.1", m.PerIP("verify", policy)(okHandler()))
		rr := testutil.DoRequest(other, testutil.NewRequest(t, http.MethodGet, "/verify/x"))
		testutil.AssertStatusOK(t, rr)
	})
}

func TestPerIPFailsOpen(t *testing.T) {
	m := New(failingStore{}, quietLogger())
	h := m.PerIP("verify", models.Policy{Limit: 1, Window: time.Minute})(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, testutil.WithClient(httptest.NewRequest(http.MethodGet, "/verify/x", nil), "203.0.113.9", "test-agent"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}

func TestPerIPDisabled(t *testing.T) {
	m := New(failingStore{}, quietLogger(), WithDisabled(true))
	h := m.PerIP("verify", models.Policy{Limit: 1, Window: time.Minute})(okHandler())
	for range 3 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestAnonymizeIP(t *testing.T) {
	assert.Equal(t, "203.0.113.0", anonymizeIP("203.0.113.9"))
	assert.Equal(t, "2001:db8:abcd::", anonymizeIP("2001:db8:abcd:12::1"))
	assert.Equal(t, "invalid", anonymizeIP("nope"))
}
