package httptransport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bossygit/digital-medical-certificate-system/pkg/testutil"
)

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all checks pass", func(t *testing.T) {
		rr := testutil.DoRequest(health(map[string]HealthCheck{"postgres": ok, "redis": ok}),
			testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]string{"postgres": "ok", "redis": "ok"}, resp.Checks)
	})

	t.Run("a failing dependency degrades the service", func(t *testing.T) {
		rr := testutil.DoRequest(health(map[string]HealthCheck{"postgres": ok, "redis": down}),
			testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		resp := testutil.UnmarshalResponse[healthResponse](t, rr)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unavailable", resp.Checks["redis"])
	})

	t.Run("no dependencies configured", func(t *testing.T) {
		rr := testutil.DoRequest(health(nil), testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
	})
}
