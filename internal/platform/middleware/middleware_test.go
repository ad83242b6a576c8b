package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossygit/digital-medical-certificate-system/pkg/testutil"
)

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/certificates"))
	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestRecoveryRepanicsOnAbort(t *testing.T) {
	h := Recovery(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/api/verify/x"))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, buf.String(), "status=418")
	assert.Contains(t, buf.String(), "path=/api/verify/x")
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/api/certificates", map[string]string{"a": "b"}))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/certificates", "a=b")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = testutil.DoRequest(h, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnsupportedMediaType, "unsupported_media_type")

	rr = testutil.DoRequest(h, testutil.NewRequest(t, http.MethodPost, "/api/auth/logout"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
