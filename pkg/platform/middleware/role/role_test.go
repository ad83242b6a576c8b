package role

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	"github.com/bossygit/digital-medical-certificate-system/pkg/testutil"
)

func TestRequireRole(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireRole(logger, id.RoleAdmin, id.RoleStaff)(ok)

	tests := []struct {
		name   string
		userID id.UserID
		role   id.Role
		want   int
	}{
		{"anonymous", 0, "", http.StatusUnauthorized},
		{"doctor forbidden", 5, id.RoleDoctor, http.StatusForbidden},
		{"staff allowed", 6, id.RoleStaff, http.StatusNoContent},
		{"admin allowed", 7, id.RoleAdmin, http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.userID != 0 {
				req = testutil.WithPrincipal(req, tc.userID, tc.role)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
