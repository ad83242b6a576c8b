package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"github.com/bossygit/digital-medical-certificate-system/internal/auth/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/auth/service"
	"github.com/bossygit/digital-medical-certificate-system/internal/auth/store/revocation"
	userstore "github.com/bossygit/digital-medical-certificate-system/internal/auth/store/user"
	jwttoken "github.com/bossygit/digital-medical-certificate-system/internal/jwt_token"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	authmw "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/auth"
	"github.com/bossygit/digital-medical-certificate-system/pkg/secrets"
	"github.com/bossygit/digital-medical-certificate-system/pkg/testutil"
)

// HandlerSuite wires the real login flow: user store, JWT service,
// revocation list, and the auth middleware.
type HandlerSuite struct {
	suite.Suite
	users  *userstore.InMemoryUserStore
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.users = userstore.New()

	hash, err := secrets.Hash("s3cret-pass")
	s.Require().NoError(err)
	u, err := models.NewUser("admin@dgtt.cg", hash, id.RoleAdmin, "Ange", "Mavoungou", "", time.Now())
	s.Require().NoError(err)
	_, err = s.users.Create(context.Background(), u)
	s.Require().NoError(err)

	jwt := jwttoken.NewJWTService("test-signing-key-0123456789abcdef", "medcert", "medcert-api")
	trl := revocation.NewInMemoryTRL(time.Now)
	svc, err := service.New(s.users, jwt, trl, service.WithLogger(logger))
	s.Require().NoError(err)

	h := New(svc, logger)
	r := chi.NewRouter()
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(jwttoken.NewJWTServiceAdapter(jwt), svc, logger))
		h.RegisterAuthenticated(r)
	})
	s.router = r
}

func (s *HandlerSuite) login(email, password string) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password})
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) TestLogin() {
	s.Run("success", func() {
		rr := s.login("ADMIN@dgtt.cg", "s3cret-pass")
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[LoginResponse](s.T(), rr)
		s.NotEmpty(resp.Token)
		s.Equal("Bearer", resp.TokenType)
		s.Equal(int64(24*3600), resp.ExpiresIn)
		s.Equal("dgtt_admin", resp.User.Role)
		s.NotContains(rr.Body.String(), "password")
	})

	s.Run("wrong password", func() {
		rr := s.login("admin@dgtt.cg", "nope")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("suspended account", func() {
		u, err := s.users.FindByEmail(context.Background(), "admin@dgtt.cg")
		s.Require().NoError(err)
		u.IsActive = false
		s.Require().NoError(s.users.Update(context.Background(), u))

		rr := s.login("admin@dgtt.cg", "s3cret-pass")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}

func (s *HandlerSuite) TestLogoutRevokesToken() {
	testutil.Given(s.T(), "a logged-in account", func(t *testing.T) {
		rr := s.login("admin@dgtt.cg", "s3cret-pass")
		testutil.AssertStatusOK(t, rr)
		token := testutil.UnmarshalResponse[LoginResponse](t, rr).Token

		logout := func() *httptest.ResponseRecorder {
			req := testutil.NewRequest(t, http.MethodPost, "/auth/logout")
			req.Header.Set("Authorization", "Bearer "+token)
			return testutil.DoRequest(s.router, req)
		}

		testutil.When(t, "it logs out", func(t *testing.T) {
			testutil.AssertStatusOK(t, logout())

			testutil.Then(t, "the same token is rejected", func(t *testing.T) {
				rr := logout()
				testutil.AssertStatus(t, rr, http.StatusUnauthorized)
				s.Contains(rr.Body.String(), "revoked")
			})
		})
	})
}

func (s *HandlerSuite) TestNotImplemented() {
	for _, path := range []string{"/auth/first-login", "/auth/request-password-reset", "/auth/reset-password"} {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, path, `{}`))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotImplemented, "not_implemented")
	}
}
