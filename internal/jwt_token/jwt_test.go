package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)

var subject = Subject{UserID: 17, Email: "dr.okemba@example.cg", Role: id.RoleDoctor}

const expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(subject, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.JTI)

	claims, err := jwtService.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "17", claims.UserID)
	assert.Equal(t, subject.Email, claims.Email)
	assert.Equal(t, "doctor", claims.Role)
	assert.Equal(t, issued.JTI, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)

	userID, role, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, id.UserID(17), userID)
	assert.Equal(t, id.RoleDoctor, role)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(subject, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(issued.Token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("another-key", "test-issuer", "test-audience")
	issued, err := other.GenerateAccessToken(subject, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(issued.Token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "someone-else")
	issued, err := other.GenerateAccessToken(subject, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(issued.Token)
	require.Error(t, err)
}

func Test_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{UserID: "1", Role: "dgtt_admin"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(signed)
	require.Error(t, err)
}

func Test_Adapter(t *testing.T) {
	issued, err := jwtService.GenerateAccessToken(subject, expiresIn)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID(17), claims.UserID)
	assert.Equal(t, id.RoleDoctor, claims.Role)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)
}

func Test_Principal_RejectsUnknownRole(t *testing.T) {
	c := &AccessTokenClaims{UserID: "3", Role: "superuser"}
	_, _, err := c.Principal()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
