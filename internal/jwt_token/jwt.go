package jwttoken

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

// AccessTokenClaims are the claims carried by account access tokens.
type AccessTokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Subject is the account the token was issued to.
type Subject struct {
	UserID id.UserID
	Email  string
	Role   id.Role
}

// IssuedToken is a signed token plus the values callers need for bookkeeping.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

func (s *JWTService) GenerateAccessToken(subject Subject, expiresIn time.Duration) (IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(expiresIn)
	jti := uuid.NewString()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID: subject.UserID.String(),
		Email:  subject.Email,
		Role:   subject.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signedToken, JTI: jti, ExpiresAt: expiresAt}, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Principal converts validated claims into typed identifiers.
func (c *AccessTokenClaims) Principal() (id.UserID, id.Role, error) {
	raw, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil || raw <= 0 {
		return 0, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	role, err := id.ParseRole(c.Role)
	if err != nil {
		return 0, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return id.UserID(raw), role, nil
}
