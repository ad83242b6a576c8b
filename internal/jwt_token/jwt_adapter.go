package jwttoken

import (
	authmw "github.com/bossygit/digital-medical-certificate-system/pkg/platform/middleware/auth"
)

// JWTServiceAdapter lets the auth middleware validate tokens without
// depending on the jwt library's claim types.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(raw string) (*authmw.JWTClaims, error) {
	parsed, err := a.service.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	userID, role, err := parsed.Principal()
	if err != nil {
		return nil, err
	}
	claims := &authmw.JWTClaims{UserID: userID, Email: parsed.Email, Role: role, JTI: parsed.ID}
	if exp := parsed.ExpiresAt; exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
