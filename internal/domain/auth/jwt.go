// Package auth verifies bearer tokens issued by the portal's identity service.
// Tokens are never issued here.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "penomoran/internal/core/context"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret string
	// Issuer, when set, must match the iss claim.
	Issuer string
	// Leeway tolerates clock skew between the portal and this service.
	Leeway time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret, issuer string) JWTConfig {
	return JWTConfig{
		Secret: secret,
		Issuer: issuer,
		Leeway: 30 * time.Second,
	}
}

// Claims represents the portal's JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID         string   `json:"uid"`
	Name           string   `json:"name,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	DepartmentCode string   `json:"dept,omitempty"`
}

// JWTService validates HS256 tokens.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// ValidateToken validates JWT and returns user context.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.config.Leeway),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, fmt.Errorf("token carries no user id")
	}

	return &appctx.UserContext{
		UserID:         userID,
		Name:           claims.Name,
		Roles:          claims.Roles,
		DepartmentCode: claims.DepartmentCode,
	}, nil
}
