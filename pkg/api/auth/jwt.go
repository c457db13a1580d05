// Package auth issues and validates the bearer tokens the operator API
// accepts. Scopes follow the ASTM F3548-21 naming convention used by real
// USS deployments (utm.strategic_coordination, utm.submit_declaration, ...)
// rather than a generic role string.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope is one of the ASTM-defined OAuth scopes the operator API checks.
type Scope string

const (
	ScopeStrategicCoordination Scope = "utm.strategic_coordination"
	ScopeSubmitDeclaration     Scope = "utm.submit_declaration"
	ScopeConformanceMonitoring Scope = "utm.conformance_monitoring_sa"
	ScopeAdmin                 Scope = "utm.admin"
)

// Claims are the JWT claims issued to operators and peer USS instances.
type Claims struct {
	jwt.RegisteredClaims
	Subject string   `json:"sub"`
	USS     string   `json:"uss,omitempty"`
	Scopes  []string `json:"scope"`
}

// HasScope reports whether the token carries the given scope.
func (c *Claims) HasScope(scope Scope) bool {
	for _, s := range c.Scopes {
		if s == string(scope) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the token carries the admin scope.
func (c *Claims) IsAdmin() bool {
	return c.HasScope(ScopeAdmin)
}

// JWTService issues and validates operator API access tokens.
type JWTService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewJWTService constructs a JWTService. secret signs and verifies tokens
// with HS256; ttl is the lifetime of issued access tokens.
func NewJWTService(secret []byte, issuer, audience string, ttl time.Duration) *JWTService {
	return &JWTService{secret: secret, issuer: issuer, audience: audience, ttl: ttl}
}

// IssueAccessToken mints a signed access token for subject with the given scopes.
func (s *JWTService) IssueAccessToken(subject, uss string, scopes []Scope) (string, error) {
	scopeStrs := make([]string, len(scopes))
	for i, sc := range scopes {
		scopeStrs[i] = string(sc)
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Subject: subject,
		USS:     uss,
		Scopes:  scopeStrs,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken parses and verifies tokenString, returning its claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithAudience(s.audience), jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
