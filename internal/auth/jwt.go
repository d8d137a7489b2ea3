package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognized by the service.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Identity is the authenticated subject derived from a verified token.
// It is never populated from request bodies.
type Identity struct {
	ID   string
	Role string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Claims represents the JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens. Stateless and safe for concurrent
// use.
type Codec struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewCodec creates a codec signing HS256 tokens valid for ttl.
func NewCodec(signingKey, issuer string, ttl time.Duration) *Codec {
	return &Codec{key: []byte(signingKey), issuer: issuer, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue produces a signed token for the subject and role, expiring at the
// returned time.
func (c *Codec) Issue(subjectID, role string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(c.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Verify checks signature and expiry and returns the decoded identity.
// Malformed tokens, bad signatures, and expired tokens all report ok=false;
// callers treat every failure uniformly as unauthenticated.
func (c *Codec) Verify(tokenStr string) (Identity, bool) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.key, nil
	})
	if err != nil {
		return Identity{}, false
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, false
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return Identity{}, false
	}
	role := claims.Role
	if role == "" {
		role = RoleStudent
	}
	return Identity{ID: claims.Subject, Role: role}, true
}
