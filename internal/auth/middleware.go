package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie carrying the bearer token.
const TokenCookie = "token"

const identityKey = "identity"

// Middleware decodes the caller's identity from the token cookie, falling
// back to an Authorization bearer header. The identity is stashed in the
// request context; requests without a valid token proceed unauthenticated and
// are stopped by RequireAuth / RequireRole where needed.
func Middleware(codec *Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if ident, ok := codec.Verify(token); ok {
				c.Set(identityKey, ident)
			}
		}
		c.Next()
	}
}

// RequireAuth aborts with 401 unless an identity was decoded.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if Decide(RequiresAuth, identityPtr(ident, ok)) != Allow {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authenticated"})
			return
		}
		c.Next()
	}
}

// RequireRole aborts with 401 or 403 per the access policy.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		switch Decide(RequiresRole(role), identityPtr(ident, ok)) {
		case DenyUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authenticated"})
		case DenyForbidden:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "not authorized"})
		default:
			c.Next()
		}
	}
}

// IdentityFrom returns the identity decoded for this request, if any.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	ident, ok := v.(Identity)
	return ident, ok
}

func identityPtr(ident Identity, ok bool) *Identity {
	if !ok {
		return nil
	}
	return &ident
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	authz := c.GetHeader("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("bearer "):])
}
