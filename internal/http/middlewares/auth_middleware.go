package middlewares

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kumarshivu12/advanced-todo/internal/auth"
	"github.com/kumarshivu12/advanced-todo/internal/config"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/http/response"
)

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserLookup interface {
	GetPublicByID(ctx context.Context, id string) (user.Public, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLookup
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// accessTokenFrom prefers the cookie and falls back to a bearer header.
func accessTokenFrom(c *gin.Context) string {
	if raw, err := c.Cookie(auth.AccessTokenCookie); err == nil && raw != "" {
		return raw
	}

	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// RequireAuth resolves the access token to a user and stores the public
// record on the context. It never mutates anything.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := accessTokenFrom(c)
		if raw == "" {
			response.Abort(c, response.Unauthorized("unauthorized request"))
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			response.Abort(c, response.Unauthorized("invalid access token"))
			return
		}

		cctx, cancel := config.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		me, err := m.users.GetPublicByID(cctx, claims.UserID)
		if err != nil {
			// the user may be gone since the token was issued
			if errors.Is(err, user.ErrNotFound) {
				response.Abort(c, response.Unauthorized("invalid access token"))
				return
			}
			response.Abort(c, response.Internal("something went wrong while authorizing user", err))
			return
		}

		c.Set(CtxIdentity, me)

		c.Next()
	}
}

// IdentityFromContext returns the user attached by RequireAuth.
func IdentityFromContext(c *gin.Context) (user.Public, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return user.Public{}, false
	}
	me, ok := v.(user.Public)
	return me, ok && me.ID != ""
}
