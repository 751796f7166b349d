package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/access"
	"github.com/leolynk/leolynk/internal/actorctx"
	"github.com/leolynk/leolynk/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		}

		actor := access.Actor{
			UserID: claims.UserID,
			ClubID: claims.ClubID,
			Role:   claims.Role,
		}

		// Stash identity on both the gin context and the request context
		c.Set(ctxActorKey, actor)
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// ActorFromContext returns the authenticated caller set by RequireAuth.
func ActorFromContext(c *gin.Context) (access.Actor, bool) {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return access.Actor{}, false
	}
	actor, ok := v.(access.Actor)
	return actor, ok && actor.UserID != ""
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	actor, ok := ActorFromContext(c)
	if !ok {
		return "", false
	}
	return actor.UserID, true
}
