package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prospect-portal-api/internal/models"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
	"github.com/noah-isme/prospect-portal-api/pkg/response"
)

// ContextUserKey is the gin context key storing the resolved *models.Actor.
const ContextUserKey = "currentUser"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

type actorResolver interface {
	Resolve(ctx context.Context, claims *models.JWTClaims) (*models.Actor, error)
}

// JWT protects routes by requiring a valid access token bound to a live session.
func JWT(tokens tokenValidator, sessions actorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}

		actor, err := authenticate(c, tokens, sessions, raw)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, actor)
		c.Next()
	}
}

// OptionalJWT attaches the actor when the token resolves but never blocks. Query endpoints use it
// so anonymous callers get an empty result instead of an error.
func OptionalJWT(tokens tokenValidator, sessions actorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		if actor, err := authenticate(c, tokens, sessions, raw); err == nil {
			c.Set(ContextUserKey, actor)
		}
		c.Next()
	}
}

// ActorFromContext returns the resolved caller, or nil for anonymous requests.
func ActorFromContext(c *gin.Context) *models.Actor {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	actor, _ := value.(*models.Actor)
	return actor
}

func authenticate(c *gin.Context, tokens tokenValidator, sessions actorResolver, raw string) (*models.Actor, error) {
	claims, err := tokens.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	return sessions.Resolve(c.Request.Context(), claims)
}

// bearerToken reads the Authorization header. EventSource clients cannot set headers, so an
// access_token query parameter is accepted as a fallback.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("access_token"); token != "" {
			return token, true
		}
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
