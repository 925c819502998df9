package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prospect-portal-api/internal/models"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
	"github.com/noah-isme/prospect-portal-api/pkg/response"
)

type actionPolicy interface {
	Can(role models.Role, action models.Action) bool
}

// RequireAction rejects callers whose role may not perform action. Must run after JWT.
func RequireAction(policy actionPolicy, action models.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !policy.Can(actor.Role, action) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
