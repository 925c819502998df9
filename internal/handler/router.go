package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prospect-portal-api/internal/middleware"
	"github.com/noah-isme/prospect-portal-api/internal/models"
	"github.com/noah-isme/prospect-portal-api/internal/service"
)

// RouteDeps bundles what RegisterRoutes wires.
type RouteDeps struct {
	Auth     *AuthHandler
	Prospect *ProspectHandler
	Tokens   *service.AuthService
	Sessions *service.SessionService
	Policy   *service.AccessPolicy
}

// RegisterRoutes mounts the API under api. Query endpoints use optional auth so anonymous callers
// receive null data; mutations require a live session.
func RegisterRoutes(api *gin.RouterGroup, deps RouteDeps) {
	required := middleware.JWT(deps.Tokens, deps.Sessions)
	optional := middleware.OptionalJWT(deps.Tokens, deps.Sessions)

	auth := api.Group("/auth")
	auth.POST("/sign-up", deps.Auth.SignUp)
	auth.POST("/sign-in", deps.Auth.SignIn)
	auth.POST("/sign-out", required, deps.Auth.SignOut)
	auth.GET("/role", optional, deps.Auth.Role)
	auth.GET("/session", optional, deps.Auth.Session)

	prospects := api.Group("/prospects")
	prospects.GET("", optional, deps.Prospect.List)
	prospects.GET("/all", optional, deps.Prospect.ListAll)
	prospects.GET("/latest-approved", optional, deps.Prospect.LatestApproved)
	prospects.GET("/summary", optional, deps.Prospect.Summary)
	prospects.GET("/stream", required, deps.Prospect.Stream)
	prospects.GET("/export", required, middleware.RequireAction(deps.Policy, models.ActionExportProspects), deps.Prospect.Export)
	prospects.GET("/:id", required, deps.Prospect.Get)
	prospects.POST("", required, deps.Prospect.Create)
	prospects.PUT("/:id", required, deps.Prospect.Update)
	prospects.PATCH("/:id/status", required, deps.Prospect.SetStatus)
	prospects.PATCH("/:id/notes", required, deps.Prospect.SetNotes)
}
