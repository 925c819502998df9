package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/prospect-portal-api/internal/models"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
	"github.com/noah-isme/prospect-portal-api/pkg/response"
)

type authService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResponse, error)
	SignOut(ctx context.Context, actor *models.Actor) error
}

type sessionService interface {
	CurrentUserWithRoles(ctx context.Context, actor *models.Actor) (*models.SessionView, error)
}

// AuthHandler wires HTTP endpoints to the auth and session services.
type AuthHandler struct {
	service  authService
	sessions sessionService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, sessions sessionService) *AuthHandler {
	return &AuthHandler{service: svc, sessions: sessions}
}

// SignUp godoc
// @Summary Register with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignUpRequest true "Sign-up payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sign-up payload"))
		return
	}
	user, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// SignIn godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignInRequest true "Sign-in payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sign-in payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// SignOut godoc
// @Summary Sign out the current session
// @Tags Authentication
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.service.SignOut(c.Request.Context(), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Role godoc
// @Summary Caller's role
// @Description Returns the role string, or null when signed out or no role is assigned.
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/role [get]
func (h *AuthHandler) Role(c *gin.Context) {
	actor := actorFromContext(c)
	if actor == nil || actor.Role == models.RoleNone {
		response.JSON(c, http.StatusOK, nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, actor.Role, nil)
}

// Session godoc
// @Summary Current user with role rows
// @Description Returns null when signed out.
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	view, err := h.sessions.CurrentUserWithRoles(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if view == nil {
		response.JSON(c, http.StatusOK, nil, nil)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
