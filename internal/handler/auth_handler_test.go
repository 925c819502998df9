package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prospect-portal-api/internal/middleware"
	"github.com/noah-isme/prospect-portal-api/internal/models"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
)

type authServiceMock struct {
	signInErr  error
	signedOut  *models.Actor
	lastSignIn models.SignInRequest
}

func (m *authServiceMock) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	return &models.User{ID: "u1", Email: req.Email, FullName: req.FullName}, nil
}

func (m *authServiceMock) SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResponse, error) {
	m.lastSignIn = req
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	return &models.SignInResponse{AccessToken: "token", ExpiresIn: 3600, Role: models.RoleExecutive}, nil
}

func (m *authServiceMock) SignOut(ctx context.Context, actor *models.Actor) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	m.signedOut = actor
	return nil
}

type sessionServiceMock struct{}

func (sessionServiceMock) CurrentUserWithRoles(ctx context.Context, actor *models.Actor) (*models.SessionView, error) {
	if actor == nil {
		return nil, nil
	}
	return &models.SessionView{
		User:  models.User{ID: actor.UserID, Email: "m@example.com"},
		Roles: []models.RoleAssignment{{ID: "r1", UserID: actor.UserID, Role: "manager"}},
		Role:  actor.Role,
	}, nil
}

func newAuthTestContext(method, target string, body []byte, actor *models.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "portal-test")
	c.Request = req
	if actor != nil {
		c.Set(middleware.ContextUserKey, actor)
	}
	return c, w
}

func TestAuthHandlerSignIn(t *testing.T) {
	svc := &authServiceMock{}
	handler := NewAuthHandler(svc, sessionServiceMock{})
	body, _ := json.Marshal(map[string]string{"email": "e@example.com", "password": "password123"})
	c, w := newAuthTestContext(http.MethodPost, "/auth/sign-in", body, nil)

	handler.SignIn(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accessToken":"token"`)
	assert.Equal(t, "portal-test", svc.lastSignIn.UserAgent)
}

func TestAuthHandlerSignInFailure(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{signInErr: appErrors.ErrInvalidCredentials}, sessionServiceMock{})
	body, _ := json.Marshal(map[string]string{"email": "e@example.com", "password": "nope"})
	c, w := newAuthTestContext(http.MethodPost, "/auth/sign-in", body, nil)

	handler.SignIn(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerSignUp(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{}, sessionServiceMock{})
	body, _ := json.Marshal(models.SignUpRequest{Email: "n@example.com", Password: "password123", FullName: "N"})
	c, w := newAuthTestContext(http.MethodPost, "/auth/sign-up", body, nil)

	handler.SignUp(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandlerSignOut(t *testing.T) {
	svc := &authServiceMock{}
	handler := NewAuthHandler(svc, sessionServiceMock{})
	actor := &models.Actor{UserID: "u1", SessionID: "s1"}
	c, w := newAuthTestContext(http.MethodPost, "/auth/sign-out", nil, actor)

	handler.SignOut(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, actor, svc.signedOut)
}

func TestAuthHandlerRole(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{}, sessionServiceMock{})

	c, w := newAuthTestContext(http.MethodGet, "/auth/role", nil, nil)
	handler.Role(c)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())

	c, w = newAuthTestContext(http.MethodGet, "/auth/role", nil, &models.Actor{UserID: "u1"})
	handler.Role(c)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())

	c, w = newAuthTestContext(http.MethodGet, "/auth/role", nil, &models.Actor{UserID: "u1", Role: models.RoleManager})
	handler.Role(c)
	assert.JSONEq(t, `{"data":"manager"}`, w.Body.String())
}

func TestAuthHandlerSession(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{}, sessionServiceMock{})

	c, w := newAuthTestContext(http.MethodGet, "/auth/session", nil, nil)
	handler.Session(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())

	c, w = newAuthTestContext(http.MethodGet, "/auth/session", nil, &models.Actor{UserID: "u1", Role: models.RoleManager})
	handler.Session(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"manager"`)
}
