package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/prospect-portal-api/internal/models"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
)

type sessionUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListRoles(ctx context.Context, userID string) ([]models.RoleAssignment, error)
	FindSession(ctx context.Context, id string) (*models.UserSession, error)
}

type sessionCache interface {
	Get(ctx context.Context, userID, sessionID string) (*models.Actor, error)
	Set(ctx context.Context, actor *models.Actor, ttl time.Duration) error
	Delete(ctx context.Context, userID, sessionID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// SessionConfig tunes session context caching.
type SessionConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// SessionService resolves the caller of a request into an Actor carrying exactly one role.
// It is the only place a role is read from storage.
type SessionService struct {
	repo    sessionUserRepository
	cache   sessionCache
	policy  *AccessPolicy
	metrics *MetricsService
	logger  *zap.Logger
	config  SessionConfig
	now     func() time.Time
}

// NewSessionService constructs a SessionService. cache may be nil.
func NewSessionService(repo sessionUserRepository, cache sessionCache, policy *AccessPolicy, metrics *MetricsService, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = DefaultAccessPolicy()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &SessionService{
		repo:    repo,
		cache:   cache,
		policy:  policy,
		metrics: metrics,
		logger:  logger,
		config:  config,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionService) cacheEnabled() bool {
	return s.config.CacheEnabled && s.cache != nil
}

// Resolve turns validated token claims into an Actor, rejecting revoked or expired sessions.
func (s *SessionService) Resolve(ctx context.Context, claims *models.JWTClaims) (*models.Actor, error) {
	if claims == nil || claims.UserID == "" || claims.SessionID() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	sessionID := claims.SessionID()

	if s.cacheEnabled() {
		start := time.Now()
		actor, err := s.cache.Get(ctx, claims.UserID, sessionID)
		s.metrics.RecordSessionLookup(err == nil, time.Since(start))
		if err == nil {
			return actor, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("session cache lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	session, err := s.repo.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.UserID != claims.UserID || !session.Active(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired or revoked")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	roles, err := s.repo.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user role")
	}

	actor := &models.Actor{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      primaryRole(roles),
		SessionID: sessionID,
	}

	if s.cacheEnabled() {
		ttl := s.config.CacheTTL
		if remaining := session.ExpiresAt.Sub(s.now()); remaining < ttl {
			ttl = remaining
		}
		if err := s.cache.Set(ctx, actor, ttl); err != nil {
			s.logger.Warn("failed to cache session", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return actor, nil
}

// Refresh re-resolves a previously resolved actor so long-lived connections observe sign-out and
// role changes.
func (s *SessionService) Refresh(ctx context.Context, actor *models.Actor) (*models.Actor, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	claims := &models.JWTClaims{UserID: actor.UserID, Email: actor.Email, FullName: actor.FullName}
	claims.ID = actor.SessionID
	return s.Resolve(ctx, claims)
}

// CurrentUserWithRoles returns the caller's user record and stored role rows.
// A nil actor yields a nil view rather than an error.
func (s *SessionService) CurrentUserWithRoles(ctx context.Context, actor *models.Actor) (*models.SessionView, error) {
	if actor == nil {
		return nil, nil
	}
	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	roles, err := s.repo.ListRoles(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user roles")
	}
	return &models.SessionView{
		User:  *user,
		Roles: roles,
		Role:  actor.Role,
		Views: s.policy.Views(actor.Role),
	}, nil
}

// Invalidate drops the cached context of the actor's session.
func (s *SessionService) Invalidate(ctx context.Context, actor *models.Actor) error {
	if s == nil || actor == nil || !s.cacheEnabled() {
		return nil
	}
	return s.cache.Delete(ctx, actor.UserID, actor.SessionID)
}

// InvalidateUser drops every cached session of a user so a role change applies on the next request.
func (s *SessionService) InvalidateUser(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteUser(ctx, userID)
}

// primaryRole picks the first recognised role row. Users hold at most one row.
func primaryRole(roles []models.RoleAssignment) models.Role {
	for _, r := range roles {
		if role := models.ParseRole(r.Role); role != models.RoleNone {
			return role
		}
	}
	return models.RoleNone
}
