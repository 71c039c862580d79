package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	"github.com/osvita-dev/kids-registry-api/internal/repository"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
)

type sessionRepository interface {
	Save(ctx context.Context, session models.AccessSession) error
	Find(ctx context.Context, id string) (*models.AccessSession, error)
	Delete(ctx context.Context, id string) error
}

// AccessGateConfig configures the operator access gate.
type AccessGateConfig struct {
	Key           string
	SessionSecret string
	SessionTTL    time.Duration
}

// AccessService is the access gate: it compares a submitted key against
// the configured secret and manages the time-boxed session that follows.
// This is a UX gate against casual access, not a security boundary.
type AccessService struct {
	sessions sessionRepository
	logger   *zap.Logger
	config   AccessGateConfig
	now      func() time.Time
}

// NewAccessService constructs an AccessService.
func NewAccessService(sessions sessionRepository, logger *zap.Logger, config AccessGateConfig) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 4 * time.Hour
	}
	return &AccessService{sessions: sessions, logger: logger, config: config, now: time.Now}
}

// SubmitKey checks the candidate against the configured key. A blank key
// and a mismatch are distinct failures; a match opens a session valid for
// the configured window (4h by default) and returns its bearer token.
// There is no lockout or backoff.
func (s *AccessService) SubmitKey(ctx context.Context, candidate string) (*models.SessionInfo, error) {
	if strings.TrimSpace(candidate) == "" {
		return nil, appErrors.Clone(appErrors.ErrEmptyKey, "")
	}
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(s.config.Key)) != 1 {
		s.logger.Warn("access key mismatch")
		return nil, appErrors.Clone(appErrors.ErrWrongKey, "")
	}

	now := s.now().UTC()
	session := models.AccessSession{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	s.logger.Info("session opened", zap.String("session_id", session.ID), zap.Time("expires_at", session.ExpiresAt))
	return &models.SessionInfo{Authenticated: true, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// CheckSession validates a bearer token and its persisted session record.
// A session is valid only while now is before its expiry; a check that
// observes an expired-but-present record purges it so stale state does
// not linger until the scheduled TTL.
func (s *AccessService) CheckSession(ctx context.Context, token string) (*models.AccessSession, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	session, err := s.sessions.Find(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session has been cleared")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	if session.Expired(s.now().UTC()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.Warn("failed to purge expired session", zap.Error(err))
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	}

	return session, nil
}

// Logout clears the session record; the token is useless afterwards even
// though its signature remains valid until expiry.
func (s *AccessService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	s.logger.Info("session closed", zap.String("session_id", claims.SessionID))
	return nil
}

func (s *AccessService) signToken(session models.AccessSession) (string, error) {
	claims := &models.SessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SessionSecret))
}

// parseToken verifies the signature only; expiry is decided by the
// persisted session record, so an expired token can still identify the
// session it belongs to (CheckSession purges it, Logout clears it).
func (s *AccessService) parseToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
