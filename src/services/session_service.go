package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/security"
)

const (
	ckSession           = "session_%s"
	SessionCacheTTL     = 5 * time.Minute
	SessionCacheCleanup = 10 * time.Minute
)

type sessionServiceImpl struct {
	db     *sql.DB
	api    *apiclient.Client
	sealer *security.TokenSealer
	cache  *cache.Cache
	maxAge time.Duration
	now    func() time.Time
}

func NewSessionService(db *sql.DB, api *apiclient.Client, sealer *security.TokenSealer, sessionCache *cache.Cache, maxAge time.Duration) SessionService {
	return &sessionServiceImpl{
		db:     db,
		api:    api,
		sealer: sealer,
		cache:  sessionCache,
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (s *sessionServiceImpl) Login(ctx context.Context, username, password, userAgent, clientIP string) (*Principal, error) {
	log := logger.FromContext(ctx)

	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	me, err := s.api.Me(ctx, res.AccessToken)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := security.SessionExpiry(res.AccessToken, now, s.maxAge)
	if !expiresAt.After(now) {
		return nil, &apiclient.Error{Kind: apiclient.KindUnauthorized, Message: "remote token already expired"}
	}

	sealed, err := s.sealer.Seal(res.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to seal access token: %w", err)
	}

	role := me.Role
	if role == "" {
		role = res.Role
	}
	session := &model.Session{
		ID:          uuid.NewString(),
		UserID:      me.ID,
		Username:    me.Username,
		Role:        role,
		SealedToken: sealed,
		UserAgent:   userAgent,
		ClientIP:    clientIP,
		ExpiresAt:   expiresAt,
	}
	if err := model.CreateSession(s.db, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	p := &Principal{
		SessionID: session.ID,
		UserID:    session.UserID,
		Username:  session.Username,
		Role:      session.Role,
		Token:     res.AccessToken,
		ExpiresAt: session.ExpiresAt,
	}
	s.remember(p, now)
	log.Info("Session created", "userID", p.UserID, "role", p.Role, "expiresAt", p.ExpiresAt)
	return p, nil
}

func (s *sessionServiceImpl) remember(p *Principal, now time.Time) {
	ttl := p.ExpiresAt.Sub(now)
	if ttl > SessionCacheTTL {
		ttl = SessionCacheTTL
	}
	if ttl > 0 {
		s.cache.Set(fmt.Sprintf(ckSession, p.SessionID), p, ttl)
	}
}

func (s *sessionServiceImpl) Lookup(ctx context.Context, sessionID string) (*Principal, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	key := fmt.Sprintf(ckSession, sessionID)

	if cached, found := s.cache.Get(key); found {
		p := cached.(*Principal)
		if now.Before(p.ExpiresAt) {
			return p, nil
		}
		s.cache.Delete(key)
		return nil, ErrSessionNotFound
	}

	session, err := model.GetSessionByID(s.db, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Expired(now) {
		return nil, ErrSessionNotFound
	}

	token, err := s.sealer.Open(session.SealedToken)
	if err != nil {
		// Sealed under a rotated secret; the session cannot be used again.
		logger.FromContext(ctx).Warn("Dropping session with unreadable token", "userID", session.UserID)
		_ = model.DeleteSessionByID(s.db, sessionID)
		return nil, ErrSessionNotFound
	}

	if err := model.TouchSession(s.db, sessionID, now); err != nil {
		logger.FromContext(ctx).Warn("Failed to update session last_seen_at", "error", err)
	}

	p := &Principal{
		SessionID: session.ID,
		UserID:    session.UserID,
		Username:  session.Username,
		Role:      session.Role,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}
	s.remember(p, now)
	return p, nil
}

func (s *sessionServiceImpl) Logout(ctx context.Context, sessionID string) error {
	s.cache.Delete(fmt.Sprintf(ckSession, sessionID))
	if err := model.DeleteSessionByID(s.db, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	logger.FromContext(ctx).Info("Session cleared", "sessionID", sessionID)
	return nil
}

func (s *sessionServiceImpl) PurgeExpired() (int64, error) {
	return model.DeleteExpiredSessions(s.db, s.now())
}
