// Package auth manages the session credentials kept in the credential store.
package auth

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/devhunt/devhunt-agent/internal/clients/devhunt"
	"github.com/devhunt/devhunt-agent/internal/events"
	"github.com/devhunt/devhunt-agent/internal/logger"
	"github.com/devhunt/devhunt-agent/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
)

var (
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrNoAccessToken  = errors.New("no access token")
)

type tokenClient interface {
	ObtainToken(ctx context.Context, username, password string) (devhunt.Tokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (devhunt.Tokens, error)
	ExchangeOAuthCode(ctx context.Context, provider, code string) (devhunt.Tokens, error)
}

// sessionKeys are removed together when the session ends.
var sessionKeys = []string{
	store.KeyAccessToken,
	store.KeyRefreshToken,
	store.KeyMessageList,
	store.KeyApplicationStatus,
}

type Session struct {
	client      tokenClient
	credentials store.KeyValueStore
	bus         EventBus.Bus
}

func NewSession(client tokenClient, credentials store.KeyValueStore, bus EventBus.Bus) (*Session, error) {
	if client == nil {
		return nil, errors.New("token client is nil")
	}
	if credentials == nil {
		return nil, errors.New("credential store is nil")
	}
	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	return &Session{client: client, credentials: credentials, bus: bus}, nil
}

func (s *Session) Login(ctx context.Context, username, password string) error {
	tokens, err := s.client.ObtainToken(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return s.storeTokens(ctx, tokens)
}

func (s *Session) ExchangeOAuth(ctx context.Context, provider, code string) error {
	tokens, err := s.client.ExchangeOAuthCode(ctx, provider, code)
	if err != nil {
		return fmt.Errorf("oauth exchange with %s failed: %w", provider, err)
	}
	return s.storeTokens(ctx, tokens)
}

func (s *Session) Refresh(ctx context.Context) error {
	refreshToken, found, err := s.credentials.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		return errors.Wrap(err, "error reading refresh token")
	}
	if !found || refreshToken == "" {
		return ErrNoRefreshToken
	}

	tokens, err := s.client.RefreshToken(ctx, refreshToken)
	if err != nil {
		if devhunt.IsUnauthorized(err) {
			s.endSession(ctx, "refresh token rejected")
		}
		return fmt.Errorf("token refresh failed: %w", err)
	}

	if tokens.Refresh == "" {
		tokens.Refresh = refreshToken
	}
	return s.storeTokens(ctx, tokens)
}

func (s *Session) Logout(ctx context.Context, reason string) error {
	var errs []error
	for _, key := range sessionKeys {
		if err := s.credentials.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}

	s.bus.Publish(events.SessionEndedTopic, events.SessionEnded{Reason: reason})
	log.Infof("session ended: %s", reason)

	if len(errs) > 0 {
		return errors.Wrapf(errs[0], "logout: %d credential(s) not removed", len(errs))
	}
	return nil
}

// HandleFailure ends the session when err is an authorization failure and reports whether it did.
func (s *Session) HandleFailure(ctx context.Context, err error) bool {
	if !devhunt.IsUnauthorized(err) {
		return false
	}
	s.endSession(ctx, "authorization failure")
	return true
}

func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, found, err := s.credentials.Get(ctx, store.KeyAccessToken)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Errorf("error reading access token: %v", err)
		return false
	}
	return found && token != ""
}

// AccessTokenExpiry reads the exp claim of the stored access token without verifying it;
// the signature is the server's business.
func (s *Session) AccessTokenExpiry(ctx context.Context) (time.Time, error) {
	token, found, err := s.credentials.Get(ctx, store.KeyAccessToken)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "error reading access token")
	}
	if !found || token == "" {
		return time.Time{}, ErrNoAccessToken
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err = jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("access token is not a JWT: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// NeedsRefresh reports whether the access token expires within the given window.
// Tokens without an exp claim never need a refresh.
func (s *Session) NeedsRefresh(ctx context.Context, within time.Duration) (bool, error) {
	expiry, err := s.AccessTokenExpiry(ctx)
	if err != nil {
		return false, err
	}
	if expiry.IsZero() {
		return false, nil
	}
	return time.Until(expiry) <= within, nil
}

func (s *Session) storeTokens(ctx context.Context, tokens devhunt.Tokens) error {
	if err := s.credentials.Set(ctx, store.KeyAccessToken, tokens.Access); err != nil {
		return errors.Wrap(err, "error storing access token")
	}
	if tokens.Refresh == "" {
		return nil
	}
	if err := s.credentials.Set(ctx, store.KeyRefreshToken, tokens.Refresh); err != nil {
		return errors.Wrap(err, "error storing refresh token")
	}
	return nil
}

func (s *Session) endSession(ctx context.Context, reason string) {
	if err := s.Logout(ctx, reason); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Errorf("failed to clear credentials: %v", err)
	}
}
