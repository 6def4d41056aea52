package services

import (
	"context"
	"github.com/devhunt/devhunt-agent/internal/auth"
	"github.com/devhunt/devhunt-agent/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type tokenSession interface {
	NeedsRefresh(ctx context.Context, within time.Duration) (bool, error)
	Refresh(ctx context.Context) error
}

type TokenRefresher struct {
	session       tokenSession
	cron          *cron.Cron
	refreshBefore time.Duration
}

func NewTokenRefresher(session tokenSession, schedule string, refreshBefore time.Duration) (*TokenRefresher, error) {

	if refreshBefore <= 0 {
		return nil, errors.New("refresh window must be greater than zero")
	}

	tr := &TokenRefresher{
		session:       session,
		cron:          cron.New(),
		refreshBefore: refreshBefore,
	}

	_, err := tr.cron.AddFunc(schedule, tr.refreshExpiringToken)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid refresh schedule %q", schedule)
	}

	tr.cron.Start()
	log.Infof("token refresher started, schedule: %s, refresh before: %v", schedule, refreshBefore)
	return tr, nil
}

func (tr *TokenRefresher) Stop() {
	<-tr.cron.Stop().Done()
}

// RefreshIfExpiring refreshes the access token when it expires within the refresh window
// and reports whether it did.
func (tr *TokenRefresher) RefreshIfExpiring(ctx context.Context) (bool, error) {
	needsRefresh, err := tr.session.NeedsRefresh(ctx, tr.refreshBefore)
	if errors.Is(err, auth.ErrNoAccessToken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !needsRefresh {
		return false, nil
	}

	if err = tr.session.Refresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (tr *TokenRefresher) refreshExpiringToken() {
	refreshed, err := tr.RefreshIfExpiring(context.Background())
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAuth).Errorf("Failed to refresh access token: %v", err)
	} else if refreshed {
		log.Infof("Access token was refreshed at %v", time.Now())
	}
}
