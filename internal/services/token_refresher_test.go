package services

import (
	"context"
	"github.com/devhunt/devhunt-agent/internal/auth"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type mockSession struct {
	mock.Mock
}

func (m *mockSession) NeedsRefresh(ctx context.Context, within time.Duration) (bool, error) {
	args := m.Called(ctx, within)
	return args.Bool(0), args.Error(1)
}

func (m *mockSession) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestRefresher(t *testing.T, session *mockSession) *TokenRefresher {
	t.Helper()
	refresher, err := NewTokenRefresher(session, "@every 1h", 2*time.Minute)
	require.NoError(t, err)
	t.Cleanup(refresher.Stop)
	return refresher
}

func Test_NewTokenRefresher_When_ArgumentsInvalid_Should_ReturnError(t *testing.T) {
	_, err := NewTokenRefresher(&mockSession{}, "@every 1h", 0)
	assert.Error(t, err)

	_, err = NewTokenRefresher(&mockSession{}, "not a schedule", time.Minute)
	assert.Error(t, err)
}

func Test_RefreshIfExpiring_When_TokenExpiring_Should_Refresh(t *testing.T) {
	session := &mockSession{}
	session.On("NeedsRefresh", mock.Anything, 2*time.Minute).Return(true, nil)
	session.On("Refresh", mock.Anything).Return(nil)
	refresher := newTestRefresher(t, session)

	refreshed, err := refresher.RefreshIfExpiring(context.Background())

	require.NoError(t, err)
	assert.True(t, refreshed)
	session.AssertExpectations(t)
}

func Test_RefreshIfExpiring_When_TokenFresh_Should_NotRefresh(t *testing.T) {
	session := &mockSession{}
	session.On("NeedsRefresh", mock.Anything, 2*time.Minute).Return(false, nil)
	refresher := newTestRefresher(t, session)

	refreshed, err := refresher.RefreshIfExpiring(context.Background())

	require.NoError(t, err)
	assert.False(t, refreshed)
	session.AssertNotCalled(t, "Refresh", mock.Anything)
}

func Test_RefreshIfExpiring_When_LoggedOut_Should_DoNothing(t *testing.T) {
	session := &mockSession{}
	session.On("NeedsRefresh", mock.Anything, 2*time.Minute).Return(false, auth.ErrNoAccessToken)
	refresher := newTestRefresher(t, session)

	refreshed, err := refresher.RefreshIfExpiring(context.Background())

	assert.NoError(t, err)
	assert.False(t, refreshed)
}

func Test_RefreshIfExpiring_When_RefreshFails_Should_ReturnError(t *testing.T) {
	session := &mockSession{}
	session.On("NeedsRefresh", mock.Anything, 2*time.Minute).Return(true, nil)
	session.On("Refresh", mock.Anything).Return(errors.New("token refresh failed"))
	refresher := newTestRefresher(t, session)

	refreshed, err := refresher.RefreshIfExpiring(context.Background())

	assert.Error(t, err)
	assert.False(t, refreshed)
}
