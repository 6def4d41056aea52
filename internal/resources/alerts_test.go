package resources

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func Test_Alerts_Should_KeepPushOrder(t *testing.T) {
	alerts := NewAlerts(time.Minute)

	first := alerts.Push(SeverityError, "Failed to fetch Skills")
	second := alerts.Push(SeveritySuccess, "Skill created")

	active := alerts.Active()
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, second.ID, active[1].ID)

	latest, found := alerts.Latest()
	require.True(t, found)
	assert.Equal(t, SeveritySuccess, latest.Severity)
}

func Test_Dismiss_Should_RemoveAlert(t *testing.T) {
	alerts := NewAlerts(time.Minute)
	alert := alerts.Push(SeverityInfo, "hello")

	assert.True(t, alerts.Dismiss(alert.ID))
	assert.False(t, alerts.Dismiss(alert.ID))
	assert.Empty(t, alerts.Active())
}

func Test_Alerts_Should_Expire(t *testing.T) {
	alerts := NewAlerts(50 * time.Millisecond)
	alerts.Push(SeverityWarning, "soon gone")

	assert.Eventually(t, func() bool { return len(alerts.Active()) == 0 }, time.Second, 10*time.Millisecond)
	_, found := alerts.Latest()
	assert.False(t, found)
}

func Test_NewAlerts_When_TTLNotPositive_Should_UseDefault(t *testing.T) {
	alerts := NewAlerts(0)

	assert.Equal(t, DefaultAlertTTL, alerts.ttl)
}
