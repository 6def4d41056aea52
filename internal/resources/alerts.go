package resources

import (
	"cmp"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"slices"
	"sync/atomic"
	"time"
)

const DefaultAlertTTL = 6 * time.Second

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

type Alert struct {
	ID        uuid.UUID
	Severity  Severity
	Text      string
	CreatedAt time.Time
	seq       uint64
}

// Alerts holds transient user-facing alerts. Each one expires after the ttl unless dismissed earlier.
type Alerts struct {
	cache *cache.Cache
	ttl   time.Duration
	seq   atomic.Uint64
}

func NewAlerts(ttl time.Duration) *Alerts {
	if ttl <= 0 {
		ttl = DefaultAlertTTL
	}
	return &Alerts{cache: cache.New(ttl, ttl), ttl: ttl}
}

func (a *Alerts) Push(severity Severity, text string) Alert {
	alert := Alert{
		ID:        uuid.New(),
		Severity:  severity,
		Text:      text,
		CreatedAt: time.Now(),
		seq:       a.seq.Add(1),
	}
	a.cache.Set(alert.ID.String(), alert, a.ttl)
	return alert
}

// Active returns unexpired alerts, oldest first.
func (a *Alerts) Active() []Alert {
	items := a.cache.Items()
	alerts := make([]Alert, 0, len(items))
	for _, item := range items {
		alerts = append(alerts, item.Object.(Alert))
	}
	slices.SortFunc(alerts, func(x, y Alert) int {
		return cmp.Compare(x.seq, y.seq)
	})
	return alerts
}

func (a *Alerts) Latest() (Alert, bool) {
	active := a.Active()
	if len(active) == 0 {
		return Alert{}, false
	}
	return active[len(active)-1], true
}

func (a *Alerts) Dismiss(id uuid.UUID) bool {
	if _, found := a.cache.Get(id.String()); !found {
		return false
	}
	a.cache.Delete(id.String())
	return true
}
