package notifications

import (
	"context"
	"encoding/json"
	"github.com/asaskevich/EventBus"
	"github.com/devhunt/devhunt-agent/internal/events"
	"github.com/devhunt/devhunt-agent/internal/logger"
	"github.com/devhunt/devhunt-agent/internal/store"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"slices"
	"strings"
	"sync"
)

// ApplicationStatus is the persisted form of a recruiter response to an application.
type ApplicationStatus struct {
	ID   string `json:"id"`
	Mess string `json:"mess"`
}

// Feed is the ordered notification log behind the unread badge.
type Feed struct {
	credentials store.KeyValueStore

	mu   sync.Mutex
	raw  []string
	read int
}

func NewFeed(ctx context.Context, credentials store.KeyValueStore, bus EventBus.Bus) (*Feed, error) {
	if credentials == nil {
		return nil, errors.New("credential store is nil")
	}
	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	f := &Feed{credentials: credentials, raw: []string{}}
	f.raw = f.restore(ctx)
	f.read = len(f.raw)

	if err := bus.Subscribe(events.NotificationReceivedTopic, f.onNotificationReceived); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.SessionEndedTopic, f.onSessionEnded); err != nil {
		return nil, err
	}
	return f, nil
}

// Add appends a raw notification. The connect sentinel and blank payloads are ignored.
func (f *Feed) Add(raw string) (Message, bool) {
	if strings.TrimSpace(raw) == "" || raw == ConnectedMessage {
		return Message{}, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.raw = append(f.raw, raw)
	f.persistLocked(context.Background())

	return ParseMessage(len(f.raw)-1, raw), true
}

func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.raw) - f.read
}

// Open marks the whole log as read.
func (f *Feed) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = len(f.raw)
}

// List returns the log in insertion order, newest last.
func (f *Feed) List(filter Filter) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.Filter(f.messagesLocked(), func(m Message, _ int) bool {
		return filter.accepts(m)
	})
}

func (f *Feed) Statuses() []ApplicationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return statusesOf(f.messagesLocked())
}

// Clear drops the log in memory and in the credential store.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.raw = []string{}
	f.read = 0

	ctx := context.Background()
	for _, key := range []string{store.KeyMessageList, store.KeyApplicationStatus} {
		if err := f.credentials.Remove(ctx, key); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Errorf("can't remove %s: %v", key, err)
		}
	}
}

func (f *Feed) messagesLocked() []Message {
	return lo.Map(f.raw, func(raw string, i int) Message {
		message := ParseMessage(i, raw)
		message.Read = i < f.read
		return message
	})
}

func statusesOf(messages []Message) []ApplicationStatus {
	return lo.FilterMap(messages, func(m Message, _ int) (ApplicationStatus, bool) {
		if !m.HasJobLink() || !IsResponse(m.Text) {
			return ApplicationStatus{}, false
		}
		return ApplicationStatus{ID: m.JobID, Mess: m.Text}, true
	})
}

func (f *Feed) restore(ctx context.Context) []string {
	var raw []string
	if err := f.load(ctx, store.KeyMessageList, &raw); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Warnf("can't restore notification history: %v", err)
		return []string{}
	}
	return lo.Filter(raw, func(r string, _ int) bool {
		return strings.TrimSpace(r) != "" && r != ConnectedMessage
	})
}

// persistLocked writes the log and the derived statuses, skipping values equal to what is stored.
func (f *Feed) persistLocked(ctx context.Context) {

	var storedRaw []string
	if err := f.load(ctx, store.KeyMessageList, &storedRaw); err != nil || !slices.Equal(storedRaw, f.raw) {
		f.save(ctx, store.KeyMessageList, f.raw)
	}

	statuses := statusesOf(f.messagesLocked())
	var storedStatuses []ApplicationStatus
	if err := f.load(ctx, store.KeyApplicationStatus, &storedStatuses); err != nil || !slices.Equal(storedStatuses, statuses) {
		f.save(ctx, store.KeyApplicationStatus, statuses)
	}
}

func (f *Feed) load(ctx context.Context, key string, target any) error {
	value, found, err := f.credentials.Get(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return errors.Wrapf(json.Unmarshal([]byte(value), target), "decode %s", key)
}

func (f *Feed) save(ctx context.Context, key string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		log.Errorf("can't encode %s: %v", key, err)
		return
	}
	if err := f.credentials.Set(ctx, key, string(encoded)); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Errorf("can't persist %s: %v", key, err)
	}
}

func (f *Feed) onNotificationReceived(event events.NotificationReceived) {
	f.Add(event.Message)
}

func (f *Feed) onSessionEnded(_ events.SessionEnded) {
	f.Clear()
}
