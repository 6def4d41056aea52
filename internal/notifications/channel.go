// Package notifications keeps the real-time notification channel alive and turns its
// frames into a notification feed.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/devhunt/devhunt-agent/internal/events"
	"github.com/devhunt/devhunt-agent/internal/logger"
	"github.com/devhunt/devhunt-agent/internal/metrics"
	"github.com/devhunt/devhunt-agent/internal/store"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ConnectedMessage is the initial LatestMessage. It is not a notification.
const ConnectedMessage = "You are connected to Websocket"

const (
	DefaultRetryDelay  = 5 * time.Second
	DefaultDialTimeout = 10 * time.Second
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Closing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Conn is one open duplex connection.
type Conn interface {
	// ReadMessage blocks until the next data frame. A close handshake is reported as *CloseError.
	ReadMessage() ([]byte, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// CloseError means the peer closed the connection cleanly.
type CloseError struct {
	Code   int
	Reason string
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("connection closed with code %d: %s", e.Code, e.Reason)
}

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after delay.
type Scheduler func(delay time.Duration, f func()) Timer

func afterFunc(delay time.Duration, f func()) Timer {
	return time.AfterFunc(delay, f)
}

type frame struct {
	Message *string `json:"message"`
}

type Channel struct {
	baseURL     string
	credentials store.KeyValueStore
	bus         EventBus.Bus
	dialer      Dialer
	schedule    Scheduler
	retryDelay  time.Duration
	dialTimeout time.Duration

	mu         sync.Mutex
	topic      string
	state      State
	latest     string
	conn       Conn
	generation uint64
	retryTimer Timer
}

func NewChannel(baseURL string, credentials store.KeyValueStore, bus EventBus.Bus) (*Channel, error) {
	if credentials == nil {
		return nil, errors.New("credential store is nil")
	}
	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	c := &Channel{
		baseURL:     strings.TrimRight(baseURL, "/"),
		credentials: credentials,
		bus:         bus,
		dialer:      NewWSDialer(DefaultDialTimeout),
		schedule:    afterFunc,
		retryDelay:  DefaultRetryDelay,
		dialTimeout: DefaultDialTimeout,
		latest:      ConnectedMessage,
	}

	if err := bus.Subscribe(events.SessionEndedTopic, c.onSessionEnded); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Channel) SetDialer(dialer Dialer) {
	c.dialer = dialer
}

func (c *Channel) SetScheduler(scheduler Scheduler) {
	c.schedule = scheduler
}

func (c *Channel) SetRetryDelay(delay time.Duration) {
	c.retryDelay = delay
}

func (c *Channel) SetDialTimeout(timeout time.Duration) {
	c.dialTimeout = timeout
}

// Connect replaces any existing connection with one subscribed to topic. Without an
// access token the channel stays closed; nothing is returned to the caller.
func (c *Channel) Connect(topic string) {
	c.mu.Lock()
	c.teardownLocked()
	c.topic = topic
	generation := c.generation
	c.mu.Unlock()

	c.dial(generation)
}

func (c *Channel) SetTopic(topic string) {
	c.Connect(topic)
}

func (c *Channel) Reconnect() {
	c.Connect(c.Topic())
}

// Close shuts the connection down cleanly and cancels a pending reconnect.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

func (c *Channel) LatestMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

func (c *Channel) IsConnected() bool {
	return c.State() == Connected
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) Topic() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topic
}

func (c *Channel) dial(generation uint64) {

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return
	}
	topic := c.topic
	c.mu.Unlock()

	if topic == "" {
		log.Warn("notification channel has no topic, not connecting")
		return
	}

	token, found, err := c.credentials.Get(context.Background(), store.KeyAccessToken)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Errorf("can't read access token: %v", err)
		return
	}
	if !found || token == "" {
		log.Warnf("no access token, notification channel %q stays closed", topic)
		return
	}

	if !c.transition(generation, Connecting) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	conn, err := c.dialer.Dial(ctx, endpointURL(c.baseURL, topic, token))
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		if conn != nil {
			_ = conn.Close()
		}
		return
	}

	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeWebsocket).
			Warnf("failed to connect notification channel %q: %v", topic, err)
		c.state = Disconnected
		c.scheduleReconnectLocked(generation)
		return
	}

	c.conn = conn
	c.state = Connected
	log.Infof("notification channel %q connected", topic)

	go c.readLoop(generation, topic, conn)
}

func (c *Channel) readLoop(generation uint64, topic string, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(generation, topic, conn, err)
			return
		}
		c.handleFrame(generation, topic, data)
	}
}

func (c *Channel) handleFrame(generation uint64, topic string, data []byte) {

	var decoded frame
	if err := json.Unmarshal(data, &decoded); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeWebsocket).
			Warnf("dropping malformed frame on %q: %v", topic, err)
		metrics.NotificationsDropped.WithLabelValues("malformed").Inc()
		return
	}
	if decoded.Message == nil {
		log.Warnf("dropping frame without message on %q", topic)
		metrics.NotificationsDropped.WithLabelValues("no_message").Inc()
		return
	}

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return
	}
	c.latest = *decoded.Message
	c.mu.Unlock()

	log.WithField("topic", topic).Infof("notification received: %s", *decoded.Message)

	// published outside the lock: SessionEnded handlers take c.mu while holding the bus lock
	metrics.NotificationsReceived.WithLabelValues(topic).Inc()
	c.bus.Publish(events.NotificationReceivedTopic, events.NotificationReceived{Topic: topic, Message: *decoded.Message})
}

func (c *Channel) handleClose(generation uint64, topic string, conn Conn, err error) {

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}

	_ = conn.Close()
	c.conn = nil
	c.state = Disconnected

	var closeErr *CloseError
	if errors.As(err, &closeErr) {
		log.Infof("notification channel %q closed by server: %v", topic, closeErr)
		return
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeWebsocket).
		Warnf("notification channel %q dropped: %v", topic, err)
	c.scheduleReconnectLocked(generation)
}

func (c *Channel) scheduleReconnectLocked(generation uint64) {
	metrics.WebsocketReconnects.Inc()
	log.Infof("reconnecting notification channel in %v", c.retryDelay)
	c.retryTimer = c.schedule(c.retryDelay, func() { c.dial(generation) })
}

func (c *Channel) transition(generation uint64, state State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.state = state
	return true
}

// teardownLocked invalidates the current generation so that its read loop and any
// scheduled reconnect become no-ops.
func (c *Channel) teardownLocked() {
	c.generation++

	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}

	if c.conn != nil {
		c.state = Closing
		if err := c.conn.Close(); err != nil {
			log.Debugf("error closing notification channel: %v", err)
		}
		c.conn = nil
	}
	c.state = Disconnected
}

func (c *Channel) onSessionEnded(_ events.SessionEnded) {
	c.Close()
}

func endpointURL(baseURL, topic, token string) string {
	return baseURL + "/" + url.PathEscape(topic) + "/?token=" + url.QueryEscape(token)
}
