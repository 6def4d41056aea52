package notifications

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/devhunt/devhunt-agent/internal/events"
	"github.com/devhunt/devhunt-agent/internal/store"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newWebsocketServer(t *testing.T, handle func(conn *wsTestConn)) (string, chan string) {
	t.Helper()
	paths := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		paths <- r.URL.RequestURI()
		handle(&wsTestConn{t: t, conn: conn})
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws", paths
}

type wsTestConn struct {
	t    *testing.T
	conn interface {
		Read([]byte) (int, error)
		Write([]byte) (int, error)
		Close() error
		SetReadDeadline(time.Time) error
	}
}

func (c *wsTestConn) text(payload string) {
	assert.NoError(c.t, wsutil.WriteServerMessage(c.conn, ws.OpText, []byte(payload)))
}

func (c *wsTestConn) closeCleanly() {
	body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "bye")
	assert.NoError(c.t, wsutil.WriteServerMessage(c.conn, ws.OpClose, body))
	_ = c.conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, _ = wsutil.ReadClientData(c.conn)
	_ = c.conn.Close()
}

func newLiveChannel(t *testing.T, baseURL string) (*Channel, *fakeScheduler, *receivedMessages) {
	t.Helper()
	credentials := store.NewMemory()
	require.NoError(t, credentials.Set(context.Background(), store.KeyAccessToken, "tok"))
	bus := EventBus.New()
	received := &receivedMessages{}
	require.NoError(t, bus.Subscribe(events.NotificationReceivedTopic, received.add))

	channel, err := NewChannel(baseURL, credentials, bus)
	require.NoError(t, err)
	scheduler := &fakeScheduler{}
	channel.SetScheduler(scheduler.schedule)
	return channel, scheduler, received
}

func Test_WSDialer_When_ServerSendsFrameAndClosesCleanly_Should_PublishAndNotReconnect(t *testing.T) {
	baseURL, paths := newWebsocketServer(t, func(conn *wsTestConn) {
		conn.text(`{"message":"Acme accepted your application/job_id=7/time:2024-05-01T10:20:30Z"}`)
		conn.closeCleanly()
	})
	channel, scheduler, received := newLiveChannel(t, baseURL)

	channel.Connect("new_application")

	assert.Equal(t, "/ws/new_application/?token=tok", <-paths)
	eventually(t, func() bool { return len(received.all()) == 1 })
	assert.Equal(t, "Acme accepted your application/job_id=7/time:2024-05-01T10:20:30Z", received.all()[0])
	eventually(t, func() bool { return channel.State() == Disconnected })
	assert.Equal(t, 0, scheduler.scheduled())
}

func Test_WSDialer_When_ServerDropsConnection_Should_ScheduleReconnect(t *testing.T) {
	baseURL, _ := newWebsocketServer(t, func(conn *wsTestConn) {
		_ = conn.conn.Close()
	})
	channel, scheduler, _ := newLiveChannel(t, baseURL)

	channel.Connect("new_application")

	eventually(t, func() bool { return scheduler.scheduled() == 1 })
	assert.Equal(t, DefaultRetryDelay, scheduler.delays[0])
	channel.Close()
}

func Test_WSDialer_When_ServerUnreachable_Should_ReturnError(t *testing.T) {
	dialer := NewWSDialer(time.Second)

	_, err := dialer.Dial(context.Background(), "ws://127.0.0.1:1/ws/topic/")

	assert.Error(t, err)
}
