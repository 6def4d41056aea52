package notifications

import (
	"context"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/pkg/errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

type WSDialer struct {
	dialer ws.Dialer
}

func NewWSDialer(timeout time.Duration) *WSDialer {
	return &WSDialer{dialer: ws.Dialer{Timeout: timeout}}
}

func (d *WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, br, _, err := d.dialer.Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	// br holds frames the server sent right after the handshake
	var reader io.Reader = conn
	if br != nil {
		reader = br
	}
	return &wsConn{conn: conn, reader: reader}, nil
}

type wsConn struct {
	conn       net.Conn
	reader     io.Reader
	writeMu    sync.Mutex
	closeOnce  sync.Once
	handshaken atomic.Bool
}

func (c *wsConn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

// Write serializes control replies from the read loop with the close frame from Close.
func (c *wsConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.Write(p)
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	data, _, err := wsutil.ReadServerData(c)
	if err == nil {
		return data, nil
	}

	var closed wsutil.ClosedError
	if errors.As(err, &closed) {
		c.handshaken.Store(true)
		return nil, &CloseError{Code: int(closed.Code), Reason: closed.Reason}
	}
	return nil, err
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if !c.handshaken.Load() {
			body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
			_ = wsutil.WriteClientMessage(c, ws.OpClose, body)
		}
		err = c.conn.Close()
	})
	return err
}
