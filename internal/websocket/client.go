package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	handshakeTimeout = 10 * time.Second
	// a 250-level snapshot is well under this
	maxFeedMessage = 1 << 20
)

// Dialer opens feed connections over gorilla/websocket.
type Dialer struct {
	dialer *websocket.Dialer
	logger zerolog.Logger
}

func NewDialer(logger zerolog.Logger) *Dialer {
	return &Dialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		logger: logger.With().Str("component", "ws-client").Logger(),
	}
}

func (d *Dialer) Dial(ctx context.Context, url string) (feed.Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			d.logger.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("websocket handshake rejected")
		}
		return nil, err
	}
	conn.SetReadLimit(maxFeedMessage)
	d.logger.Debug().Str("url", url).Msg("websocket connected")
	return &ClientConn{conn: conn}, nil
}

// ClientConn is one feed connection. Send and Read may be used from
// different goroutines, but not Send from two at once.
type ClientConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func (c *ClientConn) Send(ctx context.Context, payload []byte) error {
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Read returns the next text message. A ctx deadline becomes the read
// deadline and cancelling ctx unblocks the read.
func (c *ClientConn) Read(ctx context.Context) ([]byte, error) {
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return nil, context.DeadlineExceeded
			}
			return nil, err
		}
		if kind == websocket.TextMessage {
			return msg, nil
		}
	}
}

// Close sends a normal close frame and releases the connection. It is safe to
// call more than once.
func (c *ClientConn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
