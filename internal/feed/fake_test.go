package feed

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
)

var errConnClosed = errors.New("connection closed")

// fakeConn plays back scripted messages; io.EOF once the script runs out,
// unless it was opened with keepOpen.
type fakeConn struct {
	mu       sync.Mutex
	incoming chan []byte
	sent     [][]byte
	sendErr  error
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn(keepOpen bool, messages ...string) *fakeConn {
	c := &fakeConn{
		incoming: make(chan []byte, len(messages)),
		closed:   make(chan struct{}),
	}
	for _, m := range messages {
		c.incoming <- []byte(m)
	}
	if !keepOpen {
		close(c.incoming)
	}
	return c
}

func (c *fakeConn) Send(_ context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, append([]byte(nil), payload...))
	return nil
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case m, ok := <-c.incoming:
		if !ok {
			return nil, io.EOF
		}
		return m, nil
	case <-c.closed:
		return nil, errConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) sentMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, s := range c.sent {
		out = append(out, string(s))
	}
	return out
}

type fakeDialer struct {
	conn  *fakeConn
	err   error
	dials int
	url   string
}

func (d *fakeDialer) Dial(_ context.Context, url string) (Conn, error) {
	d.dials++
	d.url = url
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

type fakeFetcher struct {
	snapshot model.Snapshot
	err      error
	calls    int
	tier     int
}

func (f *fakeFetcher) FetchSnapshot(_ context.Context, _ string, tier int) (model.Snapshot, error) {
	f.calls++
	f.tier = tier
	return f.snapshot, f.err
}
