// Package replay plays a recorded feed back from a file, one message per line.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed"
	pkgerrors "github.com/pkg/errors"
)

const maxLine = 1 << 20

// Dialer treats the dial URL as a file path.
type Dialer struct {
	// Delay is slept before every message after the first three, so a
	// recording can be watched at roughly live pace.
	Delay time.Duration
}

func (d Dialer) Dial(_ context.Context, path string) (feed.Conn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open recording")
	}
	return NewConn(f, d.Delay), nil
}

// Conn serves lines from r. Sent messages are kept for inspection.
type Conn struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	closer  io.Closer
	delay   time.Duration
	reads   int
	sent    [][]byte
}

func NewConn(r io.Reader, delay time.Duration) *Conn {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	c := &Conn{scanner: s, delay: delay}
	if closer, ok := r.(io.Closer); ok {
		c.closer = closer
	}
	return c
}

func (c *Conn) Send(_ context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, append([]byte(nil), payload...))
	return nil
}

func (c *Conn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Read returns the next non-blank line, or io.EOF at the end of the recording.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	if c.delay > 0 && c.reads >= 3 {
		t := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	for c.scanner.Scan() {
		line := bytes.TrimSpace(c.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		c.reads++
		return append([]byte(nil), line...), nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (c *Conn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
