package replay

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed/bitfinex"
	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recording = `{"event":"info","version":2,"serverId":"rec","platform":{"status":1}}
{"event":"subscribed","channel":"book","chanId":7,"symbol":"tBTCUSD","len":"25"}
[7,[[60000,1,0.1],[59999,2,0.4],[60001,1,-0.2]]]

[7,"hb"]
[7,[60001,0,-1]]
[7,[60002,5,-3]]
`

func TestConn_ReadsLines(t *testing.T) {
	c := NewConn(strings.NewReader("a\n\n  b  \n"), 0)

	first, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", string(first))
	second, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", string(second))
	_, err = c.Read(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, c.Close())
}

func TestReplaySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(recording), 0o600))

	var renders int
	session := feed.NewSession(feed.SessionOpts{
		URL:       path,
		Request:   model.SubscriptionRequest{Symbol: "tBTCUSD", Levels: 5},
		Dialer:    Dialer{},
		Codec:     bitfinex.NewCodec(),
		Renderers: []feed.Renderer{feed.RendererFunc(func(model.MarketDepth) { renders++ })},
		Logger:    zerolog.Nop(),
	})

	err := session.Run(context.Background())

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, renders)
	book := session.Book()
	assert.Equal(t, []model.MarketDepthLevel{{Price: 60002, Count: 5}}, book.TopAsks(0))
	assert.Len(t, book.TopBids(0), 2)
}

type connDialer struct{ conn *Conn }

func (d connDialer) Dial(context.Context, string) (feed.Conn, error) { return d.conn, nil }

func TestReplaySession_RecordsSubscribe(t *testing.T) {
	conn := NewConn(strings.NewReader(recording), 0)
	session := feed.NewSession(feed.SessionOpts{
		URL:     "recording",
		Request: model.SubscriptionRequest{Symbol: "tBTCUSD", Levels: 5},
		Dialer:  connDialer{conn: conn},
		Codec:   bitfinex.NewCodec(),
		Logger:  zerolog.Nop(),
	})

	require.ErrorIs(t, session.Run(context.Background()), io.EOF)

	sent := conn.Sent()
	require.Len(t, sent, 1)
	assert.JSONEq(t, `{"event":"subscribe","channel":"book","symbol":"tBTCUSD","len":25}`, string(sent[0]))
}

func TestDialer_MissingFile(t *testing.T) {
	_, err := Dialer{}.Dial(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
