package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed/bitfinex"
	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// feedServer plays a short book session and then closes normally.
func feedServer(t *testing.T, subscribed chan<- string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		write := func(s string) { _ = conn.WriteMessage(websocket.TextMessage, []byte(s)) }
		write(`{"event":"info","version":2,"serverId":"test","platform":{"status":1}}`)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		subscribed <- string(msg)
		write(`{"event":"subscribed","channel":"book","chanId":42,"symbol":"tETHUSD","len":"25"}`)
		write(`[42,[[3000.1,1,0.5],[2999.9,2,1.5],[3000.4,1,-2]]]`)
		write(`[42,"hb"]`)
		write(`[42,[3000.2,3,-1]]`)
		write(`[42,[2999.9,0,1]]`)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_, _, _ = conn.ReadMessage()
	}))
}

func TestSessionOverWebsocket(t *testing.T) {
	subscribed := make(chan string, 1)
	srv := feedServer(t, subscribed)
	defer srv.Close()

	session := feed.NewSession(feed.SessionOpts{
		URL:     wsURL(srv),
		Request: model.SubscriptionRequest{Symbol: "tETHUSD", Levels: 5},
		Dialer:  NewDialer(zerolog.Nop()),
		Codec:   bitfinex.NewCodec(),
		Logger:  zerolog.Nop(),
	})

	err := session.Run(context.Background())

	var te *feed.TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, "read", te.Op)
	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr))
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, `{"event":"subscribe","channel":"book","symbol":"tETHUSD","len":25}`, <-subscribed)

	book := session.Book()
	require.NotNil(t, book)
	assert.Equal(t, []model.MarketDepthLevel{{Price: 3000.1, Count: 1}}, book.TopBids(0))
	assert.Equal(t, []model.MarketDepthLevel{{Price: 3000.2, Count: 3}, {Price: 3000.4, Count: 1}}, book.TopAsks(0))
}

func TestClientConn_ReadHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	conn, err := NewDialer(zerolog.Nop()).Dial(context.Background(), wsURL(srv))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = conn.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
}

func TestDialer_Refused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewDialer(zerolog.Nop()).Dial(context.Background(), wsURL(srv))
	assert.Error(t, err)
}
