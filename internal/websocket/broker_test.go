package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func readDepth(t *testing.T, conn *websocket.Conn) DepthMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg DepthMessage
	require.NoError(t, json.Unmarshal(b, &msg))
	return msg
}

func TestHub_PublishesToSubscribedSymbol(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?symbols=tETHUSD", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Render(model.MarketDepth{Symbol: "tETHUSD", Bids: []model.MarketDepthLevel{{Price: 100, Count: 1}}, Timestamp: 7})
	hub.Render(model.MarketDepth{Symbol: "tBTCUSD", Bids: []model.MarketDepthLevel{{Price: 1, Count: 1}}})
	hub.Render(model.MarketDepth{Symbol: "tETHUSD", Asks: []model.MarketDepthLevel{{Price: 101, Count: 2}}})

	first := readDepth(t, conn)
	assert.Equal(t, "depth", first.Type)
	assert.Equal(t, "tETHUSD", first.Symbol)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, int64(7), first.Ts)
	assert.Equal(t, []model.MarketDepthLevel{{Price: 100, Count: 1}}, first.Bids)

	second := readDepth(t, conn)
	assert.Equal(t, "tETHUSD", second.Symbol)
	assert.Equal(t, uint64(2), second.Seq)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, srv, cancel := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?symbols=tETHUSD", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSequencer(t *testing.T) {
	var s sequencer
	assert.Equal(t, uint64(1), s.next("a"))
	assert.Equal(t, uint64(2), s.next("a"))
	assert.Equal(t, uint64(1), s.next("b"))
}
