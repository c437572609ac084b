package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/infra/metrics"
	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait           = 10 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = (pongWait * 9) / 10
	maxClientMessage    = 4 * 1024
	defaultSendBuf      = 64
	defaultPublishBuf   = 1024
	maxConsecutiveDrops = 50
)

// DepthMessage is what downstream clients receive after every book change.
type DepthMessage struct {
	Type   string                   `json:"type"`
	Symbol string                   `json:"symbol"`
	Seq    uint64                   `json:"seq"`
	Ts     int64                    `json:"ts"` // unix ms
	Bids   []model.MarketDepthLevel `json:"bids"`
	Asks   []model.MarketDepthLevel `json:"asks"`
}

type publishMsg struct {
	Topic string
	Data  []byte
}

type subscription struct {
	client *Client
	topic  string
}

// Hub fans book depth out to websocket clients subscribed to a symbol.
// All client and topic bookkeeping happens on the Run goroutine.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan publishMsg
	done        chan struct{}

	clients map[*Client]struct{}
	topics  map[string]map[*Client]struct{}

	sendBuf     int
	seq         sequencer
	clientCount atomic.Int64

	logger zerolog.Logger
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// owned by the hub goroutine
	subscribed map[string]struct{}
	drops      int
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan publishMsg, defaultPublishBuf),
		done:        make(chan struct{}),
		clients:     make(map[*Client]struct{}),
		topics:      make(map[string]map[*Client]struct{}),
		sendBuf:     defaultSendBuf,
		logger:      logger.With().Str("component", "hub").Logger(),
	}
}

// Run is the hub event loop; it returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info().Msg("ws hub started")
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			for t := range c.subscribed {
				h.addToTopic(c, t)
			}
			h.setClientCount()

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
			}

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; ok {
				h.addToTopic(sub.client, sub.topic)
				sub.client.subscribed[sub.topic] = struct{}{}
			}

		case sub := <-h.unsubscribe:
			h.removeFromTopic(sub.client, sub.topic)
			delete(sub.client.subscribed, sub.topic)

		case p := <-h.publish:
			targets := h.clients
			if p.Topic != "" {
				targets = h.topics[p.Topic]
			}
			for c := range targets {
				h.deliver(c, p.Data)
			}

		case <-ctx.Done():
			h.logger.Info().Int("clients", len(h.clients)).Msg("ws hub shutting down")
			for c := range h.clients {
				h.remove(c)
			}
			return
		}
	}
}

func (h *Hub) addToTopic(c *Client, topic string) {
	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[*Client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
}

func (h *Hub) removeFromTopic(c *Client, topic string) {
	if subs := h.topics[topic]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// remove forgets c and closes its send queue, which ends its write pump.
func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	for t := range c.subscribed {
		h.removeFromTopic(c, t)
	}
	close(c.send)
	h.setClientCount()
}

func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
		c.drops = 0
	default:
		metrics.HubPublishDropsTotal.Inc()
		c.drops++
		if c.drops > maxConsecutiveDrops {
			h.logger.Warn().Int("drops", c.drops).Str("remote", c.conn.RemoteAddr().String()).Msg("evicting slow client")
			h.remove(c)
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) setClientCount() {
	h.clientCount.Store(int64(len(h.clients)))
	metrics.HubClients.Set(float64(len(h.clients)))
}

// send hands c to the hub loop, reporting false once the hub has stopped.
func (h *Hub) send(ch chan<- *Client, c *Client) bool {
	select {
	case ch <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) request(ch chan<- subscription, sub subscription) {
	select {
	case ch <- sub:
	case <-h.done:
	}
}

// ClientCount is safe to call from any goroutine.
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and registers a client. Initial symbols may be
// passed as ?symbols=tETHUSD,tBTCUSD.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, h.sendBuf),
		subscribed: make(map[string]struct{}),
	}
	for _, sym := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			client.subscribed[sym] = struct{}{}
		}
	}

	if !h.send(h.register, client) {
		_ = conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

// readPump turns client commands into subscribe/unsubscribe requests.
func (c *Client) readPump() {
	defer func() {
		c.hub.send(c.hub.unregister, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxClientMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Msg("client read error")
			}
			return
		}

		var cmd struct {
			Type   string `json:"type"`   // "subscribe" | "unsubscribe"
			Symbol string `json:"symbol"` // e.g. "tETHUSD"
		}
		if err := json.Unmarshal(message, &cmd); err != nil || cmd.Symbol == "" {
			c.hub.logger.Debug().Bytes("message", message).Msg("invalid client message")
			continue
		}

		switch cmd.Type {
		case "subscribe":
			c.hub.request(c.hub.subscribe, subscription{client: c, topic: cmd.Symbol})
		case "unsubscribe":
			c.hub.request(c.hub.unsubscribe, subscription{client: c, topic: cmd.Symbol})
		}
	}
}

// writePump serializes all writes to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// PublishDepth sends depth to subscribers of its symbol. It never blocks; a
// full publish queue drops the message.
func (h *Hub) PublishDepth(depth model.MarketDepth) {
	msg := DepthMessage{
		Type:   "depth",
		Symbol: depth.Symbol,
		Seq:    h.seq.next(depth.Symbol),
		Ts:     depth.Timestamp,
		Bids:   depth.Bids,
		Asks:   depth.Asks,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal depth")
		return
	}

	select {
	case h.publish <- publishMsg{Topic: depth.Symbol, Data: b}:
	default:
		metrics.HubPublishDropsTotal.Inc()
		h.logger.Warn().Str("symbol", depth.Symbol).Msg("publish channel full, dropping depth")
	}
}

// Render lets the hub sit behind the feed session as a renderer.
func (h *Hub) Render(depth model.MarketDepth) {
	h.PublishDepth(depth)
}
