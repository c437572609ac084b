package feed

import (
	"context"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
)

// Dialer opens the transport to the feed endpoint.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Conn is one open feed connection carrying text messages.
// Read honours the context deadline and returns when the connection is closed.
type Conn interface {
	Send(ctx context.Context, payload []byte) error
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Codec turns feed payloads into typed records and back.
type Codec interface {
	DecodeServerInfo(payload []byte) (model.ServerInfo, error)
	EncodeSubscribe(symbol string, tier int) ([]byte, error)
	DecodeSubscribeAck(payload []byte) (model.SubscribeAck, error)
	DecodeSnapshot(payload []byte) (model.Snapshot, error)
	DecodeUpdate(payload []byte) (model.Update, error)
}

// SnapshotFetcher retrieves a full book out of band, used to resync.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, symbol string, tier int) (model.Snapshot, error)
}

// Renderer consumes a read-only view of the book after every change.
type Renderer interface {
	Render(depth model.MarketDepth)
}

type RendererFunc func(depth model.MarketDepth)

func (f RendererFunc) Render(depth model.MarketDepth) { f(depth) }
