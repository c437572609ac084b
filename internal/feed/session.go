package feed

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/engine"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/infra/metrics"
	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/rs/zerolog"
)

type SessionOpts struct {
	URL     string
	Request model.SubscriptionRequest
	Dialer  Dialer
	Codec   Codec
	// Fetcher is only needed by PolicyResync.
	Fetcher     SnapshotFetcher
	Policy      Policy
	ReadTimeout time.Duration // zero waits forever
	Renderers   []Renderer
	Logger      zerolog.Logger
}

// Session owns one feed connection and the book built from it.
// Run is not safe to call concurrently; State may be read from anywhere.
type Session struct {
	opts      SessionOpts
	logger    zerolog.Logger
	state     atomic.Int32
	book      engine.OrderBook // nil until the snapshot arrives
	tier      int
	channelID uint64
}

func NewSession(opts SessionOpts) *Session {
	if opts.Policy == "" {
		opts.Policy = PolicyAbort
	}
	return &Session{
		opts: opts,
		logger: opts.Logger.With().
			Str("symbol", opts.Request.Symbol).
			Int("levels", opts.Request.Levels).
			Logger(),
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
	metrics.SessionState.Set(float64(state))
	s.logger.Debug().Str("state", state.String()).Msg("session state changed")
}

// Book returns the current book, or nil before the snapshot has been applied.
func (s *Session) Book() engine.OrderBook {
	return s.book
}

// Run performs the handshake and then applies updates until the context is
// cancelled or a fatal error occurs. It never returns nil.
func (s *Session) Run(ctx context.Context) error {
	// the depth is checked before any network I/O
	tier, err := displayTier(s.opts.Request.Levels)
	if err != nil {
		return err
	}
	s.tier = tier

	start := time.Now()
	s.setState(StateConnecting)
	conn, err := s.opts.Dialer.Dial(ctx, s.opts.URL)
	if err != nil {
		s.setState(StateClosed)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newTransportError("dial", err)
	}
	defer func() {
		_ = conn.Close()
		s.setState(StateClosed)
	}()
	// closing the connection unblocks a pending read on cancellation
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := s.handshake(ctx, conn); err != nil {
		return err
	}
	metrics.HandshakeSeconds.Observe(time.Since(start).Seconds())
	s.logger.Info().
		Int("tier", s.tier).
		Uint64("channel", s.channelID).
		Int("bids", s.book.Levels(model.BID)).
		Int("asks", s.book.Levels(model.ASK)).
		Msg("order book is initialized")
	s.render()

	s.setState(StateStreaming)
	return s.stream(ctx, conn)
}

func (s *Session) handshake(ctx context.Context, conn Conn) error {
	s.setState(StateAwaitingServerInfo)
	msg, err := s.read(ctx, conn)
	if err != nil {
		return err
	}
	info, err := s.opts.Codec.DecodeServerInfo(msg)
	if err != nil {
		return newDecodeError(StateAwaitingServerInfo, err)
	}
	s.logger.Info().Int("version", info.Version).Str("server_id", info.ServerID).Msg("connected to feed")

	s.setState(StateSubscribing)
	subscribe, err := s.opts.Codec.EncodeSubscribe(s.opts.Request.Symbol, s.tier)
	if err != nil {
		return fmt.Errorf("encoding subscribe request: %w", err)
	}
	if err := conn.Send(ctx, subscribe); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newTransportError("send", err)
	}

	s.setState(StateAwaitingSubscribeAck)
	msg, err = s.read(ctx, conn)
	if err != nil {
		return err
	}
	ack, err := s.opts.Codec.DecodeSubscribeAck(msg)
	if err != nil {
		return newDecodeError(StateAwaitingSubscribeAck, err)
	}
	s.channelID = ack.ChannelID
	s.logger.Info().Uint64("channel", ack.ChannelID).Str("ack_symbol", ack.Symbol).Msg("subscribed to book")

	s.setState(StateAwaitingSnapshot)
	msg, err = s.read(ctx, conn)
	if err != nil {
		return err
	}
	snapshot, err := s.opts.Codec.DecodeSnapshot(msg)
	if err != nil {
		return newDecodeError(StateAwaitingSnapshot, err)
	}
	book := engine.NewOrderBook()
	if err := book.Initialize(snapshot, s.opts.Request.Levels); err != nil {
		return newDecodeError(StateAwaitingSnapshot, err)
	}
	s.book = book
	return nil
}

func (s *Session) stream(ctx context.Context, conn Conn) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.read(ctx, conn)
		if err != nil {
			return err
		}

		update, err := s.opts.Codec.DecodeUpdate(msg)
		if err != nil {
			// heartbeats, checksums and events are not updates
			metrics.MessagesSkippedTotal.Inc()
			s.logger.Trace().Err(err).Bytes("message", msg).Msg("skipping non-update message")
			continue
		}
		if update.ChannelID != s.channelID {
			metrics.MessagesSkippedTotal.Inc()
			s.logger.Debug().Uint64("channel", update.ChannelID).Msg("skipping update for another channel")
			continue
		}

		applied, err := s.apply(ctx, update.Level)
		if err != nil {
			return err
		}
		if applied {
			s.render()
		}
	}
}

// apply reports whether the book changed.
func (s *Session) apply(ctx context.Context, level model.RawLevel) (bool, error) {
	err := s.book.ApplyUpdate(level)
	if err == nil {
		op := "upsert"
		if level.Count == 0 {
			op = "delete"
		}
		metrics.UpdatesAppliedTotal.WithLabelValues(level.Side().String(), op).Inc()
		return true, nil
	}

	var notFound *engine.PriceNotFoundError
	if !errors.As(err, &notFound) {
		metrics.MessagesSkippedTotal.Inc()
		s.logger.Warn().Err(err).Float64("price", level.Price).Msg("skipping invalid update")
		return false, nil
	}

	metrics.PriceNotFoundTotal.WithLabelValues(notFound.Side.String()).Inc()
	switch s.opts.Policy {
	case PolicyContinue:
		s.logger.Warn().Err(err).Msg("ignoring update for unknown price")
		return false, nil
	case PolicyResync:
		s.logger.Warn().Err(err).Msg("resyncing book from a fresh snapshot")
		if rerr := s.resync(ctx); rerr != nil {
			return false, fmt.Errorf("%w: resync failed: %w", err, rerr)
		}
		return true, nil
	default:
		return false, err
	}
}

// resync swaps in a new book; the old one is never re-initialized in place.
func (s *Session) resync(ctx context.Context) error {
	if s.opts.Fetcher == nil {
		return errors.New("no snapshot fetcher configured")
	}
	snapshot, err := s.opts.Fetcher.FetchSnapshot(ctx, s.opts.Request.Symbol, s.tier)
	if err != nil {
		return err
	}
	book := engine.NewOrderBook()
	if err := book.Initialize(snapshot, s.opts.Request.Levels); err != nil {
		return err
	}
	s.book = book
	metrics.BookResyncsTotal.Inc()
	s.logger.Info().
		Int("bids", book.Levels(model.BID)).
		Int("asks", book.Levels(model.ASK)).
		Msg("order book rebuilt")
	return nil
}

func (s *Session) read(ctx context.Context, conn Conn) ([]byte, error) {
	readCtx := ctx
	if s.opts.ReadTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, s.opts.ReadTimeout)
		defer cancel()
	}
	msg, err := conn.Read(readCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newTransportError("read", err)
	}
	metrics.MessagesReceivedTotal.Inc()
	return msg, nil
}

func (s *Session) render() {
	metrics.BookLevels.WithLabelValues(model.BID.String()).Set(float64(s.book.Levels(model.BID)))
	metrics.BookLevels.WithLabelValues(model.ASK.String()).Set(float64(s.book.Levels(model.ASK)))
	if len(s.opts.Renderers) == 0 {
		return
	}
	depth := s.book.Depth()
	depth.Symbol = s.opts.Request.Symbol
	for _, r := range s.opts.Renderers {
		r.Render(depth)
	}
}
