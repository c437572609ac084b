// Command replay runs a recorded feed file through the book and prints it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed/bitfinex"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed/replay"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/render"
	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/rs/zerolog"
)

func main() {
	file := flag.String("file", "", "recorded feed, one JSON message per line")
	symbol := flag.String("symbol", "tETHUSD", "symbol to subscribe to")
	levels := flag.Int("levels", 5, "levels per side to display")
	policy := flag.String("on-price-not-found", "abort", "abort or continue")
	delay := flag.Duration("delay", 0, "pause between streamed messages")
	quiet := flag.Bool("quiet", false, "print only the final book")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "replay: -file is required")
		flag.Usage()
		os.Exit(2)
	}
	p, err := feed.ParsePolicy(*policy)
	if err != nil || p == feed.PolicyResync {
		fmt.Fprintln(os.Stderr, "replay: -on-price-not-found must be abort or continue")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	console := render.NewConsole(os.Stdout)
	var renderers []feed.Renderer
	if !*quiet {
		renderers = append(renderers, console)
	}

	session := feed.NewSession(feed.SessionOpts{
		URL:       *file,
		Request:   model.SubscriptionRequest{Symbol: *symbol, Levels: *levels},
		Dialer:    replay.Dialer{Delay: *delay},
		Codec:     bitfinex.NewCodec(),
		Policy:    p,
		Renderers: renderers,
		Logger:    logger,
	})
	err = session.Run(ctx)

	if book := session.Book(); *quiet && book != nil {
		depth := book.Depth()
		depth.Symbol = *symbol
		console.Render(depth)
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("replay failed")
		stop()
		os.Exit(1)
	}
}
