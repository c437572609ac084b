// Command snapshot fetches the current book over REST and prints its top.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/config"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/engine"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed/bitfinex"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/infra/log"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	symbol := flag.String("symbol", cfg.Feed.Symbol, "symbol to fetch")
	levels := flag.Int("levels", cfg.Feed.Levels, "levels per side to print")
	flag.Parse()

	logger := log.NewLogger(cfg)
	tier, err := feed.DepthTier(*levels)
	if err != nil || *levels <= 0 {
		logger.Fatal().Err(err).Int("levels", *levels).Msg("unsupported depth")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	snap, err := bitfinex.NewRESTClient(cfg.Feed.RestURL).FetchSnapshot(ctx, *symbol, tier)
	if err != nil {
		logger.Fatal().Err(err).Msg("fetching snapshot")
	}

	book := engine.NewOrderBook()
	if err := book.Initialize(snap, *levels); err != nil {
		logger.Fatal().Err(err).Msg("building book")
	}
	depth := book.Depth()
	depth.Symbol = *symbol
	render.NewConsole(os.Stdout).Render(depth)

	tob := book.GetTopOfBook()
	if tob.BestBid != nil && tob.BestAsk != nil {
		logger.Info().
			Float64("best_bid", tob.BestBid.Price).
			Float64("best_ask", tob.BestAsk.Price).
			Float64("spread", tob.Spread).
			Msg("top of book")
	}
}
