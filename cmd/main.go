package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/config"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/feed/bitfinex"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/infra/log"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/infra/metrics"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/render"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/router"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/router/middleware"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/websocket"
	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := log.NewLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	policy, _ := feed.ParsePolicy(cfg.Feed.OnPriceMissing)

	reg := metrics.Init(logger)
	view := render.NewView()
	renderers := []feed.Renderer{view}
	if cfg.Render.Console {
		renderers = append(renderers, render.NewConsole(os.Stdout))
	}

	var server *http.Server
	if cfg.HTTP.Enabled {
		hub := websocket.NewHub(logger)
		go hub.Run(rootCtx)
		renderers = append(renderers, hub)

		var tokenMaker *middleware.JWTMaker
		if cfg.HTTP.JWTSecret != "" {
			tokenMaker = middleware.NewJWTMaker(cfg.HTTP.JWTSecret)
		}
		serveMux := http.NewServeMux()
		router.BindRouter(router.BindRouterOpts{
			ServerRouter: serveMux,
			View:         view,
			Hub:          hub,
			TokenMaker:   tokenMaker,
			Registry:     reg,
			Logger:       logger,
		})
		logger.Debug().Msg("finished binding router")

		server = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           router.Cors(serveMux),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("listen error")
				stop()
			}
		}()
	}

	session := feed.NewSession(feed.SessionOpts{
		URL:         cfg.Feed.URL,
		Request:     model.SubscriptionRequest{Symbol: cfg.Feed.Symbol, Levels: cfg.Feed.Levels},
		Dialer:      websocket.NewDialer(logger),
		Codec:       bitfinex.NewCodec(),
		Fetcher:     bitfinex.NewRESTClient(cfg.Feed.RestURL),
		Policy:      policy,
		ReadTimeout: cfg.Feed.ReadTimeout,
		Renderers:   renderers,
		Logger:      logger,
	})
	runErr := session.Run(rootCtx)

	if server != nil {
		// Give in-flight requests up to 10s to finish.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("graceful shutdown failed; forcing close")
			_ = server.Close()
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error().Err(runErr).Msg("feed session ended")
		fmt.Fprintln(os.Stderr, runErr)
		stop()
		os.Exit(1)
	}
	logger.Info().Msg("ingester stopped")
}
