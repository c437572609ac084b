package router

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/internal/infra/metrics"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/render"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/router/middleware"
	"github.com/Yusufzhafir/go-orderbook/ingester/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var errNotReady = errors.New("order book is not initialized yet")

type statusWriter struct {
	http.ResponseWriter
	status int
	n      int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.n += n
	return n, err
}

func logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Int("bytes", sw.n).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}

// wrap the mux with Cors(mux) when starting the server
func Cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			reqHdrs := r.Header.Get("Access-Control-Request-Headers")
			if reqHdrs == "" {
				reqHdrs = "Content-Type, Authorization"
			}
			w.Header().Set("Access-Control-Allow-Headers", reqHdrs)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GET /api/v1/book?depth=5
func bindBook(serverRouter *http.ServeMux, view *render.View, auth func(http.Handler) http.Handler, log func(http.Handler) http.Handler) {
	serverRouter.Handle("GET /api/v1/book", log(auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		depth, ok := view.Latest()
		if !ok {
			writeJSONError(w, http.StatusServiceUnavailable, errNotReady)
			return
		}
		if s := r.URL.Query().Get("depth"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				writeJSONError(w, http.StatusBadRequest, errors.New("depth must be a positive integer"))
				return
			}
			depth.Bids = depth.Bids[:min(n, len(depth.Bids))]
			depth.Asks = depth.Asks[:min(n, len(depth.Asks))]
		}
		writeJSON(w, http.StatusOK, depth)
	}))))

	serverRouter.Handle("GET /api/v1/book/top", log(auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tob, ok := view.TopOfBook()
		if !ok {
			writeJSONError(w, http.StatusServiceUnavailable, errNotReady)
			return
		}
		writeJSON(w, http.StatusOK, tob)
	}))))
}

type BindRouterOpts struct {
	ServerRouter *http.ServeMux
	View         *render.View
	// Hub is optional; /ws is only served when set.
	Hub *websocket.Hub
	// TokenMaker is optional; without it the book API and /ws are open.
	TokenMaker *middleware.JWTMaker
	Registry   *prometheus.Registry
	Logger     zerolog.Logger
}

func BindRouter(opts BindRouterOpts) {
	log := logging(opts.Logger)
	auth := func(next http.Handler) http.Handler { return next }
	if opts.TokenMaker != nil {
		auth = middleware.AuthMiddleware(opts.TokenMaker)
	}

	bindBook(opts.ServerRouter, opts.View, auth, log)

	if opts.Hub != nil {
		// no logging wrapper: the upgrade needs the raw ResponseWriter
		var ws http.Handler = http.HandlerFunc(opts.Hub.ServeWS)
		if opts.TokenMaker != nil {
			ws = middleware.WebsocketAuthMiddleware(opts.TokenMaker)(ws)
		}
		opts.ServerRouter.Handle("GET /ws", ws)
	}
	if opts.Registry != nil {
		opts.ServerRouter.Handle("GET /metrics", metrics.Handler(opts.Registry))
	}

	//healthcheck
	opts.ServerRouter.Handle("GET /healthz", log(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": 200,
			"health": "healthy",
		})
	})))
	opts.ServerRouter.Handle("GET /readyz", log(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !opts.View.Ready() {
			writeJSONError(w, http.StatusServiceUnavailable, errNotReady)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": 200,
			"ready":  true,
		})
	})))
}
