package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	MessagesReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_messages_received_total", Help: "Messages read from the feed"})
	MessagesSkippedTotal  = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_messages_skipped_total", Help: "Streaming messages that were not book updates"})
	UpdatesAppliedTotal   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "book_updates_applied_total", Help: "Book updates applied by side and operation"}, []string{"side", "op"})
	PriceNotFoundTotal    = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "book_price_not_found_total", Help: "Deletions that referenced an absent price, by side"}, []string{"side"})
	BookResyncsTotal      = prometheus.NewCounter(prometheus.CounterOpts{Name: "book_resyncs_total", Help: "Book rebuilds from a fresh snapshot"})
	BookLevels            = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_levels", Help: "Price levels currently held, by side"}, []string{"side"})
	HandshakeSeconds      = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "feed_handshake_seconds", Help: "Time from dial to applied snapshot", Buckets: prometheus.DefBuckets})
	SessionState          = prometheus.NewGauge(prometheus.GaugeOpts{Name: "feed_session_state", Help: "Current feed session state"})
	HubPublishDropsTotal  = prometheus.NewCounter(prometheus.CounterOpts{Name: "hub_publish_drops_total", Help: "Depth messages dropped by the downstream hub"})
	HubClients            = prometheus.NewGauge(prometheus.GaugeOpts{Name: "hub_clients", Help: "Downstream websocket clients connected"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		MessagesReceivedTotal, MessagesSkippedTotal, UpdatesAppliedTotal, PriceNotFoundTotal,
		BookResyncsTotal, BookLevels, HandshakeSeconds, SessionState, HubPublishDropsTotal, HubClients,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	registered := register(reg, logger, toRegister...)
	logger.Info().Int("collectors", registered).Msg("Prometheus metrics initialized")
	return reg
}

// register adds each collector to reg, logging the ones it refuses, and
// returns how many were accepted.
func register(reg prometheus.Registerer, logger zerolog.Logger, cs ...prometheus.Collector) int {
	n := 0
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			logger.Warn().Err(err).Msg("metric registration failed")
			continue
		}
		n++
	}
	return n
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
