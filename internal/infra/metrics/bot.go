package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(botUpdatesTotal, botHandleLatencyMs) }

var botUpdatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Telegram updates processed by kind.",
	},
	[]string{"kind"}, // 'command', 'callback', 'message'
)

var botHandleLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "bot_handle_latency_ms",
		Help:    "Update handling latency distribution in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
	},
	[]string{"kind", "success"},
)

func IncBotUpdate(kind string) {
	botUpdatesTotal.WithLabelValues(norm(kind)).Inc()
}

func ObserveBotHandle(kind string, latencyMs int, success bool) {
	botHandleLatencyMs.WithLabelValues(norm(kind), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
