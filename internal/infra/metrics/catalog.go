package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(catalogLookupsTotal, figureOpensTotal) }

var catalogLookupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_lookups_total",
		Help: "Catalog repository lookups by entity and result.",
	},
	[]string{"entity", "result"}, // entity="program|dance|figure|author", result="ok|not_found|error"
)

var figureOpensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "figure_opens_total",
		Help: "Figure open registrations by outcome.",
	},
	[]string{"outcome"}, // 'subscribed', 'repeat', 'free', 'blocked'
)

func IncCatalogLookup(entity, result string) {
	catalogLookupsTotal.WithLabelValues(norm(entity), norm(result)).Inc()
}

func IncFigureOpen(outcome string) {
	figureOpensTotal.WithLabelValues(norm(outcome)).Inc()
}
