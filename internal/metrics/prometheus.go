package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mdgraph_build_duration_seconds",
			Help:    "Graph build duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"scope"},
	)

	BuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdgraph_builds_total",
			Help: "Total number of graph builds",
		},
		[]string{"scope", "status"},
	)

	DocumentsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdgraph_documents_processed_total",
			Help: "Total documents run through term recognition",
		},
	)

	DocumentFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdgraph_document_failures_total",
			Help: "Total documents skipped because they could not be read",
		},
	)

	GraphEntities = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mdgraph_graph_entities",
			Help: "Entities in the last corpus graph",
		},
	)

	GraphRelationships = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mdgraph_graph_relationships",
			Help: "Relationships in the last corpus graph",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdgraph_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdgraph_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdgraph_exports_total",
			Help: "Total graph exports to Neo4j",
		},
		[]string{"status"},
	)

	WatchEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mdgraph_watch_events_total",
			Help: "Total corpus change events that triggered a rebuild",
		},
	)
)

func Init() {
	prometheus.MustRegister(BuildDuration)
	prometheus.MustRegister(BuildsTotal)
	prometheus.MustRegister(DocumentsProcessed)
	prometheus.MustRegister(DocumentFailures)
	prometheus.MustRegister(GraphEntities)
	prometheus.MustRegister(GraphRelationships)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ExportsTotal)
	prometheus.MustRegister(WatchEvents)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
