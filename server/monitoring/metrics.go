package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mdm"

// Metrics метрики сервера. У каждого экземпляра свой реестр,
// поэтому в тестах можно создавать сколько угодно серверов.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec

	ClassifiedTotal  *prometheus.CounterVec
	MatchResults     prometheus.Histogram
	DedupClusters    *prometheus.CounterVec
	BatchSize        prometheus.Histogram
	CategoriesLoaded prometheus.Gauge
	CategoryReloads  prometheus.Counter
	MaterialsStored  prometheus.Gauge
}

// NewMetrics регистрирует метрики в новом реестре
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors returned to clients by kind",
		}, []string{"kind"}),
		ClassifiedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classified_records_total",
			Help:      "Classified records by outcome (classified, unclassified, invalid)",
		}, []string{"outcome"}),
		MatchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_results",
			Help:      "Number of similar records returned per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		DedupClusters: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_clusters_total",
			Help:      "Duplicate clusters found by confidence level",
		}, []string{"level"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Records per batch classification request",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}),
		CategoriesLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "categories_loaded",
			Help:      "Categories in the active configuration",
		}),
		CategoryReloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_reloads_total",
			Help:      "Successful category configuration reloads",
		}),
		MaterialsStored: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "materials_stored",
			Help:      "Records in the master data store after the last import",
		}),
	}
}

// ObserveRequest учитывает завершенный HTTP запрос
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler обработчик /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry реестр метрик, нужен тестам
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
