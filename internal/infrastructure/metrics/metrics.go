package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Document metrics
	DocumentsSaved   *prometheus.CounterVec
	DocumentsDeleted *prometheus.CounterVec
	NumbersAllocated *prometheus.CounterVec
	SaveConflicts    prometheus.Counter

	// Export metrics
	ExportsCompleted    prometheus.Counter
	ExportsFailed       prometheus.Counter
	CertificateFailures prometheus.Counter
	ExportDuration      prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreErrors     *prometheus.CounterVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Document metrics
		DocumentsSaved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facturier_documents_saved_total",
				Help: "Total number of documents saved",
			},
			[]string{"series"},
		),
		DocumentsDeleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facturier_documents_deleted_total",
				Help: "Total number of documents tombstoned",
			},
			[]string{"series"},
		),
		NumbersAllocated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facturier_numbers_allocated_total",
				Help: "Total number of document numbers allocated",
			},
			[]string{"series"},
		),
		SaveConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facturier_save_conflicts_total",
			Help: "Total number of save conflicts (version or key)",
		}),

		// Export metrics
		ExportsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facturier_exports_completed_total",
			Help: "Total number of completed exports",
		}),
		ExportsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facturier_exports_failed_total",
			Help: "Total number of failed exports",
		}),
		CertificateFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facturier_certificate_failures_total",
			Help: "Total number of exports degraded by a certificate render failure",
		}),
		ExportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "facturier_export_duration_seconds",
			Help:    "Duration of export operations",
			Buckets: prometheus.DefBuckets,
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facturier_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "facturier_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Store metrics
		StoreOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facturier_store_operations_total",
				Help: "Total ledger store operations",
			},
			[]string{"operation"},
		),
		StoreErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facturier_store_errors_total",
				Help: "Total ledger store errors",
			},
			[]string{"operation"},
		),

		// Cache metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facturier_cache_hits_total",
			Help: "Total listing cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facturier_cache_misses_total",
			Help: "Total listing cache misses",
		}),
	}
}
