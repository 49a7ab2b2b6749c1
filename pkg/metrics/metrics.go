// Package metrics provides Prometheus metrics for the mission-control service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks API requests by method and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mission_control",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestDuration tracks API request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mission_control",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// FallbackReadsTotal tracks reads served from the local document instead
	// of the primary store
	FallbackReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mission_control",
			Subsystem: "resolve",
			Name:      "fallback_reads_total",
			Help:      "Total number of reads served from the local document",
		},
		[]string{"collection"},
	)

	// SyncRecordsProcessed tracks records processed per synchronizer run
	SyncRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mission_control",
			Subsystem: "sync",
			Name:      "records_processed_total",
			Help:      "Total number of records processed by the synchronizers",
		},
		[]string{"job"},
	)

	// KafkaMessagesPublished tracks record events published to Kafka
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mission_control",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)
)

// RecordHTTPRequest records an API request metric
func RecordHTTPRequest(method, path, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

// RecordFallbackRead records a read served from the local document
func RecordFallbackRead(collection string) {
	FallbackReadsTotal.WithLabelValues(collection).Inc()
}

// RecordSyncRun records records processed by a synchronizer run
func RecordSyncRun(job string, count int) {
	SyncRecordsProcessed.WithLabelValues(job).Add(float64(count))
}

// RecordKafkaPublish records a Kafka publish attempt
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}
