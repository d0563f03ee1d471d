package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the credential subsystem.
type Metrics struct {
	CredentialsIssued  *prometheus.CounterVec
	IssueFailures      *prometheus.CounterVec
	DecodeFailures     prometheus.Counter
	Presentations      *prometheus.CounterVec
	ValidationWarnings prometheus.Counter
	EncodedSize        prometheus.Histogram
	EndpointLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CredentialsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healthpass_credentials_issued_total",
			Help: "Total number of credentials issued, by variant",
		}, []string{"variant"}),
		IssueFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healthpass_credential_issue_failures_total",
			Help: "Total number of rejected issuance attempts, by variant",
		}, []string{"variant"}),
		DecodeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthpass_credential_decode_failures_total",
			Help: "Total number of encoded credentials that failed to decode",
		}),
		Presentations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healthpass_credential_presentations_total",
			Help: "Total number of credential presentations, by outcome",
		}, []string{"outcome"}),
		ValidationWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthpass_credential_validation_warnings_total",
			Help: "Total number of validation warnings raised on decoded credentials",
		}),
		EncodedSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "healthpass_credential_encoded_bytes",
			Help: "Size of encoded credential strings, watched against optical-code capacity",
			// QR version 40 binary capacity is ~2953 bytes; buckets track headroom.
			Buckets: []float64{256, 512, 1024, 1536, 2048, 2953},
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthpass_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
