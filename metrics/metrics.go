// Package metrics records Prometheus instrumentation for token generation,
// validation and key updates.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the Prometheus namespace for all metrics
	Namespace = "jwtkit"

	// Label names
	LabelOperation = "operation"
	LabelAlgorithm = "alg"
	LabelStatus    = "status"
	LabelReason    = "reason"
	LabelKey       = "key"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpGenerate = "generate"
	OpImport   = "import"
	OpValidate = "validate"

	// Key kinds
	KeySigning      = "signing"
	KeyVerification = "verification"
)

// Recorder holds the collectors for one registry. A nil *Recorder records
// nothing, so callers never need to check whether metrics are enabled.
type Recorder struct {
	operations  *prometheus.CounterVec
	validations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	keyUpdates  *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg. A nil reg
// uses prometheus.DefaultRegisterer. It panics if the collectors are already
// registered with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "operations_total",
				Help:      "Total number of token operations by type, algorithm and status",
			},
			[]string{LabelOperation, LabelAlgorithm, LabelStatus},
		),
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "validations_total",
				Help:      "Total number of token validations by algorithm and outcome reason",
			},
			[]string{LabelAlgorithm, LabelReason},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of token operations in seconds",
				Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{LabelOperation, LabelAlgorithm},
		),
		keyUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "key_updates_total",
				Help:      "Total number of signing and verification key updates",
			},
			[]string{LabelKey},
		),
	}
}

// ObserveOperation records a generate or import call.
func (r *Recorder) ObserveOperation(op, alg string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.operations.WithLabelValues(op, alg, status).Inc()
	r.duration.WithLabelValues(op, alg).Observe(elapsed.Seconds())
}

// ObserveValidation records a validation outcome. reason is "none" for a
// valid token.
func (r *Recorder) ObserveValidation(alg, reason string, elapsed time.Duration) {
	if r == nil {
		return
	}
	status := StatusSuccess
	if reason != "none" {
		status = StatusError
	}
	r.operations.WithLabelValues(OpValidate, alg, status).Inc()
	r.validations.WithLabelValues(alg, reason).Inc()
	r.duration.WithLabelValues(OpValidate, alg).Observe(elapsed.Seconds())
}

// ObserveKeyUpdate records a key installed into a factory.
func (r *Recorder) ObserveKeyUpdate(kind string) {
	if r == nil {
		return
	}
	r.keyUpdates.WithLabelValues(kind).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format. A nil
// g uses prometheus.DefaultGatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
