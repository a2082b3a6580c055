package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics surface consumed by the grant engine and handlers.
// Production uses the Prometheus implementation; tests and metrics-disabled
// deployments use the noop implementation.
type Recorder interface {
	// RecordGrantIssued records a successful token issuance for a grant type.
	RecordGrantIssued(grantType string, duration time.Duration)

	// RecordGrantRejected records a rejected grant request with the OAuth2
	// error code it surfaced as.
	RecordGrantRejected(grantType, reason string)

	// RecordAuthCodeIssued records an authorization code being created.
	RecordAuthCodeIssued()

	// RecordSessionCreated records a persisted session. kind is "token" for
	// grant-issued sessions or "login" for end-user login sessions.
	RecordSessionCreated(kind string)

	// RecordLogin records a resource-owner login attempt.
	RecordLogin(success bool)
}

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	GrantsIssuedTotal     *prometheus.CounterVec
	GrantsRejectedTotal   *prometheus.CounterVec
	GrantIssuanceDuration *prometheus.HistogramVec

	AuthCodesIssuedTotal prometheus.Counter

	SessionsCreatedTotal *prometheus.CounterVec
	LoginTotal           *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns the Prometheus-backed Recorder when enabled, otherwise the
// noop Recorder. sync.Once guards against double registration.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		GrantsIssuedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth2_grants_issued_total",
				Help: "Total number of successful token grants by grant type",
			},
			[]string{"grant_type"},
		),
		GrantsRejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth2_grants_rejected_total",
				Help: "Total number of rejected grant requests by grant type and error code",
			},
			[]string{"grant_type", "reason"},
		),
		GrantIssuanceDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oauth2_grant_issuance_duration_seconds",
				Help:    "Time from request validation to session persistence",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"grant_type"},
		),
		AuthCodesIssuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "oauth2_authorization_codes_issued_total",
				Help: "Total number of authorization codes issued",
			},
		),
		SessionsCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth2_sessions_created_total",
				Help: "Total number of sessions persisted by kind (token or login)",
			},
			[]string{"kind"},
		),
		LoginTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oauth2_logins_total",
				Help: "Total number of resource owner login attempts by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) RecordGrantIssued(grantType string, duration time.Duration) {
	m.GrantsIssuedTotal.WithLabelValues(grantType).Inc()
	m.GrantIssuanceDuration.WithLabelValues(grantType).Observe(duration.Seconds())
}

func (m *Metrics) RecordGrantRejected(grantType, reason string) {
	m.GrantsRejectedTotal.WithLabelValues(grantType, reason).Inc()
}

func (m *Metrics) RecordAuthCodeIssued() {
	m.AuthCodesIssuedTotal.Inc()
}

func (m *Metrics) RecordSessionCreated(kind string) {
	m.SessionsCreatedTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginTotal.WithLabelValues(result).Inc()
}
