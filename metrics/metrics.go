// Package metrics exposes auth flow counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the login and refresh counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeRevoked  = "revoked"
	OutcomeError    = "error"
)

// Auth holds the counters recorded by the auth service. A nil *Auth is valid
// and records nothing.
type Auth struct {
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	rotations     prometheus.Counter
	revocations   *prometheus.CounterVec
	reuseDetected prometheus.Counter
}

// NewAuth creates the auth counters and registers them with reg.
func NewAuth(reg prometheus.Registerer) *Auth {
	m := &Auth{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refreshes_total",
			Help: "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_rotations_total",
			Help: "Refresh sessions replaced near expiry.",
		}),
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_tokens_revoked_total",
			Help: "Token ids added to the blacklist by reason.",
		}, []string{"reason"}),
		reuseDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_reuse_detected_total",
			Help: "Replays of rotated tokens that burned a session family.",
		}),
	}
	reg.MustRegister(m.logins, m.refreshes, m.rotations, m.revocations, m.reuseDetected)
	return m
}

func (m *Auth) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Auth) Refresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Auth) Rotation() {
	if m == nil {
		return
	}
	m.rotations.Inc()
}

func (m *Auth) Revoked(reason string) {
	if m == nil {
		return
	}
	m.revocations.WithLabelValues(reason).Inc()
}

func (m *Auth) ReuseDetected() {
	if m == nil {
		return
	}
	m.reuseDetected.Inc()
}

// Handler serves everything gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
