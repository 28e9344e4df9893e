// Package metrics exposes authentication counters to prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mvpy"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

type Recorder struct {
	logins   *prometheus.CounterVec
	logouts  *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// New builds the counters and registers them on reg.
func New(reg prometheus.Registerer) *Recorder {
	m := &Recorder{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "login_total",
				Help:      "Login attempts by result",
			},
			[]string{"result"},
		),
		logouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "logout_total",
				Help:      "Logout attempts by result",
			},
			[]string{"result"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "rejected_total",
				Help:      "Requests rejected by the authentication pipeline, by error kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.logins, m.logouts, m.rejected)
	return m
}

func (m *Recorder) ObserveLogin(result string)  { m.logins.WithLabelValues(result).Inc() }
func (m *Recorder) ObserveLogout(result string) { m.logouts.WithLabelValues(result).Inc() }

// ObserveRejection counts a 401/403 produced for the given error kind.
func (m *Recorder) ObserveRejection(kind string) { m.rejected.WithLabelValues(kind).Inc() }
