package auth

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultLocked  = "locked"
	resultMissing = "missing"
)

type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	Lockouts      prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shop",
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"result"},
		),
		Lockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shop",
			Name:      "login_lockouts_total",
			Help:      "Usernames that reached the failed login limit",
		}),
	}
	reg.MustRegister(m.LoginAttempts, m.Lockouts)
	return m
}

func (m *Metrics) loginResult(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) lockout() {
	if m == nil {
		return
	}
	m.Lockouts.Inc()
}
