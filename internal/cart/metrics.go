package cart

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opAdd    = "add"
	opUpdate = "update"
	opRemove = "remove"
)

type Metrics struct {
	Mutations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shop",
				Name:      "cart_mutations_total",
				Help:      "Cart mutations by operation and outcome",
			},
			[]string{"op", "result"},
		),
	}
	reg.MustRegister(m.Mutations)
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrDuplicateItem):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
