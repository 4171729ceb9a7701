// Package physmonprom wires a physmon.Observer to Prometheus metrics: a namespace/subsystem/ConstLabels
// registration shape with a mockable timesource for deterministic duration tests, tracking per-observable-
// state dwell time and transition counts.
package physmonprom

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/exaring/physmon"
)

const namespace = "physmon"

// WithPrometheusMetrics registers Prometheus collectors for a monitor named monitorName and returns a
// physmon.Observer that feeds them; pass the result to (*physmon.Monitor).Subscribe.
//
// The provided name must be unique across all physmon.Monitor instances sharing reg.
func WithPrometheusMetrics(monitorName string, reg prometheus.Registerer) (physmon.Observer, error) {
	dwellSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "state_dwell_seconds",
			Help:      "Time spent in each observable state before transitioning out of it",
			ConstLabels: prometheus.Labels{
				"monitor": monitorName,
			},
		},
		[]string{"state"},
	)

	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "transitions_total",
			Help:      "Total number of times the monitor entered a given observable state",
			ConstLabels: prometheus.Labels{
				"monitor": monitorName,
			},
		},
		[]string{"state"},
	)

	currentState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "current_state",
			Help:      "1 for the observable state the monitor currently reports, 0 for all others",
			ConstLabels: prometheus.Labels{
				"monitor": monitorName,
			},
		},
		[]string{"state"},
	)

	for _, c := range []prometheus.Collector{dwellSeconds, transitionsTotal, currentState} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("physmon: registering collector: %w", err)
		}
	}

	return &stateObserver{
		timesource:       wallclock{},
		dwellSeconds:     dwellSeconds,
		transitionsTotal: transitionsTotal,
		currentState:     currentState,
	}, nil
}

type stateObserver struct {
	timesource timesource

	dwellSeconds     *prometheus.HistogramVec
	transitionsTotal *prometheus.CounterVec
	currentState     *prometheus.GaugeVec

	have  bool
	state physmon.ObservableState
	since time.Time
}

// OnStateChange implements physmon.Observer.
func (s *stateObserver) OnStateChange(newState physmon.ObservableState) {
	now := s.timesource.Now()

	if s.have {
		s.dwellSeconds.WithLabelValues(s.state.String()).Observe(s.timesource.Since(s.since).Seconds())
		s.currentState.WithLabelValues(s.state.String()).Set(0)
	}

	s.transitionsTotal.WithLabelValues(newState.String()).Inc()
	s.currentState.WithLabelValues(newState.String()).Set(1)

	s.have = true
	s.state = newState
	s.since = now
}

type timesource interface {
	Now() time.Time
	Since(time.Time) time.Duration
}

// wallclock wraps time.Now/time.Since to allow mocking in tests.
type wallclock struct{}

func (wallclock) Now() time.Time                  { return time.Now() }
func (wallclock) Since(t time.Time) time.Duration { return time.Since(t) }
