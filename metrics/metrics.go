package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scdl"

// Refresh triggers.
const (
	RefreshAuthFailure = "auth_failure"
	RefreshForced      = "forced"
)

// Recorder holds the client's collectors. The zero value is not usable, use New.
type Recorder struct {
	Attempts       *prometheus.CounterVec
	Refreshes      *prometheus.CounterVec
	Discoveries    *prometheus.CounterVec
	AttemptLatency prometheus.Histogram
}

// New creates the collectors and registers them with reg when it is not nil.
// Collectors that are already registered are reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{ //nolint:exhaustruct
				Namespace: namespace,
				Name:      "api_attempts_total",
				Help:      "API request attempts by outcome.",
			},
			[]string{"outcome"},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{ //nolint:exhaustruct
				Namespace: namespace,
				Name:      "client_id_refreshes_total",
				Help:      "Client ID refreshes by trigger and result.",
			},
			[]string{"trigger", "result"},
		),
		Discoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{ //nolint:exhaustruct
				Namespace: namespace,
				Name:      "client_id_discoveries_total",
				Help:      "Client ID discovery runs by result.",
			},
			[]string{"result"},
		),
		AttemptLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{ //nolint:exhaustruct
				Namespace: namespace,
				Name:      "api_attempt_duration_seconds",
				Help:      "Duration of single API request attempts.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	if nil == reg {
		return r, nil
	}

	var err error
	r.Attempts, err = register(reg, r.Attempts)
	if nil != err {
		return nil, err
	}

	r.Refreshes, err = register(reg, r.Refreshes)
	if nil != err {
		return nil, err
	}

	r.Discoveries, err = register(reg, r.Discoveries)
	if nil != err {
		return nil, err
	}

	r.AttemptLatency, err = register(reg, r.AttemptLatency)
	if nil != err {
		return nil, err
	}

	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); nil != err {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}

		return c, fmt.Errorf("register collector: %w", err)
	}

	return c, nil
}

// NewNop returns unregistered collectors.
func NewNop() *Recorder {
	r, _ := New(nil)
	return r
}

func result(err error) string {
	if nil != err {
		return "failure"
	}

	return "success"
}

func (r *Recorder) ObserveRefresh(trigger string, err error) {
	r.Refreshes.WithLabelValues(trigger, result(err)).Inc()
}

func (r *Recorder) ObserveDiscovery(err error) {
	r.Discoveries.WithLabelValues(result(err)).Inc()
}

func (r *Recorder) ObserveAttempt(outcome string, seconds float64) {
	r.Attempts.WithLabelValues(outcome).Inc()
	r.AttemptLatency.Observe(seconds)
}
