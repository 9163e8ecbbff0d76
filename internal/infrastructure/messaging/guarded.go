package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
	"github.com/mutugading/goapps-backend/services/hr/pkg/circuitbreaker"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hr",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Employee events by type and outcome (ok, error, rejected).",
		},
		[]string{"type", "outcome"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hr",
			Subsystem: "events",
			Name:      "breaker_state",
			Help:      "Publisher circuit breaker state (0 closed, 1 open, 2 half-open).",
		},
		[]string{"driver"},
	)
)

// GuardedPublisher bounds every publish with a timeout and stops calling a
// failing broker through a circuit breaker.
type GuardedPublisher struct {
	inner   Publisher
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedPublisher wraps inner. A zero timeout disables the per-call deadline.
func NewGuardedPublisher(inner Publisher, name string, timeout time.Duration, cfg config.BreakerConfig) *GuardedPublisher {
	settings := circuitbreaker.DefaultSettings(name)
	if cfg.MaxFailures > 0 {
		settings.MaxFailures = cfg.MaxFailures
	}
	if cfg.Cooldown > 0 {
		settings.Cooldown = cfg.Cooldown
	}
	settings.OnStateChange = func(name string, from, to circuitbreaker.State) {
		breakerState.WithLabelValues(name).Set(float64(to))
		log.Warn().
			Str("driver", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("Event publisher circuit breaker changed state")
	}

	return &GuardedPublisher{
		inner:   inner,
		timeout: timeout,
		breaker: circuitbreaker.New(settings),
	}
}

// Publish forwards the event unless the breaker is open.
func (p *GuardedPublisher) Publish(ctx context.Context, event employee.Event) error {
	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return p.inner.Publish(ctx, event)
	})

	switch {
	case err == nil:
		eventsPublished.WithLabelValues(string(event.Type), "ok").Inc()
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		eventsPublished.WithLabelValues(string(event.Type), "rejected").Inc()
	default:
		eventsPublished.WithLabelValues(string(event.Type), "error").Inc()
	}
	return err
}

// State reports the breaker state.
func (p *GuardedPublisher) State() circuitbreaker.State {
	return p.breaker.State()
}

// Close closes the wrapped publisher.
func (p *GuardedPublisher) Close() error {
	return p.inner.Close()
}
