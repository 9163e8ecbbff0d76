// Package messaging publishes employee change events to RabbitMQ or Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
)

// Publisher delivers employee events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event employee.Event) error
	io.Closer
}

// NewPublisher builds the publisher selected by cfg.Driver, guarded by a
// circuit breaker and a per-publish timeout.
func NewPublisher(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	var (
		inner Publisher
		err   error
	)

	switch cfg.Driver {
	case config.EventDriverRabbitMQ:
		inner, err = NewRabbitMQPublisher(cfg.RabbitMQ)
	case config.EventDriverKafka:
		inner, err = NewKafkaPublisher(ctx, cfg.Kafka)
	case config.EventDriverNone, "":
		log.Info().Msg("Event publishing disabled")
		return NoopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return NewGuardedPublisher(inner, cfg.Driver, cfg.PublishTimeout, cfg.Breaker), nil
}

// encode renders the wire form of an event.
func encode(event employee.Event) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return body, nil
}

// NoopPublisher discards events.
type NoopPublisher struct{}

// Publish logs the event at debug level and drops it.
func (NoopPublisher) Publish(_ context.Context, event employee.Event) error {
	log.Debug().
		Str("event", string(event.Type)).
		Str("employee_id", event.EmployeeID.String()).
		Msg("Event dropped (publishing disabled)")
	return nil
}

// Close does nothing.
func (NoopPublisher) Close() error { return nil }
