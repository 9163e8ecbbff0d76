package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
	"github.com/mutugading/goapps-backend/services/hr/pkg/circuitbreaker"
)

func sampleEvent() employee.Event {
	return employee.Event{
		ID:           uuid.New(),
		Type:         employee.EventCreated,
		Action:       "created",
		EmployeeID:   uuid.New(),
		EmployeeCode: "EMP001",
		Department:   "FINANCE",
		Status:       "ACTIVE",
		PerformedBy:  "admin",
		OccurredAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// =============================================================================
// RabbitMQ
// =============================================================================

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestRabbitMQPublisher_Publish(t *testing.T) {
	ch := new(mockChannel)
	p := newRabbitMQPublisher(ch, "hr.events")
	event := sampleEvent()

	var sent amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "hr.events", "employee.created", false, false, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(5).(amqp.Publishing) }).
		Return(nil)

	require.NoError(t, p.Publish(context.Background(), event))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)
	assert.Equal(t, event.ID.String(), sent.MessageId)
	assert.Equal(t, "employee.created", sent.Type)

	var decoded employee.Event
	require.NoError(t, json.Unmarshal(sent.Body, &decoded))
	assert.Equal(t, event.EmployeeCode, decoded.EmployeeCode)
}

func TestRabbitMQPublisher_PublishError(t *testing.T) {
	ch := new(mockChannel)
	p := newRabbitMQPublisher(ch, "hr.events")
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(amqp.ErrClosed)

	err := p.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestRabbitMQPublisher_Close(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Close").Return(nil)

	require.NoError(t, newRabbitMQPublisher(ch, "x").Close())
	ch.AssertExpectations(t)
}

// =============================================================================
// Kafka
// =============================================================================

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) Close() { f.closed = true }

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &fakeProducer{}
	p := newKafkaPublisher(producer, "hr.employee.events")
	event := sampleEvent()

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, producer.records, 1)

	record := producer.records[0]
	assert.Equal(t, "hr.employee.events", record.Topic)
	assert.Equal(t, event.EmployeeID.String(), string(record.Key))
	assert.Equal(t, "event_type", record.Headers[0].Key)
	assert.Equal(t, "employee.created", string(record.Headers[0].Value))
	assert.JSONEq(t, mustJSON(t, event), string(record.Value))

	require.NoError(t, p.Close())
	assert.True(t, producer.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("not leader")}
	err := newKafkaPublisher(producer, "t").Publish(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "not leader")
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// =============================================================================
// Guarded publisher
// =============================================================================

type stubPublisher struct {
	calls int
	err   error
	wait  time.Duration
}

func (s *stubPublisher) Publish(ctx context.Context, _ employee.Event) error {
	s.calls++
	if s.wait > 0 {
		select {
		case <-time.After(s.wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *stubPublisher) Close() error { return nil }

func TestGuardedPublisher_OpensAfterFailures(t *testing.T) {
	inner := &stubPublisher{err: errors.New("broker down")}
	p := NewGuardedPublisher(inner, "test", 0, config.BreakerConfig{MaxFailures: 2, Cooldown: time.Hour})

	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
	assert.Error(t, p.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, circuitbreaker.StateOpen, p.State())

	err := p.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls)
}

func TestGuardedPublisher_Timeout(t *testing.T) {
	inner := &stubPublisher{wait: time.Second}
	p := NewGuardedPublisher(inner, "test", 10*time.Millisecond, config.BreakerConfig{})

	err := p.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewPublisher_Drivers(t *testing.T) {
	p, err := NewPublisher(context.Background(), config.EventsConfig{Driver: config.EventDriverNone})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())

	_, err = NewPublisher(context.Background(), config.EventsConfig{Driver: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown events driver")
}
