package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	app "github.com/mutugading/goapps-backend/services/hr/internal/application/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/pkg/cedula"
)

var (
	// Request metrics
	grpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "code"},
	)

	grpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	grpcRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grpc_requests_in_flight",
			Help: "Current number of gRPC requests being processed",
		},
	)

	// Business metrics
	employeeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_employee_operations_total",
			Help: "Total number of employee operations",
		},
		[]string{"operation", "status"},
	)

	cedulaValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hr_cedula_validations_total",
			Help: "Total number of live national id validations by outcome",
		},
		[]string{"outcome"},
	)

	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)
)

// MetricsInterceptor creates a Prometheus metrics interceptor.
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		grpcRequestsInFlight.Inc()
		defer grpcRequestsInFlight.Dec()

		start := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err).String()
		grpcRequestsTotal.WithLabelValues(info.FullMethod, code).Inc()
		grpcRequestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())

		return resp, err
	}
}

// RecordEmployeeOperation records an employee operation metric.
func RecordEmployeeOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	employeeOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCedulaValidation records the outcome of a live validation:
// complete, partial or invalid.
func RecordCedulaValidation(result cedula.ValidationResult) {
	cedulaValidationsTotal.WithLabelValues(validationOutcome(result)).Inc()
}

func validationOutcome(result cedula.ValidationResult) string {
	switch {
	case result.IsComplete:
		return "complete"
	case result.IsValid:
		return "partial"
	default:
		return "invalid"
	}
}

// InstrumentedCache counts hits and misses of an employee cache.
type InstrumentedCache struct {
	inner app.Cache
	name  string
}

// NewInstrumentedCache wraps inner. A nil inner yields nil.
func NewInstrumentedCache(inner app.Cache, name string) app.Cache {
	if inner == nil {
		return nil
	}
	return &InstrumentedCache{inner: inner, name: name}
}

// GetByID reads through to the wrapped cache and counts the outcome.
func (c *InstrumentedCache) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	entity, err := c.inner.GetByID(ctx, id)
	if err != nil || entity == nil {
		cacheMissesTotal.WithLabelValues(c.name).Inc()
		return nil, err
	}
	cacheHitsTotal.WithLabelValues(c.name).Inc()
	return entity, nil
}

// SetByID stores entity.
func (c *InstrumentedCache) SetByID(ctx context.Context, entity *employee.Employee) error {
	return c.inner.SetByID(ctx, entity)
}

// InvalidateByID drops the cached entry.
func (c *InstrumentedCache) InvalidateByID(ctx context.Context, id uuid.UUID) error {
	return c.inner.InvalidateByID(ctx, id)
}
