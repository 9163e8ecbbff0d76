package grpc

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/audit"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/tracing"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// Metadata keys read or written by the interceptors.
const (
	MetadataRequestID     = "x-request-id"
	MetadataForwardedFor  = "x-forwarded-for"
	MetadataClientAgent   = "x-client-user-agent"
	MetadataAuthorization = "authorization"
)

// RequestIDInterceptor adds a unique request ID to each request.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := firstMetadata(ctx, MetadataRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx = logger.ContextWithRequestID(ctx, requestID)

		if err := grpc.SetHeader(ctx, metadata.Pairs(MetadataRequestID, requestID)); err != nil {
			log.Debug().Err(err).Msg("Failed to set request ID header")
		}

		return handler(ctx, req)
	}
}

// ClientInfoInterceptor records the caller address and user agent for audit entries.
// Values forwarded by the REST gateway take precedence over the transport peer.
func ClientInfoInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		ip := firstMetadata(ctx, MetadataForwardedFor)
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		ip = strings.TrimSpace(ip)
		if ip == "" {
			if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
				ip = hostOnly(p.Addr.String())
			}
		}

		userAgent := firstMetadata(ctx, MetadataClientAgent)
		if userAgent == "" {
			userAgent = firstMetadata(ctx, "user-agent")
		}

		return handler(audit.WithClient(ctx, ip, userAgent), req)
	}
}

// TracingInterceptor starts a server span, continuing any trace propagated in metadata.
func TracingInterceptor() grpc.UnaryServerInterceptor {
	tracer := otel.Tracer(tracing.InstrumentationName)
	propagator := otel.GetTextMapPropagator()

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = propagator.Extract(ctx, metadataCarrier(md))
		}

		ctx, span := tracer.Start(ctx, methodName(info.FullMethod),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("rpc.system", "grpc"),
				attribute.String("rpc.method", info.FullMethod),
			),
		)
		defer span.End()

		if reqID := logger.RequestIDFromContext(ctx); reqID != "" {
			span.SetAttributes(attribute.String("request.id", reqID))
		}

		resp, err := handler(ctx, req)
		if err != nil {
			tracing.SetError(ctx, err)
			span.SetAttributes(attribute.String("rpc.grpc.status_code", status.Code(err).String()))
		}

		return resp, err
	}
}

// LoggingInterceptor creates a unary interceptor for request logging.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		l := logger.FromContext(ctx)

		l.Debug().Str("method", info.FullMethod).Msg("gRPC request started")

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		if err != nil {
			l.Error().
				Str("method", info.FullMethod).
				Dur("duration", duration).
				Err(err).
				Msg("gRPC request failed")
		} else {
			l.Info().
				Str("method", info.FullMethod).
				Dur("duration", duration).
				Msg("gRPC request completed")
		}

		return resp, err
	}
}

// TimeoutInterceptor enforces request timeout.
func TimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if _, ok := ctx.Deadline(); !ok && timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		return handler(ctx, req)
	}
}

// RecoveryInterceptor creates a unary interceptor for panic recovery.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("method", info.FullMethod).
					Str("request_id", logger.RequestIDFromContext(ctx)).
					Interface("panic", r).
					Msg("Panic recovered in gRPC handler")

				err = status.Error(codes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}

// isPublicMethod reports whether a method skips authentication.
func isPublicMethod(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/grpc.health.v1.") ||
		strings.HasPrefix(fullMethod, "/grpc.reflection.")
}

// methodName returns the last path segment of a full method name.
func methodName(fullMethod string) string {
	if i := strings.LastIndexByte(fullMethod, '/'); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// metadataCarrier adapts gRPC metadata to an OpenTelemetry text map carrier.
type metadataCarrier metadata.MD

var _ propagation.TextMapCarrier = metadataCarrier{}

func (c metadataCarrier) Get(key string) string {
	if values := metadata.MD(c).Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (c metadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

func (c metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
