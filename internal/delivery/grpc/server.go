package grpc

import (
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	_ "google.golang.org/grpc/encoding/gzip" // Register gzip compressor
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/mutugading/goapps-backend/services/hr/internal/delivery/auth"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
)

const defaultRequestTimeout = 30 * time.Second

// Server represents the gRPC server.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	config     *config.ServerConfig
}

// NewServer creates a gRPC server with the full interceptor chain and
// registers the employee service on it.
func NewServer(
	cfg *config.ServerConfig,
	rateLimit config.RateLimitConfig,
	verifier *auth.Verifier,
	service EmployeeServiceServer,
) *Server {
	rateLimiter := NewRateLimiter(float64(rateLimit.RequestsPerSecond), rateLimit.BurstSize)

	timeout := cfg.GRPCTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	unaryChain := grpc.ChainUnaryInterceptor(
		StructuredErrorInterceptor(),      // 1. Wrap status errors into {base}
		RecoveryInterceptor(),             // 2. Recover from panics
		RequestIDInterceptor(),            // 3. Add request ID
		ClientInfoInterceptor(),           // 4. Caller address and user agent
		TracingInterceptor(),              // 5. Add tracing span
		MetricsInterceptor(),              // 6. Record metrics
		RateLimitInterceptor(rateLimiter), // 7. Rate limiting
		AuthInterceptor(verifier),         // 8. Verify access token
		PermissionInterceptor(),           // 9. RBAC
		LoggingInterceptor(),              // 10. Log request
		TimeoutInterceptor(timeout),       // 11. Enforce timeout
	)

	opts := []grpc.ServerOption{
		unaryChain,
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Minute,
			Time:                  5 * time.Minute,
			Timeout:               1 * time.Minute,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             1 * time.Minute,
			PermitWithoutStream: true,
		}),
		grpc.MaxRecvMsgSize(16 * 1024 * 1024), // base64 workbooks and photos
		grpc.MaxSendMsgSize(16 * 1024 * 1024),
	}

	grpcServer := grpc.NewServer(opts...)
	RegisterEmployeeServiceServer(grpcServer, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(EmployeeServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		config:     cfg,
	}
}

// GRPCServer returns the underlying gRPC server.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// Start listens on the configured port and serves until Stop.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.GRPCPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	log.Info().
		Int("port", s.config.GRPCPort).
		Str("address", addr).
		Msg("gRPC server starting")

	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	return s.grpcServer.Serve(listener)
}

// Stop marks the service as not serving and stops the server gracefully.
func (s *Server) Stop() {
	log.Info().Msg("gRPC server stopping...")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
