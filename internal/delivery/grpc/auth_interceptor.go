package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mutugading/goapps-backend/services/hr/internal/delivery/auth"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// AuthInterceptor validates JWT access tokens issued by the IAM service.
// Health and reflection calls are public.
func AuthInterceptor(verifier *auth.Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if isPublicMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		token, err := auth.BearerToken(firstMetadata(ctx, MetadataAuthorization))
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		claims, err := verifier.Verify(ctx, token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenRevoked) {
				return nil, status.Error(codes.Unauthenticated, "token has been revoked")
			}
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		return handler(auth.WithClaims(ctx, claims), req)
	}
}

// PermissionInterceptor enforces RBAC permission checks for employee service methods.
func PermissionInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if isPublicMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		if err := auth.Authorize(ctx, methodName(info.FullMethod)); err != nil {
			logger.FromContext(ctx).Warn().
				Str("method", info.FullMethod).
				Str("required", auth.RequiredPermission(methodName(info.FullMethod))).
				Str("user", auth.UserFromContext(ctx)).
				Msg("Permission denied")
			return nil, status.Error(codes.PermissionDenied, err.Error())
		}

		return handler(ctx, req)
	}
}
