// Package auth verifies IAM-issued access tokens and enforces permissions.
// Both the gRPC and the REST surface use it.
package auth

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
)

// Authentication and authorization errors.
var (
	ErrMissingToken     = errors.New("missing or invalid authorization header")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrNotAccessToken   = errors.New("not an access token")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrPermissionDenied = errors.New("permission denied")
)

// RoleSuperAdmin bypasses every permission check.
const RoleSuperAdmin = "SUPER_ADMIN"

// Claims mirrors the IAM service JWT claims structure.
type Claims struct {
	jwt.RegisteredClaims
	TokenType   string   `json:"token_type"`
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// BlacklistChecker reports whether a token id has been revoked.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// Verifier validates bearer tokens.
type Verifier struct {
	secret    []byte
	issuer    string
	blacklist BlacklistChecker
}

// NewVerifier creates a verifier. blacklist may be nil, in which case
// revocation is not checked.
func NewVerifier(cfg *config.JWTConfig, blacklist BlacklistChecker) *Verifier {
	return &Verifier{
		secret:    []byte(cfg.AccessTokenSecret),
		issuer:    cfg.Issuer,
		blacklist: blacklist,
	}
}

// Verify parses and validates an access token.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != "access" {
		return nil, ErrNotAccessToken
	}

	if v.blacklist != nil && claims.ID != "" {
		revoked, err := v.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Fail open: access tokens are short-lived.
			log.Warn().Err(err).Msg("Failed to check token blacklist")
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}

type claimsKey struct{}

// WithClaims stores verified claims in the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// UserFromContext returns the acting user for audit fields: the username,
// else the user id, else "system".
func UserFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		if claims.Username != "" {
			return claims.Username
		}
		if claims.UserID != "" {
			return claims.UserID
		}
	}
	return "system"
}

// HasPermission checks if the caller holds a permission.
func HasPermission(ctx context.Context, permission string) bool {
	claims, ok := ClaimsFromContext(ctx)
	return ok && slices.Contains(claims.Permissions, permission)
}

// IsSuperAdmin checks if the caller has the SUPER_ADMIN role.
func IsSuperAdmin(ctx context.Context) bool {
	claims, ok := ClaimsFromContext(ctx)
	return ok && slices.Contains(claims.Roles, RoleSuperAdmin)
}
