package grpc

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// bucket is a token bucket.
type bucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func newBucket(rate, burst float64, now time.Time) *bucket {
	return &bucket{tokens: burst, maxTokens: burst, refillRate: rate, lastRefill: now}
}

func (b *bucket) take(now time.Time) bool {
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// RateLimiter implements a global token bucket plus stricter buckets for
// expensive methods.
type RateLimiter struct {
	mu      sync.Mutex
	global  *bucket
	methods map[string]*bucket
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter. A burst below 1 defaults to twice the rate.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return newRateLimiter(requestsPerSecond, burst, time.Now)
}

func newRateLimiter(requestsPerSecond float64, burst int, now func() time.Time) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 100
	}
	capacity := float64(burst)
	if capacity < 1 {
		capacity = requestsPerSecond * 2
	}

	start := now()
	return &RateLimiter{
		global: newBucket(requestsPerSecond, capacity, start),
		methods: map[string]*bucket{
			// Very low for expensive operations
			FullMethod(MethodImportEmployees): newBucket(2, 2, start),
			FullMethod(MethodExportEmployees): newBucket(5, 5, start),
		},
		now: now,
	}
}

// Allow checks if a request to fullMethod is allowed.
func (rl *RateLimiter) Allow(fullMethod string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if b, ok := rl.methods[fullMethod]; ok && !b.take(now) {
		return false
	}
	return rl.global.take(now)
}

// RateLimitInterceptor creates a rate limiting interceptor.
func RateLimitInterceptor(limiter *RateLimiter) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !limiter.Allow(info.FullMethod) {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded, please try again later")
		}
		return handler(ctx, req)
	}
}
