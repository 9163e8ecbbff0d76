// Package audit records employee data mutations.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// Action represents the type of audit action.
type Action string

// Action constants for audit logging.
const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// LogEntry represents an audit log entry.
type LogEntry struct {
	ID          uuid.UUID
	TableName   string
	RecordID    uuid.UUID
	Action      Action
	OldData     map[string]any
	NewData     map[string]any
	Changes     map[string]any
	PerformedBy string
	PerformedAt time.Time
	RequestID   string
	IPAddress   string
	UserAgent   string
	// ClientInfo is a short "Browser on OS" summary derived from UserAgent.
	ClientInfo string
}

type contextKey string

const (
	ipAddressKey contextKey = "ip_address"
	userAgentKey contextKey = "user_agent"
)

// WithClient stores the caller's address and user agent in the context.
// The request id travels separately through pkg/logger.
func WithClient(ctx context.Context, ipAddress, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ipAddressKey, ipAddress)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

// IPAddressFromContext returns the caller's address, if any.
func IPAddressFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ipAddressKey).(string)
	return s
}

// UserAgentFromContext returns the caller's user agent, if any.
func UserAgentFromContext(ctx context.Context) string {
	s, _ := ctx.Value(userAgentKey).(string)
	return s
}

// ClientInfo summarizes a user agent string, e.g. "Firefox 121.0 on Linux x86_64".
// Bots are prefixed with "bot:".
func ClientInfo(userAgent string) string {
	if userAgent == "" {
		return ""
	}

	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	info := name
	if version != "" {
		info += " " + version
	}
	if os := ua.OS(); os != "" {
		info += " on " + os
	}
	if ua.Mobile() {
		info += " (mobile)"
	}
	if ua.Bot() {
		info = "bot:" + info
	}
	if len(info) > 200 {
		info = info[:200]
	}
	return info
}

// fillFromContext completes entry with request metadata carried by ctx.
func fillFromContext(ctx context.Context, entry *LogEntry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = time.Now()
	}
	if entry.RequestID == "" {
		entry.RequestID = logger.RequestIDFromContext(ctx)
	}
	if entry.IPAddress == "" {
		entry.IPAddress = IPAddressFromContext(ctx)
	}
	if entry.UserAgent == "" {
		entry.UserAgent = UserAgentFromContext(ctx)
	}
	if entry.ClientInfo == "" {
		entry.ClientInfo = ClientInfo(entry.UserAgent)
	}
}

// ToJSON converts a value into a JSON object map. Non-object values yield nil.
func ToJSON(data any) map[string]any {
	if data == nil {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return result
}

// ComputeChanges returns {"field": {"old": x, "new": y}} for every field that differs.
// Fields removed in newData are reported with a nil "new".
func ComputeChanges(oldData, newData map[string]any) map[string]any {
	if oldData == nil || newData == nil {
		return nil
	}

	changes := make(map[string]any)
	for key, newVal := range newData {
		oldVal, exists := oldData[key]
		if !exists || !jsonEqual(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}
	for key, oldVal := range oldData {
		if _, exists := newData[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}
	return changes
}

func jsonEqual(a, b any) bool {
	aBytes, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bBytes, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aBytes) == string(bBytes)
}

func marshalNullable(v map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit data: %w", err)
	}
	return raw, nil
}
