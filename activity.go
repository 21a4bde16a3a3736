package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess          ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure          ActivityEventType = "auth.login.failure"
	ActivityEventImpersonationSuccess  ActivityEventType = "auth.impersonation.success"
	ActivityEventImpersonationFailure  ActivityEventType = "auth.impersonation.failure"
	ActivityEventRegistrationStarted   ActivityEventType = "admin.registration.started"
	ActivityEventRegistrationConfirmed ActivityEventType = "admin.registration.confirmed"
)

// ActivityEvent captures audit-friendly information about an action.
// Registration events carry the email only, there is no admin id until
// the pending record is promoted.
type ActivityEvent struct {
	EventType  ActivityEventType
	AdminID    string
	Email      string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
