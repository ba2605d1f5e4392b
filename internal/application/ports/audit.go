package ports

import "context"

// AuditEvent is an auth event forwarded to an external collector.
type AuditEvent struct {
	Event   string `json:"event"`
	UserID  string `json:"user_id,omitempty"`
	IP      string `json:"ip,omitempty"`
	Success bool   `json:"success"`
	Err     string `json:"error,omitempty"`
}

// WebhookEmitter delivers audit events to an external endpoint.
type WebhookEmitter interface {
	Emit(ctx context.Context, event AuditEvent) error
}

// LoginLockoutStore throttles password guessing per email.
type LoginLockoutStore interface {
	IsLocked(ctx context.Context, email string) (locked bool, retryAfterSeconds int)
	RecordFailure(ctx context.Context, email string)
	RecordSuccess(ctx context.Context, email string)
}
