package ports

import "context"

// AuditEvent is a single auth outcome for logging or webhooks.
type AuditEvent struct {
	Event     string `json:"event"` // user.registered, user.login, auth.refresh
	ClientID  string `json:"client_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	LoginID   string `json:"login_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	Success   bool   `json:"success"`
	Err       string `json:"error,omitempty"`
}

// WebhookEmitter sends audit events to an external endpoint.
type WebhookEmitter interface {
	Emit(ctx context.Context, event AuditEvent) error
}
