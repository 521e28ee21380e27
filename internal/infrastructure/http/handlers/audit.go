package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
)

// AuditLog logs auth events (client_id, project_id, user_id, IP).
func AuditLog(log zerolog.Logger, r *http.Request, event ports.AuditEvent) {
	ev := log.Info()
	if !event.Success {
		ev = log.Warn()
	}
	ev.
		Str("event", event.Event).
		Str("client_id", event.ClientID).
		Str("project_id", event.ProjectID).
		Str("user_id", event.UserID).
		Str("ip", event.IP).
		Str("request_id", middleware.GetReqID(r.Context())).
		Bool("success", event.Success)
	if event.Err != "" {
		ev.Str("error", event.Err)
	}
	ev.Msg("auth_audit")
}

// AuditEmit logs the event and, if enqueuer is non-nil, queues it for
// webhook delivery.
func AuditEmit(log zerolog.Logger, r *http.Request, enqueuer ports.TaskEnqueuer, event ports.AuditEvent) {
	if event.IP == "" {
		event.IP = ClientIP(r)
	}
	AuditLog(log, r, event)
	if enqueuer != nil {
		_ = enqueuer.EnqueueWebhook(r.Context(), event.Event, event)
	}
}

// ClientIP returns the originating address, honoring X-Forwarded-For.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return r.RemoteAddr
}
