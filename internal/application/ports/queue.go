package ports

import "context"

// TaskEnqueuer enqueues async work (webhook delivery).
type TaskEnqueuer interface {
	EnqueueWebhook(ctx context.Context, event string, payload interface{}) error
}
