package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
)

const defaultEmitTimeout = 5 * time.Second

// eventHeader carries the event name so receivers can route without
// parsing the body.
const eventHeader = "X-Lotus-Event"

// HTTPEmitter delivers audit events by POSTing them as JSON to a
// configured endpoint. A non-2xx response counts as a failed delivery so
// the queue worker retries it.
type HTTPEmitter struct {
	client  *http.Client
	url     string
	headers map[string]string
}

type HTTPEmitterOption func(*HTTPEmitter)

// WithClient overrides the default client, mainly for tests.
func WithClient(c *http.Client) HTTPEmitterOption {
	return func(e *HTTPEmitter) {
		e.client = c
	}
}

// WithHeader adds a static header to every delivery, typically an
// Authorization or X-API-Key value for the receiving endpoint.
func WithHeader(key, value string) HTTPEmitterOption {
	return func(e *HTTPEmitter) {
		if e.headers == nil {
			e.headers = make(map[string]string)
		}
		e.headers[key] = value
	}
}

func NewHTTPEmitter(url string, opts ...HTTPEmitterOption) *HTTPEmitter {
	e := &HTTPEmitter{
		client: &http.Client{Timeout: defaultEmitTimeout},
		url:    url,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *HTTPEmitter) Emit(ctx context.Context, event ports.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", event.Event, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(eventHeader, event.Event)
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivering event %s: %w", event.Event, err)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delivering event %s: endpoint returned %d", event.Event, resp.StatusCode)
	}
	return nil
}

var _ ports.WebhookEmitter = (*HTTPEmitter)(nil)
