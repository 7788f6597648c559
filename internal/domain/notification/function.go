package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Invoker calls the external notification function.
type Invoker interface {
	Invoke(ctx context.Context, event string, payload any) error
}

type functionRequest struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// HTTPInvoker POSTs {event, payload} as JSON to a serverless function URL.
type HTTPInvoker struct {
	client *http.Client
	url    string
}

func NewHTTPInvoker(url string, timeout time.Duration) *HTTPInvoker {
	return &HTTPInvoker{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (i *HTTPInvoker) Invoke(ctx context.Context, event string, payload any) error {
	body, err := json.Marshal(functionRequest{Event: event, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", event, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFunctionFailed, event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: status %d: %s", ErrFunctionFailed, event, resp.StatusCode, string(msg))
	}
	return nil
}

// LogInvoker stands in when no function URL is configured. With verbose
// set it logs payloads, which may include reset codes; dev only.
type LogInvoker struct {
	verbose bool
}

func NewLogInvoker(verbose bool) *LogInvoker {
	return &LogInvoker{verbose: verbose}
}

func (i *LogInvoker) Invoke(_ context.Context, event string, payload any) error {
	if !i.verbose {
		log.Printf("notification: function not configured event=%s", event)
		return nil
	}
	b, _ := json.Marshal(payload)
	log.Printf("notification: function not configured event=%s payload=%s", event, b)
	return nil
}
