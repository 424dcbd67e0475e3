// Package webhook delivers high-risk prediction alerts to a configured
// endpoint. Dispatch is asynchronous so a slow receiver can never slow down
// the scoring path; deliveries are retried with exponential backoff and
// signed with HMAC-SHA256.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/insightportal/attrition/internal/telemetry"
)

const (
	// queueSize bounds the pending-event buffer; beyond it events are
	// dropped rather than blocking the caller.
	queueSize = 1000

	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	requestTimeout = 10 * time.Second
)

// Dispatcher queues alert events and delivers them from a single worker
// goroutine.
type Dispatcher struct {
	url    string
	secret string
	client *http.Client
	queue  chan Event
	done   chan struct{}
	closed int32 // atomic flag to prevent double-close
}

// NewDispatcher creates a dispatcher for the alert endpoint. An empty URL
// yields a disabled dispatcher whose Dispatch is a no-op.
func NewDispatcher(url, secret string) *Dispatcher {
	return &Dispatcher{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: requestTimeout},
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
}

// Enabled reports whether an alert endpoint is configured.
func (d *Dispatcher) Enabled() bool {
	return d.url != ""
}

// Start begins processing events from the queue.
func (d *Dispatcher) Start() {
	go d.worker()
}

// Close shuts down the dispatcher after draining pending events. Safe to call
// multiple times.
func (d *Dispatcher) Close() error {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return nil
	}
	close(d.queue)
	<-d.done
	return nil
}

// Dispatch queues an alert event. Non-blocking: if the queue is full the
// event is dropped and logged.
func (d *Dispatcher) Dispatch(event Event) {
	if !d.Enabled() {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	select {
	case d.queue <- event:
	default:
		log.Printf("[webhook] queue full (size=%d), dropping event: id=%s subject=%s", queueSize, event.ID, event.SubjectID)
		telemetry.WebhookDeliveries.WithLabelValues("dropped").Inc()
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for event := range d.queue {
		d.deliverWithRetry(context.Background(), event)
	}
}

// deliverWithRetry posts the event, retrying transient failures with
// exponential backoff. A 2xx response is success; anything else after the
// final attempt is recorded as a failed delivery.
func (d *Dispatcher) deliverWithRetry(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[webhook] failed to marshal event: id=%s error=%v", event.ID, err)
		telemetry.WebhookDeliveries.WithLabelValues("failure").Inc()
		return
	}
	signature := ComputeHMAC(payload, d.secret)

	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ok := d.deliverOnce(ctx, payload, signature, event)
		if ok {
			telemetry.WebhookDeliveries.WithLabelValues("success").Inc()
			return
		}
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	log.Printf("[webhook] giving up after %d attempts: id=%s subject=%s", maxAttempts, event.ID, event.SubjectID)
	telemetry.WebhookDeliveries.WithLabelValues("failure").Inc()
}

func (d *Dispatcher) deliverOnce(ctx context.Context, payload []byte, signature string, event Event) bool {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		log.Printf("[webhook] failed to create request: id=%s error=%v", event.ID, err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Attrition-Signature", signature)
	req.Header.Set("X-Attrition-Event", event.Type)
	req.Header.Set("X-Attrition-Delivery", event.ID)

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("[webhook] delivery failed: id=%s error=%v", event.ID, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[webhook] non-2xx response: id=%s status=%d", event.ID, resp.StatusCode)
		return false
	}
	return true
}
