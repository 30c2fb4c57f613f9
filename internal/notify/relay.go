package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	dbtypes "github.com/poojakit/poojakit-backend/pkg/db/types"
)

const defaultTimeout = 10 * time.Second

// OrderNotification carries the fields relayed for a newly placed order.
type OrderNotification struct {
	TrackingID string
	Name       string
	Phone      string
	Address    string
	City       string
	Pin        string
	Items      dbtypes.OrderItems
	Total      int
}

// Relay submits order notifications to an opaque form-submission endpoint
// (e.g. a Formspree form). The endpoint only ever receives named form fields;
// responses beyond the status code are ignored.
type Relay struct {
	httpClient *http.Client
	formURL    string
}

// Option configures optional relay behavior.
type Option func(*Relay)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Relay) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Relay) {
		if timeout > 0 {
			r.httpClient.Timeout = timeout
		}
	}
}

// NewRelay builds a relay client for the configured form endpoint. An empty
// URL yields a nil relay, which callers treat as "relay disabled".
func NewRelay(formURL string, opts ...Option) *Relay {
	trimmed := strings.TrimSpace(formURL)
	if trimmed == "" {
		return nil
	}

	relay := &Relay{
		formURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(relay)
		}
	}
	return relay
}

// OrderPlaced POSTs the order fields form-encoded. Non-2xx responses are
// returned as errors so the caller can log them; the relay never retries.
func (r *Relay) OrderPlaced(ctx context.Context, notification OrderNotification) error {
	if r == nil {
		return nil
	}

	items, err := json.Marshal(notification.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	form := url.Values{}
	form.Set("tracking", notification.TrackingID)
	form.Set("name", notification.Name)
	form.Set("phone", notification.Phone)
	form.Set("address", notification.Address)
	form.Set("city", notification.City)
	form.Set("pin", notification.Pin)
	form.Set("items", string(items))
	form.Set("total", strconv.Itoa(notification.Total))
	form.Set("_subject", "New Pooja Kit Order "+notification.TrackingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.formURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit relay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
