package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/reachflow/funnel/internal/logging"
	"github.com/reachflow/funnel/pkg/domain"
)

// DefaultTimeout bounds one outbound request, redirects included.
const DefaultTimeout = 15 * time.Second

// maxBody caps how much of the backend's answer is read.
const maxBody = 1 << 20

// ErrMissingDestination is returned, before any network call, when no destination URL is configured.
var ErrMissingDestination = fmt.Errorf("%w: destination URL is empty", domain.ErrMisconfigured)

// Observer receives every resolution, for metrics.
type Observer interface {
	ObserveGateway(result domain.SubmissionResult, took time.Duration)
}

// Gateway forwards Lead Records to the record-keeping backend and resolves its answer.
// It holds no state between calls and never retries.
type Gateway struct {
	destination string
	client      *http.Client
	timeout     time.Duration
	logger      *slog.Logger
	observer    Observer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its redirect policy is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		if c != nil {
			g.client = c
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithObserver registers a resolution observer.
func WithObserver(o Observer) Option {
	return func(g *Gateway) {
		g.observer = o
	}
}

// New creates a gateway posting to destination.
// An empty destination is accepted here and reported by every Submit call.
func New(destination string, opts ...Option) *Gateway {
	g := &Gateway{
		destination: destination,
		client:      &http.Client{},
		timeout:     DefaultTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Destination returns the configured URL.
func (g *Gateway) Destination() string {
	return g.destination
}

// Submit posts the lead and resolves the answer.
// Transport failures and timeouts resolve to a failed result; the only error is ErrMissingDestination.
func (g *Gateway) Submit(ctx context.Context, lead domain.LeadRecord) (domain.SubmissionResult, error) {
	if g.destination == "" {
		g.logger.Error("submission gateway misconfigured", "error", ErrMissingDestination)
		return domain.SubmissionResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonMisconfigured}, ErrMissingDestination
	}

	start := time.Now()
	result := g.send(ctx, lead)
	took := time.Since(start)

	g.logger.Info("submission resolved",
		"outcome", result.Outcome,
		"reason", result.Reason,
		"status", result.StatusCode,
		"weak", result.Weak,
		"fields", len(lead),
		"duration", took,
	)
	if g.observer != nil {
		g.observer.ObserveGateway(result, took)
	}
	return result, nil
}

func (g *Gateway) send(ctx context.Context, lead domain.LeadRecord) domain.SubmissionResult {
	payload, err := json.Marshal(lead)
	if err != nil {
		return g.transportFailure(err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.destination, bytes.NewReader(payload))
	if err != nil {
		return g.transportFailure(err)
	}
	// The script backend reads the raw body; it must stay text/plain.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := g.client.Do(req)
	if err != nil {
		return g.transportFailure(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return g.transportFailure(err)
	}
	return Resolve(resp.StatusCode, body)
}

func (g *Gateway) transportFailure(err error) domain.SubmissionResult {
	g.logger.Warn("submission transport failed", "error", err)
	return domain.SubmissionResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonTransport}
}

// Resolve turns the backend's answer into an outcome.
//
// A body that decodes as JSON is trusted: only an object whose "status" is "success" is a success.
// A body that does not decode (an HTML page after a redirect, an empty body) falls back to the
// HTTP status, and a 2xx is then reported as a weak success.
func Resolve(statusCode int, body []byte) domain.SubmissionResult {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		if obj, ok := decoded.(map[string]any); ok && obj["status"] == "success" {
			return domain.SubmissionResult{Outcome: domain.OutcomeSucceeded, StatusCode: statusCode, Reason: domain.ReasonStatusSuccess}
		}
		return domain.SubmissionResult{Outcome: domain.OutcomeFailed, StatusCode: statusCode, Reason: domain.ReasonStatusMismatch}
	}

	if statusCode >= 200 && statusCode < 300 {
		return domain.SubmissionResult{Outcome: domain.OutcomeSucceeded, Weak: true, StatusCode: statusCode, Reason: domain.ReasonUnstructured2xx}
	}
	return domain.SubmissionResult{Outcome: domain.OutcomeFailed, StatusCode: statusCode, Reason: domain.ReasonUnstructuredNon2x}
}
