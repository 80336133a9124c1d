// Package api is the HTTP client of the remote commerce backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 10 << 20

// Config tunes the client. Zero values fall back to defaults.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	RateLimit        float64
	Burst            int
	MaxAttempts      int
	Backoff          time.Duration
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
	HTTPClient       *http.Client
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 20
	}
	if c.Burst <= 0 {
		c.Burst = 40
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 500 * time.Millisecond
	}
	if c.BreakerThreshold == 0 {
		c.BreakerThreshold = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	return c
}

// Client implements the domain remote interfaces over HTTP. Calls pass a
// rate limiter and a circuit breaker; idempotent reads are retried with
// linear backoff.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]byte]
	maxAttempts int
	backoff     time.Duration
}

func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	threshold := cfg.BreakerThreshold
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "storefront-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.RemoteBreakerState.Set(float64(to))
			observability.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		IsSuccessful: countsAsSuccess,
	})

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		breaker:     breaker,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
	}
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// request describes one remote call.
type request struct {
	method   string
	path     string
	endpoint string
	token    string
	body     any
	// bodyRequired makes an empty 2xx body a malformed response instead of
	// leaving out untouched.
	bodyRequired bool
}

func (c *Client) get(ctx context.Context, endpoint, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, endpoint: endpoint}, out)
}

// getRequired is get for endpoints whose answer must carry a payload.
func (c *Client) getRequired(ctx context.Context, endpoint, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, endpoint: endpoint, bodyRequired: true}, out)
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	attempts := 1
	if req.method == http.MethodGet {
		attempts = c.maxAttempts
	}

	var data []byte
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		data, err = c.breaker.Execute(func() ([]byte, error) {
			return c.roundTrip(ctx, req, payload)
		})
		if err == nil || !retryable(err) || attempt == attempts {
			break
		}

		select {
		case <-time.After(time.Duration(attempt) * c.backoff):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, ctx.Err())
		}
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
		}
		return err
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if req.bodyRequired {
			return fmt.Errorf("%w: %s: empty body", domain.ErrMalformedResponse, req.endpoint)
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, req.endpoint, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req request, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RemoteRequestDuration.WithLabelValues(req.endpoint, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	observability.RemoteRequestDuration.WithLabelValues(req.endpoint, fmt.Sprintf("%d", resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrRemoteUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage extracts {"message"} or {"error"} from an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.retryable()
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, domain.ErrRemoteUnavailable)
}

// countsAsSuccess keeps client errors and caller cancellation from tripping
// the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.retryable()
	}
	return false
}
