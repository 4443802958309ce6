package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sadopc/taskr/internal/core"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetries      = 2
	defaultInitialDelay = 200 * time.Millisecond

	networkErrorMessage = "network error"
)

// TokenSource supplies the session credential attached to each request.
type TokenSource interface {
	Token() string
}

// Client talks to the remote task API. It implements core.Gateway and
// core.Authenticator.
type Client struct {
	baseURL      string
	http         *http.Client
	tokens       TokenSource
	log          zerolog.Logger
	retries      int
	initialDelay time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRetries sets how many times idempotent GETs are retried.
func WithRetries(n int, initialDelay time.Duration) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.retries = n
		if initialDelay > 0 {
			c.initialDelay = initialDelay
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: defaultTimeout},
		log:          zerolog.Nop(),
		retries:      defaultRetries,
		initialDelay: defaultInitialDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// errorBody covers the error shapes the API is known to return:
// {"message": "..."}, {"message": ["...", "..."]} and {"error": "..."}.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

func extractMessage(body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil {
		return ""
	}
	if len(eb.Message) > 0 {
		var s string
		if json.Unmarshal(eb.Message, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
		var list []string
		if json.Unmarshal(eb.Message, &list) == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}
	return strings.TrimSpace(eb.Error)
}

type request struct {
	method string
	path   string
	body   any
	out    any
	// token overrides the TokenSource when set.
	token string
}

func (c *Client) do(ctx context.Context, r request) error {
	var payload []byte
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}

	attempts := 1
	if r.method == http.MethodGet {
		attempts += c.retries
	}

	reqID := uuid.NewString()
	log := c.log.With().Str("request_id", reqID).Str("method", r.method).Str("path", r.path).Logger()

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: d, 2d, 4d...
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.initialDelay
			log.Debug().Int("attempt", attempt).Dur("delay", delay).Err(lastErr).Msg("retrying request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &core.RequestError{Message: networkErrorMessage, Err: ctx.Err()}
			}
		}

		retry, err := c.roundTrip(ctx, r, payload, reqID, log)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

// roundTrip performs one attempt and reports whether a failure is worth
// retrying.
func (c *Client) roundTrip(ctx context.Context, r request, payload []byte, reqID string, log zerolog.Logger) (bool, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	token := r.token
	if token == "" && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Msg("request failed")
		return ctx.Err() == nil, &core.RequestError{Message: networkErrorMessage, Err: err}
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return true, &core.RequestError{Status: resp.StatusCode, Message: networkErrorMessage, Err: err}
	}

	log.Debug().Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := extractMessage(respBody)
		if msg == "" {
			msg = fmt.Sprintf("something went wrong (HTTP %d)", resp.StatusCode)
		}
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, &core.RequestError{Status: resp.StatusCode, Message: msg}
	}

	if r.out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(respBody, r.out); err != nil {
		return false, &core.RequestError{
			Status:  resp.StatusCode,
			Message: "unexpected response from server",
			Err:     fmt.Errorf("decode response: %w", err),
		}
	}
	return false, nil
}
