// Package apiclient maps the auth and rooms endpoints of the rooms API to Go
// calls. Transport concerns (throttling, request ids, metrics, the error
// envelope and the optional contract check) live in Client.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rooms-client/internal/domain"
	"rooms-client/internal/observability"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout  = 10 * time.Second
	maxResponseSize = 10 << 20

	RequestIDHeader = "X-Request-ID"
)

var (
	ErrInvalidBaseURL = errors.New("invalid API base URL")
	ErrInvalidRequest = errors.New("invalid request")
)

// TokenSource supplies the bearer token. An empty token means "not logged
// in".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config configures a Client
type Config struct {
	BaseURL string
	// Timeout applies when HTTPClient is nil
	Timeout    time.Duration
	HTTPClient *http.Client
	// RateLimit is the allowed requests per second; zero disables throttling
	RateLimit float64
	RateBurst int
	Tokens    TokenSource
	Contract  *Contract
}

// Client performs requests against the API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	contract   *Contract
	validate   *validator.Validate
}

// New creates a Client for cfg.BaseURL
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:    base,
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		contract:   cfg.Contract,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// HasToken reports whether a bearer token is available
func (c *Client) HasToken(ctx context.Context) bool {
	tok, err := c.token(ctx)
	return err == nil && tok != ""
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens.Token(ctx)
}

type authMode int

const (
	// authNone never sends the token
	authNone authMode = iota
	// authOptional sends the token when there is one
	authOptional
	// authRequired fails with ErrNoToken when there is no token
	authRequired
)

// call describes one API request
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	auth   authMode
}

// response is what came back for a successful call
type response struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, in call, out any) (*response, error) {
	if in.body != nil {
		if err := c.validate.Struct(in.body); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", in.op, ErrInvalidRequest, err)
		}
	}

	var token string
	if in.auth != authNone {
		tok, err := c.token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.op, err)
		}
		if tok == "" && in.auth == authRequired {
			return nil, fmt.Errorf("%s: %w", in.op, domain.ErrNoToken)
		}
		token = tok
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limiter: %w", in.op, err)
		}
	}

	requestID := uuid.NewString()
	ctx = observability.WithOperation(observability.WithRequestID(ctx, requestID), in.op)
	log := observability.FromContext(ctx)

	req, err := c.newRequest(ctx, in, token)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", in.op, err)
	}
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(in.op, "error", start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", in.op, ctxErr)
		}
		log.Warn("API request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w: %v", in.op, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.record(in.op, strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", in.op, domain.ErrNetwork, err)
	}

	log.Debug("API request completed",
		slog.String("method", in.method),
		slog.String("path", in.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if err := c.contract.Check(ctx, in.op, req, resp.StatusCode, resp.Header, body); err != nil {
		return nil, fmt.Errorf("%s: %w", in.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w", in.op, decodeAPIError(resp.StatusCode, body))
	}

	if out != nil && resp.StatusCode != http.StatusNoContent && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("%s: failed to decode response: %w", in.op, err)
		}
	}
	return &response{status: resp.StatusCode, body: body}, nil
}

func (c *Client) newRequest(ctx context.Context, in call, token string) (*http.Request, error) {
	target := c.baseURL.String() + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}

	var body io.Reader
	if in.body != nil {
		data, err := json.Marshal(in.body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) record(op, status string, start time.Time) {
	observability.APIRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	observability.APIRequestsTotal.WithLabelValues(op, status).Inc()
}

// decodeAPIError reads the problem envelope, falling back to a generic one
// when the body is empty or not JSON
func decodeAPIError(status int, body []byte) *domain.APIError {
	apiErr := &domain.APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Empty() {
		return domain.NewUnknownAPIError(status)
	}
	apiErr.Status = status
	return apiErr
}
