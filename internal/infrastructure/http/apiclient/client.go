// Package apiclient provides the HTTP clients for the auth, profile and
// recipe generation endpoints. Every failure leaving this package is an
// *errors.AppError carrying a message that can be shown to the user.
package apiclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	apperrors "github.com/alchemorsel/pantry/pkg/errors"
)

const (
	// HeaderRequestID carries a per-request correlation id
	HeaderRequestID = "X-Request-ID"

	maxResponseBytes = 10 << 20
)

// Options configures a Client
type Options struct {
	AuthBaseURL    string
	RecipesBaseURL string
	Timeout        time.Duration
	RateLimit      float64 // requests per second, 0 disables limiting
	RateBurst      int
	UserAgent      string
	Transport      http.RoundTripper
	Metrics        *monitoring.Metrics
}

// Client handles communication with the backend API
type Client struct {
	authURL    string
	recipesURL string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// New creates a new API client instance
func New(opts Options, logger *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		authURL:    strings.TrimRight(opts.AuthBaseURL, "/"),
		recipesURL: strings.TrimRight(opts.RecipesBaseURL, "/"),
		userAgent:  opts.UserAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: monitoring.InstrumentTransport(opts.Transport),
		},
		limiter: limiter,
		metrics: opts.Metrics,
		logger:  logger.Named("api-client"),
	}
}

// envelope is the response wrapper every endpoint uses
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (c *Client) post(ctx context.Context, url string, body interface{}, response interface{}) error {
	return c.send(ctx, http.MethodPost, url, "", body, response)
}

func (c *Client) postWithAuth(ctx context.Context, url, token string, body interface{}, response interface{}) error {
	if token == "" {
		return apperrors.NewAuthError("")
	}
	return c.send(ctx, http.MethodPost, url, token, body, response)
}

func (c *Client) putWithAuth(ctx context.Context, url, token string, body interface{}, response interface{}) error {
	if token == "" {
		return apperrors.NewAuthError("")
	}
	return c.send(ctx, http.MethodPut, url, token, body, response)
}

func (c *Client) getWithAuth(ctx context.Context, url, token string, response interface{}) error {
	if token == "" {
		return apperrors.NewAuthError("")
	}
	return c.send(ctx, http.MethodGet, url, token, nil, response)
}

func (c *Client) send(ctx context.Context, method, url, token string, body interface{}, response interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("").WithCause(fmt.Errorf("failed to marshal request: %w", err))
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return apperrors.NewInternalError("").WithCause(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip")
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.doRequest(req, token != "", response)
}

func (c *Client) doRequest(req *http.Request, authenticated bool, response interface{}) error {
	requestID := req.Header.Get(HeaderRequestID)
	endpoint := req.URL.Path

	c.logger.Debug("API request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", requestID),
	)

	if err := c.limiter.Wait(req.Context()); err != nil {
		return apperrors.NewNetworkError(err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIRequest(req.Method, endpoint, 0, time.Since(start))
		c.logger.Debug("API request failed", zap.String("request_id", requestID), zap.Error(err))
		return apperrors.NewNetworkError(err)
	}
	defer resp.Body.Close()
	c.metrics.RecordAPIRequest(req.Method, endpoint, resp.StatusCode, time.Since(start))

	body, err := readBody(resp)
	if err != nil {
		return apperrors.NewNetworkError(fmt.Errorf("failed to read response: %w", err))
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("API error response",
			zap.Int("status", resp.StatusCode),
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.String("server_message", env.message()),
		)
		appErr := apperrors.FromStatus(resp.StatusCode)
		// Sign-in calls surface the server's own explanation (bad password...)
		if !authenticated && decodeErr == nil && env.message() != "" {
			appErr.Message = env.message()
		}
		return appErr.WithMetadata("request_id", requestID)
	}

	if len(bytes.TrimSpace(body)) == 0 && response == nil {
		return nil
	}
	if decodeErr != nil {
		return apperrors.NewDecodeError("response envelope", decodeErr)
	}

	if env.Success != nil && !*env.Success {
		message := env.message()
		if message == "" {
			message = "The request could not be completed."
		}
		return apperrors.NewTransportError(resp.StatusCode, message).WithMetadata("request_id", requestID)
	}

	if response == nil {
		return nil
	}

	data := env.Data
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = body
	}
	if err := json.Unmarshal(data, response); err != nil {
		return apperrors.NewDecodeError(endpoint, err)
	}

	return nil
}

// readBody reads the response body, undoing the content encoding
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(io.LimitReader(reader, maxResponseBytes))
}
