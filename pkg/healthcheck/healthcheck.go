// Package healthcheck provides health and readiness checks for the state
// store, Redis and the recipe backend, served over gin.
package healthcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

const (
	// cacheWindow bounds how often the checkers actually run
	cacheWindow  = 5 * time.Second
	checkTimeout = 10 * time.Second
)

// Millis is a duration encoded as milliseconds in JSON
type Millis time.Duration

// MarshalJSON implements json.Marshaler
func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(m).Milliseconds())
}

// Check is the outcome of one checker
type Check struct {
	Name        string                 `json:"name"`
	Status      Status                 `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Duration    Millis                 `json:"duration_ms"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Response aggregates every check
type Response struct {
	Status        Status    `json:"status"`
	Version       string    `json:"version"`
	Timestamp     time.Time `json:"timestamp"`
	Checks        []Check   `json:"checks"`
	TotalDuration Millis    `json:"total_duration_ms"`
}

// Checker reports the health of one dependency. Name, timing and
// LastChecked are filled in by HealthCheck.
type Checker interface {
	Check(ctx context.Context) Check
}

// HealthCheck runs the registered checkers and serves their results
type HealthCheck struct {
	version string
	logger  *zap.Logger

	mu       sync.Mutex
	checkers map[string]Checker
	last     *Response
}

// New creates a health check reporting version
func New(version string, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		version:  version,
		checkers: make(map[string]Checker),
		logger:   logger.Named("healthcheck"),
	}
}

// Register adds a checker under name, replacing any previous one
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
	h.last = nil
}

// RegisterRoutes mounts the health, liveness and readiness handlers
func (h *HealthCheck) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		response := h.Check(c.Request.Context())
		c.JSON(statusCode(response.Status != StatusUnhealthy), response)
	})
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now()})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		response := h.Check(c.Request.Context())
		ready := response.Status == StatusHealthy
		state := "ready"
		if !ready {
			state = "not_ready"
		}
		c.JSON(statusCode(ready), gin.H{"status": state, "checks": response.Checks})
	})
}

func statusCode(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// Check runs every checker concurrently. Results are reused for a short
// window so probes do not hammer the dependencies.
func (h *HealthCheck) Check(ctx context.Context) Response {
	h.mu.Lock()
	if h.last != nil && time.Since(h.last.Timestamp) < cacheWindow {
		cached := *h.last
		h.mu.Unlock()
		return cached
	}
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	checkers := make([]Checker, len(names))
	sort.Strings(names)
	for i, name := range names {
		checkers[i] = h.checkers[name]
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	checks := make([]Check, len(checkers))
	var g errgroup.Group
	for i := range checkers {
		i := i
		g.Go(func() error {
			began := time.Now()
			check := checkers[i].Check(ctx)
			check.Name = names[i]
			check.LastChecked = began
			check.Duration = Millis(time.Since(began))
			checks[i] = check
			return nil
		})
	}
	_ = g.Wait()

	response := Response{
		Status:        worst(checks),
		Version:       h.version,
		Timestamp:     start,
		Checks:        checks,
		TotalDuration: Millis(time.Since(start)),
	}
	if response.Status != StatusHealthy {
		h.logger.Warn("Health check failed", zap.String("status", string(response.Status)))
	}

	h.mu.Lock()
	h.last = &response
	h.mu.Unlock()
	return response
}

func worst(checks []Check) Status {
	status := StatusHealthy
	for _, check := range checks {
		switch check.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

func failed(err error) Check {
	return Check{Status: StatusUnhealthy, Message: err.Error()}
}

// StateProbe is the part of a state store the checker exercises
type StateProbe interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

const probeKey = "__healthcheck"

// StateStoreChecker writes a value to the state store, reads it back and
// deletes it
type StateStoreChecker struct {
	store   StateProbe
	backend string
}

// NewStateStoreChecker creates a state store checker; backend is reported
// as metadata
func NewStateStoreChecker(store StateProbe, backend string) *StateStoreChecker {
	return &StateStoreChecker{store: store, backend: backend}
}

// Check implements Checker
func (s *StateStoreChecker) Check(ctx context.Context) Check {
	value := []byte(time.Now().UTC().Format(time.RFC3339Nano))

	if err := s.store.Set(ctx, probeKey, value); err != nil {
		return failed(err)
	}
	got, err := s.store.Get(ctx, probeKey)
	if err != nil {
		return failed(err)
	}
	if string(got) != string(value) {
		return failed(fmt.Errorf("read back %q, wrote %q", got, value))
	}
	if err := s.store.Delete(ctx, probeKey); err != nil {
		return failed(err)
	}

	return Check{Status: StatusHealthy, Metadata: map[string]interface{}{"backend": s.backend}}
}

// RedisChecker pings Redis and reports the key count
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a Redis checker
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Check implements Checker
func (r *RedisChecker) Check(ctx context.Context) Check {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return failed(err)
	}

	check := Check{Status: StatusHealthy}
	if size, err := r.client.DBSize(ctx).Result(); err == nil {
		check.Metadata = map[string]interface{}{"keys": size}
	}
	return check
}

// BackendChecker calls the recipe backend's health endpoint. 5xx and
// network failures are unhealthy; other non-2xx answers are degraded.
type BackendChecker struct {
	url    string
	client *http.Client
}

// NewBackendChecker creates a backend checker for url
func NewBackendChecker(url string, timeout time.Duration) *BackendChecker {
	return &BackendChecker{url: url, client: &http.Client{Timeout: timeout}}
}

// Check implements Checker
func (b *BackendChecker) Check(ctx context.Context) Check {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return failed(err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return failed(err)
	}
	resp.Body.Close()

	check := Check{
		Status:   StatusHealthy,
		Metadata: map[string]interface{}{"status_code": resp.StatusCode, "url": b.url},
	}
	switch {
	case resp.StatusCode >= 500:
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("backend answered %d", resp.StatusCode)
	case resp.StatusCode >= 300:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("backend answered %d", resp.StatusCode)
	}
	return check
}
