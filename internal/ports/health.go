package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is a dependency /-/ready waits on. The characters backend
// client is the one registered today.
type HealthChecker interface {
	Name() string

	// Check returns nil when healthy and must give up when ctx is done.
	Check(ctx context.Context) error
}

type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is healthy only when every check is.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry runs its checks concurrently. Safe for concurrent
// use.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{checkers: map[string]HealthChecker{}}
}

// Register adds checker under its name, which must be unused.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	name := checker.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.checkers[name]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}

	r.checkers[name] = checker

	return nil
}

func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, c := range r.checkers {
		checkers[name] = c
	}
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for name, checker := range checkers {
		wg.Go(func() {
			res := runCheck(ctx, checker)

			mu.Lock()
			defer mu.Unlock()

			result.Checks[name] = res
			if res.Status == HealthStatusUnhealthy {
				result.Status = HealthStatusUnhealthy
			}
		})
	}
	wg.Wait()

	return result
}

func runCheck(ctx context.Context, checker HealthChecker) *CheckResult {
	start := time.Now()

	if err := checker.Check(ctx); err != nil {
		return &CheckResult{Status: HealthStatusUnhealthy, Message: err.Error(), Duration: time.Since(start)}
	}

	return &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}
}
