package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
	wait time.Duration
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) Check(ctx context.Context) error {
	if s.wait == 0 {
		return s.err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.wait):
		return s.err
	}
}

func registryWith(t *testing.T, checkers ...HealthChecker) *DefaultHealthRegistry {
	t.Helper()

	r := NewHealthRegistry()
	for _, c := range checkers {
		require.NoError(t, r.Register(c))
	}

	return r
}

func TestHealthRegistry_RejectsDuplicateNames(t *testing.T) {
	r := registryWith(t, stubChecker{name: "characters-backend"})

	err := r.Register(stubChecker{name: "characters-backend", err: errors.New("other")})

	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "characters-backend")

	// The first registration wins.
	res := r.CheckAll(t.Context())
	assert.Equal(t, HealthStatusHealthy, res.Status)
	assert.Len(t, res.Checks, 1)
}

func TestHealthRegistry_CheckAll(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name      string
		checkers  []HealthChecker
		want      HealthStatus
		unhealthy map[string]string
	}{
		{
			name: "nothing registered",
			want: HealthStatusHealthy,
		},
		{
			name:     "all healthy",
			checkers: []HealthChecker{stubChecker{name: "characters-backend"}, stubChecker{name: "page-template"}},
			want:     HealthStatusHealthy,
		},
		{
			name: "one down",
			checkers: []HealthChecker{
				stubChecker{name: "characters-backend", err: down},
				stubChecker{name: "page-template"},
			},
			want:      HealthStatusUnhealthy,
			unhealthy: map[string]string{"characters-backend": "connection refused"},
		},
		{
			name: "all down",
			checkers: []HealthChecker{
				stubChecker{name: "characters-backend", err: down},
				stubChecker{name: "page-template", err: errors.New("parse failed")},
			},
			want: HealthStatusUnhealthy,
			unhealthy: map[string]string{
				"characters-backend": "connection refused",
				"page-template":      "parse failed",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := registryWith(t, tt.checkers...).CheckAll(t.Context())

			require.NotNil(t, res)
			assert.Equal(t, tt.want, res.Status)
			assert.False(t, res.Timestamp.IsZero())
			require.Len(t, res.Checks, len(tt.checkers))

			for _, c := range tt.checkers {
				got := res.Checks[c.Name()]
				require.NotNil(t, got, c.Name())

				if msg, bad := tt.unhealthy[c.Name()]; bad {
					assert.Equal(t, HealthStatusUnhealthy, got.Status)
					assert.Equal(t, msg, got.Message)
				} else {
					assert.Equal(t, HealthStatusHealthy, got.Status)
					assert.Empty(t, got.Message)
				}
			}
		})
	}
}

func TestHealthRegistry_ChecksRunConcurrently(t *testing.T) {
	var checkers []HealthChecker
	for i := range 5 {
		checkers = append(checkers, stubChecker{name: fmt.Sprintf("dep-%d", i), wait: 100 * time.Millisecond})
	}

	start := time.Now()
	res := registryWith(t, checkers...).CheckAll(t.Context())

	assert.Equal(t, HealthStatusHealthy, res.Status)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.GreaterOrEqual(t, res.Checks["dep-0"].Duration, 100*time.Millisecond)
}

func TestHealthRegistry_HonoursCancellation(t *testing.T) {
	r := registryWith(t, stubChecker{name: "characters-backend", wait: time.Second})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	res := r.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, res.Status)
	assert.Contains(t, res.Checks["characters-backend"].Message, "context canceled")
}

func TestHealthRegistry_ConcurrentUse(t *testing.T) {
	r := NewHealthRegistry()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			assert.NoError(t, r.Register(stubChecker{name: fmt.Sprintf("dep-%d", i)}))
		})
		wg.Go(func() {
			r.CheckAll(t.Context())
		})
	}
	wg.Wait()

	assert.Len(t, r.CheckAll(t.Context()).Checks, 10)
}
