// Package handlers provides the gin handlers: the HTML board page, the JSON
// board API and the operational endpoints under /-/.
package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/character-votes/internal/ports"
)

const DefaultReadinessTimeout = 5 * time.Second

// BuildInfo is set from ldflags in cmd/service.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime, GoVersion: runtime.Version()}
}

// HealthHandler serves the probes under /-/. A nil registry reports ready.
type HealthHandler struct {
	registry         ports.HealthRegistry
	build            BuildInfo
	readinessTimeout time.Duration
	metrics          http.Handler
}

func NewHealthHandler(registry ports.HealthRegistry, build BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:         registry,
		build:            build,
		readinessTimeout: DefaultReadinessTimeout,
		metrics:          promhttp.Handler(),
	}
}

// WithReadinessTimeout bounds /-/ready. Zero leaves only the request
// deadline.
func (h *HealthHandler) WithReadinessTimeout(d time.Duration) *HealthHandler {
	h.readinessTimeout = d
	return h
}

type probeResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Liveness answers 200 while the process serves requests.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, probeResponse{Status: "ok"})
}

// Readiness answers 503 until every registered dependency, the characters
// backend included, passes its check.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.registry == nil {
		c.JSON(http.StatusOK, probeResponse{Status: string(ports.HealthStatusHealthy)})
		return
	}

	ctx := c.Request.Context()
	if h.readinessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.readinessTimeout)
		defer cancel()
	}

	res := h.registry.CheckAll(ctx)

	code := http.StatusOK
	if res.Status != ports.HealthStatusHealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, probeResponse{Status: string(res.Status), Checks: res.Checks})
}

func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}

// RegisterHealthRoutes mounts live, ready, build and metrics on rg.
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(h.metrics))
}

func (h *HealthHandler) RegisterHealthRoutesOnEngine(engine *gin.Engine) {
	h.RegisterHealthRoutes(engine.Group("/-"))
}
