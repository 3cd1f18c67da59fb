package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"tictacgo/internal/app"
	"tictacgo/internal/domain"

	"github.com/gin-gonic/gin"
)

// StatusHandler serves the local status endpoints
type StatusHandler struct {
	app       *app.App
	startTime time.Time
	version   string
}

func NewStatusHandler(a *app.App, version string) *StatusHandler {
	return &StatusHandler{
		app:       a,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness returns simple alive status
func (h *StatusHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness pings the client-state store
func (h *StatusHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if err := h.app.Store.Ping(ctx); err != nil {
		checks["store"] = "unhealthy: " + err.Error()
		allHealthy = false
	} else {
		checks["store"] = "healthy"
	}

	if h.app.Games.Connected() {
		checks["relay"] = "connected"
	} else {
		checks["relay"] = "idle"
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// StateResponse is a snapshot of the client session
type StateResponse struct {
	Player        *domain.Player    `json:"player"`
	Authenticated bool              `json:"authenticated"`
	CurrentGame   *domain.GameState `json:"currentGame"`
	Role          domain.Symbol     `json:"role,omitempty"`
	Connected     bool              `json:"connected"`
	Stats         domain.Stats      `json:"stats"`
	Error         string            `json:"error,omitempty"`
}

// State returns the current session snapshot
func (h *StatusHandler) State(c *gin.Context) {
	resp := StateResponse{
		Authenticated: h.app.Players.IsAuthenticated(),
		Connected:     h.app.Games.Connected(),
		Stats:         h.app.Games.Stats(),
	}
	if p, ok := h.app.Players.Player(); ok {
		resp.Player = &p
	}
	if g, ok := h.app.Games.CurrentGame(); ok {
		resp.CurrentGame = &g
		resp.Role, _ = h.app.Games.Role(c.Request.Context(), g.GameID)
	}

	resp.Error = h.app.Games.Error()
	if resp.Error == "" {
		resp.Error = h.app.Players.Error()
	}

	c.JSON(http.StatusOK, resp)
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
