package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ticket-mgt/ticket-api/internal/observability"
	"github.com/ticket-mgt/ticket-api/internal/repository"
)

const readinessTimeout = 2 * time.Second

// HealthHandler serves probes and the metrics snapshot.
type HealthHandler struct {
	serviceName  string
	version      string
	dependencies map[string]repository.Pinger
	metrics      *observability.Metrics
}

// NewHealthHandler returns a handler that pings each dependency under its map
// key on readiness checks.
func NewHealthHandler(serviceName, version string, dependencies map[string]repository.Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, dependencies: dependencies, metrics: metrics}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready GET /health/ready. Dependencies are pinged in parallel; any failure
// turns the probe into a 503 listing every dependency's state.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.dependencies))
	for name := range h.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, dep repository.Pinger) {
			defer wg.Done()
			if err := dep.Ping(ctx); err != nil {
				results[i] = err.Error()
				return
			}
			results[i] = "ok"
		}(i, h.dependencies[name])
	}
	wg.Wait()

	status := make(map[string]string, len(names))
	ready := true
	for i, name := range names {
		status[name] = results[i]
		ready = ready && results[i] == "ok"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":        "one or more dependencies unavailable",
			"dependencies": status,
		})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": status,
	})
}

// Metrics GET /metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	if h.metrics == nil {
		return c.JSON(observability.MetricsSnapshot{})
	}
	return c.JSON(h.metrics.Snapshot())
}
