package http

import (
	"context"
	"net/http"
	"time"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/domain/repository"
	"rta-sync/internal/extraction/scheduler"
	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// JobLister reports the registered triggers
type JobLister interface {
	Status() []scheduler.TriggerStatus
}

// SnapshotProvider materializes a partition
type SnapshotProvider interface {
	Snapshot(ctx context.Context, partition string, sampleSize int64) (*model.Snapshot, error)
}

// HealthChecker verifies a dependency is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// maxListLimit bounds the limit query parameter of list and snapshot endpoints
const maxListLimit = 1000

// AdminHTTPHandler serves the read-only diagnostics API
type AdminHTTPHandler struct {
	health   HealthChecker
	jobs     JobLister
	viewer   SnapshotProvider
	journal  repository.RunJournal
	metrics  http.Handler
	logger   logger.Logger
	pingWait time.Duration
}

// NewAdminHTTPHandler creates the handler. journal and metrics may be nil.
func NewAdminHTTPHandler(health HealthChecker, jobs JobLister, viewer SnapshotProvider, journal repository.RunJournal, metrics http.Handler, log logger.Logger) *AdminHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AdminHTTPHandler{
		health:   health,
		jobs:     jobs,
		viewer:   viewer,
		journal:  journal,
		metrics:  metrics,
		logger:   log.WithComponent("admin"),
		pingWait: 5 * time.Second,
	}
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SetupRoutes mounts the admin endpoints on router
func (h *AdminHTTPHandler) SetupRoutes(router fiber.Router) {
	router.Get("/health", h.Health)
	if h.metrics != nil {
		router.Get("/metrics", adaptor.HTTPHandler(h.metrics))
	}
	router.Get("/jobs", h.ListJobs)
	router.Get("/runs", h.RecentRuns)
	router.Get("/partitions/:name/snapshot", h.GetSnapshot)
}

// Health pings the document store
func (h *AdminHTTPHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.pingWait)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		h.logger.Warnf("Health check failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "UNHEALTHY",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status":    "HEALTHY",
		"timestamp": time.Now().UTC(),
	})
}

// ListJobs returns every trigger with its next occurrence
func (h *AdminHTTPHandler) ListJobs(c *fiber.Ctx) error {
	jobs := h.jobs.Status()
	return c.JSON(fiber.Map{"jobs": jobs, "count": len(jobs)})
}

// RecentRuns returns the newest journal entries
func (h *AdminHTTPHandler) RecentRuns(c *fiber.Ctx) error {
	if h.journal == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Run journal is not enabled"})
	}
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > maxListLimit {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid limit", Message: "limit must be between 1 and 1000"})
	}
	runs, err := h.journal.Recent(c.UserContext(), int64(limit))
	if err != nil {
		h.logger.Errorf("Failed to read run journal: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to read run journal"})
	}
	return c.JSON(fiber.Map{"runs": runs, "count": len(runs)})
}

// GetSnapshot returns a tabular view of one partition
func (h *AdminHTTPHandler) GetSnapshot(c *fiber.Ctx) error {
	partition := c.Params("name")
	limit := c.QueryInt("limit", 0)
	if limit < 0 || limit > maxListLimit {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid limit", Message: "limit must be between 0 and 1000"})
	}

	snap, err := h.viewer.Snapshot(c.UserContext(), partition, int64(limit))
	if err != nil {
		if apperrors.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid partition", Message: err.Error()})
		}
		h.logger.Errorf("Snapshot of %s failed: %v", partition, err)
		return c.Status(apperrors.HTTPStatus(err)).JSON(ErrorResponse{Error: "Snapshot failed"})
	}
	return c.JSON(snap)
}
