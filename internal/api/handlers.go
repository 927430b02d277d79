// Package api contains the HTTP handlers for the lead distributor service
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"leaddistributor/internal/ingest"
	"leaddistributor/internal/logging"
	"leaddistributor/internal/repository"
	"leaddistributor/internal/services"
)

// Handler contains HTTP handlers for the REST API.
type Handler struct {
	pipeline *ingest.Pipeline
	reports  *services.ReportService
	agents   repository.AgentDirectory
	tasks    repository.TaskStore
	logger   *logging.Logger
	maxBytes int64
}

// NewHandler creates a new Handler with required dependencies.
func NewHandler(pipeline *ingest.Pipeline, reports *services.ReportService, agents repository.AgentDirectory, tasks repository.TaskStore, logger *logging.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		pipeline: pipeline,
		reports:  reports,
		agents:   agents,
		tasks:    tasks,
		logger:   logger,
		maxBytes: maxUploadBytes,
	}
}

// RegisterRoutes mounts the API on a route group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.HandleHealth)
	g.POST("/uploads", h.SubmitUpload)
	g.GET("/uploads/history", h.UploadHistory)
	g.GET("/uploads/:fileName/tasks", h.UploadTasks)
	g.GET("/agents", h.ListAgents)
	g.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
}

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondError(c echo.Context, status int, message string, errs []string) error {
	return c.JSON(status, Response{Success: false, Message: message, Errors: errs})
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK).
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "leaddistributor",
		Version:   "1.0.0",
	})
}

// ListAgents returns the full agent roster, read-only.
// (GET /api/v1/agents)
func (h *Handler) ListAgents(c echo.Context) error {
	agents, err := h.agents.List(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list agents", "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to list agents", nil)
	}
	return respond(c, http.StatusOK, "agents retrieved", agents)
}
