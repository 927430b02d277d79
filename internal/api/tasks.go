package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"leaddistributor/pkg/models"
)

type updateStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// UpdateTaskStatus moves a task through its lifecycle. Completed and
// cancelled tasks are terminal.
// (PATCH /api/v1/tasks/:id/status)
func (h *Handler) UpdateTaskStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if !req.Status.IsValid() {
		return respondError(c, http.StatusBadRequest,
			fmt.Sprintf("unknown status %q", req.Status), nil)
	}

	task, err := h.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondError(c, http.StatusNotFound, "task not found", nil)
		}
		h.logger.Error("failed to load task", "id", id, "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to load task", nil)
	}

	if !task.Status.CanTransition(req.Status) {
		return respondError(c, http.StatusBadRequest,
			fmt.Sprintf("cannot move task from %s to %s", task.Status, req.Status), nil)
	}

	if err := h.tasks.UpdateStatus(ctx, id, req.Status); err != nil {
		h.logger.Error("failed to update task status", "id", id, "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to update task status", nil)
	}

	task.Status = req.Status
	return respond(c, http.StatusOK, "task status updated", task)
}
