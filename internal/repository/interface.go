package repository

import (
	"context"

	"leaddistributor/pkg/models"
)

// TaskStore persists tasks and answers the provenance queries the
// upload reporter needs.
type TaskStore interface {
	// Create persists one task. Each call is independent; batches are
	// not wrapped in a transaction.
	Create(ctx context.Context, task *models.Task) error
	// Get retrieves a task by its ID.
	Get(ctx context.Context, id string) (*models.Task, error)
	// ListUploadTasks returns every task carrying a provenance tag,
	// ordered by upload time then original row number.
	ListUploadTasks(ctx context.Context) ([]*models.Task, error)
	// ListByFileName returns the tasks of every cohort uploaded under
	// one file name, ordered by upload time then original row number.
	ListByFileName(ctx context.Context, fileName string) ([]*models.Task, error)
	// UpdateStatus moves a task to a new status.
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error
}

// AgentDirectory is the read-mostly roster of agents. The pipeline
// reads the active subset fresh per upload and never mutates it.
type AgentDirectory interface {
	// ListActive returns agents with active = true in roster order.
	ListActive(ctx context.Context) ([]models.Agent, error)
	// List returns the full roster in roster order.
	List(ctx context.Context) ([]models.Agent, error)
	// Create inserts an agent. Used by seeding, not by the pipeline.
	Create(ctx context.Context, agent *models.Agent) error
}
