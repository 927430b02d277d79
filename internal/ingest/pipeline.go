package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"leaddistributor/internal/distribute"
	"leaddistributor/internal/logging"
	"leaddistributor/internal/repository"
	"leaddistributor/pkg/models"
)

// previewCap limits the example tasks listed per agent in the upload summary.
const previewCap = 3

// Upload describes one staged submission. StagingPath points at the
// temporary copy of the uploaded bytes; the pipeline removes it on
// every exit path.
type Upload struct {
	StagingPath string
	FileName    string
	MediaType   string
	UploadedBy  string
}

// Pipeline runs one upload end to end: parse, validate, normalize,
// distribute, materialize. One Run is a single synchronous unit; there
// is no background continuation and no coordination between concurrent
// uploads.
type Pipeline struct {
	tasks    repository.TaskStore
	agents   repository.AgentDirectory
	strategy distribute.Strategy
	logger   *logging.Logger

	uploadsAccepted metric.Int64Counter
	uploadsRejected metric.Int64Counter
	tasksCreated    metric.Int64Counter
}

// NewPipeline creates a Pipeline.
func NewPipeline(tasks repository.TaskStore, agents repository.AgentDirectory, strategy distribute.Strategy, logger *logging.Logger) *Pipeline {
	meter := otel.Meter("leaddistributor/ingest")
	accepted, _ := meter.Int64Counter("uploads.accepted")
	rejected, _ := meter.Int64Counter("uploads.rejected")
	created, _ := meter.Int64Counter("tasks.created")

	return &Pipeline{
		tasks:           tasks,
		agents:          agents,
		strategy:        strategy,
		logger:          logger,
		uploadsAccepted: accepted,
		uploadsRejected: rejected,
		tasksCreated:    created,
	}
}

// Run processes one staged upload. On success every row of the file
// has become exactly one pending task, all sharing the upload's file
// name, timestamp, and batch ID tags.
//
// Task creation is sequential and non-atomic: a persistence failure
// partway leaves the already-created tasks in place and is reported as
// a *PersistError. Parse, validation, and empty-roster failures create
// no tasks. The staging file is removed before Run returns, on every
// path.
func (p *Pipeline) Run(ctx context.Context, up Upload) (*models.UploadSummary, error) {
	defer func() {
		if err := os.Remove(up.StagingPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to remove staging file", "path", up.StagingPath, "error", err)
		}
	}()

	table, err := ParseFile(up.StagingPath, up.MediaType, up.FileName)
	if err != nil {
		p.uploadsRejected.Add(ctx, 1)
		return nil, err
	}

	if verrs := ValidateTable(table); len(verrs) > 0 {
		p.uploadsRejected.Add(ctx, 1)
		return nil, &ValidationError{Errors: verrs}
	}

	records := NormalizeTable(table)

	roster, err := p.agents.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active agents: %w", err)
	}
	if len(roster) == 0 {
		p.uploadsRejected.Add(ctx, 1)
		return nil, ErrNoActiveAgents
	}

	plan := p.strategy.Distribute(records, roster)

	uploadedAt := time.Now().UTC()
	batchID := uuid.New().String()

	created := 0
	for _, entry := range plan {
		task := buildTask(entry, up, uploadedAt, batchID)
		if err := p.tasks.Create(ctx, task); err != nil {
			p.logger.Error("task creation failed mid-batch",
				"file", up.FileName, "created", created, "row", entry.Record.OriginalRow, "error", err)
			return nil, &PersistError{Created: created, Err: err}
		}
		created++
	}
	p.tasksCreated.Add(ctx, int64(created))
	p.uploadsAccepted.Add(ctx, 1)

	summary := summarize(plan, roster, up, uploadedAt, batchID)
	p.logger.Info("upload processed",
		"file", up.FileName, "tasks", summary.TotalTasks, "agents", summary.AgentsCount,
		"strategy", p.strategy.Name(), "batch", batchID)
	return summary, nil
}

func buildTask(entry distribute.Assignment, up Upload, uploadedAt time.Time, batchID string) *models.Task {
	rec := entry.Record
	description := fmt.Sprintf("Call %s at %s.", rec.FirstName, rec.Phone)
	if rec.Notes != "" {
		description += " Notes: " + rec.Notes
	}
	return &models.Task{
		ID:          uuid.New().String(),
		Title:       "Contact " + rec.FirstName,
		Description: description,
		AgentID:     entry.Agent.ID,
		Status:      models.TaskStatusPending,
		Priority:    models.TaskPriorityMedium,
		AssignedBy:  up.UploadedBy,
		CreatedAt:   uploadedAt,
		Provenance: &models.Provenance{
			FirstName:   rec.FirstName,
			Phone:       rec.Phone,
			Notes:       rec.Notes,
			OriginalRow: rec.OriginalRow,
			FileName:    up.FileName,
			UploadedAt:  uploadedAt,
			UploadedBy:  up.UploadedBy,
			BatchID:     batchID,
		},
	}
}

// summarize reports every active agent in roster order, including any
// that received no records on a short upload.
func summarize(plan distribute.Plan, roster []models.Agent, up Upload, uploadedAt time.Time, batchID string) *models.UploadSummary {
	index := make(map[string]int, len(roster))
	assignments := make([]models.AgentAssignment, 0, len(roster))
	for i, agent := range roster {
		index[agent.ID] = i
		assignments = append(assignments, models.AgentAssignment{
			AgentID:   agent.ID,
			AgentName: agent.Name,
		})
	}
	for _, entry := range plan {
		i := index[entry.Agent.ID]
		assignments[i].TaskCount++
		if len(assignments[i].Preview) < previewCap {
			assignments[i].Preview = append(assignments[i].Preview, models.TaskPreview{
				Title:       "Contact " + entry.Record.FirstName,
				OriginalRow: entry.Record.OriginalRow,
			})
		}
	}
	return &models.UploadSummary{
		TotalTasks:   len(plan),
		AgentsCount:  len(roster),
		FileName:     up.FileName,
		UploadedAt:   uploadedAt,
		BatchID:      batchID,
		Distribution: assignments,
	}
}
