package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leaddistributor/pkg/models"
)

// PostgresTaskStore is a PostgreSQL implementation of the TaskStore interface.
type PostgresTaskStore struct {
	db *pgxpool.Pool
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db *pgxpool.Pool) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

const taskColumns = "id, title, description, agent_id, status, priority, assigned_by, created_at, provenance"

// Create persists one task. Provenance is stored as JSONB when present.
func (s *PostgresTaskStore) Create(ctx context.Context, task *models.Task) error {
	var provenance []byte
	if task.Provenance != nil {
		var err error
		provenance, err = json.Marshal(task.Provenance)
		if err != nil {
			return fmt.Errorf("encode provenance: %w", err)
		}
	}
	_, err := s.db.Exec(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		task.ID, task.Title, task.Description, task.AgentID,
		task.Status, task.Priority, task.AssignedBy, task.CreatedAt, provenance,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Get retrieves a task by its ID.
func (s *PostgresTaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	row := s.db.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	return scanTask(row)
}

// ListUploadTasks returns every provenance-tagged task ordered by
// upload time then original row number.
func (s *PostgresTaskStore) ListUploadTasks(ctx context.Context) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+taskColumns+` FROM tasks
		 WHERE provenance IS NOT NULL
		 ORDER BY provenance->>'uploadedAt', (provenance->>'originalRow')::int`)
	if err != nil {
		return nil, fmt.Errorf("query upload tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListByFileName returns the tasks whose provenance names one uploaded
// file, ordered by upload time then original row number.
func (s *PostgresTaskStore) ListByFileName(ctx context.Context, fileName string) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+taskColumns+` FROM tasks
		 WHERE provenance->>'fileName' = $1
		 ORDER BY provenance->>'uploadedAt', (provenance->>'originalRow')::int`,
		fileName)
	if err != nil {
		return nil, fmt.Errorf("query tasks by file name: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// UpdateStatus moves a task to a new status.
func (s *PostgresTaskStore) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	tag, err := s.db.Exec(ctx, "UPDATE tasks SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	var provenance []byte
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.AgentID,
		&task.Status, &task.Priority, &task.AssignedBy, &task.CreatedAt, &provenance)
	if err != nil {
		return nil, err
	}
	if len(provenance) > 0 {
		task.Provenance = &models.Provenance{}
		if err := json.Unmarshal(provenance, task.Provenance); err != nil {
			return nil, fmt.Errorf("decode provenance: %w", err)
		}
	}
	return &task, nil
}

func scanTasks(rows pgx.Rows) ([]*models.Task, error) {
	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
