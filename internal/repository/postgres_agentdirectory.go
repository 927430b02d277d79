package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leaddistributor/pkg/models"
)

// PostgresAgentDirectory is a PostgreSQL implementation of the
// AgentDirectory interface. Roster order is creation order, which is
// stable for the duration of one upload.
type PostgresAgentDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresAgentDirectory creates a new PostgresAgentDirectory.
func NewPostgresAgentDirectory(db *pgxpool.Pool) *PostgresAgentDirectory {
	return &PostgresAgentDirectory{db: db}
}

const agentColumns = "id, name, email, active, created_at"

// ListActive returns agents with active = true in roster order.
func (d *PostgresAgentDirectory) ListActive(ctx context.Context) ([]models.Agent, error) {
	rows, err := d.db.Query(ctx,
		"SELECT "+agentColumns+" FROM agents WHERE active ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("query active agents: %w", err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

// List returns the full roster in roster order.
func (d *PostgresAgentDirectory) List(ctx context.Context) ([]models.Agent, error) {
	rows, err := d.db.Query(ctx,
		"SELECT "+agentColumns+" FROM agents ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

// Create inserts an agent.
func (d *PostgresAgentDirectory) Create(ctx context.Context, agent *models.Agent) error {
	_, err := d.db.Exec(ctx,
		"INSERT INTO agents ("+agentColumns+") VALUES ($1, $2, $3, $4, $5)",
		agent.ID, agent.Name, agent.Email, agent.Active, agent.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

func scanAgents(rows pgx.Rows) ([]models.Agent, error) {
	var agents []models.Agent
	for rows.Next() {
		var a models.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Active, &a.CreatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
