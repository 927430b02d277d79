package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema shared by the seed command and the repository tests.
// Provenance is JSONB so cohort queries can filter and group on nested
// tag fields without a batch table.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS agents (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	agent_id UUID NOT NULL REFERENCES agents(id),
	status TEXT NOT NULL DEFAULT 'pending',
	priority TEXT NOT NULL DEFAULT 'medium',
	assigned_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	provenance JSONB
);

CREATE INDEX IF NOT EXISTS idx_tasks_provenance_file
	ON tasks ((provenance->>'fileName'))
	WHERE provenance IS NOT NULL;
`

// CreateSchema applies the database schema.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
