// Package models defines the domain models for the lead distributor service
package models

import (
	"time"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid reports whether s is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a task may move from s to next.
// Completed and cancelled are terminal.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if !next.IsValid() || s == next {
		return false
	}
	switch s {
	case TaskStatusPending, TaskStatusInProgress:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Agent represents a human operator that tasks are assigned to.
// The roster is owned by the agent directory; the ingestion pipeline
// only ever reads the active subset.
type Agent struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Provenance records which upload and source row produced a task.
// Tasks sharing the same (FileName, UploadedAt) pair form one upload
// cohort; BatchID disambiguates same-named files uploaded within the
// same clock tick.
type Provenance struct {
	FirstName   string    `json:"firstName"`
	Phone       string    `json:"phone"`
	Notes       string    `json:"notes,omitempty"`
	OriginalRow int       `json:"originalRow"`
	FileName    string    `json:"fileName"`
	UploadedAt  time.Time `json:"uploadedAt"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	BatchID     string    `json:"batchId,omitempty"`
}

// Task represents one unit of work assigned to an agent. Tasks created
// by the ingestion pipeline carry provenance; tasks may exist without
// it (created through other channels) and are ignored by upload reports.
type Task struct {
	ID          string       `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	AgentID     string       `json:"agent_id" db:"agent_id"`
	Status      TaskStatus   `json:"status" db:"status"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	AssignedBy  string       `json:"assigned_by,omitempty" db:"assigned_by"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	Provenance  *Provenance  `json:"provenance,omitempty" db:"provenance"`
}

// CanonicalRecord is the normalized, validated representation of one
// input row prior to task creation. Immutable once built; not persisted
// on its own.
type CanonicalRecord struct {
	FirstName   string `json:"firstName"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
	OriginalRow int    `json:"originalRow"`
}

// TaskPreview is a short view of a task used in distribution summaries.
type TaskPreview struct {
	Title       string `json:"title"`
	OriginalRow int    `json:"originalRow"`
}

// AgentAssignment describes one agent's share of an upload.
type AgentAssignment struct {
	AgentID   string        `json:"agent_id"`
	AgentName string        `json:"agent_name"`
	TaskCount int           `json:"task_count"`
	Preview   []TaskPreview `json:"preview,omitempty"`
}

// UploadSummary is the success payload returned by the submit-upload
// operation.
type UploadSummary struct {
	TotalTasks   int               `json:"totalTasks"`
	AgentsCount  int               `json:"agentsCount"`
	FileName     string            `json:"fileName"`
	UploadedAt   time.Time         `json:"uploadedAt"`
	BatchID      string            `json:"batchId"`
	Distribution []AgentAssignment `json:"distribution"`
}

// AgentBreakdown is a per-agent task total inside an upload report.
type AgentBreakdown struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
	TaskCount int    `json:"task_count"`
}

// UploadReport aggregates one upload cohort, reconstructed by grouping
// tasks on their provenance tags.
type UploadReport struct {
	FileName       string             `json:"fileName"`
	UploadedAt     time.Time          `json:"uploadedAt"`
	UploadedBy     string             `json:"uploadedBy,omitempty"`
	BatchID        string             `json:"batchId,omitempty"`
	TotalTasks     int                `json:"totalTasks"`
	StatusCounts   map[TaskStatus]int `json:"statusCounts"`
	CompletionRate float64            `json:"completionRate"`
	Agents         []AgentBreakdown   `json:"agents"`
}
