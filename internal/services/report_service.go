// Package services holds the read-side services built on top of the
// repository layer.
package services

import (
	"context"
	"fmt"
	"sort"

	"leaddistributor/internal/repository"
	"leaddistributor/pkg/models"
)

// ReportService reconstructs upload cohorts from task provenance tags.
// There is no stored batch entity: tasks sharing one (fileName,
// uploadedAt) pair form one cohort. Both queries are read-only and
// idempotent.
type ReportService struct {
	tasks  repository.TaskStore
	agents repository.AgentDirectory
}

// NewReportService creates a ReportService.
func NewReportService(tasks repository.TaskStore, agents repository.AgentDirectory) *ReportService {
	return &ReportService{tasks: tasks, agents: agents}
}

// UploadHistory groups every provenance-tagged task into per-upload
// cohorts and computes each cohort's totals, per-status counts,
// completion rate, and per-agent breakdown. Cohorts are returned
// newest first.
func (s *ReportService) UploadHistory(ctx context.Context) ([]*models.UploadReport, error) {
	tasks, err := s.tasks.ListUploadTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list upload tasks: %w", err)
	}

	agentNames, err := s.agentNames(ctx)
	if err != nil {
		return nil, err
	}

	type cohortKey struct {
		fileName   string
		uploadedAt int64
	}
	index := make(map[cohortKey]int)
	var reports []*models.UploadReport
	agentOrder := make(map[cohortKey][]string)
	agentCounts := make(map[cohortKey]map[string]int)

	for _, task := range tasks {
		prov := task.Provenance
		key := cohortKey{prov.FileName, prov.UploadedAt.UnixNano()}
		i, ok := index[key]
		if !ok {
			i = len(reports)
			index[key] = i
			reports = append(reports, &models.UploadReport{
				FileName:     prov.FileName,
				UploadedAt:   prov.UploadedAt,
				UploadedBy:   prov.UploadedBy,
				BatchID:      prov.BatchID,
				StatusCounts: map[models.TaskStatus]int{},
			})
			agentCounts[key] = map[string]int{}
		}
		r := reports[i]
		r.TotalTasks++
		r.StatusCounts[task.Status]++
		if _, seen := agentCounts[key][task.AgentID]; !seen {
			agentOrder[key] = append(agentOrder[key], task.AgentID)
		}
		agentCounts[key][task.AgentID]++
	}

	for key, i := range index {
		r := reports[i]
		r.CompletionRate = completionRate(r.StatusCounts[models.TaskStatusCompleted], r.TotalTasks)
		for _, agentID := range agentOrder[key] {
			r.Agents = append(r.Agents, models.AgentBreakdown{
				AgentID:   agentID,
				AgentName: agentNames[agentID],
				TaskCount: agentCounts[key][agentID],
			})
		}
	}

	sort.SliceStable(reports, func(a, b int) bool {
		return reports[a].UploadedAt.After(reports[b].UploadedAt)
	})
	return reports, nil
}

// UploadDetail returns the ordered task list for every cohort uploaded
// under one file name, for detail-view drill-down.
func (s *ReportService) UploadDetail(ctx context.Context, fileName string) ([]*models.Task, error) {
	tasks, err := s.tasks.ListByFileName(ctx, fileName)
	if err != nil {
		return nil, fmt.Errorf("list tasks for %s: %w", fileName, err)
	}
	return tasks, nil
}

func (s *ReportService) agentNames(ctx context.Context) (map[string]string, error) {
	agents, err := s.agents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	names := make(map[string]string, len(agents))
	for _, a := range agents {
		names[a.ID] = a.Name
	}
	return names, nil
}

// completionRate is completed/total as a percentage, 0 for an empty cohort.
func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
