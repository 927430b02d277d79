// Package distribute partitions canonical records across the active
// agent roster. Two policies exist in the product's history; they are
// kept as separate named strategies and selected by configuration,
// never mixed within one run.
package distribute

import (
	"fmt"

	"leaddistributor/pkg/models"
)

// Assignment pairs one record with the agent that will own its task.
// Seq is the record's 0-based position in the original input order.
type Assignment struct {
	Agent  models.Agent
	Record models.CanonicalRecord
	Seq    int
}

// Plan is the ordered output of one distribution run. It is ephemeral:
// it exists only to drive task materialization and is never persisted.
type Plan []Assignment

// Strategy partitions records across a non-empty roster. Both
// implementations are deterministic given fixed record and roster
// order, and assign every record exactly once.
type Strategy interface {
	Name() string
	Distribute(records []models.CanonicalRecord, roster []models.Agent) Plan
}

// FromName resolves a configured strategy name.
func FromName(name string) (Strategy, error) {
	switch name {
	case "round_robin", "":
		return RoundRobin{}, nil
	case "balanced":
		return BalancedSplit{}, nil
	}
	return nil, fmt.Errorf("unknown distribution strategy %q", name)
}

// RoundRobin assigns record i to roster[i mod len(roster)]. Input order
// is preserved within each agent's bucket, bucket sizes differ by at
// most one, and earlier roster entries never receive fewer records
// than later ones.
type RoundRobin struct{}

func (RoundRobin) Name() string { return "round_robin" }

func (RoundRobin) Distribute(records []models.CanonicalRecord, roster []models.Agent) Plan {
	plan := make(Plan, 0, len(records))
	for i, rec := range records {
		plan = append(plan, Assignment{
			Agent:  roster[i%len(roster)],
			Record: rec,
			Seq:    i,
		})
	}
	return plan
}

// BalancedSplit hands out contiguous slices of the input: with
// base = n/w and remainder = n%w, the first remainder agents in roster
// order receive base+1 records each and the rest receive base.
type BalancedSplit struct{}

func (BalancedSplit) Name() string { return "balanced" }

func (BalancedSplit) Distribute(records []models.CanonicalRecord, roster []models.Agent) Plan {
	n := len(records)
	w := len(roster)
	base := n / w
	remainder := n % w

	plan := make(Plan, 0, n)
	next := 0
	for ai, agent := range roster {
		size := base
		if ai < remainder {
			size++
		}
		start := next
		for j, rec := range records[start : start+size] {
			plan = append(plan, Assignment{Agent: agent, Record: rec, Seq: start + j})
		}
		next = start + size
	}
	return plan
}

// BucketSizes tallies the plan per agent ID, in first-seen order.
func (p Plan) BucketSizes() map[string]int {
	sizes := make(map[string]int, len(p))
	for _, a := range p {
		sizes[a.Agent.ID]++
	}
	return sizes
}
