package engine

import (
	"github.com/planpilot/planpilot/internal/plan"
)

// Entry is the persisted external identity of one plan item
type Entry struct {
	ID       string        `json:"id"`
	Key      string        `json:"key"`
	URL      string        `json:"url"`
	ItemType plan.ItemType `json:"item_type"`
}

// SyncMap associates plan item ids with their external identities, scoped to
// one plan identifier and one target. The engine builds it during a run and
// returns it; persisting it is the caller's responsibility. It is a cache:
// discovery by marker remains the source of truth for idempotency.
type SyncMap struct {
	PlanID   string           `json:"plan_id"`
	Target   string           `json:"target"`
	BoardURL string           `json:"board_url"`
	Entries  map[string]Entry `json:"entries"`
}

// NewSyncMap creates an empty sync map for one plan and target
func NewSyncMap(planID, target, boardURL string) *SyncMap {
	return &SyncMap{
		PlanID:   planID,
		Target:   target,
		BoardURL: boardURL,
		Entries:  make(map[string]Entry),
	}
}

// Result is what one engine run produces
type Result struct {
	// SyncMap holds the external identity of every plan item
	SyncMap *SyncMap

	// Created counts items created this run, per type. Items found by
	// discovery are not counted.
	Created map[plan.ItemType]int

	// DroppedEdges are rolled-up parent-level dependency edges that were
	// dropped because they would have closed a cycle
	DroppedEdges []Edge
}

// TotalCreated sums the per-type creation counters
func (r *Result) TotalCreated() int {
	total := 0
	for _, n := range r.Created {
		total += n
	}
	return total
}
