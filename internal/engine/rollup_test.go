package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planpilot/planpilot/internal/plan"
)

func mustPlan(t *testing.T, items []plan.Item) *plan.Plan {
	t.Helper()
	p, err := plan.NewPlan(items)
	require.NoError(t, err)
	return p
}

func TestRollupNoDependencies(t *testing.T) {
	p := mustPlan(t, []plan.Item{
		{ID: "E1", Type: plan.TypeEpic, Title: "Alpha"},
		{ID: "S1", Type: plan.TypeStory, Title: "One", ParentID: "E1"},
	})

	res := rollup(p)
	assert.Empty(t, res.direct)
	assert.Empty(t, res.derived)
	assert.Empty(t, res.dropped)
}

func TestRollupSameParentStaysDirect(t *testing.T) {
	p := mustPlan(t, []plan.Item{
		{ID: "E1", Type: plan.TypeEpic, Title: "Alpha"},
		{ID: "S1", Type: plan.TypeStory, Title: "One", ParentID: "E1"},
		{ID: "T1", Type: plan.TypeTask, Title: "A", ParentID: "S1", DependsOn: []string{"T2"}},
		{ID: "T2", Type: plan.TypeTask, Title: "B", ParentID: "S1"},
	})

	res := rollup(p)
	assert.Equal(t, []Edge{{From: "T1", To: "T2"}}, res.direct)
	assert.Empty(t, res.derived)
}

func TestRollupChainsToEpicLevel(t *testing.T) {
	p := mustPlan(t, []plan.Item{
		{ID: "E1", Type: plan.TypeEpic, Title: "Alpha"},
		{ID: "E2", Type: plan.TypeEpic, Title: "Beta"},
		{ID: "S1", Type: plan.TypeStory, Title: "One", ParentID: "E1"},
		{ID: "S2", Type: plan.TypeStory, Title: "Two", ParentID: "E2"},
		{ID: "T1", Type: plan.TypeTask, Title: "A", ParentID: "S1", DependsOn: []string{"T2"}},
		{ID: "T2", Type: plan.TypeTask, Title: "B", ParentID: "S2"},
	})

	res := rollup(p)
	assert.Equal(t, []Edge{{From: "T1", To: "T2"}}, res.direct)
	assert.ElementsMatch(t, []Edge{
		{From: "S1", To: "S2"},
		{From: "E1", To: "E2"},
	}, res.derived)
	assert.Empty(t, res.dropped)
}

func TestRollupDeduplicatesDerivedEdges(t *testing.T) {
	// Two task edges between the same pair of stories derive one story edge
	p := mustPlan(t, []plan.Item{
		{ID: "E1", Type: plan.TypeEpic, Title: "Alpha"},
		{ID: "S1", Type: plan.TypeStory, Title: "One", ParentID: "E1"},
		{ID: "S2", Type: plan.TypeStory, Title: "Two", ParentID: "E1"},
		{ID: "T1", Type: plan.TypeTask, Title: "A", ParentID: "S1", DependsOn: []string{"T3"}},
		{ID: "T2", Type: plan.TypeTask, Title: "B", ParentID: "S1", DependsOn: []string{"T4"}},
		{ID: "T3", Type: plan.TypeTask, Title: "C", ParentID: "S2"},
		{ID: "T4", Type: plan.TypeTask, Title: "D", ParentID: "S2"},
	})

	res := rollup(p)
	assert.Len(t, res.direct, 2)
	assert.Equal(t, []Edge{{From: "S1", To: "S2"}}, res.derived)
}

func TestRollupDerivedNeverDuplicatesDirect(t *testing.T) {
	// An explicit story-level edge already covers what the task edge derives
	p := mustPlan(t, []plan.Item{
		{ID: "E1", Type: plan.TypeEpic, Title: "Alpha"},
		{ID: "S1", Type: plan.TypeStory, Title: "One", ParentID: "E1", DependsOn: []string{"S2"}},
		{ID: "S2", Type: plan.TypeStory, Title: "Two", ParentID: "E1"},
		{ID: "T1", Type: plan.TypeTask, Title: "A", ParentID: "S1", DependsOn: []string{"T2"}},
		{ID: "T2", Type: plan.TypeTask, Title: "B", ParentID: "S2"},
	})

	res := rollup(p)
	assert.ElementsMatch(t, []Edge{
		{From: "S1", To: "S2"},
		{From: "T1", To: "T2"},
	}, res.direct)
	assert.Empty(t, res.derived)
}

func TestRollupDropsCyclicDerivedEdges(t *testing.T) {
	p := mustPlan(t, []plan.Item{
		{ID: "E1", Type: plan.TypeEpic, Title: "Alpha"},
		{ID: "E2", Type: plan.TypeEpic, Title: "Beta"},
		{ID: "S1", Type: plan.TypeStory, Title: "One", ParentID: "E1", DependsOn: []string{"S2"}},
		{ID: "S2", Type: plan.TypeStory, Title: "Two", ParentID: "E2"},
		{ID: "S3", Type: plan.TypeStory, Title: "Three", ParentID: "E2", DependsOn: []string{"S4"}},
		{ID: "S4", Type: plan.TypeStory, Title: "Four", ParentID: "E1"},
	})

	res := rollup(p)
	assert.Len(t, res.direct, 2)

	// Sorted candidate order accepts E1 -> E2 first, so the back edge drops
	assert.Equal(t, []Edge{{From: "E1", To: "E2"}}, res.derived)
	assert.Equal(t, []Edge{{From: "E2", To: "E1"}}, res.dropped)
}

func TestRollupSkipsUnresolvedDependencies(t *testing.T) {
	// A reference to an item outside the loaded slice produces no edge
	p := mustPlan(t, []plan.Item{
		{ID: "E1", Type: plan.TypeEpic, Title: "Alpha"},
		{ID: "S1", Type: plan.TypeStory, Title: "One", ParentID: "E1", DependsOn: []string{"S-ELSEWHERE"}},
	})

	res := rollup(p)
	assert.Empty(t, res.direct)
	assert.Empty(t, res.derived)
}

func TestRollupDeterministic(t *testing.T) {
	items := []plan.Item{
		{ID: "E1", Type: plan.TypeEpic, Title: "Alpha"},
		{ID: "E2", Type: plan.TypeEpic, Title: "Beta"},
		{ID: "E3", Type: plan.TypeEpic, Title: "Gamma"},
		{ID: "S1", Type: plan.TypeStory, Title: "One", ParentID: "E1", DependsOn: []string{"S2", "S3"}},
		{ID: "S2", Type: plan.TypeStory, Title: "Two", ParentID: "E2", DependsOn: []string{"S3"}},
		{ID: "S3", Type: plan.TypeStory, Title: "Three", ParentID: "E3"},
	}

	first := rollup(mustPlan(t, items))
	for i := 0; i < 10; i++ {
		res := rollup(mustPlan(t, items))
		assert.Equal(t, first.direct, res.direct)
		assert.Equal(t, first.derived, res.derived)
		assert.Equal(t, first.dropped, res.dropped)
	}
}
