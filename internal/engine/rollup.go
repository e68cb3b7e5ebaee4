package engine

import (
	"sort"

	"github.com/planpilot/planpilot/internal/plan"
)

// Edge is one blocked-by relation: From is blocked by To
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// rollupResult is the flat edge set a relation pass applies, computed and
// de-duplicated before any relation call is issued
type rollupResult struct {
	// direct are the item-level depends_on edges, restricted to resolved
	// pairs
	direct []Edge

	// derived are the parent-level edges rolled up from child
	// dependencies, de-duplicated and acyclic
	derived []Edge

	// dropped are derived edges that would have closed a cycle
	dropped []Edge
}

// rollup builds the full relation edge set for a plan. A dependency between
// children of different parents rolls up to a parent-level blocked-by edge,
// recursively up the hierarchy. Derived edges that would close a cycle are
// detected and dropped, never applied.
func rollup(p *plan.Plan) rollupResult {
	var res rollupResult

	seen := make(map[Edge]bool)
	var frontier []Edge
	for _, item := range p.Items() {
		for _, dep := range item.DependsOn {
			if _, ok := p.Item(dep); !ok {
				// Unresolved in partial mode; nothing to link
				continue
			}
			e := Edge{From: item.ID, To: dep}
			if seen[e] {
				continue
			}
			seen[e] = true
			res.direct = append(res.direct, e)
			frontier = append(frontier, e)
		}
	}

	// Roll edges up level by level: task edge -> story edge -> epic edge
	derived := make(map[Edge]bool)
	for len(frontier) > 0 {
		var next []Edge
		for _, e := range frontier {
			from, okF := p.Item(e.From)
			to, okT := p.Item(e.To)
			if !okF || !okT {
				continue
			}
			if from.ParentID == "" || to.ParentID == "" || from.ParentID == to.ParentID {
				continue
			}
			up := Edge{From: from.ParentID, To: to.ParentID}
			if derived[up] || seen[up] {
				continue
			}
			derived[up] = true
			next = append(next, up)
		}
		frontier = next
	}

	// Apply derived edges in deterministic order, dropping any that would
	// close a cycle against the already-accepted edge set (direct edges
	// included, since they are applied unconditionally).
	candidates := make([]Edge, 0, len(derived))
	for e := range derived {
		candidates = append(candidates, e)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].From != candidates[j].From {
			return candidates[i].From < candidates[j].From
		}
		return candidates[i].To < candidates[j].To
	})

	graph := make(map[string][]string)
	for _, e := range res.direct {
		graph[e.From] = append(graph[e.From], e.To)
	}
	for _, e := range candidates {
		if reaches(graph, e.To, e.From) {
			res.dropped = append(res.dropped, e)
			continue
		}
		graph[e.From] = append(graph[e.From], e.To)
		res.derived = append(res.derived, e)
	}

	return res
}

// reaches reports whether target is reachable from start in the edge graph
func reaches(graph map[string][]string, start, target string) bool {
	if start == target {
		return true
	}
	visited := make(map[string]bool)
	stack := []string{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == target {
			return true
		}
		if visited[node] {
			continue
		}
		visited[node] = true
		stack = append(stack, graph[node]...)
	}
	return false
}
