package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/planpilot/planpilot/internal/errors"
)

// Mode selects how unresolved references are treated during validation
type Mode string

const (
	// ModeStrict requires every parent_id and depends_on entry to resolve
	// to a loaded item
	ModeStrict Mode = "strict"

	// ModePartial tolerates references to items that are not part of the
	// loaded set, assuming they belong to another plan slice
	ModePartial Mode = "partial"
)

// Problem describes one relational violation found during validation
type Problem struct {
	ItemID  string
	Message string
}

func (p Problem) String() string {
	if p.ItemID == "" {
		return p.Message
	}
	return fmt.Sprintf("%s: %s", p.ItemID, p.Message)
}

// ValidationError carries the full list of problems found in a plan.
// Checks are aggregated, never fail-fast, so one run reports everything.
type ValidationError struct {
	Problems []Problem
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("plan validation failed with %d problem(s)", len(e.Problems)))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.String())
	}
	return b.String()
}

// Validate checks the relational integrity of a plan. All checks run and all
// failures are collected; on failure the returned error is a coded
// PlanPilotError wrapping a *ValidationError.
func Validate(p *Plan, mode Mode) error {
	var problems []Problem

	problems = append(problems, checkDuplicateIDs(p)...)
	problems = append(problems, checkHierarchy(p)...)
	problems = append(problems, checkReferences(p, mode)...)
	problems = append(problems, checkRequiredFields(p)...)
	problems = append(problems, checkSubItemConsistency(p)...)

	if len(problems) == 0 {
		return nil
	}

	return errors.Wrap(errors.ErrCodeValidation,
		fmt.Sprintf("plan is invalid (%s mode)", mode),
		&ValidationError{Problems: problems}).
		WithSuggestion("Fix the listed problems and re-run validation")
}

func checkDuplicateIDs(p *Plan) []Problem {
	var problems []Problem
	seen := make(map[string]bool)
	for _, item := range p.items {
		if seen[item.ID] {
			problems = append(problems, Problem{
				ItemID:  item.ID,
				Message: "duplicate item id",
			})
		}
		seen[item.ID] = true
	}
	return problems
}

func checkHierarchy(p *Plan) []Problem {
	var problems []Problem
	for _, item := range p.items {
		switch item.Type {
		case TypeEpic:
			if item.ParentID != "" {
				problems = append(problems, Problem{
					ItemID:  item.ID,
					Message: fmt.Sprintf("EPIC must not have a parent, got parent_id %q", item.ParentID),
				})
			}
		case TypeStory:
			// Violating a loaded parent's type is an error in both modes
			if parent, ok := p.byID[item.ParentID]; ok && parent.Type != TypeEpic {
				problems = append(problems, Problem{
					ItemID:  item.ID,
					Message: fmt.Sprintf("STORY parent %s must be an EPIC, got %s", item.ParentID, parent.Type),
				})
			}
		case TypeTask:
			if parent, ok := p.byID[item.ParentID]; ok && parent.Type != TypeStory {
				problems = append(problems, Problem{
					ItemID:  item.ID,
					Message: fmt.Sprintf("TASK parent %s must be a STORY, got %s", item.ParentID, parent.Type),
				})
			}
		}
	}
	return problems
}

func checkReferences(p *Plan, mode Mode) []Problem {
	if mode != ModeStrict {
		// Partial mode: an unresolved reference is by definition absent
		// from the loaded set and assumed to live in another plan slice
		return nil
	}

	var problems []Problem
	for _, item := range p.items {
		if item.ParentID != "" {
			if _, ok := p.byID[item.ParentID]; !ok {
				problems = append(problems, Problem{
					ItemID:  item.ID,
					Message: fmt.Sprintf("parent_id %q does not resolve to a loaded item", item.ParentID),
				})
			}
		}
		for _, dep := range item.DependsOn {
			if _, ok := p.byID[dep]; !ok {
				problems = append(problems, Problem{
					ItemID:  item.ID,
					Message: fmt.Sprintf("depends_on %q does not resolve to a loaded item", dep),
				})
			}
		}
	}
	return problems
}

func checkRequiredFields(p *Plan) []Problem {
	var problems []Problem
	for _, item := range p.items {
		if strings.TrimSpace(item.Goal) == "" {
			problems = append(problems, Problem{ItemID: item.ID, Message: "goal is required"})
		}
		if len(item.Requirements) == 0 {
			problems = append(problems, Problem{ItemID: item.ID, Message: "requirements must not be empty"})
		}
		if len(item.AcceptanceCriteria) == 0 {
			problems = append(problems, Problem{ItemID: item.ID, Message: "acceptance_criteria must not be empty"})
		}
	}
	return problems
}

func checkSubItemConsistency(p *Plan) []Problem {
	var problems []Problem
	for _, item := range p.items {
		if item.SubItemIDs == nil {
			continue
		}

		// Only declared children that are actually loaded can be checked;
		// the rest may belong to another plan slice
		var declared []string
		for _, id := range item.SubItemIDs {
			if _, ok := p.byID[id]; ok {
				declared = append(declared, id)
			}
		}
		loaded := p.ChildrenOf(item.ID)

		sort.Strings(declared)
		sort.Strings(loaded)
		if !equalStrings(declared, loaded) {
			problems = append(problems, Problem{
				ItemID: item.ID,
				Message: fmt.Sprintf("sub_item_ids %v do not match loaded children %v (must be the inverse of the children's parent_id)",
					declared, loaded),
			})
		}
	}
	return problems
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
