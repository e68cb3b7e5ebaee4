package plan

import (
	"fmt"
	"strings"
)

// ItemType classifies a plan item within the hierarchy
type ItemType string

const (
	// TypeEpic is a strategic item at the top of the hierarchy
	TypeEpic ItemType = "EPIC"
	// TypeStory is a deliverable under an epic
	TypeStory ItemType = "STORY"
	// TypeTask is an atomic work unit under a story
	TypeTask ItemType = "TASK"
)

// Level returns the hierarchy depth of the type (epics first)
func (t ItemType) Level() int {
	switch t {
	case TypeEpic:
		return 0
	case TypeStory:
		return 1
	case TypeTask:
		return 2
	default:
		return 3
	}
}

// Valid reports whether the type is one of the three known hierarchy levels
func (t ItemType) Valid() bool {
	return t == TypeEpic || t == TypeStory || t == TypeTask
}

// ParseItemType parses a string into an ItemType
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EPIC":
		return TypeEpic, nil
	case "STORY":
		return TypeStory, nil
	case "TASK":
		return TypeTask, nil
	default:
		return "", fmt.Errorf("unknown item type %q (must be EPIC, STORY, or TASK)", s)
	}
}

// TypeOrder lists the item types in hierarchy order, parents first
var TypeOrder = []ItemType{TypeEpic, TypeStory, TypeTask}

// Item represents a single node in the hierarchical plan
type Item struct {
	ID                 string   `yaml:"id" json:"id"`
	Type               ItemType `yaml:"type,omitempty" json:"type"`
	Title              string   `yaml:"title" json:"title"`
	Goal               string   `yaml:"goal" json:"goal"`
	ParentID           string   `yaml:"parent_id,omitempty" json:"parent_id,omitempty"`
	SubItemIDs         []string `yaml:"sub_item_ids,omitempty" json:"sub_item_ids,omitempty"`
	DependsOn          []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Requirements       []string `yaml:"requirements" json:"requirements"`
	AcceptanceCriteria []string `yaml:"acceptance_criteria" json:"acceptance_criteria"`

	// Optional descriptive fields
	Motivation     string   `yaml:"motivation,omitempty" json:"motivation,omitempty"`
	Estimate       string   `yaml:"estimate,omitempty" json:"estimate,omitempty"`
	Verification   []string `yaml:"verification,omitempty" json:"verification,omitempty"`
	Scope          string   `yaml:"scope,omitempty" json:"scope,omitempty"`
	SpecRef        string   `yaml:"spec_ref,omitempty" json:"spec_ref,omitempty"`
	SuccessMetrics []string `yaml:"success_metrics,omitempty" json:"success_metrics,omitempty"`
	Assumptions    []string `yaml:"assumptions,omitempty" json:"assumptions,omitempty"`
	Risks          []string `yaml:"risks,omitempty" json:"risks,omitempty"`
}

// Plan is an ordered, immutable collection of plan items.
// A fresh Plan is constructed per invocation; nothing mutates it after NewPlan.
type Plan struct {
	items []Item
	byID  map[string]Item
}

// NewPlan constructs a Plan, performing structural and primitive-type
// validation of each item. Relational checks (hierarchy, references) belong
// to Validate.
func NewPlan(items []Item) (*Plan, error) {
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return nil, fmt.Errorf("item at index %d has no id", i)
		}
		if !item.Type.Valid() {
			return nil, fmt.Errorf("item %s has invalid type %q", item.ID, string(item.Type))
		}
		if strings.TrimSpace(item.Title) == "" {
			return nil, fmt.Errorf("item %s has no title", item.ID)
		}
	}

	byID := make(map[string]Item, len(items))
	for _, item := range items {
		// First occurrence wins; duplicates are reported by Validate
		if _, exists := byID[item.ID]; !exists {
			byID[item.ID] = item
		}
	}

	return &Plan{
		items: items,
		byID:  byID,
	}, nil
}

// Items returns the plan items in load order
func (p *Plan) Items() []Item {
	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out
}

// Item looks up a plan item by id
func (p *Plan) Item(id string) (Item, bool) {
	item, ok := p.byID[id]
	return item, ok
}

// Len returns the number of loaded items
func (p *Plan) Len() int {
	return len(p.items)
}

// ItemsOfType returns the items of one hierarchy level in load order
func (p *Plan) ItemsOfType(t ItemType) []Item {
	var out []Item
	for _, item := range p.items {
		if item.Type == t {
			out = append(out, item)
		}
	}
	return out
}

// ChildrenOf returns the ids of loaded items whose parent_id points at the
// given item, in load order
func (p *Plan) ChildrenOf(id string) []string {
	var out []string
	for _, item := range p.items {
		if item.ParentID == id {
			out = append(out, item.ID)
		}
	}
	return out
}
