package memory

import (
	"sort"

	"github.com/planpilot/planpilot/internal/plan"
)

// DependencyCall records one add_dependency call that changed state, in
// human-readable keys. Used by tests to assert relation behavior.
type DependencyCall struct {
	FromKey string
	ToKey   string
}

// DependencyCalls returns the recorded add_dependency calls in order
func (m *Memory) DependencyCalls() []DependencyCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DependencyCall, len(m.dependencyCalls))
	copy(out, m.dependencyCalls)
	return out
}

// ItemState is a read-only snapshot of one stored record
type ItemState struct {
	ID        string
	Key       string
	URL       string
	Title     string
	Body      string
	ItemType  plan.ItemType
	Labels    []string
	OnBoard   bool
	FieldsSet bool
	Size      string
	ParentKey string
	DependsOn []string
}

// State returns a snapshot of the record with the given key, and whether it
// exists
func (m *Memory) State(key string) (ItemState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records {
		if rec.key != key {
			continue
		}

		labels := make([]string, 0, len(rec.labels))
		for label := range rec.labels {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		parentKey := ""
		if parent, ok := m.records[rec.parentID]; ok {
			parentKey = parent.key
		}

		var dependsOn []string
		for _, depID := range rec.dependsOn {
			if dep, ok := m.records[depID]; ok {
				dependsOn = append(dependsOn, dep.key)
			}
		}

		return ItemState{
			ID:        rec.id,
			Key:       rec.key,
			URL:       rec.url,
			Title:     rec.title,
			Body:      rec.body,
			ItemType:  rec.itemType,
			Labels:    labels,
			OnBoard:   rec.onBoard,
			FieldsSet: rec.fieldsSet,
			Size:      rec.size,
			ParentKey: parentKey,
			DependsOn: dependsOn,
		}, true
	}
	return ItemState{}, false
}
