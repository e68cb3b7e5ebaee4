package memory

import (
	"context"
	"fmt"

	"github.com/planpilot/planpilot/internal/plan"
	"github.com/planpilot/planpilot/internal/provider"
)

// item is a handle onto one stored record. All reads and relation writes go
// through the adapter lock, so handles are safe to use concurrently.
type item struct {
	memory *Memory
	id     string
}

func (i *item) rec() *record {
	return i.memory.records[i.id]
}

// ID implements provider.Item
func (i *item) ID() string {
	return i.id
}

// Key implements provider.Item
func (i *item) Key() string {
	i.memory.mu.RLock()
	defer i.memory.mu.RUnlock()
	return i.rec().key
}

// URL implements provider.Item
func (i *item) URL() string {
	i.memory.mu.RLock()
	defer i.memory.mu.RUnlock()
	return i.rec().url
}

// Title implements provider.Item
func (i *item) Title() string {
	i.memory.mu.RLock()
	defer i.memory.mu.RUnlock()
	return i.rec().title
}

// Body implements provider.Item
func (i *item) Body() string {
	i.memory.mu.RLock()
	defer i.memory.mu.RUnlock()
	return i.rec().body
}

// ItemType implements provider.Item
func (i *item) ItemType() plan.ItemType {
	i.memory.mu.RLock()
	defer i.memory.mu.RUnlock()
	return i.rec().itemType
}

// SetParent implements provider.Item
func (i *item) SetParent(ctx context.Context, parent provider.Item) error {
	return provider.Do(ctx, i.memory.gate, i.memory.policy, func() error {
		if err := i.memory.takeTransient("set_parent"); err != nil {
			return err
		}

		i.memory.mu.Lock()
		defer i.memory.mu.Unlock()

		if _, ok := i.memory.records[parent.ID()]; !ok {
			return &provider.CallError{Op: "set_parent", Cause: fmt.Errorf("parent %s not found", parent.ID())}
		}
		i.rec().parentID = parent.ID()
		return nil
	})
}

// AddDependency implements provider.Item
func (i *item) AddDependency(ctx context.Context, blocker provider.Item) error {
	return provider.Do(ctx, i.memory.gate, i.memory.policy, func() error {
		if err := i.memory.takeTransient("add_dependency"); err != nil {
			return err
		}

		i.memory.mu.Lock()
		defer i.memory.mu.Unlock()

		if _, ok := i.memory.records[blocker.ID()]; !ok {
			return &provider.CallError{Op: "add_dependency", Cause: fmt.Errorf("blocker %s not found", blocker.ID())}
		}

		rec := i.rec()
		for _, existing := range rec.dependsOn {
			if existing == blocker.ID() {
				return nil
			}
		}
		rec.dependsOn = append(rec.dependsOn, blocker.ID())

		i.memory.dependencyCalls = append(i.memory.dependencyCalls, DependencyCall{
			FromKey: rec.key,
			ToKey:   i.memory.records[blocker.ID()].key,
		})
		return nil
	})
}

// Compile-time verification that item implements provider.Item
var _ provider.Item = (*item)(nil)
