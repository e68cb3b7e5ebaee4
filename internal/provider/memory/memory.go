// Package memory provides an in-memory reference adapter for the provider
// contract. It backs engine tests and dry runs against the "memory" target,
// and exercises the same reliability helpers a remote adapter would use.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planpilot/planpilot/internal/plan"
	"github.com/planpilot/planpilot/internal/provider"
	"github.com/planpilot/planpilot/internal/render"
)

// Target is the registry name of this adapter
const Target = "memory"

// record is the adapter-internal item state. Creation is genuinely
// multi-step here so partial-failure scenarios behave like a remote system.
type record struct {
	id    string
	key   string
	url   string
	title string
	body  string

	itemType     plan.ItemType
	typeAssigned bool
	labels       map[string]bool
	onBoard      bool
	fieldsSet    bool
	size         string

	parentID  string
	dependsOn []string
}

// Memory implements provider.Provider against process-local state
type Memory struct {
	boardURL string
	caps     provider.Capabilities
	gate     *provider.Gate
	policy   provider.RetryPolicy

	mu      sync.RWMutex
	records map[string]*record
	nextKey int

	failCreate      *createFailure
	transient       map[string]int
	dependencyCalls []DependencyCall
}

type createFailure struct {
	afterStep provider.CreateStep
	retryable bool
}

// New creates an empty memory adapter with full capabilities
func New() *Memory {
	return &Memory{
		boardURL: "memory://board",
		caps: provider.Capabilities{
			SearchByLabelAndBody: true,
			SetParent:            true,
			AddDependency:        true,
		},
		gate: provider.NewGate(),
		// In-process calls never need long backoffs
		policy: provider.RetryPolicy{
			MaxRetries:      3,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
		},
		records:   make(map[string]*record),
		transient: make(map[string]int),
	}
}

// Factory builds a memory adapter from registry options
func Factory(options map[string]string) (provider.Provider, error) {
	m := New()
	if url, ok := options["board_url"]; ok {
		m.boardURL = url
	}
	return m, nil
}

// SetCapabilities overrides the reported capabilities (for gating tests)
func (m *Memory) SetCapabilities(caps provider.Capabilities) {
	m.caps = caps
}

// FailNextCreateAfter arms a one-shot creation failure that triggers after
// the given step completes
func (m *Memory) FailNextCreateAfter(step provider.CreateStep, retryable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCreate = &createFailure{afterStep: step, retryable: retryable}
}

// FailTransient makes the named operation fail with a transient error the
// given number of times before succeeding
func (m *Memory) FailTransient(op string, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transient[op] = times
}

// Gate exposes the adapter's shared pause gate
func (m *Memory) Gate() *provider.Gate {
	return m.gate
}

// Enter implements provider.Provider
func (m *Memory) Enter(ctx context.Context) (*provider.Session, error) {
	return &provider.Session{
		Target:   Target,
		BoardURL: m.boardURL,
	}, nil
}

// Exit implements provider.Provider
func (m *Memory) Exit(ctx context.Context) error {
	return nil
}

// Capabilities implements provider.Provider
func (m *Memory) Capabilities() *provider.Capabilities {
	caps := m.caps
	return &caps
}

// SearchItems implements provider.Provider: conjunctive label set AND body
// substring, complete results
func (m *Memory) SearchItems(ctx context.Context, filter provider.SearchFilter) ([]provider.Item, error) {
	var out []provider.Item
	err := provider.Do(ctx, m.gate, m.policy, func() error {
		if err := m.takeTransient("search_items"); err != nil {
			return err
		}

		m.mu.RLock()
		defer m.mu.RUnlock()

		for _, rec := range m.records {
			if !hasLabels(rec, filter.Labels) {
				continue
			}
			if filter.BodyContains != "" && !strings.Contains(rec.body, filter.BodyContains) {
				continue
			}
			out = append(out, &item{memory: m, id: rec.id})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateItem implements provider.Provider. The marker is in the body from
// step one, so an earlier partial creation is found by marker and resumed
// rather than duplicated.
func (m *Memory) CreateItem(ctx context.Context, req provider.CreateRequest) (provider.Item, error) {
	var created provider.Item
	err := provider.Do(ctx, m.gate, m.policy, func() error {
		if err := m.takeTransient("create_item"); err != nil {
			return err
		}

		item, err := m.createItem(req)
		if err != nil {
			return err
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (m *Memory) createItem(req provider.CreateRequest) (provider.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.resume(req)
	var completed []provider.CreateStep

	fail := func(step provider.CreateStep) error {
		if m.failCreate == nil || m.failCreate.afterStep != step {
			return nil
		}
		pf := &provider.PartialFailure{
			CompletedSteps: completed,
			Retryable:      m.failCreate.retryable,
			Cause:          fmt.Errorf("injected failure after %s", step),
		}
		if rec != nil {
			pf.Created = &provider.Identity{ID: rec.id, Key: rec.key, URL: rec.url}
		}
		m.failCreate = nil
		return pf
	}

	if rec == nil {
		rec = &record{
			id:     uuid.NewString(),
			title:  req.Title,
			body:   req.Body,
			labels: make(map[string]bool),
		}
		m.nextKey++
		rec.key = fmt.Sprintf("PP-%d", m.nextKey)
		rec.url = fmt.Sprintf("%s/%s", m.boardURL, rec.key)
		m.records[rec.id] = rec
	}
	completed = append(completed, provider.StepCreateRecord)
	if err := fail(provider.StepCreateRecord); err != nil {
		return nil, err
	}

	if !rec.typeAssigned {
		rec.itemType = req.ItemType
		rec.typeAssigned = true
	}
	completed = append(completed, provider.StepAssignType)
	if err := fail(provider.StepAssignType); err != nil {
		return nil, err
	}

	for _, label := range req.Labels {
		rec.labels[label] = true
	}
	completed = append(completed, provider.StepApplyLabels)
	if err := fail(provider.StepApplyLabels); err != nil {
		return nil, err
	}

	rec.onBoard = true
	completed = append(completed, provider.StepAttachBoard)
	if err := fail(provider.StepAttachBoard); err != nil {
		return nil, err
	}

	if !rec.fieldsSet {
		rec.size = req.Size
		rec.fieldsSet = true
	}
	completed = append(completed, provider.StepSetFields)
	if err := fail(provider.StepSetFields); err != nil {
		return nil, err
	}

	return &item{memory: m, id: rec.id}, nil
}

// resume finds an earlier, possibly partially configured record carrying the
// same marker as the request body. Caller holds the lock.
func (m *Memory) resume(req provider.CreateRequest) *record {
	marker, err := render.ParseMarker(req.Body)
	if err != nil {
		return nil
	}
	for _, rec := range m.records {
		existing, err := render.ParseMarker(rec.body)
		if err != nil {
			continue
		}
		if existing == marker {
			return rec
		}
	}
	return nil
}

// UpdateItem implements provider.Provider. Labels are additive; workflow
// fields are untouched after creation.
func (m *Memory) UpdateItem(ctx context.Context, id string, req provider.UpdateRequest) (provider.Item, error) {
	var updated provider.Item
	err := provider.Do(ctx, m.gate, m.policy, func() error {
		if err := m.takeTransient("update_item"); err != nil {
			return err
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		rec, ok := m.records[id]
		if !ok {
			return &provider.CallError{Op: "update_item", Cause: fmt.Errorf("item %s not found", id)}
		}

		if req.Title != nil {
			rec.title = *req.Title
		}
		if req.Body != nil {
			rec.body = *req.Body
		}
		if req.ItemType != nil {
			rec.itemType = *req.ItemType
			rec.typeAssigned = true
		}
		for _, label := range req.Labels {
			rec.labels[label] = true
		}
		if req.Size != nil {
			rec.size = *req.Size
		}

		updated = &item{memory: m, id: rec.id}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetItem implements provider.Provider
func (m *Memory) GetItem(ctx context.Context, id string) (provider.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.records[id]; !ok {
		return nil, &provider.CallError{Op: "get_item", Cause: fmt.Errorf("item %s not found", id)}
	}
	return &item{memory: m, id: id}, nil
}

// DeleteItem implements provider.Provider
func (m *Memory) DeleteItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return &provider.CallError{Op: "delete_item", Cause: fmt.Errorf("item %s not found", id)}
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) takeTransient(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transient[op] > 0 {
		m.transient[op]--
		return &provider.CallError{Op: op, Transient: true, Cause: fmt.Errorf("injected transient failure")}
	}
	return nil
}

func hasLabels(rec *record, labels []string) bool {
	for _, label := range labels {
		if !rec.labels[label] {
			return false
		}
	}
	return true
}

// Len returns the number of stored records (for test assertions)
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Compile-time verification that Memory implements provider.Provider
var _ provider.Provider = (*Memory)(nil)
