package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/planpilot/planpilot/internal/errors"
	"github.com/planpilot/planpilot/internal/log"
	"github.com/planpilot/planpilot/internal/plan"
	"github.com/planpilot/planpilot/internal/provider"
	"github.com/planpilot/planpilot/internal/render"
)

// Options configures one engine instance
type Options struct {
	// DiscoveryLabel is the label applied to every created item and used
	// as one half of the discovery filter
	DiscoveryLabel string

	// ExtraLabels are additional labels applied to every created item
	ExtraLabels []string

	// Concurrency bounds how many provider calls run in flight at once.
	// It is the sole concurrency knob; zero or negative means sequential.
	Concurrency int

	// Logger receives structured phase and item logs
	Logger *log.Logger
}

// Engine orchestrates the five-phase synchronization pipeline:
// discovery, upsert, enrich, relations, result. It drives an
// already-entered Provider and a Renderer; it never imports
// adapter-specific types.
type Engine struct {
	provider provider.Provider
	renderer render.Renderer
	session  *provider.Session
	opts     Options
}

// New creates an engine bound to an already-entered provider session
func New(p provider.Provider, r render.Renderer, session *provider.Session, opts Options) *Engine {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.DiscoveryLabel == "" {
		opts.DiscoveryLabel = "planpilot"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Engine{
		provider: p,
		renderer: r,
		session:  session,
		opts:     opts,
	}
}

// run is the state of one Sync invocation
type run struct {
	plan   *plan.Plan
	planID string

	mu       sync.Mutex
	external map[string]provider.Item
	created  map[plan.ItemType]int
}

func (r *run) get(itemID string) (provider.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.external[itemID]
	return item, ok
}

func (r *run) put(itemID string, item provider.Item, countCreate bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.external[itemID] = item
	if countCreate {
		r.created[item.ItemType()]++
	}
}

// Sync reconciles the plan into the external system. Phases run strictly in
// order; within a phase, operations run under the bounded concurrency limit
// and fail fast. Completed external operations are durable; a failed run is
// repaired by re-running, since discovery finds everything by marker.
func (e *Engine) Sync(ctx context.Context, p *plan.Plan, planID string) (*Result, error) {
	logger := e.opts.Logger.With("plan_id", planID, "target", e.session.Target)

	if err := e.checkCapabilities(p); err != nil {
		return nil, err
	}

	r := &run{
		plan:     p,
		planID:   planID,
		external: make(map[string]provider.Item),
		created:  make(map[plan.ItemType]int),
	}

	logger.Info("discovery started", "label", e.opts.DiscoveryLabel)
	if err := e.discover(ctx, r); err != nil {
		return nil, errors.NewSyncError("discovery", err)
	}
	logger.Info("discovery finished", "existing", len(r.external))

	if err := e.upsert(ctx, r); err != nil {
		return nil, errors.NewSyncError("upsert", err)
	}
	logger.Info("upsert finished", "created", r.created)

	if err := e.enrich(ctx, r); err != nil {
		return nil, errors.NewSyncError("enrich", err)
	}
	logger.Info("enrich finished")

	edges := rollup(p)
	for _, dropped := range edges.dropped {
		logger.Warn("dropped cyclic rolled-up dependency edge", "from", dropped.From, "to", dropped.To)
	}
	if err := e.relations(ctx, r, edges); err != nil {
		return nil, errors.NewSyncError("relations", err)
	}
	logger.Info("relations finished",
		"direct", len(edges.direct), "derived", len(edges.derived), "dropped", len(edges.dropped))

	return e.assemble(r, edges), nil
}

// checkCapabilities fails the run before any item-level work when the
// adapter cannot satisfy a required part of the contract
func (e *Engine) checkCapabilities(p *plan.Plan) error {
	caps := e.provider.Capabilities()

	if !caps.SearchByLabelAndBody {
		return errors.NewCapabilityError(e.session.Target, "discovery search by label and body substring")
	}

	needParent := false
	needDependency := false
	for _, item := range p.Items() {
		if item.ParentID != "" {
			needParent = true
		}
		if len(item.DependsOn) > 0 {
			needDependency = true
		}
	}
	if needParent && !caps.SetParent {
		return errors.NewCapabilityError(e.session.Target, "set_parent relations")
	}
	if needDependency && !caps.AddDependency {
		return errors.NewCapabilityError(e.session.Target, "add_dependency relations")
	}

	return nil
}

// discover searches the external system by discovery label and correlation
// token, recovering the originating plan item id from each hit's marker.
// This is the authoritative idempotency source; any persisted sync map is
// only a cache.
func (e *Engine) discover(ctx context.Context, r *run) error {
	hits, err := e.provider.SearchItems(ctx, provider.SearchFilter{
		Labels:       []string{e.opts.DiscoveryLabel},
		BodyContains: render.PlanIDToken(r.planID),
	})
	if err != nil {
		return fmt.Errorf("search items: %w", err)
	}

	for _, hit := range hits {
		marker, err := render.ParseMarker(hit.Body())
		if err != nil {
			e.opts.Logger.Warn("discovery hit without parseable marker, skipping",
				"key", hit.Key(), "reason", err.Error())
			continue
		}
		if marker.PlanID != r.planID {
			continue
		}
		r.external[marker.ItemID] = hit
	}

	return nil
}

// upsert creates missing items level by level: epics, then stories, then
// tasks, so a parent key is always resolvable when its children render.
// Within one level, items run under the bounded limiter.
func (e *Engine) upsert(ctx context.Context, r *run) error {
	for _, t := range plan.TypeOrder {
		items := r.plan.ItemsOfType(t)
		if len(items) == 0 {
			continue
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Concurrency)

		for _, item := range items {
			item := item
			g.Go(func() error {
				if _, ok := r.get(item.ID); ok {
					return nil
				}
				return e.createItem(gctx, r, item)
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) createItem(ctx context.Context, r *run, item plan.Item) error {
	body, err := e.renderer.Render(item, e.buildContext(r, item, false))
	if err != nil {
		return fmt.Errorf("render %s: %w", item.ID, err)
	}

	created, err := e.provider.CreateItem(ctx, provider.CreateRequest{
		Title:    item.Title,
		Body:     body,
		ItemType: item.Type,
		Labels:   e.labels(),
		Size:     item.Estimate,
	})
	if err != nil {
		if pf, ok := provider.AsPartialFailure(err); ok {
			// The marker is already written externally; the next run's
			// discovery finds and repairs this item.
			return errors.Wrap(errors.ErrCodeProviderPartialCreate,
				fmt.Sprintf("item %s creation incomplete (retryable=%v)", item.ID, pf.Retryable), err)
		}
		return fmt.Errorf("create %s: %w", item.ID, err)
	}

	r.put(item.ID, created, true)
	return nil
}

// enrich re-renders every body with full cross-reference context and
// reconciles the plan-authoritative fields. Every item is addressable now,
// so all types run together under the limiter.
func (e *Engine) enrich(ctx context.Context, r *run) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for _, item := range r.plan.Items() {
		item := item
		external, ok := r.get(item.ID)
		if !ok {
			return fmt.Errorf("item %s missing after upsert", item.ID)
		}

		g.Go(func() error {
			body, err := e.renderer.Render(item, e.buildContext(r, item, true))
			if err != nil {
				return fmt.Errorf("render %s: %w", item.ID, err)
			}

			itemType := item.Type
			updated, err := e.provider.UpdateItem(gctx, external.ID(), provider.UpdateRequest{
				Title:    &item.Title,
				Body:     &body,
				ItemType: &itemType,
				Labels:   e.labels(),
				Size:     sizePtr(item.Estimate),
			})
			if err != nil {
				return fmt.Errorf("update %s: %w", item.ID, err)
			}

			r.put(item.ID, updated, false)
			return nil
		})
	}

	return g.Wait()
}

// relations applies set_parent for every parented item and add_dependency
// for the flat de-duplicated edge set (direct plus rolled-up). All calls run
// under the limiter.
func (e *Engine) relations(ctx context.Context, r *run, edges rollupResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for _, item := range r.plan.Items() {
		item := item
		if item.ParentID == "" {
			continue
		}
		child, okC := r.get(item.ID)
		parent, okP := r.get(item.ParentID)
		if !okC || !okP {
			// Parent not in the loaded slice (partial mode)
			continue
		}
		g.Go(func() error {
			if err := child.SetParent(gctx, parent); err != nil {
				return fmt.Errorf("set parent of %s: %w", item.ID, err)
			}
			return nil
		})
	}

	for _, edge := range append(append([]Edge{}, edges.direct...), edges.derived...) {
		edge := edge
		from, okF := r.get(edge.From)
		to, okT := r.get(edge.To)
		if !okF || !okT {
			continue
		}
		g.Go(func() error {
			if err := from.AddDependency(gctx, to); err != nil {
				return fmt.Errorf("add dependency %s -> %s: %w", edge.From, edge.To, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// assemble builds the result. Persistence is the caller's responsibility.
func (e *Engine) assemble(r *run, edges rollupResult) *Result {
	syncMap := NewSyncMap(r.planID, e.session.Target, e.session.BoardURL)
	for itemID, external := range r.external {
		if _, ok := r.plan.Item(itemID); !ok {
			// A marker hit from a stale item no longer in the plan
			continue
		}
		syncMap.Entries[itemID] = Entry{
			ID:       external.ID(),
			Key:      external.Key(),
			URL:      external.URL(),
			ItemType: external.ItemType(),
		}
	}

	return &Result{
		SyncMap:      syncMap,
		Created:      r.created,
		DroppedEdges: edges.dropped,
	}
}

// buildContext resolves the cross-reference context for one render pass.
// During upsert (full=false) only the plan id and an already-created parent
// key are available; enrich passes full=true with everything resolved.
func (e *Engine) buildContext(r *run, item plan.Item, full bool) render.Context {
	rc := render.Context{PlanID: r.planID}

	if item.ParentID != "" {
		if parent, ok := r.get(item.ParentID); ok {
			rc.ParentKey = parent.Key()
		}
	}

	if !full {
		return rc
	}

	for _, childID := range r.plan.ChildrenOf(item.ID) {
		if child, ok := r.get(childID); ok {
			rc.Children = append(rc.Children, render.Ref{Key: child.Key(), Title: child.Title()})
		}
	}
	sort.Slice(rc.Children, func(i, j int) bool {
		if rc.Children[i].Key != rc.Children[j].Key {
			return rc.Children[i].Key < rc.Children[j].Key
		}
		return rc.Children[i].Title < rc.Children[j].Title
	})

	deps := append([]string{}, item.DependsOn...)
	sort.Strings(deps)
	for _, depID := range deps {
		if dep, ok := r.get(depID); ok {
			rc.Dependencies = append(rc.Dependencies, render.Ref{Key: dep.Key(), Title: dep.Title()})
		}
	}

	return rc
}

func (e *Engine) labels() []string {
	return append([]string{e.opts.DiscoveryLabel}, e.opts.ExtraLabels...)
}

func sizePtr(estimate string) *string {
	if estimate == "" {
		return nil
	}
	return &estimate
}
