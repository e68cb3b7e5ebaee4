package provider

import (
	"context"

	"github.com/planpilot/planpilot/internal/plan"
)

// Provider is the abstract boundary the sync engine drives. Adapters for
// concrete work-tracking systems implement it; the engine never imports
// adapter-specific types.
//
// Division of labor: the engine owns how many calls run in parallel, the
// adapter owns making each individual call reliable (bounded retries,
// server-provided retry delays, and a shared pause across all in-flight
// calls when a rate limit is hit — see Gate and Do).
type Provider interface {
	// Enter resolves authentication and session context. Capability
	// failures must surface here, before any item-level work begins.
	// The returned session is read-only for everything but the adapter.
	Enter(ctx context.Context) (*Session, error)

	// Exit releases session resources
	Exit(ctx context.Context) error

	// Capabilities returns what this adapter supports. Fixed after Enter.
	Capabilities() *Capabilities

	// SearchItems returns every item matching the filter. Adapters that
	// cannot guarantee a complete result set must return a capability
	// error rather than a silently truncated list.
	SearchItems(ctx context.Context, filter SearchFilter) ([]Item, error)

	// CreateItem creates a fully configured item. The call is logically
	// multi-step but must present as one idempotent operation: invoking
	// it again for a partially configured item converges to one fully
	// configured item, never a duplicate. On a partway failure it returns
	// a *PartialFailure.
	CreateItem(ctx context.Context, req CreateRequest) (Item, error)

	// UpdateItem reconciles plan-authoritative fields only. Labels are
	// applied additively; workflow fields set at creation are never
	// re-asserted.
	UpdateItem(ctx context.Context, id string, req UpdateRequest) (Item, error)

	// GetItem fetches a single item by adapter-internal id
	GetItem(ctx context.Context, id string) (Item, error)

	// DeleteItem removes an item by adapter-internal id
	DeleteItem(ctx context.Context, id string) error
}

// Item is the external representation of a plan item, owned by the adapter.
// The engine only reads its fields and invokes its relation operations.
type Item interface {
	// ID is the adapter-internal identifier
	ID() string

	// Key is the human-readable identifier (e.g. "PP-42")
	Key() string

	// URL is the browser link to the item
	URL() string

	// Title returns the current item title
	Title() string

	// Body returns the current item body text
	Body() string

	// ItemType returns the hierarchy level the item was created as
	ItemType() plan.ItemType

	// SetParent establishes the hierarchy relation to the parent item
	SetParent(ctx context.Context, parent Item) error

	// AddDependency marks this item as blocked by the given item
	AddDependency(ctx context.Context, blocker Item) error
}

// Session holds the context an adapter resolves at Enter: identifiers,
// board location, authentication. Read-only after Enter for everything
// outside the adapter.
type Session struct {
	// Target identifies the external system instance
	Target string

	// BoardURL is the browser link to the board the items land on
	BoardURL string
}

// Capabilities describes which parts of the contract an adapter can satisfy.
// Fixed after session entry. A missing required capability fails the run
// before any item-level work.
type Capabilities struct {
	// SearchByLabelAndBody indicates the adapter supports the conjunctive
	// discovery filter (label set AND body substring) with complete results
	SearchByLabelAndBody bool

	// SetParent indicates the adapter can establish hierarchy relations
	SetParent bool

	// AddDependency indicates the adapter can establish blocking relations
	AddDependency bool
}

// SearchFilter describes a conjunctive item search: every label must be
// present AND the body must contain the substring.
type SearchFilter struct {
	Labels       []string
	BodyContains string
}

// CreateRequest carries the fields for idempotent item creation
type CreateRequest struct {
	Title    string
	Body     string
	ItemType plan.ItemType
	Labels   []string

	// Size is the estimate board field, empty when the plan has none
	Size string
}

// UpdateRequest carries the plan-authoritative fields to reconcile.
// Nil pointer fields are left untouched; Labels are ensured present,
// never replaced wholesale.
type UpdateRequest struct {
	Title    *string
	Body     *string
	ItemType *plan.ItemType
	Labels   []string
	Size     *string
}
