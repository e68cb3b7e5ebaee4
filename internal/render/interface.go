package render

import (
	"github.com/planpilot/planpilot/internal/plan"
)

// Ref is a resolved cross-reference to another external item
type Ref struct {
	Key   string
	Title string
}

// Context carries the resolved cross-reference state for one render pass.
// During upsert only the plan id is known; the enrich pass re-renders with
// everything resolved.
type Context struct {
	PlanID string

	// ParentKey is the resolved parent's key, empty during upsert or for
	// items without a parent
	ParentKey string

	// Children are the resolved child refs, sorted by (key, title)
	Children []Ref

	// Dependencies are the resolved dependency refs, sorted by the
	// depended-on plan item id
	Dependencies []Ref
}

// Renderer produces the body text for an external item. Implementations must
// place the metadata marker verbatim at the top of the returned body.
type Renderer interface {
	Render(item plan.Item, rc Context) (string, error)
}
