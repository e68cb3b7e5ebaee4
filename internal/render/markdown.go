package render

import (
	"fmt"
	"strings"

	"github.com/planpilot/planpilot/internal/plan"
)

// MarkdownRenderer is the default renderer. It writes the metadata marker at
// the top, followed by markdown sections for the item's fields and resolved
// cross-references.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates the default markdown renderer
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render implements Renderer
func (r *MarkdownRenderer) Render(item plan.Item, rc Context) (string, error) {
	var b strings.Builder

	marker := Marker{PlanID: rc.PlanID, ItemID: item.ID}
	b.WriteString(marker.String())
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("## Goal\n\n%s\n", item.Goal))

	if item.Motivation != "" {
		b.WriteString(fmt.Sprintf("\n## Motivation\n\n%s\n", item.Motivation))
	}
	if item.Scope != "" {
		b.WriteString(fmt.Sprintf("\n## Scope\n\n%s\n", item.Scope))
	}

	writeList(&b, "Requirements", item.Requirements)
	writeList(&b, "Acceptance Criteria", item.AcceptanceCriteria)
	writeList(&b, "Verification", item.Verification)
	writeList(&b, "Success Metrics", item.SuccessMetrics)
	writeList(&b, "Assumptions", item.Assumptions)
	writeList(&b, "Risks", item.Risks)

	if item.SpecRef != "" {
		b.WriteString(fmt.Sprintf("\n## Spec Reference\n\n%s\n", item.SpecRef))
	}

	if rc.ParentKey != "" || len(rc.Children) > 0 || len(rc.Dependencies) > 0 {
		b.WriteString("\n## Cross References\n")
		if rc.ParentKey != "" {
			b.WriteString(fmt.Sprintf("\nParent: %s\n", rc.ParentKey))
		}
		if len(rc.Children) > 0 {
			b.WriteString("\nSub-items:\n")
			for _, ref := range rc.Children {
				b.WriteString(fmt.Sprintf("- %s %s\n", ref.Key, ref.Title))
			}
		}
		if len(rc.Dependencies) > 0 {
			b.WriteString("\nDepends on:\n")
			for _, ref := range rc.Dependencies {
				b.WriteString(fmt.Sprintf("- %s %s\n", ref.Key, ref.Title))
			}
		}
	}

	return b.String(), nil
}

func writeList(b *strings.Builder, heading string, values []string) {
	if len(values) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("\n## %s\n\n", heading))
	for _, v := range values {
		b.WriteString(fmt.Sprintf("- %s\n", v))
	}
}

// Compile-time verification that MarkdownRenderer implements Renderer
var _ Renderer = (*MarkdownRenderer)(nil)
