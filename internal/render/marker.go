package render

import (
	"bufio"
	"fmt"
	"strings"
)

// Marker block delimiters and keys. The block is plain text at the top of
// every rendered body, identical across all renderer implementations so a
// discovery substring search is renderer-agnostic. It is never wrapped in
// adapter-specific comment syntax.
const (
	MarkerHeader = "PLANPILOT_META_V1"
	MarkerFooter = "END_PLANPILOT_META"
	markerPlanID = "PLAN_ID"
	markerItemID = "ITEM_ID"
)

// Marker correlates one external item body with its originating plan item
type Marker struct {
	PlanID string
	ItemID string
}

// String renders the verbatim metadata block
func (m Marker) String() string {
	return fmt.Sprintf("%s\n%s:%s\n%s:%s\n%s",
		MarkerHeader, markerPlanID, m.PlanID, markerItemID, m.ItemID, MarkerFooter)
}

// PlanIDToken returns the literal correlation token discovery searches for
func PlanIDToken(planID string) string {
	return markerPlanID + ":" + planID
}

// ParseMarker extracts the metadata marker from an item body. It returns an
// error when the block is absent or malformed.
func ParseMarker(body string) (Marker, error) {
	scanner := bufio.NewScanner(strings.NewReader(body))

	inBlock := false
	var m Marker
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == MarkerHeader:
			inBlock = true
		case line == MarkerFooter:
			if !inBlock {
				return Marker{}, fmt.Errorf("marker footer before header")
			}
			if m.PlanID == "" || m.ItemID == "" {
				return Marker{}, fmt.Errorf("marker block incomplete (plan_id=%q item_id=%q)", m.PlanID, m.ItemID)
			}
			return m, nil
		case inBlock:
			key, value, found := strings.Cut(line, ":")
			if !found {
				return Marker{}, fmt.Errorf("malformed marker line %q", line)
			}
			switch key {
			case markerPlanID:
				m.PlanID = value
			case markerItemID:
				m.ItemID = value
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Marker{}, fmt.Errorf("scan body: %w", err)
	}

	return Marker{}, fmt.Errorf("no %s block found in body", MarkerHeader)
}
