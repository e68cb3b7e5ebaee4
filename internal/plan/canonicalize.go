package plan

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/planpilot/planpilot/internal/errors"
)

// PlanIDLength is the length of the deterministic plan identifier
const PlanIDLength = 12

// Canonicalize returns the canonical JSON representation of a plan with
// stable ordering for consistent hashing. Items are sorted by (type, id);
// absent and empty optional collections serialize identically (omitted).
func Canonicalize(p *Plan) ([]byte, error) {
	items := p.Items()
	sort.Slice(items, func(i, j int) bool {
		if items[i].Type.Level() != items[j].Type.Level() {
			return items[i].Type.Level() < items[j].Type.Level()
		}
		return items[i].ID < items[j].ID
	})

	docs := make([]map[string]interface{}, len(items))
	for i, item := range items {
		docs[i] = canonicalItem(item)
	}

	// Marshal with sorted keys and no incidental whitespace
	return json.Marshal(sortKeys(docs))
}

// canonicalItem converts an item to a map that excludes absent or default
// fields so that semantically identical items serialize identically
func canonicalItem(item Item) map[string]interface{} {
	data := map[string]interface{}{
		"id":    item.ID,
		"type":  string(item.Type),
		"title": item.Title,
		"goal":  item.Goal,
	}

	addList(data, "requirements", item.Requirements)
	addList(data, "acceptance_criteria", item.AcceptanceCriteria)
	addList(data, "sub_item_ids", item.SubItemIDs)
	addList(data, "depends_on", item.DependsOn)
	addList(data, "verification", item.Verification)
	addList(data, "success_metrics", item.SuccessMetrics)
	addList(data, "assumptions", item.Assumptions)
	addList(data, "risks", item.Risks)

	addString(data, "parent_id", item.ParentID)
	addString(data, "motivation", item.Motivation)
	addString(data, "estimate", item.Estimate)
	addString(data, "scope", item.Scope)
	addString(data, "spec_ref", item.SpecRef)

	return data
}

func addList(data map[string]interface{}, key string, values []string) {
	if len(values) > 0 {
		data[key] = values
	}
}

func addString(data map[string]interface{}, key, value string) {
	if value != "" {
		data[key] = value
	}
}

// ComputePlanID computes the deterministic 12-hex-character plan identifier
// from the canonicalized plan content. Two semantically identical plans hash
// identically regardless of file layout or item ordering.
func ComputePlanID(p *Plan) (string, error) {
	canonical, err := Canonicalize(p)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeHashCanonicalize, "canonicalize plan", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", errors.Wrap(errors.ErrCodeHashCanonicalize, "hash plan", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))[:PlanIDLength], nil
}

// sortKeys recursively sorts map keys for stable JSON output
func sortKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sorted := make(map[string]interface{}, len(val))
		for _, k := range keys {
			sorted[k] = sortKeys(val[k])
		}
		return sorted

	case []interface{}:
		for i, item := range val {
			val[i] = sortKeys(item)
		}
		return val

	case []map[string]interface{}:
		for i, item := range val {
			val[i] = sortKeys(item).(map[string]interface{})
		}
		return val

	default:
		return v
	}
}
