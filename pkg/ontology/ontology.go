// Package ontology turns raw extraction payloads into a canonical batch shape
// before they reach the store. Extractors key nodes by batch-local temporary
// ids and are free to use a handful of alternate field names; everything is
// resolved here so the persistence layer only ever sees normalized records.
package ontology

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// RawOntology is the wire shape produced by an extraction run. Both "links"
// and "edges" are accepted for the edge list; "links" wins if both are set.
type RawOntology struct {
	Nodes   []RawNode `json:"nodes"`
	Links   []RawEdge `json:"links"`
	Edges   []RawEdge `json:"edges"`
	Summary string    `json:"summary,omitempty"`
}

// RawNode is one extracted entity. ID and the severity fields are typed as
// `any` because extractors emit them inconsistently (string or number).
type RawNode struct {
	ID            any    `json:"id"`
	Label         string `json:"label"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Severity      any    `json:"severity"`
	SeverityScore any    `json:"severity_score"`
}

// RawEdge is one extracted relation between two temp-id node references.
type RawEdge struct {
	Source           any    `json:"source"`
	Target           any    `json:"target"`
	Relation         string `json:"relation"`
	RelationshipType string `json:"relationship_type"`
	Label            string `json:"label"`
	Weight           any    `json:"weight"`
}

func (r *RawOntology) edgeList() []RawEdge {
	if len(r.Links) > 0 {
		return r.Links
	}
	return r.Edges
}

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// ParsePayload decodes an extraction payload with multiple fallback
// strategies: standard JSON, then double-encoded JSON strings, then repair of
// malformed JSON. Extractor output is machine-generated and occasionally
// malformed, so a strict decode alone would drop usable batches.
func ParsePayload(payload []byte) (*RawOntology, error) {
	input := strings.TrimSpace(string(payload))
	if input == "" {
		return nil, fmt.Errorf("empty ontology payload")
	}

	var raw RawOntology
	if err := json.Unmarshal([]byte(input), &raw); err == nil {
		return &raw, nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		raw = RawOntology{}
		if err := json.Unmarshal([]byte(asString), &raw); err == nil {
			return &raw, nil
		}
		input = asString
	}

	input = stripDuplicateLeadingBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return nil, fmt.Errorf("json repair failed: %w", err)
	}

	raw = RawOntology{}
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal failed after repair: %w", err)
	}
	return &raw, nil
}

// asString renders a temp id as its canonical string form. Numeric ids are
// printed without a decimal point when they are whole, matching the form an
// extractor would have used in the edge references.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// asFloat coerces a numeric field to float64, returning fallback for missing
// or unparseable values.
func asFloat(v any, fallback float64) float64 {
	switch t := v.(type) {
	case nil:
		return fallback
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return fallback
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return fallback
		}
		return f
	default:
		return fallback
	}
}
