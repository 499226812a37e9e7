package ontology

import "strings"

// TypeUnknown is assigned to nodes whose extraction carried no type tag.
const TypeUnknown = "unknown"

// RelationDefault is assigned to edges whose extraction carried no relation
// label under any of the accepted keys.
const RelationDefault = "related"

// Batch is a normalized extraction batch, ready for a single transactional
// upsert. Edges still reference nodes by temp id; resolution to persisted ids
// happens inside the store transaction.
type Batch struct {
	Nodes []Node
	Edges []Edge
}

// Node is a normalized extracted entity. NormalizedName is the dedup key
// component: trimmed and case-folded, unique together with Type.
type Node struct {
	TempID         string
	Name           string
	NormalizedName string
	Type           string
	Severity       float64
}

// Edge is a normalized extracted relation, still keyed by batch-local
// temp ids.
type Edge struct {
	SourceTempID string
	TargetTempID string
	Relation     string
	Weight       float64
}

// NormalizeName derives the dedup key from a display name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize converts a raw extraction payload into a Batch. Nodes with an
// empty post-trim name are dropped, missing types and severities get
// defaults, and edge relation labels fall back through
// relation → relationship_type → label → "related".
func Normalize(raw *RawOntology) *Batch {
	if raw == nil {
		return &Batch{}
	}

	batch := &Batch{
		Nodes: make([]Node, 0, len(raw.Nodes)),
	}

	for _, n := range raw.Nodes {
		name := n.Label
		if strings.TrimSpace(name) == "" {
			name = n.Name
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		ntype := strings.TrimSpace(n.Type)
		if ntype == "" {
			ntype = TypeUnknown
		}

		severity := asFloat(n.Severity, 0)
		if n.Severity == nil {
			severity = asFloat(n.SeverityScore, 0)
		}

		batch.Nodes = append(batch.Nodes, Node{
			TempID:         asString(n.ID),
			Name:           name,
			NormalizedName: NormalizeName(name),
			Type:           ntype,
			Severity:       severity,
		})
	}

	rawEdges := raw.edgeList()
	batch.Edges = make([]Edge, 0, len(rawEdges))
	for _, e := range rawEdges {
		relation := strings.TrimSpace(e.Relation)
		if relation == "" {
			relation = strings.TrimSpace(e.RelationshipType)
		}
		if relation == "" {
			relation = strings.TrimSpace(e.Label)
		}
		if relation == "" {
			relation = RelationDefault
		}

		batch.Edges = append(batch.Edges, Edge{
			SourceTempID: asString(e.Source),
			TargetTempID: asString(e.Target),
			Relation:     relation,
			Weight:       asFloat(e.Weight, 1.0),
		})
	}

	return batch
}
