package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ontoreview/backend/pkg/ontology"
	"github.com/ontoreview/backend/pkg/store"
)

func mockBatch() *ontology.Batch {
	return ontology.Normalize(&ontology.RawOntology{
		Nodes: []ontology.RawNode{
			{ID: "n1", Label: "Battery Explosion", Type: "event", Severity: float64(9)},
			{ID: "n2", Label: "Product Recall", Type: "impact", Severity: float64(8)},
			{ID: "n3", Label: "Legal Team", Type: "department", Severity: float64(5)},
			{ID: "n4", Label: "  Battery Explosion  ", Type: "event", Severity: float64(7)},
		},
		Links: []ontology.RawEdge{
			{Source: "n1", Target: "n2", Relation: "causes"},
			{Source: "n2", Target: "n3", Relation: "handled_by"},
		},
	})
}

func TestUpsertBatch_CreatesNodesAndEdges(t *testing.T) {
	s := NewGraphMemStorage()

	res, err := s.UpsertBatch(context.Background(), mockBatch(), "test")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// n1 and n4 share the ("battery explosion", "event") key, so they
	// collapse into one row: 3 distinct nodes.
	if res.NodesUpserted != 3 {
		t.Fatalf("expected 3 nodes upserted, got %d", res.NodesUpserted)
	}
	if res.EdgesUpserted != 2 {
		t.Fatalf("expected 2 edges upserted, got %d", res.EdgesUpserted)
	}
	if s.NodeCount() != 3 {
		t.Fatalf("expected 3 stored nodes, got %d", s.NodeCount())
	}
	if s.EdgeCount() != 2 {
		t.Fatalf("expected 2 stored edges, got %d", s.EdgeCount())
	}
}

func TestUpsertBatch_Idempotent(t *testing.T) {
	s := NewGraphMemStorage()
	ctx := context.Background()

	first, err := s.UpsertBatch(ctx, mockBatch(), "test")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	second, err := s.UpsertBatch(ctx, mockBatch(), "test")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if first.NodesUpserted != second.NodesUpserted {
		t.Fatalf("expected equal counts on repeat ingest, got %d then %d", first.NodesUpserted, second.NodesUpserted)
	}
	if s.NodeCount() != 3 {
		t.Fatalf("expected node count to stay at 3, got %d", s.NodeCount())
	}
	if s.EdgeCount() != 2 {
		t.Fatalf("expected edge count to stay at 2, got %d", s.EdgeCount())
	}
}

func TestUpsertBatch_CaseInsensitiveDedup(t *testing.T) {
	s := NewGraphMemStorage()

	batch := ontology.Normalize(&ontology.RawOntology{
		Nodes: []ontology.RawNode{
			{ID: "a", Label: "Data Breach", Type: "event", Severity: float64(8)},
			{ID: "b", Label: "data breach", Type: "event", Severity: float64(6)},
			{ID: "c", Label: "  DATA BREACH  ", Type: "event", Severity: float64(5)},
		},
	})

	res, err := s.UpsertBatch(context.Background(), batch, "test")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.NodesUpserted != 1 {
		t.Fatalf("expected 1 node upserted, got %d", res.NodesUpserted)
	}
	if s.NodeCount() != 1 {
		t.Fatalf("expected 1 stored node, got %d", s.NodeCount())
	}

	// Last writer in iteration order wins
	for _, row := range s.nodes {
		if row.severity != 5.0 {
			t.Fatalf("expected severity 5.0, got %f", row.severity)
		}
		if row.normalized != "data breach" {
			t.Fatalf("expected normalized name 'data breach', got %q", row.normalized)
		}
	}
}

func TestUpsertBatch_LastWriterWinsAcrossCalls(t *testing.T) {
	s := NewGraphMemStorage()
	ctx := context.Background()

	if _, err := s.UpsertBatch(ctx, mockBatch(), "first"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	updated := ontology.Normalize(&ontology.RawOntology{
		Nodes: []ontology.RawNode{
			{ID: "n1", Label: "Battery Explosion", Type: "event", Severity: float64(10)},
		},
	})
	if _, err := s.UpsertBatch(ctx, updated, "second"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	id, ok := s.nodesByKey[nodeKey{normalizedName: "battery explosion", nodeType: "event"}]
	if !ok {
		t.Fatal("expected battery explosion node to exist")
	}
	row := s.nodes[id]
	if row.severity != 10.0 {
		t.Fatalf("expected severity 10.0, got %f", row.severity)
	}
	if row.source != "second" {
		t.Fatalf("expected source 'second', got %q", row.source)
	}
	if s.NodeCount() != 3 {
		t.Fatalf("expected node count to stay at 3, got %d", s.NodeCount())
	}
}

func TestUpsertBatch_DanglingEdgeSkipped(t *testing.T) {
	s := NewGraphMemStorage()

	batch := ontology.Normalize(&ontology.RawOntology{
		Nodes: []ontology.RawNode{
			{ID: "a", Label: "Only Node", Type: "event", Severity: float64(5)},
		},
		Links: []ontology.RawEdge{
			{Source: "a", Target: "missing", Relation: "causes"},
		},
	})

	res, err := s.UpsertBatch(context.Background(), batch, "test")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.NodesUpserted != 1 {
		t.Fatalf("expected 1 node upserted, got %d", res.NodesUpserted)
	}
	if res.EdgesUpserted != 0 {
		t.Fatalf("expected 0 edges upserted, got %d", res.EdgesUpserted)
	}
	if s.EdgeCount() != 0 {
		t.Fatalf("expected no stored edges, got %d", s.EdgeCount())
	}
}

func TestUpsertBatch_EmptyBatch(t *testing.T) {
	s := NewGraphMemStorage()

	res, err := s.UpsertBatch(context.Background(), &ontology.Batch{}, "test")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.NodesUpserted != 0 || res.EdgesUpserted != 0 {
		t.Fatalf("expected zero result, got %+v", res)
	}
	if s.NodeCount() != 0 {
		t.Fatalf("expected no stored nodes, got %d", s.NodeCount())
	}
}

func TestUpsertBatch_TimestampsWithinWindow(t *testing.T) {
	s := NewGraphMemStorage()

	before := time.Now().UTC()
	if _, err := s.UpsertBatch(context.Background(), mockBatch(), "test"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	after := time.Now().UTC()

	for _, row := range s.nodes {
		if row.createdAt.Before(before) || row.createdAt.After(after) {
			t.Fatalf("created_at %v outside window [%v, %v]", row.createdAt, before, after)
		}
		if row.lastSeenAt.Before(before) || row.lastSeenAt.After(after) {
			t.Fatalf("last_seen_at %v outside window [%v, %v]", row.lastSeenAt, before, after)
		}
	}
}

func TestQueryGraph_SeverityFilterAndInducedEdges(t *testing.T) {
	s := NewGraphMemStorage()
	ctx := context.Background()

	batch := ontology.Normalize(&ontology.RawOntology{
		Nodes: []ontology.RawNode{
			{ID: "low", Label: "Low", Type: "event", Severity: float64(3)},
			{ID: "mid", Label: "Mid", Type: "event", Severity: float64(6)},
			{ID: "high", Label: "High", Type: "event", Severity: float64(9)},
		},
		Links: []ontology.RawEdge{
			{Source: "high", Target: "mid", Relation: "causes"},
			{Source: "high", Target: "low", Relation: "causes"},
		},
	})
	if _, err := s.UpsertBatch(ctx, batch, "test"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	view, err := s.QueryGraph(ctx, store.GraphFilter{MinSeverity: 5})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if len(view.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(view.Nodes))
	}
	if view.Nodes[0].Severity != 9 || view.Nodes[1].Severity != 6 {
		t.Fatalf("expected severity-descending order, got %f then %f", view.Nodes[0].Severity, view.Nodes[1].Severity)
	}

	// The high->low edge must not appear, its target was filtered out
	if len(view.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(view.Edges))
	}
	if view.Edges[0].Relation != "causes" || view.Edges[0].Source != view.Nodes[0].ID {
		t.Fatalf("unexpected edge: %+v", view.Edges[0])
	}
}

func TestQueryGraph_LimitTruncates(t *testing.T) {
	s := NewGraphMemStorage()
	ctx := context.Background()

	batch := ontology.Normalize(&ontology.RawOntology{
		Nodes: []ontology.RawNode{
			{ID: "a", Label: "A", Type: "event", Severity: float64(1)},
			{ID: "b", Label: "B", Type: "event", Severity: float64(2)},
			{ID: "c", Label: "C", Type: "event", Severity: float64(3)},
		},
	})
	if _, err := s.UpsertBatch(ctx, batch, "test"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	view, err := s.QueryGraph(ctx, store.GraphFilter{Limit: 2})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(view.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(view.Nodes))
	}
	if view.Nodes[0].Label != "C" {
		t.Fatalf("expected highest severity first, got %q", view.Nodes[0].Label)
	}
}

func TestQueryGraph_SinceFilter(t *testing.T) {
	s := NewGraphMemStorage()
	ctx := context.Background()

	if _, err := s.UpsertBatch(ctx, mockBatch(), "test"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	past := time.Now().UTC().Add(-time.Hour)
	view, err := s.QueryGraph(ctx, store.GraphFilter{Since: &past})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(view.Nodes) != 3 {
		t.Fatalf("expected all 3 nodes for past cutoff, got %d", len(view.Nodes))
	}

	future := time.Now().UTC().Add(time.Hour)
	view, err = s.QueryGraph(ctx, store.GraphFilter{Since: &future})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(view.Nodes) != 0 {
		t.Fatalf("expected no nodes for future cutoff, got %d", len(view.Nodes))
	}
	if len(view.Edges) != 0 {
		t.Fatalf("expected no edges for future cutoff, got %d", len(view.Edges))
	}
}

func TestQueryGraph_EmptyStore(t *testing.T) {
	s := NewGraphMemStorage()

	view, err := s.QueryGraph(context.Background(), store.GraphFilter{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if view.Nodes == nil || view.Edges == nil {
		t.Fatal("expected empty (non-nil) node and edge lists")
	}
	if len(view.Nodes) != 0 || len(view.Edges) != 0 {
		t.Fatalf("expected empty view, got %d nodes, %d edges", len(view.Nodes), len(view.Edges))
	}
}

func TestDeleteNode_CascadesToEdges(t *testing.T) {
	s := NewGraphMemStorage()
	ctx := context.Background()

	if _, err := s.UpsertBatch(ctx, mockBatch(), "test"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	// Product Recall sits between both edges; deleting it removes both.
	id, ok := s.nodesByKey[nodeKey{normalizedName: "product recall", nodeType: "impact"}]
	if !ok {
		t.Fatal("expected product recall node to exist")
	}

	deleted, err := s.DeleteNode(ctx, id)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to report true")
	}
	if s.NodeCount() != 2 {
		t.Fatalf("expected 2 remaining nodes, got %d", s.NodeCount())
	}
	if s.EdgeCount() != 0 {
		t.Fatalf("expected incident edges removed, got %d", s.EdgeCount())
	}
}

func TestDeleteNode_Missing(t *testing.T) {
	s := NewGraphMemStorage()

	deleted, err := s.DeleteNode(context.Background(), 404)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if deleted {
		t.Fatal("expected delete of missing node to report false")
	}
}
