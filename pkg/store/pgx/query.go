package pgx

import (
	"context"
	"fmt"

	"github.com/ontoreview/backend/pkg/common"
	"github.com/ontoreview/backend/pkg/store"
)

const selectNodesSQL = `
SELECT id, name, type, severity_score
FROM nodes
WHERE severity_score >= $1
  AND ($2::timestamptz IS NULL OR last_seen_at >= $2)
ORDER BY severity_score DESC, id ASC
LIMIT $3`

const selectEdgesSQL = `
SELECT id, source_node_id, target_node_id, relationship_type, weight
FROM edges
WHERE source_node_id = ANY($1) AND target_node_id = ANY($1)`

// QueryGraph returns a bounded, filtered view of the graph. Edges are
// restricted to the induced subgraph: a relation appears only when both its
// endpoints survived the node filter.
func (s *GraphDBStorage) QueryGraph(
	ctx context.Context,
	filter store.GraphFilter,
) (*common.GraphView, error) {
	limit := store.ClampLimit(filter.Limit)

	rows, err := s.conn.Query(ctx, selectNodesSQL, filter.MinSeverity, filter.Since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	view := &common.GraphView{
		Nodes: make([]common.GraphNode, 0),
		Edges: make([]common.GraphEdge, 0),
	}

	nodeIDs := make([]int64, 0)
	for rows.Next() {
		var n common.GraphNode
		if err := rows.Scan(&n.ID, &n.Label, &n.Type, &n.Severity); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		view.Nodes = append(view.Nodes, n)
		nodeIDs = append(nodeIDs, n.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}
	rows.Close()

	if len(nodeIDs) == 0 {
		return view, nil
	}

	edgeRows, err := s.conn.Query(ctx, selectEdgesSQL, nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e common.GraphEdge
		if err := edgeRows.Scan(&e.ID, &e.Source, &e.Target, &e.Relation, &e.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		view.Edges = append(view.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edges: %w", err)
	}

	return view, nil
}
