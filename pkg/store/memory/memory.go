// Package memory provides an in-process GraphStorage with the same observable
// semantics as the PostgreSQL implementation. It backs tests and environments
// without a database; a mutex stands in for transaction isolation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ontoreview/backend/pkg/common"
	"github.com/ontoreview/backend/pkg/ontology"
	"github.com/ontoreview/backend/pkg/store"
)

type nodeKey struct {
	normalizedName string
	nodeType       string
}

type edgeKey struct {
	sourceID int64
	targetID int64
	relation string
}

type nodeRow struct {
	id         int64
	name       string
	normalized string
	nodeType   string
	severity   float64
	source     string
	createdAt  time.Time
	lastSeenAt time.Time
}

type edgeRow struct {
	id         int64
	sourceID   int64
	targetID   int64
	relation   string
	weight     float64
	source     string
	createdAt  time.Time
	lastSeenAt time.Time
}

// GraphMemStorage implements store.GraphStorage in process memory.
type GraphMemStorage struct {
	mu         sync.Mutex
	nextNodeID int64
	nextEdgeID int64
	nodes      map[int64]*nodeRow
	nodesByKey map[nodeKey]int64
	edges      map[int64]*edgeRow
	edgesByKey map[edgeKey]int64
}

// NewGraphMemStorage creates an empty in-memory graph store.
func NewGraphMemStorage() *GraphMemStorage {
	return &GraphMemStorage{
		nodes:      make(map[int64]*nodeRow),
		nodesByKey: make(map[nodeKey]int64),
		edges:      make(map[int64]*edgeRow),
		edgesByKey: make(map[edgeKey]int64),
	}
}

// UpsertBatch merges one normalized batch under the store mutex. Nodes first,
// building the temp-id map, then edges against resolved ids; dangling edges
// are skipped.
func (s *GraphMemStorage) UpsertBatch(
	ctx context.Context,
	batch *ontology.Batch,
	source string,
) (store.UpsertResult, error) {
	if batch == nil || len(batch.Nodes) == 0 {
		return store.UpsertResult{}, nil
	}
	if err := ctx.Err(); err != nil {
		return store.UpsertResult{}, err
	}

	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	tempToDB := make(map[string]int64, len(batch.Nodes))
	for _, n := range batch.Nodes {
		key := nodeKey{normalizedName: n.NormalizedName, nodeType: n.Type}
		if id, ok := s.nodesByKey[key]; ok {
			row := s.nodes[id]
			row.name = n.Name
			row.severity = n.Severity
			row.source = source
			row.lastSeenAt = now
			tempToDB[n.TempID] = id
			continue
		}

		s.nextNodeID++
		id := s.nextNodeID
		s.nodes[id] = &nodeRow{
			id:         id,
			name:       n.Name,
			normalized: n.NormalizedName,
			nodeType:   n.Type,
			severity:   n.Severity,
			source:     source,
			createdAt:  now,
			lastSeenAt: now,
		}
		s.nodesByKey[key] = id
		tempToDB[n.TempID] = id
	}

	edgesUpserted := 0
	for _, e := range batch.Edges {
		srcID, srcOK := tempToDB[e.SourceTempID]
		tgtID, tgtOK := tempToDB[e.TargetTempID]
		if !srcOK || !tgtOK {
			continue
		}

		key := edgeKey{sourceID: srcID, targetID: tgtID, relation: e.Relation}
		if id, ok := s.edgesByKey[key]; ok {
			row := s.edges[id]
			row.weight = e.Weight
			row.source = source
			row.lastSeenAt = now
		} else {
			s.nextEdgeID++
			id := s.nextEdgeID
			s.edges[id] = &edgeRow{
				id:         id,
				sourceID:   srcID,
				targetID:   tgtID,
				relation:   e.Relation,
				weight:     e.Weight,
				source:     source,
				createdAt:  now,
				lastSeenAt: now,
			}
			s.edgesByKey[key] = id
		}
		edgesUpserted++
	}

	return store.UpsertResult{
		NodesUpserted: store.CountDistinct(tempToDB),
		EdgesUpserted: edgesUpserted,
	}, nil
}

// QueryGraph returns the filtered view: nodes by severity and recency,
// severity descending with id ascending tie-break, truncated to the clamped
// limit; edges only within the surviving node set.
func (s *GraphMemStorage) QueryGraph(
	ctx context.Context,
	filter store.GraphFilter,
) (*common.GraphView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := store.ClampLimit(filter.Limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*nodeRow, 0, len(s.nodes))
	for _, row := range s.nodes {
		if row.severity < filter.MinSeverity {
			continue
		}
		if filter.Since != nil && row.lastSeenAt.Before(*filter.Since) {
			continue
		}
		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].severity != matched[j].severity {
			return matched[i].severity > matched[j].severity
		}
		return matched[i].id < matched[j].id
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	view := &common.GraphView{
		Nodes: make([]common.GraphNode, 0, len(matched)),
		Edges: make([]common.GraphEdge, 0),
	}

	present := make(map[int64]struct{}, len(matched))
	for _, row := range matched {
		present[row.id] = struct{}{}
		view.Nodes = append(view.Nodes, common.GraphNode{
			ID:       row.id,
			Label:    row.name,
			Type:     row.nodeType,
			Severity: row.severity,
		})
	}

	edgeIDs := make([]int64, 0, len(s.edges))
	for id := range s.edges {
		edgeIDs = append(edgeIDs, id)
	}
	sort.Slice(edgeIDs, func(i, j int) bool { return edgeIDs[i] < edgeIDs[j] })

	for _, id := range edgeIDs {
		row := s.edges[id]
		if _, ok := present[row.sourceID]; !ok {
			continue
		}
		if _, ok := present[row.targetID]; !ok {
			continue
		}
		view.Edges = append(view.Edges, common.GraphEdge{
			ID:       row.id,
			Source:   row.sourceID,
			Target:   row.targetID,
			Relation: row.relation,
			Weight:   row.weight,
		})
	}

	return view, nil
}

// DeleteNode removes a node and its incident edges, the explicit two-step
// equivalent of the SQL foreign-key cascade.
func (s *GraphMemStorage) DeleteNode(ctx context.Context, nodeID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.nodes[nodeID]
	if !ok {
		return false, nil
	}

	for id, e := range s.edges {
		if e.sourceID != nodeID && e.targetID != nodeID {
			continue
		}
		delete(s.edgesByKey, edgeKey{sourceID: e.sourceID, targetID: e.targetID, relation: e.relation})
		delete(s.edges, id)
	}

	delete(s.nodesByKey, nodeKey{normalizedName: row.normalized, nodeType: row.nodeType})
	delete(s.nodes, nodeID)

	return true, nil
}

// NodeCount reports the number of persisted nodes. Test helper.
func (s *GraphMemStorage) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// EdgeCount reports the number of persisted edges. Test helper.
func (s *GraphMemStorage) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}
