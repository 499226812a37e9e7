package store

import (
	"context"
	"time"

	"github.com/ontoreview/backend/pkg/common"
	"github.com/ontoreview/backend/pkg/ontology"
)

// Query bounds for graph views. Callers may ask for anything; the store
// clamps to this range.
const (
	DefaultGraphLimit = 500
	MaxGraphLimit     = 5000
)

// UpsertResult reports how many distinct persisted rows a batch touched.
// Duplicate temp ids that resolve to the same node count once.
type UpsertResult struct {
	NodesUpserted int `json:"nodes_upserted"`
	EdgesUpserted int `json:"edges_upserted"`
}

// GraphFilter bounds a graph view query. Since, when set, must be an explicit
// timezone-qualified instant; validation happens at the transport boundary
// before the store is reached.
type GraphFilter struct {
	Limit       int
	MinSeverity float64
	Since       *time.Time
}

// GraphStorage defines the interface for persisting and querying the risk
// ontology graph. UpsertBatch merges one normalized extraction batch
// atomically: nodes first (conditional write on the (normalized_name, type)
// key, resolving temp ids to persisted ids inside the same transaction), then
// edges (conditional write on the (source, target, relationship_type) key,
// silently skipping edges with unresolved endpoints). A failed batch is
// rolled back entirely.
type GraphStorage interface {
	UpsertBatch(ctx context.Context, batch *ontology.Batch, source string) (UpsertResult, error)

	QueryGraph(ctx context.Context, filter GraphFilter) (*common.GraphView, error)

	// DeleteNode removes a node and all incident edges in one transaction.
	// Returns false when no node with the given id exists.
	DeleteNode(ctx context.Context, nodeID int64) (bool, error)
}
