package pgx

import (
	"context"
	"fmt"
	"time"

	"github.com/ontoreview/backend/pkg/logger"
	"github.com/ontoreview/backend/pkg/ontology"
	"github.com/ontoreview/backend/pkg/store"
)

const upsertNodeSQL = `
INSERT INTO nodes (name, normalized_name, type, severity_score, source, created_at, last_seen_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (normalized_name, type) DO UPDATE SET
    severity_score = EXCLUDED.severity_score,
    source = EXCLUDED.source,
    last_seen_at = EXCLUDED.last_seen_at
RETURNING id`

const upsertEdgeSQL = `
INSERT INTO edges (source_node_id, target_node_id, relationship_type, weight, source, created_at, last_seen_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (source_node_id, target_node_id, relationship_type) DO UPDATE SET
    weight = EXCLUDED.weight,
    source = EXCLUDED.source,
    last_seen_at = EXCLUDED.last_seen_at`

// UpsertBatch merges one normalized extraction batch into the persisted graph
// inside a single transaction. Nodes are written first; the RETURNING id of
// each conditional write builds the temp-id → persisted-id map that edge
// resolution depends on, so the map is always consistent with what this
// transaction can see. Edges with an unresolved endpoint are skipped, not an
// error.
func (s *GraphDBStorage) UpsertBatch(
	ctx context.Context,
	batch *ontology.Batch,
	source string,
) (store.UpsertResult, error) {
	if batch == nil || len(batch.Nodes) == 0 {
		return store.UpsertResult{}, nil
	}

	now := time.Now().UTC()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tempToDB := make(map[string]int64, len(batch.Nodes))
	for _, n := range batch.Nodes {
		var id int64
		err := tx.QueryRow(
			ctx,
			upsertNodeSQL,
			n.Name,
			n.NormalizedName,
			n.Type,
			n.Severity,
			source,
			now,
		).Scan(&id)
		if err != nil {
			return store.UpsertResult{}, fmt.Errorf("failed to upsert node %q: %w", n.Name, err)
		}
		tempToDB[n.TempID] = id
	}

	edgesUpserted := 0
	for _, e := range batch.Edges {
		srcID, srcOK := tempToDB[e.SourceTempID]
		tgtID, tgtOK := tempToDB[e.TargetTempID]
		if !srcOK || !tgtOK {
			logger.Debug("[Graph] Skipping edge with unresolved endpoint",
				"source", e.SourceTempID, "target", e.TargetTempID)
			continue
		}

		_, err := tx.Exec(
			ctx,
			upsertEdgeSQL,
			srcID,
			tgtID,
			e.Relation,
			e.Weight,
			source,
			now,
		)
		if err != nil {
			return store.UpsertResult{}, fmt.Errorf("failed to upsert edge %s->%s: %w", e.SourceTempID, e.TargetTempID, err)
		}
		edgesUpserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return store.UpsertResult{}, fmt.Errorf("failed to commit batch: %w", err)
	}

	return store.UpsertResult{
		NodesUpserted: store.CountDistinct(tempToDB),
		EdgesUpserted: edgesUpserted,
	}, nil
}
