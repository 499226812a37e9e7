// Package graph is the ingestion engine for extraction batches. It owns the
// error contract of the ingestion path: persistence is best-effort enrichment
// and must never fail the pipeline that produced the extraction, so every
// failure mode degrades to a zero-count result.
package graph

import (
	"context"

	"github.com/ontoreview/backend/pkg/logger"
	"github.com/ontoreview/backend/pkg/ontology"
	"github.com/ontoreview/backend/pkg/store"
)

// DefaultSource labels rows whose ingestion run did not name itself.
const DefaultSource = "risk_intelligence"

// PersistOntology normalizes a raw extraction payload and merges it into the
// persisted graph. Returns the counts of distinct rows touched.
//
// The storage handle is owned by the caller. A nil handle, an empty batch, or
// a failed transaction all yield a zero result rather than an error; store
// failures are logged with context and the batch is rolled back by the store.
func PersistOntology(
	ctx context.Context,
	storage store.GraphStorage,
	raw *ontology.RawOntology,
	source string,
) store.UpsertResult {
	if storage == nil {
		logger.Warn("[Graph] Persist skipped: storage handle not provided")
		return store.UpsertResult{}
	}
	if source == "" {
		source = DefaultSource
	}

	batch := ontology.Normalize(raw)
	if len(batch.Nodes) == 0 {
		return store.UpsertResult{}
	}

	res, err := storage.UpsertBatch(ctx, batch, source)
	if err != nil {
		logger.Error("[Graph] Failed to persist ontology", "source", source, "err", err)
		return store.UpsertResult{}
	}

	logger.Info("[Graph] Ontology persisted",
		"nodes", res.NodesUpserted, "edges", res.EdgesUpserted, "source", source)
	return res
}
