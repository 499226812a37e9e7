package queue

import (
	"context"
	"encoding/json"

	"github.com/ontoreview/backend/internal/util"
	"github.com/ontoreview/backend/pkg/graph"
	"github.com/ontoreview/backend/pkg/logger"
	"github.com/ontoreview/backend/pkg/ontology"
	"github.com/ontoreview/backend/pkg/store"
	pgxstore "github.com/ontoreview/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IngestJsonMsg is the wire format of async ingestion requests.
type IngestJsonMsg struct {
	CorrelationID string          `json:"correlation_id"`
	Source        string          `json:"source"`
	Ontology      json.RawMessage `json:"ontology"`
}

// ProcessIngestMessage persists one queued extraction batch. Malformed
// payloads are logged and acked since a redelivery cannot fix them; store
// failures propagate so the worker can retry or dead-letter the message.
func ProcessIngestMessage(
	ctx context.Context,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(IngestJsonMsg)
	err := json.Unmarshal([]byte(msg), &data)
	if err != nil {
		return err
	}

	raw, err := ontology.ParsePayload(data.Ontology)
	if err != nil {
		logger.Warn("[Queue] Dropping unparseable ontology payload",
			"correlation_id", data.CorrelationID, "err", err)
		return nil
	}

	source := data.Source
	if source == "" {
		source = graph.DefaultSource
	}

	batch := ontology.Normalize(raw)
	if len(batch.Nodes) == 0 {
		logger.Info("[Queue] Ontology payload contained no usable nodes",
			"correlation_id", data.CorrelationID)
		return nil
	}

	storageClient := pgxstore.NewGraphDBStorageWithConnection(conn)
	res, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) (store.UpsertResult, error) {
		return storageClient.UpsertBatch(ctx, batch, source)
	})
	if err != nil {
		return err
	}

	logger.Info("[Queue] Ontology persisted",
		"correlation_id", data.CorrelationID,
		"nodes", res.NodesUpserted,
		"edges", res.EdgesUpserted,
		"source", source,
	)
	return nil
}
