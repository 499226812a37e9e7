package routes

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ontoreview/backend/internal/queue"
	"github.com/ontoreview/backend/internal/server/middleware"
	"github.com/ontoreview/backend/pkg/graph"
	"github.com/ontoreview/backend/pkg/logger"
	"github.com/ontoreview/backend/pkg/ontology"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/labstack/echo/v4"
)

// IngestOntologyHandler accepts an extraction payload and merges it into the
// graph. With ?async=true the payload is queued and 202 returned; otherwise
// the upsert runs inline and the counts are returned.
func IngestOntologyHandler(c echo.Context) error {
	type ingestResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{
			Message: "Failed to read request body",
		})
	}

	raw, err := ontology.ParsePayload(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{
			Message: "Payload is not a parseable ontology",
		})
	}

	source := c.QueryParam("source")
	if source == "" {
		source = graph.DefaultSource
	}

	if c.QueryParam("async") == "true" {
		correlationID, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, ingestResponse{
				Message: "Internal server error",
			})
		}

		msg := queue.IngestJsonMsg{
			CorrelationID: correlationID,
			Source:        source,
			Ontology:      body,
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, ingestResponse{
				Message: "Internal server error",
			})
		}

		ch := c.(*middleware.AppContext).App.Queue
		if err := queue.PublishFIFO(ch, queue.IngestQueue, data); err != nil {
			logger.Error("[Server] Failed to queue ontology ingest", "err", err)
			return c.JSON(http.StatusInternalServerError, ingestResponse{
				Message: "Failed to queue ingestion",
			})
		}

		return c.JSON(http.StatusAccepted, ingestResponse{
			Message:       "Ontology ingestion queued",
			CorrelationID: correlationID,
		})
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Store

	res := graph.PersistOntology(ctx, storage, raw, source)
	return c.JSON(http.StatusOK, res)
}
