package routes

import (
	"net/http"
	"time"

	"github.com/ontoreview/backend/internal/server/middleware"
	"github.com/ontoreview/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetGraphHandler serves the filtered graph view. Timestamps must be RFC 3339
// with an explicit offset; a naive timestamp is rejected instead of being
// guessed into a zone.
func GetGraphHandler(c echo.Context) error {
	type getGraphParams struct {
		Limit       int     `query:"limit" validate:"omitempty,gte=1,lte=5000"`
		MinSeverity float64 `query:"min_severity" validate:"omitempty,gte=0"`
		Since       string  `query:"since"`
	}

	params := new(getGraphParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	filter := store.GraphFilter{
		Limit:       params.Limit,
		MinSeverity: params.MinSeverity,
	}

	if params.Since != "" {
		since, err := time.Parse(time.RFC3339, params.Since)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid 'since' timestamp, expected RFC 3339 with timezone offset",
			})
		}
		filter.Since = &since
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Store

	view, err := storage.QueryGraph(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, view)
}
