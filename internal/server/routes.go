package server

import (
	"github.com/ontoreview/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Graph routes
	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.POST("/graph/ontology", routes.IngestOntologyHandler)
	apiRoutes.DELETE("/graph/nodes/:id", routes.DeleteNodeHandler)
}
