package routes

import (
	"net/http"

	"github.com/ontoreview/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func DeleteNodeHandler(c echo.Context) error {
	type deleteNodeParams struct {
		NodeID int64 `param:"id" validate:"required,numeric"`
	}

	type deleteNodeResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteNodeParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteNodeResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteNodeResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	storage := c.(*middleware.AppContext).App.Store

	deleted, err := storage.DeleteNode(ctx, params.NodeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, deleteNodeResponse{
			Message: "Internal server error",
		})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, deleteNodeResponse{
			Message: "Node not found",
		})
	}

	return c.JSON(http.StatusOK, deleteNodeResponse{
		Message: "Node deleted",
	})
}
