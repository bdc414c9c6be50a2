package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polderlab/actornet/internal/server/middleware"
)

func SearchParagraphsHandler(c echo.Context) error {
	type searchRequest struct {
		Query string `json:"query" validate:"required"`
		Limit int    `json:"limit"`
	}

	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	runID := c.Param("id")

	embedding, err := app.Embedder.GenerateEmbedding(ctx, []byte(req.Query))
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	paragraphs, err := app.Storage.SearchParagraphs(ctx, runID, embedding, req.Limit)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, paragraphs)
}
