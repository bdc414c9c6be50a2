package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polderlab/actornet/internal/server/middleware"
	"github.com/polderlab/actornet/pkg/corpus"
)

func GetParagraphsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	runID := c.Param("id")

	paragraphs, err := app.Storage.GetParagraphs(ctx, runID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, paragraphs)
}

func GetEdgesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	runID := c.Param("id")

	kind, ok := edgeKind(c.Param("kind"))
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Unknown edge kind, expected 'actors' or 'organizations'",
		})
	}

	edges, err := app.Storage.GetEdges(ctx, runID, kind)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, edges)
}

func edgeKind(param string) (corpus.MentionKind, bool) {
	switch param {
	case "actors":
		return corpus.MentionPerson, true
	case "organizations":
		return corpus.MentionOrganization, true
	}
	return "", false
}
