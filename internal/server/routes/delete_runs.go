package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polderlab/actornet/internal/server/middleware"
)

func DeleteRunHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	runID := c.Param("id")

	if err := app.Storage.DeleteRun(ctx, runID); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
