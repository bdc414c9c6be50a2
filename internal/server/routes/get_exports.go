package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polderlab/actornet/internal/server/middleware"
	"github.com/polderlab/actornet/internal/storage"
)

// GetExportsHandler lists the CSV export objects the worker uploaded for
// a run, so the dashboard can discover them without guessing keys.
func GetExportsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	runID := c.Param("id")

	keys, err := storage.ListFilesWithPrefix(ctx, app.S3, storage.ExportPrefix(runID))
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"run_id": runID,
		"files":  keys,
	})
}
