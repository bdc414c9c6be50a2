package routes

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/polderlab/actornet/internal/server/middleware"
)

type runInfo struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	DurationMs *int64    `json:"duration_ms,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func GetRunsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	rows, err := app.DBConn.Query(ctx, `
		SELECT id, status, duration_ms, created_at, updated_at
		FROM runs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	defer rows.Close()

	runs := []runInfo{}
	for rows.Next() {
		var run runInfo
		if err := rows.Scan(&run.RunID, &run.Status, &run.DurationMs, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, runs)
}

func GetRunHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	runID := c.Param("id")

	var run runInfo
	err := app.DBConn.QueryRow(ctx, `
		SELECT id, status, duration_ms, created_at, updated_at
		FROM runs
		WHERE id = $1
	`, runID).Scan(&run.RunID, &run.Status, &run.DurationMs, &run.CreatedAt, &run.UpdatedAt)
	if err == pgx.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Run not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, run)
}
