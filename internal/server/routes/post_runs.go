package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/polderlab/actornet/internal/queue"
	"github.com/polderlab/actornet/internal/server/middleware"
)

func CreateRunHandler(c echo.Context) error {
	type createRunRequest struct {
		DocumentsKey          string   `json:"documents_key" validate:"required"`
		OrganizationsKey      string   `json:"organizations_key" validate:"required"`
		SurnamesKey           string   `json:"surnames_key" validate:"required"`
		TaggerModel           string   `json:"tagger_model"`
		OrganizationBlocklist []string `json:"organization_blocklist"`
	}

	var req createRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	runID, err := gonanoid.New()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if _, err := app.DBConn.Exec(ctx, `
		INSERT INTO runs (id, status) VALUES ($1, 'pending')
	`, runID); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	msg := queue.RunJobMsg{
		RunID:                 runID,
		DocumentsKey:          req.DocumentsKey,
		OrganizationsKey:      req.OrganizationsKey,
		SurnamesKey:           req.SurnamesKey,
		TaggerModel:           req.TaggerModel,
		OrganizationBlocklist: req.OrganizationBlocklist,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if err := queue.PublishFIFO(app.Queue, queue.RunQueue, msgBytes); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"run_id": runID,
		"status": "pending",
	})
}
