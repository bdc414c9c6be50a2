package server

import (
	"github.com/labstack/echo/v4"

	"github.com/polderlab/actornet/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Run routes
	apiRoutes.GET("/runs", routes.GetRunsHandler)
	apiRoutes.POST("/runs", routes.CreateRunHandler)
	apiRoutes.GET("/runs/:id", routes.GetRunHandler)
	apiRoutes.DELETE("/runs/:id", routes.DeleteRunHandler)

	// Result routes
	apiRoutes.GET("/runs/:id/paragraphs", routes.GetParagraphsHandler)
	apiRoutes.GET("/runs/:id/edges/:kind", routes.GetEdgesHandler)
	apiRoutes.GET("/runs/:id/exports", routes.GetExportsHandler)
	apiRoutes.POST("/runs/:id/search", routes.SearchParagraphsHandler)
}
