package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/mdgraph/backend/internal/metrics"
	"github.com/mdgraph/backend/internal/middleware/validation"
	"github.com/mdgraph/backend/pkg/logger"
)

type RouteConfig struct {
	MetricsPath string
}

// RegisterRoutes mounts the graph API. ws may be nil; MetricsPath "" leaves
// /metrics unmounted.
func RegisterRoutes(app *fiber.App, graph *GraphHandler, ws *WebSocketHandler, cfg RouteConfig) {
	api := app.Group("/api/v1")

	api.Get("/health", graph.Health)
	api.Get("/documents", graph.ListDocuments)
	api.Get("/articles", graph.ListArticles)

	api.Get("/graph", graph.GetCorpusGraph)
	api.Get("/graph/document", validation.DocumentPath(validation.Config{
		Param:  "path",
		Logger: logger.GetLogger(),
	}), graph.GetDocumentGraph)
	api.Get("/graph/documents", graph.GetDocumentGraphs)
	api.Get("/graph/runs", graph.ListRuns)
	api.Post("/graph/export", graph.Export)

	if ws != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/graph", websocket.New(ws.HandleConnection))
	}

	if cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, metrics.MetricsHandler())
	}
}
