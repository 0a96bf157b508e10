package handlers

import (
	"context"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mdgraph/backend/internal/kg/builder"
	"github.com/mdgraph/backend/internal/kg/neo4j"
	"github.com/mdgraph/backend/internal/knowledge"
	"github.com/mdgraph/backend/internal/metrics"
	"github.com/mdgraph/backend/internal/middleware/validation"
	"github.com/mdgraph/backend/internal/storage/models"
	"github.com/mdgraph/backend/pkg/logger"
)

// RunStore lists and records build history.
type RunStore interface {
	ListBuildRuns(limit int) ([]models.BuildRun, error)
	InsertExportRecord(record *models.ExportRecord) error
}

// Exporter pushes a graph to an external graph database.
type Exporter interface {
	Export(ctx context.Context, g *builder.Graph) (*neo4j.ExportResult, error)
}

type GraphHandler struct {
	service  *knowledge.Service
	root     string
	runs     RunStore
	exporter Exporter
}

// NewGraphHandler serves the corpus at root. runs and exporter may be nil
// when SQLite or Neo4j are disabled.
func NewGraphHandler(service *knowledge.Service, root string, runs RunStore, exporter Exporter) *GraphHandler {
	return &GraphHandler{
		service:  service,
		root:     root,
		runs:     runs,
		exporter: exporter,
	}
}

func (h *GraphHandler) GetCorpusGraph(c *fiber.Ctx) error {
	result, err := h.service.BuildCorpusGraph(c.UserContext(), h.root)
	if err != nil {
		logger.Error("Failed to build corpus graph", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build corpus graph",
		})
	}

	c.Set("X-Graph-Documents", strconv.Itoa(result.Documents))
	c.Set("X-Graph-Failures", strconv.Itoa(len(result.Failures)))

	if c.QueryBool("detail") {
		return c.JSON(result)
	}
	return c.JSON(result.Graph)
}

// GetDocumentGraph expects validation.DocumentPath in front of it.
func (h *GraphHandler) GetDocumentGraph(c *fiber.Ctx) error {
	rel, _ := c.Locals(validation.LocalsKey).(string)
	if rel == "" {
		return c.JSON(builder.EmptyGraph())
	}

	graph, err := h.service.BuildDocumentGraph(c.UserContext(), filepath.Join(h.root, filepath.FromSlash(rel)))
	if err != nil {
		logger.Error("Failed to build document graph", zap.String("path", rel), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build document graph",
		})
	}

	return c.JSON(graph)
}

func (h *GraphHandler) GetDocumentGraphs(c *fiber.Ctx) error {
	graphs, err := h.service.BuildDocumentGraphs(c.UserContext(), h.root)
	if err != nil {
		logger.Error("Failed to build document graphs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build document graphs",
		})
	}

	return c.JSON(graphs)
}

func (h *GraphHandler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.service.ListDocuments(c.UserContext(), h.root)
	if err != nil {
		logger.Error("Failed to list documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list documents",
		})
	}

	return c.JSON(fiber.Map{
		"documents": docs,
		"count":     len(docs),
	})
}

func (h *GraphHandler) ListArticles(c *fiber.Ctx) error {
	articles, err := h.service.ListArticles(c.UserContext(), h.root)
	if err != nil {
		logger.Error("Failed to list articles", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list articles",
		})
	}

	return c.JSON(fiber.Map{
		"articles": articles,
		"count":    len(articles),
	})
}

func (h *GraphHandler) ListRuns(c *fiber.Ctx) error {
	if h.runs == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Build history is disabled",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 500",
		})
	}

	runs, err := h.runs.ListBuildRuns(limit)
	if err != nil {
		logger.Error("Failed to list build runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list build runs",
		})
	}

	return c.JSON(fiber.Map{
		"runs": runs,
	})
}

func (h *GraphHandler) Export(c *fiber.Ctx) error {
	if h.exporter == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Neo4j export is disabled",
		})
	}

	result, err := h.service.BuildCorpusGraph(c.UserContext(), h.root)
	if err != nil {
		logger.Error("Failed to build corpus graph for export", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build corpus graph",
		})
	}

	record := &models.ExportRecord{
		ID:          uuid.New().String(),
		Fingerprint: result.Fingerprint,
		Nodes:       len(result.Graph.Nodes),
		Links:       len(result.Graph.Links),
		Status:      "success",
		CreatedAt:   time.Now(),
	}

	exported, err := h.exporter.Export(c.UserContext(), result.Graph)
	if err != nil {
		record.Status = "error"
		record.Error = err.Error()
	}
	metrics.ExportsTotal.WithLabelValues(record.Status).Inc()

	if h.runs != nil {
		if recErr := h.runs.InsertExportRecord(record); recErr != nil {
			logger.Warn("Failed to record export", zap.Error(recErr))
		}
	}

	if err != nil {
		logger.Error("Failed to export graph", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to export graph",
		})
	}

	return c.JSON(fiber.Map{
		"id":            record.ID,
		"terms":         exported.Terms,
		"relationships": exported.Relationships,
	})
}

func (h *GraphHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"policy": h.service.Policy(),
		"root":   h.root,
	})
}
