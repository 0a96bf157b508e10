package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mdgraph/backend/internal/storage/models"
	"github.com/mdgraph/backend/pkg/logger"
)

const defaultRunLimit = 20

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS build_runs (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		policy TEXT NOT NULL,
		fingerprint TEXT,
		cached INTEGER DEFAULT 0,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		nodes INTEGER NOT NULL,
		links INTEGER NOT NULL,
		failures INTEGER DEFAULT 0,
		failed_paths TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON build_runs(started_at);

	CREATE TABLE IF NOT EXISTS graph_exports (
		id TEXT PRIMARY KEY,
		fingerprint TEXT,
		nodes INTEGER NOT NULL,
		links INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exports_created ON graph_exports(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertBuildRun(run *models.BuildRun) error {
	query := `
		INSERT INTO build_runs (id, root, policy, fingerprint, cached, started_at, duration_ms,
			documents, nodes, links, failures, failed_paths)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	failedPaths, err := json.Marshal(run.FailedPaths)
	if err != nil {
		return fmt.Errorf("failed to marshal failed paths: %w", err)
	}

	cached := 0
	if run.Cached {
		cached = 1
	}

	_, err = c.db.Exec(
		query,
		run.ID,
		run.Root,
		run.Policy,
		run.Fingerprint,
		cached,
		run.StartedAt.UnixMilli(),
		run.DurationMS,
		run.Documents,
		run.Nodes,
		run.Links,
		run.Failures,
		string(failedPaths),
	)
	if err != nil {
		return fmt.Errorf("failed to insert build run: %w", err)
	}

	logger.Debug("Build run recorded",
		zap.String("run_id", run.ID),
		zap.Int("documents", run.Documents),
		zap.Bool("cached", run.Cached),
	)
	return nil
}

// ListBuildRuns returns the most recent runs first.
func (c *Client) ListBuildRuns(limit int) ([]models.BuildRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	query := `
		SELECT id, root, policy, fingerprint, cached, started_at, duration_ms,
			documents, nodes, links, failures, failed_paths
		FROM build_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query build runs: %w", err)
	}
	defer rows.Close()

	runs := []models.BuildRun{}
	for rows.Next() {
		var run models.BuildRun
		var cached int
		var startedAt int64
		var fingerprint, failedPaths sql.NullString

		err := rows.Scan(
			&run.ID,
			&run.Root,
			&run.Policy,
			&fingerprint,
			&cached,
			&startedAt,
			&run.DurationMS,
			&run.Documents,
			&run.Nodes,
			&run.Links,
			&run.Failures,
			&failedPaths,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build run: %w", err)
		}

		run.Fingerprint = fingerprint.String
		run.Cached = cached == 1
		run.StartedAt = time.UnixMilli(startedAt)
		if failedPaths.Valid && failedPaths.String != "" {
			if err := json.Unmarshal([]byte(failedPaths.String), &run.FailedPaths); err != nil {
				logger.Warn("Failed to decode failed paths", zap.String("run_id", run.ID), zap.Error(err))
			}
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate build runs: %w", err)
	}

	return runs, nil
}

func (c *Client) InsertExportRecord(record *models.ExportRecord) error {
	query := `
		INSERT INTO graph_exports (id, fingerprint, nodes, links, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.Fingerprint,
		record.Nodes,
		record.Links,
		record.Status,
		record.Error,
		record.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export record: %w", err)
	}

	logger.Info("Export recorded",
		zap.String("export_id", record.ID),
		zap.String("status", record.Status),
	)
	return nil
}

func (c *Client) CountExports(status string) (int, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM graph_exports WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count exports: %w", err)
	}
	return count, nil
}
