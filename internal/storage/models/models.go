package models

import "time"

// BuildRun is one corpus graph build, recorded for the history endpoint.
type BuildRun struct {
	ID          string    `json:"id"`
	Root        string    `json:"root"`
	Policy      string    `json:"policy"`
	Fingerprint string    `json:"fingerprint"`
	Cached      bool      `json:"cached"`
	StartedAt   time.Time `json:"startedAt"`
	DurationMS  int64     `json:"durationMs"`
	Documents   int       `json:"documents"`
	Nodes       int       `json:"nodes"`
	Links       int       `json:"links"`
	Failures    int       `json:"failures"`
	FailedPaths []string  `json:"failedPaths,omitempty"`
}

// ExportRecord tracks a graph pushed to Neo4j.
type ExportRecord struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Nodes       int       `json:"nodes"`
	Links       int       `json:"links"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
