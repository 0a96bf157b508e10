package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/mdgraph/backend/internal/kg/builder"
	"github.com/mdgraph/backend/pkg/circuitbreaker"
	"github.com/mdgraph/backend/pkg/logger"
	"github.com/mdgraph/backend/pkg/retry"
)

// Client mirrors built graphs into Neo4j as (:Term)-[:CO_OCCURS]->(:Term).
type Client struct {
	driver      neo4j.DriverWithContext
	database    string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

// ExportResult counts what one export wrote.
type ExportResult struct {
	Terms         int `json:"terms"`
	Relationships int `json:"relationships"`
}

func NewClient(uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		uri,
		neo4j.BasicAuth(username, password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	cb := circuitbreaker.NewCircuitBreaker("neo4j", circuitbreaker.Config{
		MaxRequests:      3,
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Neo4j client initialized", zap.String("uri", uri), zap.String("database", database))

	return &Client{
		driver:      driver,
		database:    database,
		cb:          cb,
		retryConfig: retryConfig,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) executeWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var result interface{}
	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
			defer session.Close(ctx)

			var err error
			result, err = session.ExecuteWrite(ctx, work)
			return err
		})
	})
	return result, err
}

const mergeTermsQuery = `
	UNWIND $terms AS t
	MERGE (n:Term {id: t.id})
	SET n.label = t.label,
	    n.group = t.group,
	    n.size = t.size,
	    n.updated_at = timestamp()
	RETURN count(n) AS written
`

const mergeRelationshipsQuery = `
	UNWIND $links AS l
	MATCH (a:Term {id: l.source}), (b:Term {id: l.target})
	MERGE (a)-[r:CO_OCCURS {key: l.key}]->(b)
	SET r.type = l.type,
	    r.strength = l.value,
	    r.updated_at = timestamp()
	RETURN count(r) AS written
`

// Export upserts every node and link of g in one transaction. Relationships
// are keyed by the unordered term pair, so re-exporting a graph updates
// strengths in place.
func (c *Client) Export(ctx context.Context, g *builder.Graph) (*ExportResult, error) {
	if g == nil || g.Empty() {
		return &ExportResult{}, nil
	}

	out, err := c.executeWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		terms, err := written(ctx, tx, mergeTermsQuery, map[string]interface{}{"terms": termParams(g.Nodes)})
		if err != nil {
			return nil, fmt.Errorf("failed to merge terms: %w", err)
		}
		links, err := written(ctx, tx, mergeRelationshipsQuery, map[string]interface{}{"links": linkParams(g.Links)})
		if err != nil {
			return nil, fmt.Errorf("failed to merge relationships: %w", err)
		}
		return &ExportResult{Terms: terms, Relationships: links}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export graph: %w", err)
	}

	result := out.(*ExportResult)
	logger.Info("Graph exported to Neo4j",
		zap.Int("terms", result.Terms),
		zap.Int("relationships", result.Relationships),
	)
	return result, nil
}

func written(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]interface{}) (int, error) {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return 0, err
	}
	record, err := res.Single(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := record.Get("written")
	count, _ := n.(int64)
	return int(count), nil
}

// DeleteAll removes every Term node and its relationships.
func (c *Client) DeleteAll(ctx context.Context) error {
	_, err := c.executeWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, `MATCH (n:Term) DETACH DELETE n`, nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to delete terms: %w", err)
	}
	return nil
}

func termParams(nodes []builder.Node) []map[string]interface{} {
	params := make([]map[string]interface{}, 0, len(nodes))
	for _, n := range nodes {
		params = append(params, map[string]interface{}{
			"id":    n.ID,
			"label": n.Label,
			"group": n.Group,
			"size":  n.Size,
		})
	}
	return params
}

func linkParams(links []builder.Link) []map[string]interface{} {
	params := make([]map[string]interface{}, 0, len(links))
	for _, l := range links {
		params = append(params, map[string]interface{}{
			"key":    relationshipKey(l.Source, l.Target),
			"source": l.Source,
			"target": l.Target,
			"type":   l.Type,
			"value":  l.Value,
		})
	}
	return params
}

func relationshipKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
