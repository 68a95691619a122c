package grafo

import (
	"context"
	"fmt"

	"github.com/soundprediction/grafo/pkg/driver"
	"github.com/soundprediction/grafo/pkg/frame"
	"github.com/soundprediction/grafo/pkg/graph"
)

// Query runs a statement and returns one map per result row, keyed by the
// RETURN aliases. Graph entities are reduced to their property maps;
// identity and labels are dropped (use QueryExpanded to keep them).
//
// On execution failure the result degrades to an empty list with a nil
// error so bulk pipelines survive a single bad statement; the failure is
// logged at Warn. Callers that must observe failures use QueryGraph,
// QueryRaw, or the write operations.
func (c *Client) Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		c.logger.Warn("query failed, degrading to empty result", "error", err)
		return []map[string]any{}, nil
	}
	return driver.ReduceRecords(records), nil
}

// QueryFrame runs a statement and materializes the result as a tabular
// frame. Rows that lack a column leave a nil gap; nested maps flatten
// into dotted column names. Node identity is not preserved in this
// representation.
//
// Execution failures degrade to an empty frame, like Query.
func (c *Client) QueryFrame(ctx context.Context, query string, params map[string]any) (*frame.Frame, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		c.logger.Warn("query failed, degrading to empty frame", "error", err)
		return frame.New(), nil
	}
	return frame.FromRecords(records), nil
}

// QueryGraph runs a statement whose results are nodes, relationships or
// paths and reconstructs them as an in-memory directed multigraph keyed
// by internal id. Unlike Query, execution and conversion failures
// propagate; the caller explicitly asked for structural results.
func (c *Client) QueryGraph(ctx context.Context, query string, params map[string]any) (*graph.DirectedMultigraph, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("graph query: %w: %w", ErrQueryFailed, err)
	}

	g, err := graph.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("building graph from result: %w", err)
	}
	return g, nil
}

// QueryRaw runs a statement and hands back the driver's native streaming
// result. The cursor is one-shot: consuming it exhausts it. The caller
// owns the result and must Close it to release the session. Errors
// propagate.
func (c *Client) QueryRaw(ctx context.Context, query string, params map[string]any) (*driver.RawResult, error) {
	raw, err := c.driver.Raw(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("raw query: %w: %w", ErrQueryFailed, err)
	}
	return raw, nil
}

// QueryExpanded runs a statement returning graph entities and expands
// each into a property map enriched with the reserved identity keys
// (neo4j_id, neo4j_labels, neo4j_type, neo4j_start_node, neo4j_end_node,
// neo4j_nodes). The result keeps the per-record grouping: one inner list
// per result row, entities in return-clause order. Non-entity values are
// skipped. Fields named in exclude are dropped from every expanded
// entity, reserved keys included.
//
// Execution failures degrade to an empty result, like Query.
func (c *Client) QueryExpanded(ctx context.Context, query string, params map[string]any, exclude ...string) ([][]map[string]any, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		c.logger.Warn("query failed, degrading to empty result", "error", err)
		return [][]map[string]any{}, nil
	}

	clusters := driver.ExpandRecords(records)
	for _, cluster := range clusters {
		for _, entity := range cluster {
			dropKeys(entity, exclude)
		}
	}
	return clusters, nil
}

// QueryExpandedFlat expands like QueryExpanded but concatenates all
// entities into one flat list, discarding record boundaries.
func (c *Client) QueryExpandedFlat(ctx context.Context, query string, params map[string]any, exclude ...string) ([]map[string]any, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		c.logger.Warn("query failed, degrading to empty result", "error", err)
		return []map[string]any{}, nil
	}

	entities := driver.FlattenRecords(records)
	for _, entity := range entities {
		dropKeys(entity, exclude)
	}
	return entities, nil
}

func dropKeys(entity map[string]any, exclude []string) {
	for _, key := range exclude {
		delete(entity, key)
	}
}
