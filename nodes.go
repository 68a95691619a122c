package grafo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/soundprediction/grafo/pkg/cypher"
	"github.com/soundprediction/grafo/pkg/driver"
)

type queryOptions struct {
	internalID  bool
	labelsField bool
	limit       int
	orderBy     []string
}

// QueryOption adjusts how GetNodes and its relatives shape their results.
type QueryOption func(*queryOptions)

// WithInternalID includes the engine-internal node id in each result map
// under the reserved neo4j_id key.
func WithInternalID() QueryOption {
	return func(o *queryOptions) { o.internalID = true }
}

// WithLabelsField includes the node labels in each result map under the
// reserved neo4j_labels key.
func WithLabelsField() QueryOption {
	return func(o *queryOptions) { o.labelsField = true }
}

// Limit caps the number of nodes returned.
func Limit(n int) QueryOption {
	return func(o *queryOptions) { o.limit = n }
}

// OrderBy sorts the matched nodes by the named properties before any limit
// applies.
func OrderBy(fields ...string) QueryOption {
	return func(o *queryOptions) { o.orderBy = fields }
}

// GetNodes fetches the nodes matching the filter as a list of property
// maps, one per node, with all of each node's properties. The engine id
// and labels are stripped unless requested through WithInternalID and
// WithLabelsField.
//
// An empty filter matches every node in the database, which is expensive
// on large graphs.
func (c *Client) GetNodes(ctx context.Context, filter cypher.Filter, opts ...QueryOption) ([]map[string]any, error) {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	match, params, err := filter.MatchClause("n")
	if err != nil {
		return nil, fmt.Errorf("get nodes: %w", err)
	}

	var b strings.Builder
	b.WriteString(match)
	b.WriteString(" RETURN n")
	if len(o.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, field := range o.orderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("n.")
			b.WriteString(cypher.Backtick(field))
		}
	}
	if o.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", o.limit)
	}

	exclude := make([]string, 0, 2)
	if !o.internalID {
		exclude = append(exclude, driver.KeyNodeID)
	}
	if !o.labelsField {
		exclude = append(exclude, driver.KeyLabels)
	}
	return c.QueryExpandedFlat(ctx, b.String(), params, exclude...)
}

// GetSingleField fetches one property from every node matching the filter,
// as a plain list of values. Nodes lacking the property contribute nil.
func (c *Client) GetSingleField(ctx context.Context, filter cypher.Filter, field string, opts ...QueryOption) ([]any, error) {
	nodes, err := c.GetNodes(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	values := make([]any, len(nodes))
	for i, node := range nodes {
		values[i] = node[field]
	}
	return values, nil
}

// GetSingleRecord fetches the one node matching the filter. The second
// return is false when nothing matches; more than one match is an error.
func (c *Client) GetSingleRecord(ctx context.Context, filter cypher.Filter, opts ...QueryOption) (map[string]any, bool, error) {
	nodes, err := c.GetNodes(ctx, filter, opts...)
	if err != nil {
		return nil, false, err
	}
	switch len(nodes) {
	case 0:
		return nil, false, nil
	case 1:
		return nodes[0], true, nil
	default:
		return nil, false, fmt.Errorf("get single record: %d nodes match the filter, want 1", len(nodes))
	}
}

// CreateNode creates a node with the given label and properties and
// returns its internal id. Property values are parameter-bound, so blanks
// and punctuation in keys and arbitrary values are fine.
func (c *Client) CreateNode(ctx context.Context, label string, props map[string]any) (int64, error) {
	return c.createNode(ctx, []string{label}, props)
}

func (c *Client) createNode(ctx context.Context, labels []string, props map[string]any) (int64, error) {
	fragment, params := cypher.BindProps(props)

	var b strings.Builder
	b.WriteString("CREATE (n")
	b.WriteString(cypher.LabelExpr(labels...))
	if fragment != "" {
		b.WriteString(" ")
		b.WriteString(fragment)
	}
	b.WriteString(") RETURN id(n) AS node_id")

	records, _, err := c.driver.ExecuteWrite(ctx, b.String(), params)
	if err != nil {
		return 0, fmt.Errorf("create node: %w: %w", ErrQueryFailed, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("create node: %w: no id returned", ErrQueryFailed)
	}
	return driver.MustInt64(records[0].Values[0], "node_id")
}

// MergeNode matches or creates a node carrying the given label and exactly
// the given properties. It returns the node's internal id and whether this
// call created it.
func (c *Client) MergeNode(ctx context.Context, label string, props map[string]any) (int64, bool, error) {
	return c.mergeNode(ctx, []string{label}, props)
}

func (c *Client) mergeNode(ctx context.Context, labels []string, props map[string]any) (int64, bool, error) {
	fragment, params := cypher.BindProps(props)

	var b strings.Builder
	b.WriteString("MERGE (n")
	b.WriteString(cypher.LabelExpr(labels...))
	if fragment != "" {
		b.WriteString(" ")
		b.WriteString(fragment)
	}
	b.WriteString(") RETURN id(n) AS node_id")

	records, summary, err := c.driver.ExecuteWrite(ctx, b.String(), params)
	if err != nil {
		return 0, false, fmt.Errorf("merge node: %w: %w", ErrQueryFailed, err)
	}
	if len(records) == 0 {
		return 0, false, fmt.Errorf("merge node: %w: no id returned", ErrQueryFailed)
	}
	id, err := driver.MustInt64(records[0].Values[0], "node_id")
	if err != nil {
		return 0, false, err
	}
	created := summary != nil && summary.NodesCreated > 0
	return id, created, nil
}

// SetFields updates properties on every node matching the filter. Keys in
// set may contain blanks; values are parameter-bound under generated names
// that are checked against the filter's own bindings.
func (c *Client) SetFields(ctx context.Context, filter cypher.Filter, set map[string]any) error {
	if len(set) == 0 {
		return nil
	}

	match, params, err := filter.MatchClause("n")
	if err != nil {
		return fmt.Errorf("set fields: %w", err)
	}

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	assignments := make([]string, 0, len(keys))
	for i, k := range keys {
		token := fmt.Sprintf("set_%d", i+1)
		if _, taken := params[token]; taken {
			return fmt.Errorf("set fields: parameter %s already bound by the filter: %w",
				token, cypher.ErrConflictingKeys)
		}
		assignments = append(assignments, fmt.Sprintf("n.%s = $%s", cypher.Backtick(k), token))
		params[token] = set[k]
	}

	query := match + " SET " + strings.Join(assignments, ", ")
	if _, _, err := c.driver.ExecuteWrite(ctx, query, params); err != nil {
		return fmt.Errorf("set fields: %w: %w", ErrQueryFailed, err)
	}
	return nil
}

// DeleteNodesByLabel deletes nodes and their relationships by label. With
// both lists nil the whole database is emptied, batched through APOC when
// the plugin is installed. keepLabels wins over deleteLabels; with
// deleteLabels empty, every label not kept is deleted.
//
// Indexes are not touched, so "ghost" labels may linger in the schema
// afterwards. DropAllIndexes clears those out.
func (c *Client) DeleteNodesByLabel(ctx context.Context, deleteLabels, keepLabels []string) error {
	if deleteLabels == nil && keepLabels == nil {
		return c.deleteAllNodes(ctx)
	}

	if len(deleteLabels) == 0 {
		labels, err := c.GetLabels(ctx)
		if err != nil {
			return err
		}
		deleteLabels = labels
	}

	keep := make(map[string]bool, len(keepLabels))
	for _, label := range keepLabels {
		keep[label] = true
	}

	for _, label := range deleteLabels {
		if keep[label] {
			continue
		}
		query := "MATCH (x" + cypher.LabelExpr(label) + ") DETACH DELETE x"
		if _, _, err := c.driver.ExecuteQuery(ctx, query, nil); err != nil {
			return fmt.Errorf("delete nodes labeled %s: %w: %w", label, ErrQueryFailed, err)
		}
	}
	return nil
}

// Batched so that emptying a large database does not blow the heap.
// apoc.periodic.iterate manages its own transactions, so this must run on
// an auto-commit session rather than inside a managed transaction.
const deleteAllBatchedQuery = `CALL apoc.periodic.iterate(
  'MATCH (n) RETURN n',
  'DETACH DELETE(n)',
  {batchSize: 50000, parallel: false})
YIELD total, batches, failedBatches
RETURN total, batches, failedBatches`

func (c *Client) deleteAllNodes(ctx context.Context) error {
	_, _, err := c.driver.ExecuteQuery(ctx, deleteAllBatchedQuery, nil)
	if err == nil {
		return nil
	}
	if !driver.IsMissingProcedure(err) {
		return fmt.Errorf("delete all nodes: %w: %w", ErrQueryFailed, err)
	}

	c.logger.Debug("apoc unavailable, deleting all nodes without batching")
	if _, _, err := c.driver.ExecuteQuery(ctx, "MATCH (n) DETACH DELETE(n)", nil); err != nil {
		return fmt.Errorf("delete all nodes: %w: %w", ErrQueryFailed, err)
	}
	return nil
}

// CleanSlate empties the database. With no keepLabels the indexes and
// constraints are dropped first, then every node is detach-deleted; with
// keepLabels the schema is left alone and nodes carrying a kept label
// survive. When RDF support is attached, the n10s _GraphConfig node is
// always kept so the RDF configuration survives the wipe.
func (c *Client) CleanSlate(ctx context.Context, keepLabels ...string) error {
	if len(keepLabels) == 0 {
		if err := c.DropAllIndexes(ctx, true); err != nil {
			return err
		}
	}

	if c.rdf != nil {
		keepLabels = append(keepLabels, "_GraphConfig")
	}
	if len(keepLabels) == 0 {
		return c.DeleteNodesByLabel(ctx, nil, nil)
	}
	return c.DeleteNodesByLabel(ctx, nil, keepLabels)
}

// Neighbor describes a node adjacent to another, as returned by
// GetParentsAndChildren: the neighbor's internal id and labels, plus the
// type of the relationship connecting the two.
type Neighbor struct {
	ID     int64    `json:"id"`
	Labels []string `json:"labels"`
	Rel    string   `json:"rel"`
}

// GetParentsAndChildren fetches the nodes adjacent to the given one.
// Parents reach the node through inbound relationships; children hang off
// its outbound ones.
func (c *Client) GetParentsAndChildren(ctx context.Context, nodeID int64) (parents, children []Neighbor, err error) {
	parents, err = c.neighbors(ctx,
		"MATCH (parent)-[inbound]->(n) WHERE id(n) = $node_id "+
			"RETURN id(parent) AS id, labels(parent) AS labels, type(inbound) AS rel", nodeID)
	if err != nil {
		return nil, nil, err
	}

	children, err = c.neighbors(ctx,
		"MATCH (n)-[outbound]->(child) WHERE id(n) = $node_id "+
			"RETURN id(child) AS id, labels(child) AS labels, type(outbound) AS rel", nodeID)
	if err != nil {
		return nil, nil, err
	}
	return parents, children, nil
}

func (c *Client) neighbors(ctx context.Context, query string, nodeID int64) ([]Neighbor, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, query, map[string]any{"node_id": nodeID})
	if err != nil {
		return nil, fmt.Errorf("fetch neighbors: %w: %w", ErrQueryFailed, err)
	}

	out := make([]Neighbor, 0, len(records))
	for _, rec := range records {
		row := rec.AsMap()
		var n Neighbor
		if n.ID, err = driver.MustInt64(row["id"], "id"); err != nil {
			return nil, err
		}
		if n.Labels, err = driver.MustStringSlice(row["labels"], "labels"); err != nil {
			return nil, err
		}
		if n.Rel, err = driver.MustString(row["rel"], "rel"); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
