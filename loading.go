package grafo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/soundprediction/grafo/pkg/cypher"
	"github.com/soundprediction/grafo/pkg/driver"
)

// LoadOptions steers LoadRecords.
//
// Merge with a PrimaryKey makes the load idempotent: records are matched
// on the key and updated instead of duplicated. MergeOverwrite replaces a
// matched node's whole property map rather than folding the new values in,
// so properties absent from the record are erased. IgnoreNil drops
// nil-valued fields from each record before it is written, the analog of
// excluding missing values from a tabular source. ChunkSize caps the rows
// sent per statement; zero means 10000.
type LoadOptions struct {
	Merge          bool
	PrimaryKey     string
	MergeOverwrite bool
	ChunkSize      int
	IgnoreNil      bool
}

const defaultChunkSize = 10000

// LoadRecords loads one node per record under the given label and returns
// the internal ids of the nodes written, in input order. The records
// travel as bound parameters in UNWIND batches.
//
// Merging requires a primary key, an index on it (created here when
// missing), and a non-nil key value in every record; without both Merge
// and PrimaryKey every record is created fresh.
func (c *Client) LoadRecords(ctx context.Context, label string, records []map[string]any, opts LoadOptions) ([]int64, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	merging := opts.Merge && opts.PrimaryKey != ""

	keyFragment := ""
	if merging {
		if _, err := c.CreateIndex(ctx, label+"."+opts.PrimaryKey); err != nil {
			return nil, err
		}
		c.awaitIndexes(ctx)
		keyFragment = fmt.Sprintf(" {%s: record['%s']}", cypher.Backtick(opts.PrimaryKey), opts.PrimaryKey)
	}

	op := "CREATE"
	if merging {
		op = "MERGE"
	}
	set := "SET x += record"
	if opts.MergeOverwrite {
		set = "SET x = record"
	}
	query := fmt.Sprintf("WITH $data AS data UNWIND data AS record %s (x%s%s) %s RETURN id(x) AS node_id",
		op, cypher.LabelExpr(label), keyFragment, set)

	batchID := uuid.Must(uuid.NewV7()).String()
	ids := make([]int64, 0, len(records))
	for start := 0; start < len(records); start += opts.ChunkSize {
		end := start + opts.ChunkSize
		if end > len(records) {
			end = len(records)
		}

		chunk, err := prepareChunk(records[start:end], start, opts, merging)
		if err != nil {
			return nil, err
		}

		rows, _, err := c.driver.ExecuteWrite(ctx, query, map[string]any{"data": chunk})
		if err != nil {
			return nil, fmt.Errorf("load records %d..%d: %w: %w", start, end, ErrQueryFailed, err)
		}
		for _, row := range rows {
			id, err := driver.MustInt64(row.Values[0], "node_id")
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}

		c.logger.Debug("loaded record chunk",
			"batch_id", batchID, "label", label, "rows", end-start, "loaded", len(ids))
	}
	return ids, nil
}

// prepareChunk applies the per-record option handling: nil stripping and
// the merge-key presence check. offset keeps reported indexes absolute.
func prepareChunk(records []map[string]any, offset int, opts LoadOptions, merging bool) ([]map[string]any, error) {
	out := make([]map[string]any, len(records))
	for i, record := range records {
		if merging {
			if v, ok := record[opts.PrimaryKey]; !ok || v == nil {
				return nil, fmt.Errorf("%w: record %d has no value for merge key %q",
					ErrInvalidConfiguration, offset+i, opts.PrimaryKey)
			}
		}
		if !opts.IgnoreNil {
			out[i] = record
			continue
		}
		cleaned := make(map[string]any, len(record))
		for k, v := range record {
			if v != nil {
				cleaned[k] = v
			}
		}
		out[i] = cleaned
	}
	return out, nil
}

// awaitIndexes blocks until index population settles, so a merge right
// after index creation does not run against a half-built index. Backends
// without the procedure just proceed.
func (c *Client) awaitIndexes(ctx context.Context) {
	if _, _, err := c.driver.ExecuteQuery(ctx, "CALL db.awaitIndexes()", nil); err != nil {
		c.logger.Debug("could not await index population", "error", err)
	}
}

const maxMapDepth = 10

// LoadMap ingests a nested map as a small subgraph rooted at a node with
// the given label ("Root" when empty) and returns the root's internal id.
// Scalar fields become properties of the node holding them; a nested map
// becomes a child node labeled and linked by its field name; a slice fans
// out map elements into child nodes the same way, while its scalar
// elements stay behind as a list property. Every node is created fresh.
//
// Nesting deeper than 10 levels is refused rather than clipped.
func (c *Client) LoadMap(ctx context.Context, data map[string]any, label string) (int64, error) {
	if label == "" {
		label = "Root"
	}
	return c.loadMapLevel(ctx, data, label, 0)
}

func (c *Client) loadMapLevel(ctx context.Context, data map[string]any, label string, depth int) (int64, error) {
	if depth >= maxMapDepth {
		return 0, fmt.Errorf("%w: map nesting exceeds %d levels", ErrInvalidConfiguration, maxMapDepth)
	}

	props := make(map[string]any)
	children := make(map[string][]map[string]any)
	for key, value := range data {
		switch v := value.(type) {
		case map[string]any:
			children[key] = append(children[key], v)
		case []any:
			scalars := make([]any, 0, len(v))
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					children[key] = append(children[key], m)
				} else {
					scalars = append(scalars, item)
				}
			}
			if len(scalars) > 0 {
				props[key] = scalars
			}
		default:
			props[key] = value
		}
	}

	id, err := c.createNode(ctx, []string{label}, props)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(children))
	for key := range children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, child := range children[key] {
			childID, err := c.loadMapLevel(ctx, child, key, depth+1)
			if err != nil {
				return 0, err
			}
			if err := c.LinkNodesByIDs(ctx, id, childID, key, nil); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}

// ArrowsNode is one node of an arrows.app JSON document.
type ArrowsNode struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
	Caption    string         `json:"caption"`
}

// ArrowsRelationship is one relationship of an arrows.app JSON document.
type ArrowsRelationship struct {
	ID         string         `json:"id"`
	FromID     string         `json:"fromId"`
	ToID       string         `json:"toId"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// ArrowsDoc is the graph-description shape exported by the arrows.app
// prototyping tool. Layout-only fields (positions, styling) have no
// bearing on loading and are ignored by the JSON decoder.
type ArrowsDoc struct {
	Nodes         []ArrowsNode         `json:"nodes"`
	Relationships []ArrowsRelationship `json:"relationships"`
}

// LoadArrows loads an arrows.app document and returns the mapping from
// arrows node ids to the internal ids of the loaded nodes.
//
// Nodes carrying properties are merged on all of them; a node with only a
// caption is merged on {value: caption}; a bare node is created fresh.
// Unlabeled nodes get the label "No Label". Relationships are merged with
// their properties as identity, with type RELATED when the document names
// none, so reloading the same document converges instead of duplicating.
func (c *Client) LoadArrows(ctx context.Context, doc ArrowsDoc) (map[string]int64, error) {
	nodeIDs := make(map[string]int64, len(doc.Nodes))
	for _, node := range doc.Nodes {
		labels := node.Labels
		if len(labels) == 0 {
			labels = []string{"No Label"}
		}

		var (
			id  int64
			err error
		)
		switch {
		case len(node.Properties) > 0:
			id, _, err = c.mergeNode(ctx, labels, node.Properties)
		case node.Caption != "":
			id, _, err = c.mergeNode(ctx, labels, map[string]any{"value": node.Caption})
		default:
			id, err = c.createNode(ctx, labels, nil)
		}
		if err != nil {
			return nil, fmt.Errorf("arrows node %s: %w", node.ID, err)
		}
		nodeIDs[node.ID] = id
	}

	for _, rel := range doc.Relationships {
		fromID, ok := nodeIDs[rel.FromID]
		if !ok {
			return nil, fmt.Errorf("%w: relationship %s references unknown node %s",
				ErrInvalidConfiguration, rel.ID, rel.FromID)
		}
		toID, ok := nodeIDs[rel.ToID]
		if !ok {
			return nil, fmt.Errorf("%w: relationship %s references unknown node %s",
				ErrInvalidConfiguration, rel.ID, rel.ToID)
		}

		relType := rel.Type
		if strings.TrimSpace(relType) == "" {
			relType = "RELATED"
		}
		if err := c.LinkNodesByIDs(ctx, fromID, toID, relType, rel.Properties); err != nil {
			return nil, fmt.Errorf("arrows relationship %s: %w", rel.ID, err)
		}
	}
	return nodeIDs, nil
}

// LoadArrowsJSON decodes raw arrows.app JSON and loads it via LoadArrows.
func (c *Client) LoadArrowsJSON(ctx context.Context, data []byte) (map[string]int64, error) {
	var doc ArrowsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing arrows document: %w", ErrInvalidConfiguration, err)
	}
	return c.LoadArrows(ctx, doc)
}
