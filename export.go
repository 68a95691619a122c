package grafo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/soundprediction/grafo/pkg/driver"
	"github.com/soundprediction/grafo/pkg/frame"
	"github.com/soundprediction/grafo/pkg/types"
)

// ExportResult is a whole-database JSON dump: entity counts plus the dump
// itself as a JSON array of node and relationship objects.
type ExportResult struct {
	Nodes         int64  `json:"nodes"`
	Relationships int64  `json:"relationships"`
	Properties    int64  `json:"properties"`
	Data          string `json:"data"`
}

const exportJSONQuery = `CALL apoc.export.json.all(null, {useTypes: true, stream: true})
YIELD nodes, relationships, properties, data
RETURN nodes, relationships, properties, data`

// ExportJSON dumps the entire database through APOC's streaming JSON
// export. The procedure streams newline-delimited objects rather than a
// JSON array, so Data is normalized into a valid array before it is
// returned. Without the APOC plugin the call fails with
// ErrFeatureUnavailable.
func (c *Client) ExportJSON(ctx context.Context) (*ExportResult, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, exportJSONQuery, nil)
	if err != nil {
		if driver.IsMissingProcedure(err) {
			return nil, fmt.Errorf("json export needs the APOC plugin: %w: %w", ErrFeatureUnavailable, err)
		}
		return nil, fmt.Errorf("export json: %w: %w", ErrQueryFailed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("export json: %w: empty result", ErrQueryFailed)
	}

	row := records[0].AsMap()
	result := &ExportResult{}
	if result.Nodes, err = driver.MustInt64(row["nodes"], "nodes"); err != nil {
		return nil, err
	}
	if result.Relationships, err = driver.MustInt64(row["relationships"], "relationships"); err != nil {
		return nil, err
	}
	if result.Properties, err = driver.MustInt64(row["properties"], "properties"); err != nil {
		return nil, err
	}
	data, err := driver.MustString(row["data"], "data")
	if err != nil {
		return nil, err
	}
	result.Data = "[" + strings.ReplaceAll(data, "\n", ",\n ") + "\n]"
	return result, nil
}

// ImportStats reports what an import actually wrote.
type ImportStats struct {
	NodesImported         int `json:"nodes_imported"`
	RelationshipsImported int `json:"relationships_imported"`
}

// jsonEntity is one element of a JSON dump: a node or a relationship in
// the shape ExportJSON produces.
type jsonEntity struct {
	Type       string         `json:"type"`
	ID         json.Number    `json:"id"`
	Labels     []string       `json:"labels"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
	Start      *jsonEndpoint  `json:"start"`
	End        *jsonEndpoint  `json:"end"`
}

type jsonEndpoint struct {
	ID json.Number `json:"id"`
}

// ImportJSON loads a dump in the ExportJSON format into the database. The
// payload is run through a JSON repairer first, so the almost-JSON that
// some exports produce is accepted as-is. The whole payload is validated
// before anything is written; the dump's node ids cannot be forced onto
// the target database, so relationships are re-linked through an old-id to
// new-id map built as the nodes are created.
//
// Nodes import with all their labels. On a failure partway through, the
// returned stats still count what was already written.
func (c *Client) ImportJSON(ctx context.Context, data []byte) (*ImportStats, error) {
	repaired, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: repairing import payload: %w", ErrInvalidConfiguration, err)
	}

	var items []jsonEntity
	if err := json.Unmarshal([]byte(repaired), &items); err != nil {
		return nil, fmt.Errorf("%w: import payload is not a JSON list: %w", ErrInvalidConfiguration, err)
	}
	if err := validateImportItems(items); err != nil {
		return nil, err
	}

	stats := &ImportStats{}

	// Nodes first; relationships need the id map the node pass builds.
	idShift := make(map[int64]int64)
	for _, item := range items {
		if item.Type != "node" {
			continue
		}
		oldID, _ := item.ID.Int64()
		newID, err := c.createNode(ctx, item.Labels, item.Properties)
		if err != nil {
			return stats, fmt.Errorf("importing node %d: %w", oldID, err)
		}
		idShift[oldID] = newID
		stats.NodesImported++
	}

	for i, item := range items {
		if item.Type != "relationship" {
			continue
		}
		startOld, _ := item.Start.ID.Int64()
		endOld, _ := item.End.ID.Int64()
		startNew, ok := idShift[startOld]
		if !ok {
			return stats, fmt.Errorf("%w: item %d references node %d, which is not in the dump",
				ErrInvalidConfiguration, i, startOld)
		}
		endNew, ok := idShift[endOld]
		if !ok {
			return stats, fmt.Errorf("%w: item %d references node %d, which is not in the dump",
				ErrInvalidConfiguration, i, endOld)
		}

		if err := c.LinkNodesByIDs(ctx, startNew, endNew, item.Label, item.Properties); err != nil {
			return stats, fmt.Errorf("importing relationship %d: %w", i, err)
		}
		stats.RelationshipsImported++
	}
	return stats, nil
}

// validateImportItems rejects the whole payload before the first write, so
// a malformed dump does not leave a half-imported database behind.
func validateImportItems(items []jsonEntity) error {
	bad := func(i int, format string, args ...any) error {
		detail := fmt.Sprintf(format, args...)
		return fmt.Errorf("%w: item %d: %s; nothing imported", ErrInvalidConfiguration, i, detail)
	}

	for i, item := range items {
		switch item.Type {
		case "node":
			if item.ID == "" {
				return bad(i, "node lacks an id")
			}
			if _, err := item.ID.Int64(); err != nil {
				return bad(i, "node id %q is not an integer", item.ID)
			}
		case "relationship":
			if item.Label == "" {
				return bad(i, "relationship lacks a label")
			}
			if item.Start == nil || item.Start.ID == "" {
				return bad(i, "relationship lacks a start id")
			}
			if item.End == nil || item.End.ID == "" {
				return bad(i, "relationship lacks an end id")
			}
			if _, err := item.Start.ID.Int64(); err != nil {
				return bad(i, "start id %q is not an integer", item.Start.ID)
			}
			if _, err := item.End.ID.Int64(); err != nil {
				return bad(i, "end id %q is not an integer", item.End.ID)
			}
		default:
			return bad(i, "type must be either node or relationship, got %q", item.Type)
		}
	}
	return nil
}

// ExportParquet snapshots every node and relationship into a pair of
// Parquet files under dir (nodes.parquet, relationships.parquet). Unlike
// the JSON export it needs no server-side plugin; the graph streams
// through the regular query path.
func (c *Client) ExportParquet(ctx context.Context, dir string) error {
	nodeRecords, _, err := c.driver.ExecuteQuery(ctx, "MATCH (n) RETURN n", nil)
	if err != nil {
		return fmt.Errorf("export parquet: %w: %w", ErrQueryFailed, err)
	}
	nodes := make([]types.Node, 0, len(nodeRecords))
	for _, rec := range nodeRecords {
		node, err := driver.MustNode(rec.Values[0], "n")
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}

	relRecords, _, err := c.driver.ExecuteQuery(ctx, "MATCH ()-[r]->() RETURN r", nil)
	if err != nil {
		return fmt.Errorf("export parquet: %w: %w", ErrQueryFailed, err)
	}
	rels := make([]types.Relationship, 0, len(relRecords))
	for _, rec := range relRecords {
		rel, err := driver.MustRelationship(rec.Values[0], "r")
		if err != nil {
			return err
		}
		rels = append(rels, rel)
	}

	writer, err := frame.NewSnapshotWriter(dir)
	if err != nil {
		return err
	}
	if err := writer.WriteNodes(nodes); err != nil {
		return err
	}
	if err := writer.WriteRelationships(rels); err != nil {
		return err
	}

	c.logger.Info("parquet snapshot written",
		"dir", dir, "nodes", len(nodes), "relationships", len(rels))
	return nil
}

// ImportParquet loads a snapshot written by ExportParquet. Snapshot ids
// are shifted onto freshly created nodes the same way ImportJSON shifts
// dump ids. On a failure partway through, the returned stats still count
// what was already written.
func (c *Client) ImportParquet(ctx context.Context, dir string) (*ImportStats, error) {
	snapshot, err := frame.ReadSnapshot(dir)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{}
	idShift := make(map[int64]int64, len(snapshot.Nodes))
	for _, node := range snapshot.Nodes {
		newID, err := c.createNode(ctx, node.Labels, node.Props)
		if err != nil {
			return stats, fmt.Errorf("importing node %d: %w", node.ID, err)
		}
		idShift[node.ID] = newID
		stats.NodesImported++
	}

	for _, rel := range snapshot.Relationships {
		startNew, ok := idShift[rel.StartID]
		if !ok {
			return stats, fmt.Errorf("%w: relationship %d references node %d, which is not in the snapshot",
				ErrInvalidConfiguration, rel.ID, rel.StartID)
		}
		endNew, ok := idShift[rel.EndID]
		if !ok {
			return stats, fmt.Errorf("%w: relationship %d references node %d, which is not in the snapshot",
				ErrInvalidConfiguration, rel.ID, rel.EndID)
		}

		if err := c.LinkNodesByIDs(ctx, startNew, endNew, rel.Type, rel.Props); err != nil {
			return stats, fmt.Errorf("importing relationship %d: %w", rel.ID, err)
		}
		stats.RelationshipsImported++
	}
	return stats, nil
}
