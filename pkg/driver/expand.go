package driver

import "github.com/soundprediction/grafo/pkg/types"

// Reserved keys injected by the record expander. Property keys with these
// names would be shadowed, so avoid them in stored data.
const (
	KeyNodeID    = "neo4j_id"
	KeyLabels    = "neo4j_labels"
	KeyType      = "neo4j_type"
	KeyStartNode = "neo4j_start_node"
	KeyEndNode   = "neo4j_end_node"
	KeyPathNodes = "neo4j_nodes"
)

// ExpandValue converts a single graph entity into a property map enriched
// with the entity's identity under the reserved neo4j_* keys. Nodes gain
// neo4j_id and neo4j_labels, relationships gain neo4j_id, neo4j_start_node,
// neo4j_end_node and neo4j_type, and paths carry their ordered node list
// under neo4j_nodes. The second return is false for values that are not
// graph entities.
func ExpandValue(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case types.Node:
		out := make(map[string]any, len(val.Props)+2)
		for k, p := range val.Props {
			out[k] = p
		}
		out[KeyNodeID] = val.ID
		out[KeyLabels] = val.Labels
		return out, true
	case types.Relationship:
		out := make(map[string]any, len(val.Props)+4)
		for k, p := range val.Props {
			out[k] = p
		}
		out[KeyNodeID] = val.ID
		out[KeyStartNode] = val.StartID
		out[KeyEndNode] = val.EndID
		out[KeyType] = val.Type
		return out, true
	case types.Path:
		return map[string]any{KeyPathNodes: val.Nodes}, true
	default:
		return nil, false
	}
}

// ExpandRecords expands every graph entity in every record, keeping the
// per-record grouping: the result has one inner slice per input record.
// Values that are not graph entities are skipped.
func ExpandRecords(records []*types.Record) [][]map[string]any {
	out := make([][]map[string]any, 0, len(records))
	for _, rec := range records {
		cluster := make([]map[string]any, 0, len(rec.Values))
		for _, v := range rec.Values {
			if m, ok := ExpandValue(v); ok {
				cluster = append(cluster, m)
			}
		}
		out = append(out, cluster)
	}
	return out
}

// FlattenRecords expands like ExpandRecords but merges all entities into a
// single flat list, losing the per-record grouping.
func FlattenRecords(records []*types.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		for _, v := range rec.Values {
			if m, ok := ExpandValue(v); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// ReduceRecords renders records as plain key/value maps. Graph entities
// are reduced to their property maps via types.Reduce; identity and label
// information is dropped. Use ExpandRecords to keep it.
func ReduceRecords(records []*types.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := make(map[string]any, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = types.Reduce(rec.Values[i])
		}
		out = append(out, row)
	}
	return out
}
