package graph

import (
	"fmt"

	"github.com/soundprediction/grafo/pkg/types"
)

// FromRecords builds a multigraph from query records. Every value in
// every record must be a node, relationship or path; anything else,
// including nulls from optional matches, is an error. Relationship
// endpoints that never appear as nodes in the result are added as
// placeholders.
func FromRecords(records []*types.Record) (*DirectedMultigraph, error) {
	g := New()
	for _, rec := range records {
		for i, v := range rec.Values {
			if err := g.addValue(v); err != nil {
				key := ""
				if i < len(rec.Keys) {
					key = rec.Keys[i]
				}
				return nil, fmt.Errorf("column %q: %w", key, err)
			}
		}
	}
	return g, nil
}

func (g *DirectedMultigraph) addValue(v any) error {
	switch val := v.(type) {
	case types.Node:
		g.AddNode(val.ID, val.Labels, val.Props)
	case types.Relationship:
		g.AddEdge(val.ID, val.StartID, val.EndID, val.Type, val.Props)
	case types.Path:
		for _, n := range val.Nodes {
			g.AddNode(n.ID, n.Labels, n.Props)
		}
		for _, r := range val.Relationships {
			g.AddEdge(r.ID, r.StartID, r.EndID, r.Type, r.Props)
		}
	default:
		return fmt.Errorf("cannot convert value of type %T into a graph element", v)
	}
	return nil
}
