package types

import (
	"time"
)

// Node is a graph node as returned by a query: the engine-assigned identity,
// the attached labels, and the property map. Internal IDs are not guaranteed
// stable across database reloads; ElementID is the engine's durable handle
// where the backend provides one.
type Node struct {
	ID        int64          `json:"id"`
	ElementID string         `json:"element_id,omitempty"`
	Labels    []string       `json:"labels"`
	Props     map[string]any `json:"properties"`
}

// HasLabel reports whether the node carries the given label.
func (n Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Prop returns the named property and whether it is present.
func (n Node) Prop(key string) (any, bool) {
	v, ok := n.Props[key]
	return v, ok
}

// Relationship is a directed, typed edge between two nodes. Start and End
// carry the internal IDs of the endpoints; the endpoint nodes themselves are
// only available when the query returned them.
type Relationship struct {
	ID             int64          `json:"id"`
	ElementID      string         `json:"element_id,omitempty"`
	Type           string         `json:"type"`
	StartID        int64          `json:"start"`
	EndID          int64          `json:"end"`
	StartElementID string         `json:"start_element_id,omitempty"`
	EndElementID   string         `json:"end_element_id,omitempty"`
	Props          map[string]any `json:"properties"`
}

// Prop returns the named property and whether it is present.
func (r Relationship) Prop(key string) (any, bool) {
	v, ok := r.Props[key]
	return v, ok
}

// Path is an alternating sequence of nodes and relationships. Nodes has one
// more entry than Relationships for any non-empty path.
type Path struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// Record is a single result row: the declared return aliases in return-clause
// order, and the value for each. Values holding graph entities are of type
// Node, Relationship or Path; everything else is a scalar, a list, or a map.
type Record struct {
	Keys   []string `json:"keys"`
	Values []any    `json:"values"`
}

// Get returns the value bound to the given alias and whether the alias was
// declared by the query.
func (r *Record) Get(key string) (any, bool) {
	for i, k := range r.Keys {
		if k == key {
			return r.Values[i], true
		}
	}
	return nil, false
}

// AsMap returns the record as an alias-to-value map. Entity values are kept
// as-is; use the expansion helpers to reduce them.
func (r *Record) AsMap() map[string]any {
	m := make(map[string]any, len(r.Keys))
	for i, k := range r.Keys {
		m[k] = r.Values[i]
	}
	return m
}

// Summary carries the counters the database reports after an execution.
type Summary struct {
	NodesCreated         int           `json:"nodes_created"`
	NodesDeleted         int           `json:"nodes_deleted"`
	RelationshipsCreated int           `json:"relationships_created"`
	RelationshipsDeleted int           `json:"relationships_deleted"`
	PropertiesSet        int           `json:"properties_set"`
	LabelsAdded          int           `json:"labels_added"`
	IndexesAdded         int           `json:"indexes_added"`
	IndexesRemoved       int           `json:"indexes_removed"`
	ConstraintsAdded     int           `json:"constraints_added"`
	ConstraintsRemoved   int           `json:"constraints_removed"`
	ExecutionTime        time.Duration `json:"execution_time"`
}

// ContainsUpdates reports whether the execution changed anything.
func (s Summary) ContainsUpdates() bool {
	return s.NodesCreated+s.NodesDeleted+
		s.RelationshipsCreated+s.RelationshipsDeleted+
		s.PropertiesSet+s.LabelsAdded+
		s.IndexesAdded+s.IndexesRemoved+
		s.ConstraintsAdded+s.ConstraintsRemoved > 0
}
