// Package graph provides an in-memory directed multigraph view of query
// results. Nodes are keyed by their database id and parallel edges are
// kept apart by relationship id, so round-tripping a subgraph through a
// query preserves its shape.
package graph
