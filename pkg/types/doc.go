// Package types defines the backend-neutral value types grafo uses to
// represent query results.
//
// Graph databases return three kinds of graph entities: nodes, relationships
// and paths. Drivers convert their native representations into the types in
// this package at the driver boundary, so everything above the driver
// (expansion, frames, multigraphs, the client API) is independent of the
// backend in use.
//
// A Record is one result row: the declared return aliases, in return-clause
// order, and the value bound to each. A Summary carries the write counters
// reported by the database after an execution.
package types
