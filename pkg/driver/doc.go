// Package driver provides graph database connectivity for grafo.
//
// The package defines a small set of capability interfaces (QueryRunner,
// RawRunner, Pinger) and a composite GraphDriver that backends implement.
// Two backends ship with grafo:
//
//   - Neo4jDriver speaks Bolt to a Neo4j or Memgraph server through the
//     official neo4j-go-driver. It is the primary backend and the only one
//     that supports raw streaming results.
//
//   - LadybugDriver runs an embedded, file-backed graph database in
//     process. It requires cgo and is compiled in only when cgo is
//     enabled; otherwise a stub is built that returns ErrCGORequired.
//
// Backends convert driver-native values into the neutral types defined in
// pkg/types at the boundary, so callers never handle backend-specific
// record or entity types. The one exception is RawResult, which exposes
// the underlying Neo4j stream for callers that need cursor-level control.
package driver
