// Package grafo provides a convenience layer over property graph databases
// speaking Cypher.
//
// Grafo generates the query text and parameter bindings for the operations
// graph applications repeat endlessly (filtered reads, bulk loads, index
// management, whole-graph dumps) and hands the results back in the
// representation the caller picks: plain maps, a column-oriented frame, a
// traversable graph value, or the driver's raw records. Backends are
// abstracted behind a small driver interface with Neo4j and LadybugDB
// implementations.
//
// # Basic Usage
//
// Build a client from configuration:
//
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := grafo.NewClientFromConfig(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
// or wrap a driver directly:
//
//	d, err := driver.NewNeo4jDriver("bolt://localhost:7687", "neo4j", "password", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := grafo.NewClient(d)
//
// # Querying
//
// Results come back in whichever shape fits the caller:
//
//	// One map per record, graph entities reduced to their properties.
//	rows, err := client.Query(ctx, "MATCH (p:patient) RETURN p", nil)
//
//	// Column-oriented, for tabular post-processing.
//	df, err := client.QueryFrame(ctx, "MATCH (p:patient) RETURN p.age AS age", nil)
//
//	// A traversable value built from the nodes and relationships returned.
//	g, err := client.QueryGraph(ctx, "MATCH (p)-[r:TREATS]->(d) RETURN p, r, d", nil)
//
// Read representations degrade to an empty result on execution failure and
// log the cause; QueryGraph, QueryRaw and every write propagate errors.
//
// # Loading Data
//
// Record sets load in chunks, optionally merging on a primary key:
//
//	ids, err := client.LoadRecords(ctx, "patient", records, grafo.LoadOptions{
//		Merge:      true,
//		PrimaryKey: "patient_id",
//	})
//
// Nested maps become node trees (LoadMap), and graphs sketched in the
// arrows.app editor load verbatim (LoadArrows).
//
// # Reshaping
//
// Existing data can be refactored in place: ExtractEntities hoists repeated
// node properties into nodes of their own, and LinkEntities connects node
// classes in batches. Both run through apoc.periodic.iterate, so they keep
// working on graphs that do not fit in one transaction.
//
// # Schema
//
// Indexes and constraints are addressed as "Label.property" specs:
//
//	created, err := client.CreateIndex(ctx, "patient.patient_id")
//	applied  := client.ApplySchema(ctx, schema) // from a YAML manifest
//
// # Dumps
//
// ExportJSON and ExportParquet capture the whole graph; their Import
// counterparts recreate it, remapping internal node ids.
//
// # RDF
//
// With the n10s plugin installed, graphs round-trip through RDF: GenerateURI
// stamps nodes with deterministic uri values, ExportRDF serializes a
// subgraph, and ImportRDFInline merges it back.
//
// # Error Handling
//
// The package exposes three sentinels, always wrapped with context:
//
//   - ErrInvalidConfiguration: inputs that cannot produce a valid operation
//   - ErrQueryFailed: execution failures on propagating paths
//   - ErrFeatureUnavailable: missing server plugin or endpoint
//
// # Architecture
//
//   - pkg/driver: graph database abstraction layer
//   - pkg/cypher: query-text and parameter-binding helpers
//   - pkg/frame: column-oriented result frame and parquet snapshots
//   - pkg/graph: directed multigraph result representation
//   - pkg/types: records, nodes, relationships, summaries
//   - pkg/rdf: HTTP client for the n10s endpoints
//   - pkg/config: file and environment configuration
//
// This design allows additional backends without touching the operations
// layer.
package grafo
