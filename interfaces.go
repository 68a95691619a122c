package grafo

import (
	"context"

	"github.com/soundprediction/grafo/pkg/cypher"
	"github.com/soundprediction/grafo/pkg/driver"
	"github.com/soundprediction/grafo/pkg/frame"
	"github.com/soundprediction/grafo/pkg/graph"
)

// This file defines focused interfaces that follow the Interface Segregation
// Principle. Client implements all of them; consumers should depend on the
// smallest interface that meets their needs.

// GraphQuerier runs read queries and materializes the results in the
// representation the caller picks.
type GraphQuerier interface {
	// Query returns one map per result record, with graph entities
	// reduced to their properties.
	Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// QueryFrame returns the result as a column-oriented frame.
	QueryFrame(ctx context.Context, query string, params map[string]any) (*frame.Frame, error)

	// QueryGraph assembles the nodes and relationships in the result
	// into a directed multigraph.
	QueryGraph(ctx context.Context, query string, params map[string]any) (*graph.DirectedMultigraph, error)

	// QueryExpanded returns one cluster of expanded entities per record.
	QueryExpanded(ctx context.Context, query string, params map[string]any, exclude ...string) ([][]map[string]any, error)

	// QueryExpandedFlat returns every expanded entity in a single list.
	QueryExpandedFlat(ctx context.Context, query string, params map[string]any, exclude ...string) ([]map[string]any, error)

	// QueryRaw hands back the driver's result without reshaping it.
	QueryRaw(ctx context.Context, query string, params map[string]any) (*driver.RawResult, error)
}

// NodeManager provides filtered retrieval and direct manipulation of nodes.
type NodeManager interface {
	// GetNodes returns the property maps of the nodes matching the filter.
	GetNodes(ctx context.Context, filter cypher.Filter, opts ...QueryOption) ([]map[string]any, error)

	// GetSingleField collects one property across the matching nodes.
	GetSingleField(ctx context.Context, filter cypher.Filter, field string, opts ...QueryOption) ([]any, error)

	// GetSingleRecord returns the only node matching the filter, with a
	// found flag; more than one match is an error.
	GetSingleRecord(ctx context.Context, filter cypher.Filter, opts ...QueryOption) (map[string]any, bool, error)

	// GetParentsAndChildren lists the nodes adjacent to the given node,
	// split by relationship direction.
	GetParentsAndChildren(ctx context.Context, nodeID int64) (parents, children []Neighbor, err error)

	// CreateNode creates a node and returns its internal id.
	CreateNode(ctx context.Context, label string, props map[string]any) (int64, error)

	// MergeNode finds or creates a node matching all given properties,
	// reporting whether it was created.
	MergeNode(ctx context.Context, label string, props map[string]any) (int64, bool, error)

	// SetFields updates properties on the nodes matching the filter.
	SetFields(ctx context.Context, filter cypher.Filter, set map[string]any) error

	// DeleteNodesByLabel detach-deletes nodes by label, sparing the keep
	// labels.
	DeleteNodesByLabel(ctx context.Context, deleteLabels, keepLabels []string) error

	// CleanSlate empties the store, optionally sparing some labels.
	CleanSlate(ctx context.Context, keepLabels ...string) error
}

// GraphRefactorer reshapes data already in the store: hoisting repeated
// properties into nodes of their own and connecting related entities.
type GraphRefactorer interface {
	// ExtractEntities materializes new nodes from properties of existing
	// ones, linked back to their sources.
	ExtractEntities(ctx context.Context, spec ExtractSpec) error

	// LinkEntities connects two node classes in batches, either through a
	// shared neighbour or by an explicit pairing query.
	LinkEntities(ctx context.Context, leftLabel, rightLabel string, opts LinkOptions) error

	// LinkNodesOnMatchingProperty relates nodes whose property values
	// coincide.
	LinkNodesOnMatchingProperty(ctx context.Context, label1, label2, prop1, rel string, prop2 ...string) error

	// LinkNodesOnMatchingPropertyValue relates nodes sharing one specific
	// property value.
	LinkNodesOnMatchingPropertyValue(ctx context.Context, label1, label2, propName string, propValue any, rel string) error

	// LinkNodesByIDs relates two nodes picked by internal id.
	LinkNodesByIDs(ctx context.Context, nodeID1, nodeID2 int64, rel string, relProps map[string]any) error
}

// DataLoader ingests external data shapes as nodes and relationships.
type DataLoader interface {
	// LoadRecords bulk-creates or merges one node per record, in chunks.
	LoadRecords(ctx context.Context, label string, records []map[string]any, opts LoadOptions) ([]int64, error)

	// LoadMap turns a nested map into a tree of nodes and returns the
	// root's id.
	LoadMap(ctx context.Context, data map[string]any, label string) (int64, error)

	// LoadArrows recreates a graph drawn in the arrows.app editor.
	LoadArrows(ctx context.Context, doc ArrowsDoc) (map[string]int64, error)

	// LoadArrowsJSON parses and loads an arrows.app JSON export.
	LoadArrowsJSON(ctx context.Context, data []byte) (map[string]int64, error)
}

// SchemaManager inspects and maintains indexes, constraints and the
// store's label vocabulary.
type SchemaManager interface {
	// GetIndexes lists indexes, optionally filtered by type.
	GetIndexes(ctx context.Context, types ...string) (*frame.Frame, error)

	// GetConstraints lists constraints.
	GetConstraints(ctx context.Context) (*frame.Frame, error)

	// CreateIndex ensures an index described as "Label.property" exists,
	// reporting whether it was created.
	CreateIndex(ctx context.Context, spec string) (bool, error)

	// CreateConstraint ensures a uniqueness constraint described as
	// "Label.property" exists, reporting whether it was created.
	CreateConstraint(ctx context.Context, spec string) (bool, error)

	// DropIndex drops an index by name, reporting whether it existed.
	DropIndex(ctx context.Context, name string) (bool, error)

	// DropConstraint drops a constraint by name, reporting whether it
	// existed.
	DropConstraint(ctx context.Context, name string) (bool, error)

	// DropAllIndexes removes every index, and every constraint when asked.
	DropAllIndexes(ctx context.Context, includingConstraints bool) error

	// ApplySchema creates everything a schema manifest names.
	ApplySchema(ctx context.Context, schema *SchemaFile) error

	// GetLabels lists the node labels present in the store.
	GetLabels(ctx context.Context) ([]string, error)

	// GetRelationshipTypes lists the relationship types present in the
	// store.
	GetRelationshipTypes(ctx context.Context) ([]string, error)

	// GetLabelProperties lists the property keys in use on a label.
	GetLabelProperties(ctx context.Context, label string) ([]string, error)
}

// GraphPorter moves whole graphs out of and into the store.
type GraphPorter interface {
	// ExportJSON dumps the full graph as a JSON list of entities.
	ExportJSON(ctx context.Context) (*ExportResult, error)

	// ImportJSON recreates a dumped graph, remapping internal ids.
	ImportJSON(ctx context.Context, data []byte) (*ImportStats, error)

	// ExportParquet snapshots nodes and relationships to parquet files.
	ExportParquet(ctx context.Context, dir string) error

	// ImportParquet recreates a parquet snapshot, remapping internal ids.
	ImportParquet(ctx context.Context, dir string) (*ImportStats, error)
}

// RDFManager bridges the property graph to RDF through the n10s plugin
// and its HTTP endpoints.
type RDFManager interface {
	// InitRDFConfig prepares the store for RDF imports.
	InitRDFConfig(ctx context.Context, options map[string]any) error

	// ImportRDF loads an RDF document from a URL reachable by the server.
	ImportRDF(ctx context.Context, url, format string) (*RDFImportResult, error)

	// ImportRDFInline loads an RDF document passed as a string.
	ImportRDFInline(ctx context.Context, rdf, format string) (*RDFImportResult, error)

	// ExportRDF serializes the subgraph selected by a query.
	ExportRDF(ctx context.Context, query string, params map[string]any, format string) (string, error)

	// GetOntology returns an ontology autogenerated from the store.
	GetOntology(ctx context.Context) (string, error)

	// GenerateURI stamps nodes with deterministic uri values so they can
	// round-trip through RDF.
	GenerateURI(ctx context.Context, specs map[string]URISpec, opts URIOptions) error
}

// GraphAdmin covers connection lifecycle and direct driver access.
type GraphAdmin interface {
	// VerifyConnectivity probes the backend.
	VerifyConnectivity(ctx context.Context) error

	// Driver returns the underlying graph driver.
	Driver() driver.GraphDriver

	// Close releases the underlying driver.
	Close(ctx context.Context) error
}

// Compile-time check that Client satisfies every focused interface.
var _ interface {
	GraphQuerier
	NodeManager
	GraphRefactorer
	DataLoader
	SchemaManager
	GraphPorter
	RDFManager
	GraphAdmin
} = (*Client)(nil)
