// Package rdf provides an HTTP client for the endpoints that the
// neosemantics (n10s) server extension mounts under /rdf on a Neo4j
// instance. The client covers the ping, cypher serialization and
// ontology endpoints and guards them with a circuit breaker so a
// misconfigured or absent extension does not hang callers.
//
// Importing triples runs through plain cypher (the n10s.rdf.import.*
// procedures) and therefore lives with the query layer, not here.
package rdf
