package driver

import (
	"context"

	"github.com/soundprediction/grafo/pkg/types"
)

// GraphProvider identifies the backend behind a GraphDriver.
type GraphProvider string

const (
	// ProviderNeo4j is the Bolt-connected Neo4j (or Memgraph) backend.
	ProviderNeo4j GraphProvider = "neo4j"
	// ProviderLadybug is the embedded, file-backed backend.
	ProviderLadybug GraphProvider = "ladybug"
)

// QueryRunner executes a single Cypher statement and materializes the
// full result. Each call runs in its own session; no state is shared
// between calls.
type QueryRunner interface {
	ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]*types.Record, *types.Summary, error)

	// ExecuteWrite runs the statement inside a managed write
	// transaction so transient failures are retried. Backends without
	// managed transactions fall back to ExecuteQuery.
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) ([]*types.Record, *types.Summary, error)
}

// RawRunner executes a Cypher statement and hands back the live result
// stream instead of materializing it. The caller owns the returned
// RawResult and must Close it to release the underlying session.
type RawRunner interface {
	Raw(ctx context.Context, cypher string, params map[string]any) (*RawResult, error)
}

// Pinger reports whether the backend is reachable.
type Pinger interface {
	VerifyConnectivity(ctx context.Context) error
}

// GraphDriver is the full contract a backend implements.
type GraphDriver interface {
	QueryRunner
	RawRunner
	Pinger

	// Close releases all resources held by the driver. The driver must
	// not be used after Close returns.
	Close(ctx context.Context) error

	// Provider reports which backend this driver talks to.
	Provider() GraphProvider
}

// Compile-time interface checks.
var (
	_ GraphDriver = (*Neo4jDriver)(nil)
	_ GraphDriver = (*LadybugDriver)(nil)
)
