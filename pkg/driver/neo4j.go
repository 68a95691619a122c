package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/soundprediction/grafo/pkg/types"
)

// DefaultDatabase is the database used when none is configured.
const DefaultDatabase = "neo4j"

// Neo4jConfig holds the settings needed to reach a Bolt endpoint.
type Neo4jConfig struct {
	// URI is the Bolt endpoint, e.g. "bolt://localhost:7687" or
	// "neo4j+s://example.com". Only bolt and neo4j schemes are accepted.
	URI      string
	Username string
	Password string
	// Database selects the database for every session. Empty means
	// DefaultDatabase.
	Database string
	// MaxConnectionPoolSize caps the driver's connection pool. Zero or
	// negative keeps the driver default.
	MaxConnectionPoolSize int
	// ConnectionTimeout bounds waiting for a pooled connection. Zero
	// keeps the driver default.
	ConnectionTimeout time.Duration
	// Logger receives query-level debug logging. Nil means slog.Default().
	Logger *slog.Logger
}

// Validate checks the configuration before any connection is attempted.
func (c *Neo4jConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("%w: uri is required", ErrInvalidConfig)
	}
	scheme, _, found := strings.Cut(c.URI, "://")
	if !found {
		return fmt.Errorf("%w: uri %q has no scheme", ErrInvalidConfig, c.URI)
	}
	switch scheme {
	case "bolt", "bolt+s", "bolt+ssc", "neo4j", "neo4j+s", "neo4j+ssc":
	default:
		return fmt.Errorf("%w: unsupported uri scheme %q", ErrInvalidConfig, scheme)
	}
	return nil
}

// Neo4jDriver implements GraphDriver on top of the official Bolt driver.
// Every operation opens its own session and closes it before returning,
// except Raw, which transfers session ownership to the returned RawResult.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jDriver creates a driver for the given Bolt endpoint.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	return NewNeo4jDriverWithConfig(&Neo4jConfig{
		URI:      uri,
		Username: username,
		Password: password,
		Database: database,
	})
}

// NewNeo4jDriverWithConfig creates a driver from a full configuration.
// The endpoint is not contacted; call VerifyConnectivity to probe it.
func NewNeo4jDriverWithConfig(config *Neo4jConfig) (*Neo4jDriver, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := neo4j.NewDriverWithContext(config.URI,
		neo4j.BasicAuth(config.Username, config.Password, ""),
		func(c *neo4j.Config) {
			if config.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = config.MaxConnectionPoolSize
			}
			if config.ConnectionTimeout > 0 {
				c.ConnectionAcquisitionTimeout = config.ConnectionTimeout
			}
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	database := config.Database
	if database == "" {
		database = DefaultDatabase
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
		logger:   logger,
	}, nil
}

// ExecuteQuery runs a single Cypher statement in its own session and
// materializes the full result. Graph entities and temporal values in the
// result are converted to the neutral types in pkg/types.
func (n *Neo4jDriver) ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]*types.Record, *types.Summary, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	n.logger.Debug("executing cypher", "query", cypher, "params", len(params))

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run query: %w", err)
	}

	dbRecords, err := result.Collect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to collect records: %w", err)
	}

	summary, err := result.Consume(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to consume result: %w", err)
	}

	records := make([]*types.Record, 0, len(dbRecords))
	for _, rec := range dbRecords {
		records = append(records, recordFromDB(rec))
	}
	return records, summaryFromDB(summary), nil
}

// ExecuteWrite runs a Cypher statement inside a managed write
// transaction. The driver retries the transaction function on transient
// failures, so statements must be safe to replay.
func (n *Neo4jDriver) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) ([]*types.Record, *types.Summary, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	n.logger.Debug("executing cypher write", "query", cypher, "params", len(params))

	type writeOutcome struct {
		records []*neo4j.Record
		summary neo4j.ResultSummary
	}

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		dbRecords, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		summary, err := result.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return writeOutcome{records: dbRecords, summary: summary}, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run write query: %w", err)
	}

	outcome := out.(writeOutcome)
	records := make([]*types.Record, 0, len(outcome.records))
	for _, rec := range outcome.records {
		records = append(records, recordFromDB(rec))
	}
	return records, summaryFromDB(outcome.summary), nil
}

// Raw runs a Cypher statement and returns the live result stream. The
// session stays open until the returned RawResult is closed.
func (n *Neo4jDriver) Raw(ctx context.Context, cypher string, params map[string]any) (*RawResult, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		session.Close(ctx)
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	return &RawResult{session: session, result: result}, nil
}

// VerifyConnectivity probes the endpoint.
func (n *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	if err := n.client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to reach neo4j at configured uri: %w", err)
	}
	return nil
}

// Close shuts down the underlying connection pool.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// Provider reports ProviderNeo4j.
func (n *Neo4jDriver) Provider() GraphProvider {
	return ProviderNeo4j
}

func recordFromDB(rec *neo4j.Record) *types.Record {
	keys := make([]string, len(rec.Keys))
	copy(keys, rec.Keys)
	values := make([]any, len(rec.Values))
	for i, v := range rec.Values {
		values[i] = convertValue(v)
	}
	return &types.Record{Keys: keys, Values: values}
}

// convertValue maps driver-native values onto pkg/types values. Temporal
// values become time.Time; containers are converted element-wise.
func convertValue(v any) any {
	switch val := v.(type) {
	case dbtype.Node:
		return nodeFromDB(val)
	case dbtype.Relationship:
		return relationshipFromDB(val)
	case dbtype.Path:
		return pathFromDB(val)
	case dbtype.Date:
		return val.Time()
	case dbtype.LocalDateTime:
		return val.Time()
	case dbtype.Time:
		return val.Time()
	case dbtype.LocalTime:
		return val.Time()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = convertValue(item)
		}
		return out
	case map[string]any:
		return convertProps(val)
	default:
		return v
	}
}

func convertProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = convertValue(v)
	}
	return out
}

func nodeFromDB(node dbtype.Node) types.Node {
	return types.Node{
		ID:        node.Id,
		ElementID: node.ElementId,
		Labels:    node.Labels,
		Props:     convertProps(node.Props),
	}
}

func relationshipFromDB(rel dbtype.Relationship) types.Relationship {
	return types.Relationship{
		ID:             rel.Id,
		ElementID:      rel.ElementId,
		Type:           rel.Type,
		StartID:        rel.StartId,
		EndID:          rel.EndId,
		StartElementID: rel.StartElementId,
		EndElementID:   rel.EndElementId,
		Props:          convertProps(rel.Props),
	}
}

func pathFromDB(path dbtype.Path) types.Path {
	nodes := make([]types.Node, len(path.Nodes))
	for i, n := range path.Nodes {
		nodes[i] = nodeFromDB(n)
	}
	rels := make([]types.Relationship, len(path.Relationships))
	for i, r := range path.Relationships {
		rels[i] = relationshipFromDB(r)
	}
	return types.Path{Nodes: nodes, Relationships: rels}
}

func summaryFromDB(summary neo4j.ResultSummary) *types.Summary {
	out := &types.Summary{}
	if summary == nil {
		return out
	}
	counters := summary.Counters()
	out.NodesCreated = counters.NodesCreated()
	out.NodesDeleted = counters.NodesDeleted()
	out.RelationshipsCreated = counters.RelationshipsCreated()
	out.RelationshipsDeleted = counters.RelationshipsDeleted()
	out.PropertiesSet = counters.PropertiesSet()
	out.LabelsAdded = counters.LabelsAdded()
	out.IndexesAdded = counters.IndexesAdded()
	out.IndexesRemoved = counters.IndexesRemoved()
	out.ConstraintsAdded = counters.ConstraintsAdded()
	out.ConstraintsRemoved = counters.ConstraintsRemoved()
	out.ExecutionTime = summary.ResultAvailableAfter() + summary.ResultConsumedAfter()
	return out
}
