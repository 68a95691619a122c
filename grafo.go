package grafo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/grafo/pkg/config"
	"github.com/soundprediction/grafo/pkg/driver"
	"github.com/soundprediction/grafo/pkg/rdf"
)

// Client is the caller-facing handle on a property graph. It generates
// query text and parameter bindings for the common operations, delegates
// execution to the configured driver, and materializes results in the
// representation the caller picks.
//
// A Client is safe for concurrent use; every operation runs in its own
// session and no state is shared between calls.
type Client struct {
	driver driver.GraphDriver
	logger *slog.Logger

	// rdf is the HTTP client for the n10s endpoints. Nil unless the
	// backend is Neo4j and an endpoint was configured or derivable.
	rdf *rdf.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used by the client and its operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRDF attaches an RDF endpoint client, enabling ExportRDF and
// GetOntology.
func WithRDF(rc *rdf.Client) Option {
	return func(c *Client) {
		c.rdf = rc
	}
}

// NewClient wraps an existing driver.
func NewClient(d driver.GraphDriver, opts ...Option) (*Client, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: driver is nil", ErrInvalidConfiguration)
	}

	c := &Client{
		driver: d,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClientFromConfig builds the driver named by the configuration and
// wraps it. For the Neo4j backend an RDF endpoint client is attached,
// with its host derived from the bolt URI unless configured explicitly.
func NewClientFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfiguration)
	}

	var (
		d   driver.GraphDriver
		err error
	)
	switch cfg.Database.Driver {
	case "", "neo4j":
		d, err = driver.NewNeo4jDriverWithConfig(&driver.Neo4jConfig{
			URI:                   cfg.Database.URI,
			Username:              cfg.Database.Username,
			Password:              cfg.Database.Password,
			Database:              cfg.Database.Database,
			MaxConnectionPoolSize: cfg.Database.PoolSize,
			ConnectionTimeout:     cfg.Database.ConnectionTimeout,
		})
	case "ladybug":
		d, err = driver.NewLadybugDriver(cfg.Database.URI)
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfiguration, cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", cfg.Database.Driver, err)
	}

	c, err := NewClient(d, opts...)
	if err != nil {
		return nil, err
	}

	if d.Provider() == driver.ProviderNeo4j && c.rdf == nil {
		rc, rdfErr := rdf.NewClient(rdf.Config{
			Host:     cfg.RDF.Host,
			BoltURI:  cfg.Database.URI,
			Database: cfg.Database.Database,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			Logger:   c.logger,
			Breaker:  cfg.CircuitBreaker,
		})
		if rdfErr != nil {
			c.logger.Warn("rdf endpoint unavailable", "error", rdfErr)
		} else {
			c.rdf = rc
		}
	}

	return c, nil
}

// Driver returns the underlying graph driver.
func (c *Client) Driver() driver.GraphDriver {
	return c.driver
}

// VerifyConnectivity probes the backend.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

var (
	// ErrInvalidConfiguration is returned when a client cannot be built
	// from the given configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrQueryFailed wraps execution failures on paths that propagate
	// errors (write, graph and raw representations).
	ErrQueryFailed = errors.New("query execution failed")
	// ErrFeatureUnavailable is returned when an operation needs a server
	// extension (APOC, n10s) or an endpoint the backend does not provide.
	ErrFeatureUnavailable = errors.New("feature unavailable on this backend")
)
