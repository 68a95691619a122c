package rdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/grafo/pkg/config"
)

const defaultTimeout = 30 * time.Second

// Client calls the HTTP RDF endpoints of a Neo4j server. The endpoint
// root always ends with "/rdf/"; per-database paths are appended per
// call.
type Client struct {
	host       string
	database   string
	username   string
	password   string
	logger     *slog.Logger
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// Config carries the settings needed to reach the RDF endpoints. Host
// takes precedence; when empty it is derived from BoltURI.
type Config struct {
	Host     string
	BoltURI  string
	Database string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *slog.Logger
	Breaker  config.CircuitBreakerConfig
}

// NewClient creates a client for the n10s HTTP endpoints
func NewClient(cfg Config) (*Client, error) {
	host := cfg.Host
	if host == "" {
		derived, err := HostFromBoltURI(cfg.BoltURI)
		if err != nil {
			return nil, err
		}
		host = derived
	}
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		host:     host,
		database: database,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	if cfg.Breaker.Enabled {
		st := gobreaker.Settings{
			Name:        "rdf-endpoint",
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    time.Duration(cfg.Breaker.Interval) * time.Second,
			Timeout:     time.Duration(cfg.Breaker.Timeout) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= cfg.Breaker.ReadyToTripRatio
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String())
			},
		}
		c.cb = gobreaker.NewCircuitBreaker(st)
	}

	return c, nil
}

// HostFromBoltURI derives the HTTP root of the RDF endpoints from a bolt
// connection URI, switching to the standard HTTP port 7474. Secure bolt
// schemes (bolt+s, neo4j+ssc, ...) map to https.
func HostFromBoltURI(boltURI string) (string, error) {
	u, err := url.Parse(boltURI)
	if err != nil {
		return "", fmt.Errorf("parse bolt uri: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("bolt uri %q has no host", boltURI)
	}
	scheme := "http"
	if strings.HasSuffix(u.Scheme, "+s") || strings.HasSuffix(u.Scheme, "+ssc") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:7474/rdf/", scheme, u.Hostname()), nil
}

// Host returns the endpoint root the client talks to.
func (c *Client) Host() string {
	return c.host
}

// Ping verifies the extension is mounted. It answers {"ping":"here!"}
// when reachable.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.get(ctx, c.host+"ping")
	if err != nil {
		return fmt.Errorf("rdf endpoint not reachable at %s: %w", c.host, err)
	}

	var pong map[string]string
	if err := json.Unmarshal(body, &pong); err != nil {
		return fmt.Errorf("unexpected ping response from %s: %w", c.host, err)
	}
	if pong["ping"] != "here!" {
		return fmt.Errorf("unexpected ping response from %s: %q", c.host, string(body))
	}
	return nil
}

// Subgraph returns the RDF serialization, in the requested format, of
// the subgraph selected by the given cypher query.
func (c *Client) Subgraph(ctx context.Context, cypher string, params map[string]any, format string) (string, error) {
	if params == nil {
		params = map[string]any{}
	}

	payload, err := json.Marshal(map[string]any{
		"cypher":       cypher,
		"format":       format,
		"cypherParams": params,
	})
	if err != nil {
		return "", fmt.Errorf("marshal rdf request: %w", err)
	}

	body, err := c.post(ctx, c.host+c.database+"/cypher", payload)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Ontology returns an ontology autogenerated from the labels and
// relationship types present in the database.
func (c *Client) Ontology(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.host+c.database+"/onto")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	send := func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("rdf endpoint returned status %d: %s",
				resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return body, nil
	}

	if c.cb == nil {
		out, err := send()
		if err != nil {
			return nil, err
		}
		return out.([]byte), nil
	}

	out, err := c.cb.Execute(send)
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}
