package grafo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/soundprediction/grafo/pkg/cypher"
	"github.com/soundprediction/grafo/pkg/driver"
)

// defaultRDFFormat is used when a caller leaves the format empty.
// Turtle-star round-trips relationship properties, which plain Turtle
// cannot express.
const defaultRDFFormat = "Turtle-star"

// n10s refuses to import until a uniqueness constraint on Resource.uri
// exists. The name follows the plugin's documentation.
const rdfConstraintQuery = "CREATE CONSTRAINT n10s_unique_uri IF NOT EXISTS " +
	"FOR (r:Resource) REQUIRE r.uri IS UNIQUE"

// InitRDFConfig initializes the n10s graph configuration and creates
// the uniqueness constraint on Resource.uri that imports require.
// Options are handed to n10s.graphconfig.init as given; nil defaults
// vocabulary handling to IGNORE so imported property and relationship
// names arrive without namespace prefixes. Calling it against a store
// that already holds RDF data keeps the existing configuration.
func (c *Client) InitRDFConfig(ctx context.Context, options map[string]any) error {
	if options == nil {
		options = map[string]any{"handleVocabUris": "IGNORE"}
	}

	_, _, err := c.driver.ExecuteQuery(ctx, "CALL n10s.graphconfig.init($options)",
		map[string]any{"options": options})
	if err != nil {
		if driver.IsMissingProcedure(err) {
			return fmt.Errorf("rdf support needs the n10s plugin: %w: %w", ErrFeatureUnavailable, err)
		}
		// init rejects stores that already hold RDF data; the existing
		// configuration stays in effect.
		c.logger.Debug("keeping existing n10s graph config", "error", err)
	}

	if _, _, err := c.driver.ExecuteQuery(ctx, rdfConstraintQuery, nil); err != nil {
		return fmt.Errorf("create rdf uri constraint: %w: %w", ErrQueryFailed, err)
	}
	return nil
}

// RDFImportResult reports what an n10s import did.
type RDFImportResult struct {
	TerminationStatus string `json:"termination_status"`
	TriplesLoaded     int64  `json:"triples_loaded"`
	TriplesParsed     int64  `json:"triples_parsed"`
	ExtraInfo         string `json:"extra_info"`
}

const (
	importRDFQuery = `CALL n10s.rdf.import.fetch($url, $format)
YIELD terminationStatus, triplesLoaded, triplesParsed, extraInfo
RETURN terminationStatus, triplesLoaded, triplesParsed, extraInfo`

	importRDFInlineQuery = `CALL n10s.rdf.import.inline($rdf, $format)
YIELD terminationStatus, triplesLoaded, triplesParsed, extraInfo
RETURN terminationStatus, triplesLoaded, triplesParsed, extraInfo`
)

// ImportRDF fetches and loads an RDF document from a URL reachable by
// the server. Nodes merge on their uri property, so repeating an
// import does not duplicate them. An empty format means Turtle-star.
func (c *Client) ImportRDF(ctx context.Context, url, format string) (*RDFImportResult, error) {
	return c.runRDFImport(ctx, importRDFQuery, map[string]any{
		"url":    url,
		"format": rdfFormat(format),
	})
}

// ImportRDFInline loads an RDF document passed as a string, then
// reverts the %20 escaping n10s applies to labels and property names
// containing spaces.
func (c *Client) ImportRDFInline(ctx context.Context, rdf, format string) (*RDFImportResult, error) {
	result, err := c.runRDFImport(ctx, importRDFInlineQuery, map[string]any{
		"rdf":    rdf,
		"format": rdfFormat(format),
	})
	if err != nil {
		return nil, err
	}
	c.rdfSubgraphCleanup(ctx)
	return result, nil
}

func (c *Client) runRDFImport(ctx context.Context, query string, params map[string]any) (*RDFImportResult, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		if driver.IsMissingProcedure(err) {
			return nil, fmt.Errorf("rdf import needs the n10s plugin: %w: %w", ErrFeatureUnavailable, err)
		}
		return nil, fmt.Errorf("rdf import: %w: %w", ErrQueryFailed, err)
	}
	if len(records) == 0 {
		return &RDFImportResult{}, nil
	}

	row := records[0].AsMap()
	result := &RDFImportResult{}
	result.TerminationStatus, _ = driver.AsString(row["terminationStatus"])
	result.TriplesLoaded, _ = driver.AsInt64(row["triplesLoaded"])
	result.TriplesParsed, _ = driver.AsInt64(row["triplesParsed"])
	result.ExtraInfo, _ = driver.AsString(row["extraInfo"])
	return result, nil
}

// ExportRDF serializes the subgraph selected by query in the requested
// RDF format, via the server's HTTP endpoint. Labels and property
// names still carrying %20 escapes from earlier imports are reverted
// first so the serialization round-trips cleanly.
func (c *Client) ExportRDF(ctx context.Context, query string, params map[string]any, format string) (string, error) {
	if c.rdf == nil {
		return "", fmt.Errorf("rdf export needs an rdf endpoint: %w", ErrFeatureUnavailable)
	}

	c.rdfSubgraphCleanup(ctx)

	out, err := c.rdf.Subgraph(ctx, query, params, rdfFormat(format))
	if err != nil {
		return "", fmt.Errorf("rdf export: %w", err)
	}
	return out, nil
}

// GetOntology returns an ontology autogenerated from the labels and
// relationship types present in the store.
func (c *Client) GetOntology(ctx context.Context) (string, error) {
	if c.rdf == nil {
		return "", fmt.Errorf("ontology export needs an rdf endpoint: %w", ErrFeatureUnavailable)
	}

	out, err := c.rdf.Ontology(ctx)
	if err != nil {
		return "", fmt.Errorf("ontology export: %w", err)
	}
	return out, nil
}

// URINeighbour contributes a property of an adjacent node to the URI
// of the node being keyed.
type URINeighbour struct {
	Label        string `json:"label" yaml:"label"`
	Relationship string `json:"relationship" yaml:"relationship"`
	Property     string `json:"property" yaml:"property"`
}

// URISpec describes how nodes of one label derive their uri value:
// from the listed node properties, optionally joined by properties of
// adjacent nodes. Where is a bare predicate over alias x narrowing
// which nodes are keyed.
type URISpec struct {
	Properties []string       `json:"properties" yaml:"properties"`
	Neighbours []URINeighbour `json:"neighbours,omitempty" yaml:"neighbours,omitempty"`
	Where      string         `json:"where,omitempty" yaml:"where,omitempty"`
}

// URIOptions adjusts how GenerateURI assembles values.
type URIOptions struct {
	// Prefix starts every generated value. Defaults to
	// "neo4j://graph.schema#".
	Prefix string
	// Separator joins the segments. Defaults to "/".
	Separator string
	// Property receives the value. Defaults to "uri".
	Property string
	// AddPrefixes are fixed segments inserted after the label.
	AddPrefixes []string
	// ExcludeLabel drops the label segment.
	ExcludeLabel bool
}

// uriNeighbourFragment walks one hop per configured neighbour and
// folds the matches into {index, map} pairs, so the SET below can pick
// each neighbour's configured property by position.
const uriNeighbourFragment = `WITH *
UNWIND apoc.coll.zip(range(0, size($neighbours)-1), $neighbours) AS pair
WITH *, pair[0] AS ind, pair[1] AS neighbour
CALL apoc.path.expand(x, neighbour['relationship'], neighbour['label'], 1, 1) YIELD path
WITH x, ind, nodes(path) AS hop
UNWIND hop AS nbr
WITH DISTINCT x, ind, nbr
WHERE x <> nbr
WITH * ORDER BY x, ind, id(nbr)
WITH x, ind, collect(nbr) AS matches
WITH x, ind, apoc.map.mergeList(matches) AS nbr
WITH x, collect({index: ind, map: nbr}) AS nbrs`

// GenerateURI stamps the nodes of every spec'd label with the Resource
// label and a deterministic uri derived from their properties, making
// them round-trippable through ExportRDF and ImportRDFInline. Labels
// are processed in sorted order; each one's values are cleaned of
// percent-escapes before the next label starts.
func (c *Client) GenerateURI(ctx context.Context, specs map[string]URISpec, opts URIOptions) error {
	if opts.Prefix == "" {
		opts.Prefix = "neo4j://graph.schema#"
	}
	if opts.Separator == "" {
		opts.Separator = "/"
	}
	if opts.Property == "" {
		opts.Property = "uri"
	}

	labels := make([]string, 0, len(specs))
	for label := range specs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		spec := specs[label]
		if err := validateURISpec(label, spec); err != nil {
			return err
		}

		params := map[string]any{
			"prefix":       opts.Prefix,
			"sep":          opts.Separator,
			"add_prefixes": toAnySlice(opts.AddPrefixes),
			"opt_label":    []any{},
			"properties":   toAnySlice(spec.Properties),
		}
		if !opts.ExcludeLabel {
			params["opt_label"] = []any{label}
		}
		if len(spec.Neighbours) > 0 {
			params["neighbours"] = neighbourParams(spec.Neighbours)
		}

		query := buildURIQuery(label, spec, opts.Property)
		if _, _, err := c.driver.ExecuteWrite(ctx, query, params); err != nil {
			if driver.IsMissingProcedure(err) {
				return fmt.Errorf("uri generation needs the APOC plugin: %w: %w", ErrFeatureUnavailable, err)
			}
			return fmt.Errorf("generate uri for label %q: %w: %w", label, ErrQueryFailed, err)
		}
		c.rdfURICleanup(ctx)
	}
	return nil
}

func validateURISpec(label string, spec URISpec) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: uri spec with empty label", ErrInvalidConfiguration)
	}
	if len(spec.Properties) == 0 && len(spec.Neighbours) == 0 {
		return fmt.Errorf("%w: uri spec for label %q names no properties", ErrInvalidConfiguration, label)
	}
	for i, n := range spec.Neighbours {
		if n.Label == "" || n.Relationship == "" || n.Property == "" {
			return fmt.Errorf("%w: uri spec for label %q: neighbour %d needs label, relationship and property",
				ErrInvalidConfiguration, label, i)
		}
	}
	return nil
}

func buildURIQuery(label string, spec URISpec, uriProp string) string {
	var b strings.Builder
	b.WriteString("MATCH (x:" + cypher.Backtick(label) + ")")
	if where := strings.TrimSpace(spec.Where); where != "" {
		b.WriteString("\nWHERE " + where)
	}
	if len(spec.Neighbours) > 0 {
		b.WriteString("\n" + uriNeighbourFragment)
	}
	b.WriteString("\nSET x:Resource")
	b.WriteString("\nSET x." + cypher.Backtick(uriProp) +
		" = apoc.text.urlencode($prefix + apoc.text.join($add_prefixes + $opt_label + ")
	if len(spec.Neighbours) > 0 {
		b.WriteString("[nbr IN nbrs | nbr['map'][$neighbours[nbr['index']]['property']]] + ")
	}
	b.WriteString("[prop IN $properties | x[prop]], $sep))")
	return b.String()
}

func neighbourParams(neighbours []URINeighbour) []any {
	out := make([]any, len(neighbours))
	for i, n := range neighbours {
		out[i] = map[string]any{
			"label":        n.Label,
			"relationship": n.Relationship,
			"property":     n.Property,
		}
	}
	return out
}

// rdfSubgraphCleanup undoes the %20 escaping n10s applies to labels
// and property names containing spaces, then cleans uri values. Best
// effort: a store without APOC just keeps the escaped names.
func (c *Client) rdfSubgraphCleanup(ctx context.Context) {
	labels, err := c.GetLabels(ctx)
	if err != nil {
		c.logger.Warn("rdf cleanup skipped", "error", err)
		return
	}

	escaped := make([]any, 0, len(labels))
	for _, label := range labels {
		if strings.Contains(label, "%20") {
			escaped = append(escaped, label)
		}
	}
	if len(escaped) > 0 {
		const renameLabels = `UNWIND $labels AS label
CALL apoc.refactor.rename.label(label, apoc.text.regreplace(label, '%20', ' '))
YIELD batches, failedBatches, total, failedOperations
RETURN batches, failedBatches, total, failedOperations`
		if _, _, err := c.driver.ExecuteQuery(ctx, renameLabels, map[string]any{"labels": escaped}); err != nil {
			c.logger.Warn("rdf label cleanup skipped", "error", err)
		}
	}

	const renameProperties = "CALL db.schema.nodeTypeProperties() YIELD nodeLabels, propertyName\n" +
		"WHERE propertyName CONTAINS '%20'\n" +
		"CALL apoc.cypher.doIt(\n" +
		"  'MATCH (node:`' + apoc.text.join(nodeLabels, '`:`') + '`) ' +\n" +
		"  'WHERE \"' + propertyName + '\" IN keys(node) ' +\n" +
		"  'SET node.`' + apoc.text.replace(propertyName, '%20', ' ') + '` = node.`' + propertyName + '` ' +\n" +
		"  'REMOVE node.`' + propertyName + '`',\n" +
		"  {}\n" +
		") YIELD value\n" +
		"RETURN value"
	if _, _, err := c.driver.ExecuteQuery(ctx, renameProperties, nil); err != nil {
		c.logger.Warn("rdf property cleanup skipped", "error", err)
	}

	c.rdfURICleanup(ctx)
}

// rdfURICleanup reverts the percent-escapes left in generated uri
// values so they read as URIs again.
func (c *Client) rdfURICleanup(ctx context.Context) {
	const query = `MATCH (n)
WHERE n.uri IS NOT NULL
SET n.uri = apoc.text.replace(n.uri, '%23', '#')
SET n.uri = apoc.text.replace(n.uri, '%2F', '/')
SET n.uri = apoc.text.replace(n.uri, '%3A', ':')`
	if _, _, err := c.driver.ExecuteQuery(ctx, query, nil); err != nil {
		c.logger.Warn("uri cleanup skipped", "error", err)
	}
}

func rdfFormat(format string) string {
	if format == "" {
		return defaultRDFFormat
	}
	return format
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
