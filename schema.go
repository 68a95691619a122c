package grafo

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/grafo/pkg/cypher"
	"github.com/soundprediction/grafo/pkg/driver"
	"github.com/soundprediction/grafo/pkg/frame"
)

// GetIndexes returns the database indexes as a frame with the columns
// name, labelsOrTypes, properties, type and owningConstraint, optionally
// restricted to the given index types (RANGE, TEXT, LOOKUP, ...). The
// frame is built row-wise, so the list-valued columns stay lists instead
// of flattening into indexed columns.
func (c *Client) GetIndexes(ctx context.Context, types ...string) (*frame.Frame, error) {
	query := "SHOW INDEXES YIELD name, labelsOrTypes, properties, type, owningConstraint RETURN *"
	var params map[string]any
	if len(types) > 0 {
		query = "SHOW INDEXES YIELD name, labelsOrTypes, properties, type, owningConstraint WHERE type IN $types RETURN *"
		list := make([]any, len(types))
		for i, t := range types {
			list[i] = t
		}
		params = map[string]any{"types": list}
	}

	rows, err := c.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return frame.FromMaps(rows), nil
}

// GetConstraints returns the database constraints as a frame with the
// columns name, type, labelsOrTypes and properties, built row-wise like
// GetIndexes.
func (c *Client) GetConstraints(ctx context.Context) (*frame.Frame, error) {
	rows, err := c.Query(ctx, "SHOW CONSTRAINTS YIELD name, type, labelsOrTypes, properties RETURN *", nil)
	if err != nil {
		return nil, err
	}
	return frame.FromMaps(rows), nil
}

// CreateIndex creates an index from a "Label.property" spec, named after
// the spec, unless an index on that label/property combination already
// exists under any name. It reports whether a new index was created.
//
// The label must not contain a dot; everything after the first dot is the
// property name.
func (c *Client) CreateIndex(ctx context.Context, spec string) (bool, error) {
	label, key, err := splitSchemaSpec(spec)
	if err != nil {
		return false, err
	}

	exists, err := c.indexExists(ctx, label, key)
	if err != nil || exists {
		return false, err
	}

	query := fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (s%s) ON (s.%s)",
		cypher.Backtick(label+"."+key), cypher.LabelExpr(label), cypher.Backtick(key))
	if _, _, err := c.driver.ExecuteQuery(ctx, query, nil); err != nil {
		return false, fmt.Errorf("create index %s: %w: %w", spec, ErrQueryFailed, err)
	}
	return true, nil
}

// indexExists checks the label/property pair against every index row,
// comparing composite entries by their underscore-joined form, so
// ("car", "color_make") matches an index on ["car"] over
// ["color", "make"].
func (c *Client) indexExists(ctx context.Context, label, key string) (bool, error) {
	indexes, err := c.GetIndexes(ctx)
	if err != nil {
		return false, err
	}

	labelsCol, ok := indexes.Column("labelsOrTypes")
	if !ok {
		return false, nil
	}
	propsCol, ok := indexes.Column("properties")
	if !ok {
		return false, nil
	}

	for i := range labelsCol {
		if joinUnderscore(labelsCol[i]) == label && joinUnderscore(propsCol[i]) == key {
			return true, nil
		}
	}
	return false, nil
}

func joinUnderscore(v any) string {
	items, ok := driver.AsAnySlice(v)
	if !ok {
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprint(item)
	}
	return strings.Join(parts, "_")
}

// CreateConstraint creates a uniqueness constraint from a
// "Label.property.UNIQUE" spec (the .UNIQUE suffix may be omitted; no
// other constraint type is supported), named Label.property.UNIQUE, unless
// a constraint with that name already exists. It reports whether a new
// constraint was created. A uniqueness constraint also creates the backing
// index, so no separate CreateIndex call is needed for the same pair.
func (c *Client) CreateConstraint(ctx context.Context, spec string) (bool, error) {
	label, key, err := splitSchemaSpec(strings.TrimSuffix(spec, ".UNIQUE"))
	if err != nil {
		return false, err
	}
	name := label + "." + key + ".UNIQUE"

	constraints, err := c.GetConstraints(ctx)
	if err != nil {
		return false, err
	}
	if names, ok := constraints.Column("name"); ok {
		for _, n := range names {
			if existing, ok := driver.AsString(n); ok && existing == name {
				return false, nil
			}
		}
	}

	query := fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (s%s) REQUIRE s.%s IS UNIQUE",
		cypher.Backtick(name), cypher.LabelExpr(label), cypher.Backtick(key))
	if _, _, err := c.driver.ExecuteQuery(ctx, query, nil); err != nil {
		return false, fmt.Errorf("create constraint %s: %w: %w", name, ErrQueryFailed, err)
	}
	return true, nil
}

// DropIndex removes the named index and reports whether one was actually
// dropped; a missing index is not an error.
func (c *Client) DropIndex(ctx context.Context, name string) (bool, error) {
	query := "DROP INDEX " + cypher.Backtick(name) + " IF EXISTS"
	_, summary, err := c.driver.ExecuteQuery(ctx, query, nil)
	if err != nil {
		return false, fmt.Errorf("drop index %s: %w: %w", name, ErrQueryFailed, err)
	}
	return summary != nil && summary.IndexesRemoved > 0, nil
}

// DropConstraint removes the named constraint and reports whether one was
// actually dropped; a missing constraint is not an error.
func (c *Client) DropConstraint(ctx context.Context, name string) (bool, error) {
	query := "DROP CONSTRAINT " + cypher.Backtick(name) + " IF EXISTS"
	_, summary, err := c.driver.ExecuteQuery(ctx, query, nil)
	if err != nil {
		return false, fmt.Errorf("drop constraint %s: %w: %w", name, ErrQueryFailed, err)
	}
	return summary != nil && summary.ConstraintsRemoved > 0, nil
}

// DropAllIndexes removes every index and, when includingConstraints, every
// constraint. With APOC installed a single apoc.schema.assert call clears
// both; otherwise they are enumerated and dropped one by one. Token LOOKUP
// indexes are left alone, the database needs them for label scans. When
// RDF support is attached the n10s_unique_uri constraint is kept, n10s
// refuses to work without it.
func (c *Client) DropAllIndexes(ctx context.Context, includingConstraints bool) error {
	if includingConstraints && c.rdf == nil {
		_, _, err := c.driver.ExecuteQuery(ctx, "CALL apoc.schema.assert({},{})", nil)
		if err == nil {
			return nil
		}
		if !driver.IsMissingProcedure(err) {
			return fmt.Errorf("drop all indexes: %w: %w", ErrQueryFailed, err)
		}
		c.logger.Debug("apoc unavailable, dropping schema entries one by one")
	}

	if includingConstraints {
		if err := c.dropAllConstraints(ctx); err != nil {
			return err
		}
	}

	indexes, err := c.GetIndexes(ctx)
	if err != nil {
		return err
	}
	names, ok := indexes.Column("name")
	if !ok {
		return nil
	}
	typesCol, _ := indexes.Column("type")
	ownersCol, _ := indexes.Column("owningConstraint")

	for i, n := range names {
		name, ok := driver.AsString(n)
		if !ok {
			continue
		}
		if typesCol != nil {
			if t, ok := driver.AsString(typesCol[i]); ok && t == "LOOKUP" {
				continue
			}
		}
		// An index backing a constraint cannot be dropped directly; it
		// goes away with its constraint.
		if ownersCol != nil && ownersCol[i] != nil {
			continue
		}
		if _, err := c.DropIndex(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) dropAllConstraints(ctx context.Context) error {
	constraints, err := c.GetConstraints(ctx)
	if err != nil {
		return err
	}
	names, ok := constraints.Column("name")
	if !ok {
		return nil
	}

	for _, n := range names {
		name, ok := driver.AsString(n)
		if !ok {
			continue
		}
		if c.rdf != nil && name == "n10s_unique_uri" {
			continue
		}
		if _, err := c.DropConstraint(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// GetLabels returns every node label present in the database, in no
// particular order.
func (c *Client) GetLabels(ctx context.Context) ([]string, error) {
	return c.stringColumn(ctx, "CALL db.labels() YIELD label RETURN label", nil, "label")
}

// GetRelationshipTypes returns every relationship type present in the
// database, in no particular order.
func (c *Client) GetRelationshipTypes(ctx context.Context) ([]string, error) {
	return c.stringColumn(ctx,
		"CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType", nil, "relationshipType")
}

// GetLabelProperties returns the sorted property names observed on nodes
// carrying the given label.
func (c *Client) GetLabelProperties(ctx context.Context, label string) ([]string, error) {
	query := "CALL db.schema.nodeTypeProperties() YIELD nodeLabels, propertyName " +
		"WHERE $label IN nodeLabels AND propertyName IS NOT NULL " +
		"RETURN DISTINCT propertyName ORDER BY propertyName"
	return c.stringColumn(ctx, query, map[string]any{"label": label}, "propertyName")
}

func (c *Client) stringColumn(ctx context.Context, query string, params map[string]any, field string) ([]string, error) {
	records, _, err := c.driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w: %w", field, ErrQueryFailed, err)
	}

	out := make([]string, 0, len(records))
	for _, rec := range records {
		s, err := driver.MustString(rec.Values[0], field)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// SchemaFile is a declarative index and constraint manifest:
//
//	indexes:
//	  - Person.name
//	constraints:
//	  - Person.ssn.UNIQUE
type SchemaFile struct {
	Indexes     []string `yaml:"indexes"`
	Constraints []string `yaml:"constraints"`
}

// LoadSchemaFile reads and decodes a YAML schema manifest.
func LoadSchemaFile(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var schema SchemaFile
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("%w: parsing schema file %s: %w", ErrInvalidConfiguration, path, err)
	}
	return &schema, nil
}

// ApplySchema creates whatever the manifest names that does not already
// exist. Constraints go first: each uniqueness constraint brings its own
// backing index, which then satisfies an index spec on the same pair.
func (c *Client) ApplySchema(ctx context.Context, schema *SchemaFile) error {
	for _, spec := range schema.Constraints {
		if _, err := c.CreateConstraint(ctx, spec); err != nil {
			return err
		}
	}
	for _, spec := range schema.Indexes {
		if _, err := c.CreateIndex(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

func splitSchemaSpec(spec string) (label, key string, err error) {
	i := strings.Index(spec, ".")
	if i <= 0 || i == len(spec)-1 {
		return "", "", fmt.Errorf("%w: schema spec %q, want Label.property", ErrInvalidConfiguration, spec)
	}
	return spec[:i], spec[i+1:], nil
}
