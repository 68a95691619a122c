package grafo_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/types"
)

func TestCreateIndex(t *testing.T) {
	fake := &fakeDriver{}
	client := newTestClient(t, fake)

	created, err := client.CreateIndex(context.Background(), "person.name")
	require.NoError(t, err)
	assert.True(t, created)

	require.Len(t, fake.calls, 2)
	assert.Contains(t, fake.calls[0].Query, "SHOW INDEXES")
	assert.Equal(t, "CREATE INDEX `person.name` IF NOT EXISTS FOR (s:`person`) ON (s.`name`)",
		fake.calls[1].Query)
}

func TestCreateIndexAlreadyCovered(t *testing.T) {
	fake := &fakeDriver{}
	fake.respond = func(query string, _ map[string]any) ([]*types.Record, *types.Summary, error) {
		if strings.Contains(query, "SHOW INDEXES") {
			return []*types.Record{record(
				[]string{"name", "labelsOrTypes", "properties", "type", "owningConstraint"},
				"some_existing_name", []any{"car"}, []any{"color", "make"}, "RANGE", nil,
			)}, nil, nil
		}
		return nil, nil, nil
	}
	client := newTestClient(t, fake)

	// A composite index on (color, make) satisfies the underscore-joined
	// spec regardless of the index name.
	created, err := client.CreateIndex(context.Background(), "car.color_make")
	require.NoError(t, err)
	assert.False(t, created)
	require.Len(t, fake.calls, 1)
}

func TestCreateIndexRejectsBadSpec(t *testing.T) {
	client := newTestClient(t, &fakeDriver{})

	for _, spec := range []string{"noDot", ".name", "person."} {
		_, err := client.CreateIndex(context.Background(), spec)
		require.ErrorIs(t, err, grafo.ErrInvalidConfiguration, "spec %q", spec)
	}
}

func TestCreateConstraint(t *testing.T) {
	for _, spec := range []string{"person.ssn", "person.ssn.UNIQUE"} {
		t.Run(spec, func(t *testing.T) {
			fake := &fakeDriver{}
			client := newTestClient(t, fake)

			created, err := client.CreateConstraint(context.Background(), spec)
			require.NoError(t, err)
			assert.True(t, created)

			require.Len(t, fake.calls, 2)
			assert.Contains(t, fake.calls[0].Query, "SHOW CONSTRAINTS")
			assert.Equal(t,
				"CREATE CONSTRAINT `person.ssn.UNIQUE` IF NOT EXISTS FOR (s:`person`) REQUIRE s.`ssn` IS UNIQUE",
				fake.calls[1].Query)
		})
	}
}

func TestCreateConstraintAlreadyExists(t *testing.T) {
	fake := &fakeDriver{}
	fake.respond = func(query string, _ map[string]any) ([]*types.Record, *types.Summary, error) {
		if strings.Contains(query, "SHOW CONSTRAINTS") {
			return []*types.Record{record(
				[]string{"name", "type", "labelsOrTypes", "properties"},
				"person.ssn.UNIQUE", "UNIQUENESS", []any{"person"}, []any{"ssn"},
			)}, nil, nil
		}
		return nil, nil, nil
	}
	client := newTestClient(t, fake)

	created, err := client.CreateConstraint(context.Background(), "person.ssn.UNIQUE")
	require.NoError(t, err)
	assert.False(t, created)
	require.Len(t, fake.calls, 1)
}

func TestDropIndex(t *testing.T) {
	fake := &fakeDriver{respond: respondWith(nil, &types.Summary{IndexesRemoved: 1})}
	client := newTestClient(t, fake)

	dropped, err := client.DropIndex(context.Background(), "person.name")
	require.NoError(t, err)
	assert.True(t, dropped)
	assert.Equal(t, "DROP INDEX `person.name` IF EXISTS", fake.lastCall().Query)
}

func TestDropIndexMissing(t *testing.T) {
	fake := &fakeDriver{}
	client := newTestClient(t, fake)

	dropped, err := client.DropIndex(context.Background(), "person.name")
	require.NoError(t, err)
	assert.False(t, dropped)
}

func TestDropConstraint(t *testing.T) {
	fake := &fakeDriver{respond: respondWith(nil, &types.Summary{ConstraintsRemoved: 1})}
	client := newTestClient(t, fake)

	dropped, err := client.DropConstraint(context.Background(), "person.ssn.UNIQUE")
	require.NoError(t, err)
	assert.True(t, dropped)
	assert.Equal(t, "DROP CONSTRAINT `person.ssn.UNIQUE` IF EXISTS", fake.lastCall().Query)
}

func TestDropAllIndexesWithApoc(t *testing.T) {
	fake := &fakeDriver{}
	client := newTestClient(t, fake)

	require.NoError(t, client.DropAllIndexes(context.Background(), true))

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "CALL apoc.schema.assert({},{})", fake.calls[0].Query)
}

func TestDropAllIndexesManualFallback(t *testing.T) {
	fake := &fakeDriver{}
	fake.respond = func(query string, _ map[string]any) ([]*types.Record, *types.Summary, error) {
		switch {
		case strings.Contains(query, "apoc.schema.assert"):
			return nil, nil, errors.New("There is no procedure with the name `apoc.schema.assert` registered for this database instance")
		case strings.Contains(query, "SHOW CONSTRAINTS"):
			return []*types.Record{record(
				[]string{"name", "type", "labelsOrTypes", "properties"},
				"person.ssn.UNIQUE", "UNIQUENESS", []any{"person"}, []any{"ssn"},
			)}, nil, nil
		case strings.Contains(query, "SHOW INDEXES"):
			return []*types.Record{
				record([]string{"name", "labelsOrTypes", "properties", "type", "owningConstraint"},
					"node_label_lookup", nil, nil, "LOOKUP", nil),
				record([]string{"name", "labelsOrTypes", "properties", "type", "owningConstraint"},
					"person.ssn.UNIQUE", []any{"person"}, []any{"ssn"}, "RANGE", "person.ssn.UNIQUE"),
				record([]string{"name", "labelsOrTypes", "properties", "type", "owningConstraint"},
					"person.name", []any{"person"}, []any{"name"}, "RANGE", nil),
			}, nil, nil
		case strings.HasPrefix(query, "DROP"):
			return nil, &types.Summary{IndexesRemoved: 1, ConstraintsRemoved: 1}, nil
		}
		return nil, nil, nil
	}
	client := newTestClient(t, fake)

	require.NoError(t, client.DropAllIndexes(context.Background(), true))

	var drops []string
	for _, got := range fake.calls {
		if strings.HasPrefix(got.Query, "DROP") {
			drops = append(drops, got.Query)
		}
	}
	// The LOOKUP index and the constraint-backing index are left alone.
	assert.Equal(t, []string{
		"DROP CONSTRAINT `person.ssn.UNIQUE` IF EXISTS",
		"DROP INDEX `person.name` IF EXISTS",
	}, drops)
}

func TestDropAllIndexesLeavesConstraints(t *testing.T) {
	fake := &fakeDriver{}
	client := newTestClient(t, fake)

	require.NoError(t, client.DropAllIndexes(context.Background(), false))

	for _, got := range fake.calls {
		assert.NotContains(t, got.Query, "apoc.schema.assert")
		assert.NotContains(t, got.Query, "SHOW CONSTRAINTS")
	}
}

func TestGetLabels(t *testing.T) {
	fake := &fakeDriver{respond: respondWith([]*types.Record{
		record([]string{"label"}, "patient"),
		record([]string{"label"}, "doctor"),
	}, nil)}
	client := newTestClient(t, fake)

	labels, err := client.GetLabels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"patient", "doctor"}, labels)
	assert.Equal(t, "CALL db.labels() YIELD label RETURN label", fake.lastCall().Query)
}

func TestGetLabelsPropagatesFailure(t *testing.T) {
	fake := &fakeDriver{respond: failWith(errors.New("boom"))}
	client := newTestClient(t, fake)

	_, err := client.GetLabels(context.Background())
	require.ErrorIs(t, err, grafo.ErrQueryFailed)
}

func TestGetLabelProperties(t *testing.T) {
	fake := &fakeDriver{respond: respondWith([]*types.Record{
		record([]string{"propertyName"}, "age"),
		record([]string{"propertyName"}, "name"),
	}, nil)}
	client := newTestClient(t, fake)

	props, err := client.GetLabelProperties(context.Background(), "patient")
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "name"}, props)

	got := fake.lastCall()
	assert.Contains(t, got.Query, "db.schema.nodeTypeProperties()")
	assert.Equal(t, map[string]any{"label": "patient"}, got.Params)
}

func TestLoadSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	manifest := "indexes:\n  - Person.name\nconstraints:\n  - Person.ssn.UNIQUE\n"
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	schema, err := grafo.LoadSchemaFile(path)
	require.NoError(t, err)
	assert.Equal(t, &grafo.SchemaFile{
		Indexes:     []string{"Person.name"},
		Constraints: []string{"Person.ssn.UNIQUE"},
	}, schema)
}

func TestLoadSchemaFileMissing(t *testing.T) {
	_, err := grafo.LoadSchemaFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading schema file")
}

func TestLoadSchemaFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indexes: ["), 0o644))

	_, err := grafo.LoadSchemaFile(path)
	require.ErrorIs(t, err, grafo.ErrInvalidConfiguration)
}

func TestApplySchemaCreatesConstraintsFirst(t *testing.T) {
	fake := &fakeDriver{}
	client := newTestClient(t, fake)

	err := client.ApplySchema(context.Background(), &grafo.SchemaFile{
		Indexes:     []string{"Person.name"},
		Constraints: []string{"Person.ssn.UNIQUE"},
	})
	require.NoError(t, err)

	constraintAt, indexAt := -1, -1
	for i, got := range fake.calls {
		if strings.HasPrefix(got.Query, "CREATE CONSTRAINT") {
			constraintAt = i
		}
		if strings.HasPrefix(got.Query, "CREATE INDEX") {
			indexAt = i
		}
	}
	require.NotEqual(t, -1, constraintAt)
	require.NotEqual(t, -1, indexAt)
	assert.Less(t, constraintAt, indexAt)
}
