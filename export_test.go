package grafo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/types"
)

func TestExportJSON(t *testing.T) {
	fake := &fakeDriver{respond: respondWith([]*types.Record{
		record([]string{"nodes", "relationships", "properties", "data"},
			int64(2), int64(1), int64(5), "{\"a\":1}\n{\"b\":2}"),
	}, nil)}
	client := newTestClient(t, fake)

	result, err := client.ExportJSON(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Nodes)
	assert.Equal(t, int64(1), result.Relationships)
	assert.Equal(t, int64(5), result.Properties)
	assert.Equal(t, "[{\"a\":1},\n {\"b\":2}\n]", result.Data)

	assert.Contains(t, fake.lastCall().Query, "apoc.export.json.all(null, {useTypes: true, stream: true})")
}

func TestExportJSONNeedsApoc(t *testing.T) {
	fake := &fakeDriver{respond: failWith(errors.New("Unknown procedure: apoc.export.json.all"))}
	client := newTestClient(t, fake)

	_, err := client.ExportJSON(context.Background())
	require.ErrorIs(t, err, grafo.ErrFeatureUnavailable)
}

func TestExportJSONEmptyResult(t *testing.T) {
	client := newTestClient(t, &fakeDriver{})

	_, err := client.ExportJSON(context.Background())
	require.ErrorIs(t, err, grafo.ErrQueryFailed)
	assert.Contains(t, err.Error(), "empty result")
}

func TestImportJSON(t *testing.T) {
	next := int64(1)
	fake := &fakeDriver{respond: respondSequentialIDs(&next)}
	client := newTestClient(t, fake)

	// Ids in the dump format are strings, and they do not survive into the
	// target database; relationships are re-linked through fresh ids.
	payload := `[
	  {"type": "node", "id": "100", "labels": ["person"], "properties": {"name": "Alice"}},
	  {"type": "node", "id": "200", "labels": ["doctor"], "properties": {"name": "Who"}},
	  {"type": "relationship", "id": "7", "label": "TREATS", "properties": {"since": 2021},
	   "start": {"id": "100"}, "end": {"id": "200"}}
	]`

	stats, err := client.ImportJSON(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, &grafo.ImportStats{NodesImported: 2, RelationshipsImported: 1}, stats)

	require.Len(t, fake.calls, 3)
	assert.Equal(t, "CREATE (n:`person` {`name`: $par_1}) RETURN id(n) AS node_id", fake.calls[0].Query)
	assert.Equal(t, "CREATE (n:`doctor` {`name`: $par_1}) RETURN id(n) AS node_id", fake.calls[1].Query)

	link := fake.calls[2]
	assert.Contains(t, link.Query, "MERGE (x)-[:`TREATS`")
	assert.Equal(t, int64(1), link.Params["node_id1"])
	assert.Equal(t, int64(2), link.Params["node_id2"])
}

func TestImportJSONRepairsPayload(t *testing.T) {
	next := int64(1)
	fake := &fakeDriver{respond: respondSequentialIDs(&next)}
	client := newTestClient(t, fake)

	// Trailing comma, as some streaming exports leave behind.
	payload := `[{"type": "node", "id": "1", "labels": ["person"], "properties": {"name": "Alice"}},]`

	stats, err := client.ImportJSON(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NodesImported)
}

func TestImportJSONValidatesBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantMsg string
	}{
		{
			name:    "node without id",
			payload: `[{"type": "node", "labels": ["person"]}]`,
			wantMsg: "item 0: node lacks an id; nothing imported",
		},
		{
			name:    "relationship without label",
			payload: `[{"type": "relationship", "start": {"id": "1"}, "end": {"id": "2"}}]`,
			wantMsg: "item 0: relationship lacks a label; nothing imported",
		},
		{
			name:    "relationship without endpoints",
			payload: `[{"type": "relationship", "label": "TREATS"}]`,
			wantMsg: "item 0: relationship lacks a start id; nothing imported",
		},
		{
			name:    "unknown type",
			payload: `[{"type": "widget", "id": "1"}]`,
			wantMsg: `item 0: type must be either node or relationship, got "widget"; nothing imported`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeDriver{}
			client := newTestClient(t, fake)

			_, err := client.ImportJSON(context.Background(), []byte(tc.payload))
			require.ErrorIs(t, err, grafo.ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tc.wantMsg)
			assert.Empty(t, fake.calls, "nothing must be written for an invalid payload")
		})
	}
}

func TestImportJSONUnknownEndpoint(t *testing.T) {
	next := int64(1)
	fake := &fakeDriver{respond: respondSequentialIDs(&next)}
	client := newTestClient(t, fake)

	payload := `[
	  {"type": "node", "id": "100", "labels": ["person"], "properties": {}},
	  {"type": "relationship", "id": "7", "label": "TREATS", "start": {"id": "100"}, "end": {"id": "999"}}
	]`

	stats, err := client.ImportJSON(context.Background(), []byte(payload))
	require.ErrorIs(t, err, grafo.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "references node 999, which is not in the dump")
	assert.Equal(t, 1, stats.NodesImported)
	assert.Equal(t, 0, stats.RelationshipsImported)
}

func TestParquetRoundTrip(t *testing.T) {
	dir := t.TempDir()

	exportFake := &fakeDriver{}
	exportFake.respond = func(query string, _ map[string]any) ([]*types.Record, *types.Summary, error) {
		switch query {
		case "MATCH (n) RETURN n":
			return []*types.Record{
				record([]string{"n"}, types.Node{ID: 1, Labels: []string{"patient"}, Props: map[string]any{"name": "Alice"}}),
				record([]string{"n"}, types.Node{ID: 2, Labels: []string{"doctor"}, Props: map[string]any{"name": "Who"}}),
			}, nil, nil
		case "MATCH ()-[r]->() RETURN r":
			return []*types.Record{
				record([]string{"r"}, types.Relationship{ID: 5, Type: "TREATS", StartID: 1, EndID: 2}),
			}, nil, nil
		}
		return nil, nil, nil
	}
	exporter := newTestClient(t, exportFake)
	require.NoError(t, exporter.ExportParquet(context.Background(), dir))

	next := int64(1)
	importFake := &fakeDriver{respond: respondSequentialIDs(&next)}
	importer := newTestClient(t, importFake)

	stats, err := importer.ImportParquet(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, &grafo.ImportStats{NodesImported: 2, RelationshipsImported: 1}, stats)

	require.Len(t, importFake.calls, 3)
	assert.Equal(t, "CREATE (n:`patient` {`name`: $par_1}) RETURN id(n) AS node_id", importFake.calls[0].Query)
	assert.Equal(t, "CREATE (n:`doctor` {`name`: $par_1}) RETURN id(n) AS node_id", importFake.calls[1].Query)

	link := importFake.calls[2]
	assert.Contains(t, link.Query, "MERGE (x)-[:`TREATS`]->(y)")
	assert.Equal(t, int64(1), link.Params["node_id1"])
	assert.Equal(t, int64(2), link.Params["node_id2"])
}

func TestImportParquetMissingSnapshot(t *testing.T) {
	client := newTestClient(t, &fakeDriver{})

	_, err := client.ImportParquet(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nodes.parquet")
}
