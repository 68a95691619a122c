package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/driver"
	"github.com/soundprediction/grafo/pkg/frame"
	"github.com/soundprediction/grafo/pkg/graph"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// postJSON routes one JSON request through a fresh engine and returns
// the recorded response.
func postJSON(t *testing.T, path string, handler gin.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.POST(path, handler)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// getPath routes one GET through a fresh engine. The target may carry a
// query string on top of the route.
func getPath(t *testing.T, route string, handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET(route, handler)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// fakeQuerier answers every representation from canned fields and
// records what it was asked.
type fakeQuerier struct {
	rows     []map[string]any
	frame    *frame.Frame
	clusters [][]map[string]any
	entities []map[string]any
	err      error

	gotQuery   string
	gotParams  map[string]any
	gotExclude []string
}

func (f *fakeQuerier) Query(_ context.Context, query string, params map[string]any) ([]map[string]any, error) {
	f.gotQuery, f.gotParams = query, params
	return f.rows, f.err
}

func (f *fakeQuerier) QueryFrame(_ context.Context, query string, params map[string]any) (*frame.Frame, error) {
	f.gotQuery, f.gotParams = query, params
	return f.frame, f.err
}

func (f *fakeQuerier) QueryGraph(_ context.Context, query string, params map[string]any) (*graph.DirectedMultigraph, error) {
	f.gotQuery, f.gotParams = query, params
	return nil, f.err
}

func (f *fakeQuerier) QueryExpanded(_ context.Context, query string, params map[string]any, exclude ...string) ([][]map[string]any, error) {
	f.gotQuery, f.gotParams, f.gotExclude = query, params, exclude
	return f.clusters, f.err
}

func (f *fakeQuerier) QueryExpandedFlat(_ context.Context, query string, params map[string]any, exclude ...string) ([]map[string]any, error) {
	f.gotQuery, f.gotParams, f.gotExclude = query, params, exclude
	return f.entities, f.err
}

func (f *fakeQuerier) QueryRaw(context.Context, string, map[string]any) (*driver.RawResult, error) {
	return nil, driver.ErrRawUnsupported
}

type fakeLoader struct {
	ids []int64
	err error

	gotLabel   string
	gotRecords []map[string]any
	gotOpts    grafo.LoadOptions
}

func (f *fakeLoader) LoadRecords(_ context.Context, label string, records []map[string]any, opts grafo.LoadOptions) ([]int64, error) {
	f.gotLabel, f.gotRecords, f.gotOpts = label, records, opts
	return f.ids, f.err
}

func (f *fakeLoader) LoadMap(context.Context, map[string]any, string) (int64, error) {
	return 0, nil
}

func (f *fakeLoader) LoadArrows(context.Context, grafo.ArrowsDoc) (map[string]int64, error) {
	return nil, nil
}

func (f *fakeLoader) LoadArrowsJSON(context.Context, []byte) (map[string]int64, error) {
	return nil, nil
}

type fakeAdmin struct {
	err error
}

func (f *fakeAdmin) VerifyConnectivity(context.Context) error { return f.err }
func (f *fakeAdmin) Driver() driver.GraphDriver               { return nil }
func (f *fakeAdmin) Close(context.Context) error              { return nil }

type fakePorter struct {
	result *grafo.ExportResult
	err    error
}

func (f *fakePorter) ExportJSON(context.Context) (*grafo.ExportResult, error) {
	return f.result, f.err
}

func (f *fakePorter) ImportJSON(context.Context, []byte) (*grafo.ImportStats, error) {
	return nil, nil
}

func (f *fakePorter) ExportParquet(context.Context, string) error { return nil }

func (f *fakePorter) ImportParquet(context.Context, string) (*grafo.ImportStats, error) {
	return nil, nil
}

type fakeSchema struct {
	indexes *frame.Frame
	labels  []string
	err     error

	gotTypes []string
}

func (f *fakeSchema) GetIndexes(_ context.Context, types ...string) (*frame.Frame, error) {
	f.gotTypes = types
	return f.indexes, f.err
}

func (f *fakeSchema) GetConstraints(context.Context) (*frame.Frame, error) {
	return frame.New(), nil
}

func (f *fakeSchema) CreateIndex(context.Context, string) (bool, error)      { return false, nil }
func (f *fakeSchema) CreateConstraint(context.Context, string) (bool, error) { return false, nil }
func (f *fakeSchema) DropIndex(context.Context, string) (bool, error)        { return false, nil }
func (f *fakeSchema) DropConstraint(context.Context, string) (bool, error)   { return false, nil }
func (f *fakeSchema) DropAllIndexes(context.Context, bool) error             { return nil }
func (f *fakeSchema) ApplySchema(context.Context, *grafo.SchemaFile) error   { return nil }

func (f *fakeSchema) GetLabels(context.Context) ([]string, error) {
	return f.labels, f.err
}

func (f *fakeSchema) GetRelationshipTypes(context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeSchema) GetLabelProperties(context.Context, string) ([]string, error) {
	return nil, nil
}

var (
	_ grafo.GraphQuerier  = (*fakeQuerier)(nil)
	_ grafo.DataLoader    = (*fakeLoader)(nil)
	_ grafo.GraphAdmin    = (*fakeAdmin)(nil)
	_ grafo.GraphPorter   = (*fakePorter)(nil)
	_ grafo.SchemaManager = (*fakeSchema)(nil)
)
