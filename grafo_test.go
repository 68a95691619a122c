package grafo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/config"
	"github.com/soundprediction/grafo/pkg/driver"
	"github.com/soundprediction/grafo/pkg/types"
)

// call records one statement handed to the fake driver.
type call struct {
	Query  string
	Params map[string]any
	Write  bool
}

// fakeDriver is an in-memory driver.GraphDriver that records every
// statement and answers through the respond hook. A nil hook answers
// every statement with no rows and an empty summary.
type fakeDriver struct {
	calls   []call
	respond func(query string, params map[string]any) ([]*types.Record, *types.Summary, error)
}

func (f *fakeDriver) run(query string, params map[string]any, write bool) ([]*types.Record, *types.Summary, error) {
	f.calls = append(f.calls, call{Query: query, Params: params, Write: write})
	if f.respond == nil {
		return nil, &types.Summary{}, nil
	}
	records, summary, err := f.respond(query, params)
	if summary == nil && err == nil {
		summary = &types.Summary{}
	}
	return records, summary, err
}

func (f *fakeDriver) ExecuteQuery(_ context.Context, query string, params map[string]any) ([]*types.Record, *types.Summary, error) {
	return f.run(query, params, false)
}

func (f *fakeDriver) ExecuteWrite(_ context.Context, query string, params map[string]any) ([]*types.Record, *types.Summary, error) {
	return f.run(query, params, true)
}

func (f *fakeDriver) Raw(context.Context, string, map[string]any) (*driver.RawResult, error) {
	return nil, driver.ErrRawUnsupported
}

func (f *fakeDriver) VerifyConnectivity(context.Context) error { return nil }
func (f *fakeDriver) Close(context.Context) error              { return nil }
func (f *fakeDriver) Provider() driver.GraphProvider           { return driver.ProviderNeo4j }

// lastCall returns the most recent statement the client executed.
func (f *fakeDriver) lastCall() call {
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

func newTestClient(t *testing.T, d driver.GraphDriver) *grafo.Client {
	t.Helper()
	c, err := grafo.NewClient(d)
	require.NoError(t, err)
	return c
}

func record(keys []string, values ...any) *types.Record {
	return &types.Record{Keys: keys, Values: values}
}

func idRecord(id int64) *types.Record {
	return record([]string{"node_id"}, id)
}

// respondWith answers every statement with the same canned result.
func respondWith(records []*types.Record, summary *types.Summary) func(string, map[string]any) ([]*types.Record, *types.Summary, error) {
	return func(string, map[string]any) ([]*types.Record, *types.Summary, error) {
		return records, summary, nil
	}
}

// failWith answers every statement with the same error.
func failWith(err error) func(string, map[string]any) ([]*types.Record, *types.Summary, error) {
	return func(string, map[string]any) ([]*types.Record, *types.Summary, error) {
		return nil, nil, err
	}
}

func TestNewClientRequiresDriver(t *testing.T) {
	_, err := grafo.NewClient(nil)
	require.ErrorIs(t, err, grafo.ErrInvalidConfiguration)
}

func TestNewClientFromConfigRejectsNil(t *testing.T) {
	_, err := grafo.NewClientFromConfig(nil)
	require.ErrorIs(t, err, grafo.ErrInvalidConfiguration)
}

func TestNewClientFromConfigUnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "dgraph"

	_, err := grafo.NewClientFromConfig(cfg)
	require.ErrorIs(t, err, grafo.ErrInvalidConfiguration)
}

func TestClientDelegatesLifecycle(t *testing.T) {
	fake := &fakeDriver{}
	client := newTestClient(t, fake)

	require.NoError(t, client.VerifyConnectivity(context.Background()))
	require.Same(t, driver.GraphDriver(fake), client.Driver())
	require.NoError(t, client.Close(context.Background()))
}
