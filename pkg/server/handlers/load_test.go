package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/server/dto"
)

func TestLoad(t *testing.T) {
	loader := &fakeLoader{ids: []int64{1, 2}}
	h := NewLoadHandler(loader)

	w := postJSON(t, "/api/v1/load", h.Load, dto.LoadRequest{
		Label:      "patient",
		Records:    []map[string]any{{"pid": "p1"}, {"pid": "p2"}},
		Merge:      true,
		PrimaryKey: "pid",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, []any{float64(1), float64(2)}, body["node_ids"])

	assert.Equal(t, "patient", loader.gotLabel)
	require.Len(t, loader.gotRecords, 2)
	assert.True(t, loader.gotOpts.Merge)
	assert.Equal(t, "pid", loader.gotOpts.PrimaryKey)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		wantMsg string
	}{
		{
			name:    "missing records",
			body:    map[string]any{"label": "patient"},
			wantMsg: "Records",
		},
		{
			name: "blank label",
			body: map[string]any{
				"label":   "   ",
				"records": []map[string]any{{"a": 1}},
			},
			wantMsg: "label cannot be empty",
		},
		{
			name: "merge without key",
			body: map[string]any{
				"label":   "patient",
				"records": []map[string]any{{"a": 1}},
				"merge":   true,
			},
			wantMsg: "merge requires a primary_key",
		},
		{
			name: "negative chunk size",
			body: map[string]any{
				"label":      "patient",
				"records":    []map[string]any{{"a": 1}},
				"chunk_size": -1,
			},
			wantMsg: "chunk_size cannot be negative",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loader := &fakeLoader{}
			h := NewLoadHandler(loader)

			w := postJSON(t, "/api/v1/load", h.Load, tc.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, "invalid_request", body["error"])
			assert.Contains(t, body["message"], tc.wantMsg)
			assert.Empty(t, loader.gotLabel)
		})
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	loader := &fakeLoader{
		err: fmt.Errorf("%w: record 3 has no value for merge key %q", grafo.ErrInvalidConfiguration, "pid"),
	}
	h := NewLoadHandler(loader)

	w := postJSON(t, "/api/v1/load", h.Load, dto.LoadRequest{
		Label:   "patient",
		Records: []map[string]any{{"name": "Ann"}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "invalid_request", body["error"])
}

func TestLoadFailure(t *testing.T) {
	h := NewLoadHandler(&fakeLoader{err: errors.New("boom")})

	w := postJSON(t, "/api/v1/load", h.Load, dto.LoadRequest{
		Label:   "patient",
		Records: []map[string]any{{"name": "Ann"}},
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "load_failed", body["error"])
}
