package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/grafo/pkg/frame"
)

func TestIndexes(t *testing.T) {
	manager := &fakeSchema{indexes: frame.FromMaps([]map[string]any{
		{"name": "patient.pid", "type": "RANGE"},
	})}
	h := NewSchemaHandler(manager)

	w := getPath(t, "/api/v1/schema/indexes", h.Indexes,
		"/api/v1/schema/indexes?type=RANGE&type=TEXT")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	indexes, ok := body["indexes"].([]any)
	require.True(t, ok)
	require.Len(t, indexes, 1)
	assert.Equal(t, map[string]any{"name": "patient.pid", "type": "RANGE"}, indexes[0])

	assert.Equal(t, []string{"RANGE", "TEXT"}, manager.gotTypes)
}

func TestIndexesFailure(t *testing.T) {
	h := NewSchemaHandler(&fakeSchema{err: errors.New("boom")})

	w := getPath(t, "/api/v1/schema/indexes", h.Indexes, "/api/v1/schema/indexes")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "schema_failed", decodeBody(t, w)["error"])
}

func TestLabels(t *testing.T) {
	h := NewSchemaHandler(&fakeSchema{labels: []string{"patient", "doctor"}})

	w := getPath(t, "/api/v1/schema/labels", h.Labels, "/api/v1/schema/labels")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"patient", "doctor"}, decodeBody(t, w)["labels"])
}
