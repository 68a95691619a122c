package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/grafo"
)

func TestExportJSONEndpoint(t *testing.T) {
	porter := &fakePorter{result: &grafo.ExportResult{
		Nodes:         2,
		Relationships: 1,
		Properties:    5,
		Data:          `[{"type":"node","id":"1"}]`,
	}}
	h := NewExportHandler(porter)

	w := getPath(t, "/api/v1/export/json", h.ExportJSON, "/api/v1/export/json")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["nodes"])
	assert.Equal(t, float64(1), body["relationships"])
	assert.Equal(t, `[{"type":"node","id":"1"}]`, body["data"])
}

func TestExportJSONUnavailable(t *testing.T) {
	porter := &fakePorter{
		err: fmt.Errorf("json export needs the APOC plugin: %w", grafo.ErrFeatureUnavailable),
	}
	h := NewExportHandler(porter)

	w := getPath(t, "/api/v1/export/json", h.ExportJSON, "/api/v1/export/json")

	require.Equal(t, http.StatusNotImplemented, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "feature_unavailable", body["error"])
}

func TestExportJSONFailure(t *testing.T) {
	h := NewExportHandler(&fakePorter{err: errors.New("boom")})

	w := getPath(t, "/api/v1/export/json", h.ExportJSON, "/api/v1/export/json")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "export_failed", decodeBody(t, w)["error"])
}
