package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/grafo"
)

// ExportHandler serves whole-graph dumps.
type ExportHandler struct {
	porter grafo.GraphPorter
}

// NewExportHandler creates a new export handler
func NewExportHandler(porter grafo.GraphPorter) *ExportHandler {
	return &ExportHandler{porter: porter}
}

// ExportJSON handles GET /api/v1/export/json
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	result, err := h.porter.ExportJSON(c.Request.Context())
	if err != nil {
		if errors.Is(err, grafo.ErrFeatureUnavailable) {
			abortWithError(c, http.StatusNotImplemented, "feature_unavailable", err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
