package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/grafo"
)

// SchemaHandler serves index and label introspection.
type SchemaHandler struct {
	manager grafo.SchemaManager
}

// NewSchemaHandler creates a new schema handler
func NewSchemaHandler(manager grafo.SchemaManager) *SchemaHandler {
	return &SchemaHandler{manager: manager}
}

// Indexes handles GET /api/v1/schema/indexes. Repeating the type query
// parameter narrows the list to those index types.
func (h *SchemaHandler) Indexes(c *gin.Context) {
	indexes, err := h.manager.GetIndexes(c.Request.Context(), c.QueryArray("type")...)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "schema_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   indexes.NumRows(),
		"indexes": indexes.Maps(),
	})
}

// Labels handles GET /api/v1/schema/labels
func (h *SchemaHandler) Labels(c *gin.Context) {
	labels, err := h.manager.GetLabels(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "schema_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"labels": labels})
}
