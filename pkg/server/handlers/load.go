package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/server/dto"
)

// LoadHandler serves bulk node loads.
type LoadHandler struct {
	loader grafo.DataLoader
}

// NewLoadHandler creates a new load handler
func NewLoadHandler(loader grafo.DataLoader) *LoadHandler {
	return &LoadHandler{loader: loader}
}

// Load handles POST /api/v1/load
func (h *LoadHandler) Load(c *gin.Context) {
	var req dto.LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ids, err := h.loader.LoadRecords(c.Request.Context(), req.Label, req.Records, grafo.LoadOptions{
		Merge:          req.Merge,
		PrimaryKey:     req.PrimaryKey,
		MergeOverwrite: req.MergeOverwrite,
		ChunkSize:      req.ChunkSize,
		IgnoreNil:      req.IgnoreNil,
	})
	if err != nil {
		if errors.Is(err, grafo.ErrInvalidConfiguration) {
			abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "load_failed", err.Error())
		return
	}

	c.JSON(http.StatusCreated, dto.LoadResponse{
		Success: true,
		Count:   len(ids),
		NodeIDs: ids,
	})
}
