package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/grafo"
	"github.com/soundprediction/grafo/pkg/server/dto"
)

// QueryHandler serves read queries in the caller's preferred
// representation.
type QueryHandler struct {
	querier grafo.GraphQuerier
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(querier grafo.GraphQuerier) *QueryHandler {
	return &QueryHandler{querier: querier}
}

// Query handles POST /api/v1/query
func (h *QueryHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ctx := c.Request.Context()
	resp := dto.QueryResponse{Representation: req.Representation}
	if resp.Representation == "" {
		resp.Representation = dto.RepresentationRecords
	}

	var err error
	switch resp.Representation {
	case dto.RepresentationRecords:
		resp.Rows, err = h.querier.Query(ctx, req.Query, req.Params)
		resp.Count = len(resp.Rows)
	case dto.RepresentationFrame:
		resp.Frame, err = h.querier.QueryFrame(ctx, req.Query, req.Params)
		if resp.Frame != nil {
			resp.Count = resp.Frame.NumRows()
		}
	case dto.RepresentationExpanded:
		resp.Clusters, err = h.querier.QueryExpanded(ctx, req.Query, req.Params, req.Exclude...)
		resp.Count = len(resp.Clusters)
	case dto.RepresentationExpandedFlat:
		resp.Entities, err = h.querier.QueryExpandedFlat(ctx, req.Query, req.Params, req.Exclude...)
		resp.Count = len(resp.Entities)
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}
