package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/grafo/pkg/frame"
)

// Representations a query result can be served in.
const (
	RepresentationRecords      = "records"
	RepresentationFrame        = "frame"
	RepresentationExpanded     = "expanded"
	RepresentationExpandedFlat = "expanded_flat"
)

// MaxQueryLength bounds the cypher text accepted over the API.
const MaxQueryLength = 64 * 1024

// Validation errors
var (
	ErrEmptyQuery            = errors.New("query cannot be empty")
	ErrQueryTooLong          = errors.New("query exceeds maximum length (64KB)")
	ErrUnknownRepresentation = errors.New("representation must be records, frame, expanded or expanded_flat")
)

// QueryRequest asks for a read query in one of the supported result
// representations. An empty representation means records. Exclude names
// fields dropped from expanded entities.
type QueryRequest struct {
	Query          string         `json:"query" binding:"required"`
	Params         map[string]any `json:"params,omitempty"`
	Representation string         `json:"representation,omitempty"`
	Exclude        []string       `json:"exclude,omitempty"`
}

// Validate performs validation on QueryRequest
func (r *QueryRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	switch r.Representation {
	case "", RepresentationRecords, RepresentationFrame, RepresentationExpanded, RepresentationExpandedFlat:
		return nil
	default:
		return ErrUnknownRepresentation
	}
}

// QueryResponse carries the result in the representation that was asked
// for; the fields of the other representations stay empty.
type QueryResponse struct {
	Representation string             `json:"representation"`
	Count          int                `json:"count"`
	Rows           []map[string]any   `json:"rows,omitempty"`
	Frame          *frame.Frame       `json:"frame,omitempty"`
	Clusters       [][]map[string]any `json:"clusters,omitempty"`
	Entities       []map[string]any   `json:"entities,omitempty"`
}
