package dto

import (
	"errors"
	"strings"
)

// Bounds on load requests to keep a single call from monopolizing the
// server.
const (
	MaxLabelLength  = 256
	MaxRecordsCount = 100000
)

// Validation errors
var (
	ErrEmptyLabel     = errors.New("label cannot be empty")
	ErrLabelTooLong   = errors.New("label exceeds maximum length (256)")
	ErrEmptyRecords   = errors.New("records cannot be empty")
	ErrTooManyRecords = errors.New("records count exceeds maximum (100000)")
	ErrMergeNeedsKey  = errors.New("merge requires a primary_key")
	ErrNegativeChunk  = errors.New("chunk_size cannot be negative")
)

// LoadRequest bulk-loads one node per record under a label. The options
// mirror LoadOptions on the client.
type LoadRequest struct {
	Label          string           `json:"label" binding:"required"`
	Records        []map[string]any `json:"records" binding:"required"`
	Merge          bool             `json:"merge,omitempty"`
	PrimaryKey     string           `json:"primary_key,omitempty"`
	MergeOverwrite bool             `json:"merge_overwrite,omitempty"`
	ChunkSize      int              `json:"chunk_size,omitempty"`
	IgnoreNil      bool             `json:"ignore_nil,omitempty"`
}

// Validate performs validation on LoadRequest
func (r *LoadRequest) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if len(r.Label) > MaxLabelLength {
		return ErrLabelTooLong
	}
	if len(r.Records) == 0 {
		return ErrEmptyRecords
	}
	if len(r.Records) > MaxRecordsCount {
		return ErrTooManyRecords
	}
	if r.Merge && strings.TrimSpace(r.PrimaryKey) == "" {
		return ErrMergeNeedsKey
	}
	if r.ChunkSize < 0 {
		return ErrNegativeChunk
	}
	return nil
}

// LoadResponse reports the ids of the nodes written, in input order.
type LoadResponse struct {
	Success bool    `json:"success"`
	Count   int     `json:"count"`
	NodeIDs []int64 `json:"node_ids,omitempty"`
}
