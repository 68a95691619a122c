package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/grafo/pkg/types"
)

// RawResult is a forward-only cursor over a live query result. It keeps
// the session that produced it open, so callers must Close it when done.
// The zero value is not usable; RawResults come from GraphDriver.Raw.
type RawResult struct {
	session neo4j.SessionWithContext
	result  neo4j.ResultWithContext
	closed  bool
}

// Next advances the cursor. It returns false when no records remain or an
// error occurred; check Err afterwards to tell the two apart.
func (r *RawResult) Next(ctx context.Context) bool {
	if r.closed {
		return false
	}
	return r.result.Next(ctx)
}

// Record returns the record the cursor currently points at, in the
// driver's native representation. It is only valid after a true Next.
func (r *RawResult) Record() *neo4j.Record {
	return r.result.Record()
}

// Keys returns the column names declared by the query.
func (r *RawResult) Keys() ([]string, error) {
	return r.result.Keys()
}

// Err returns the error that stopped iteration, if any.
func (r *RawResult) Err() error {
	return r.result.Err()
}

// Consume discards any remaining records and returns the query summary.
// The cursor is exhausted afterwards but the session stays open until
// Close is called.
func (r *RawResult) Consume(ctx context.Context) (*types.Summary, error) {
	if r.closed {
		return nil, fmt.Errorf("raw result already closed")
	}
	summary, err := r.result.Consume(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to consume result: %w", err)
	}
	return summaryFromDB(summary), nil
}

// Close releases the session backing this result. It is safe to call
// more than once.
func (r *RawResult) Close(ctx context.Context) error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.session.Close(ctx)
}
