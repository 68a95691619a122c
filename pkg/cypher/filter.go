package cypher

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Filter describes which nodes an operation applies to. The three condition
// forms combine with a logical AND:
//
//   - Labels restricts the match to nodes carrying every listed label. An
//     empty list matches all labels (expensive on large graphs).
//   - Props is a property-equality condition; every key/value pair must match
//     exactly. Values are parameter-bound, never written into query text.
//   - Where is a free-form boolean clause. Nodes it refers to must use the
//     alias passed to MatchClause (conventionally "n"). Params supplies the
//     bindings for any $name placeholders in the clause.
//
// Params must not contain keys of the form par_N; those names are reserved
// for the bindings generated from Props, and a collision is an error.
type Filter struct {
	Labels []string
	Props  map[string]any
	Where  string
	Params map[string]any
}

// WithLabels is a convenience constructor for a label-only filter.
func WithLabels(labels ...string) Filter {
	return Filter{Labels: labels}
}

// MatchClause renders the filter as the MATCH part of a query plus the merged
// parameter map. The property-equality condition and the free-form clause
// AND-combine; either alone is fine; with neither, the clause matches
// everything carrying the labels.
//
//	Filter{Labels: []string{"client"}, Props: map[string]any{"gender": "M"}, Where: "n.age > 40"}
//
// renders as
//
//	MATCH (n:`client` {`gender`: $par_1}) WHERE n.age > 40
//
// It fails with ErrConflictingKeys if a generated property binding and an
// explicit Params entry share a name.
func (f Filter) MatchClause(alias string) (string, map[string]any, error) {
	fragment, generated := BindProps(f.Props)

	merged := make(map[string]any, len(f.Params)+len(generated))
	for k, v := range f.Params {
		merged[k] = v
	}

	var overlap []string
	for k, v := range generated {
		if _, taken := merged[k]; taken {
			overlap = append(overlap, k)
			continue
		}
		merged[k] = v
	}
	if len(overlap) > 0 {
		sort.Strings(overlap)
		return "", nil, fmt.Errorf("explicit parameters collide with generated property bindings (%s): %w",
			strings.Join(overlap, ", "), ErrConflictingKeys)
	}

	var b strings.Builder
	b.WriteString("MATCH (")
	b.WriteString(alias)
	b.WriteString(LabelExpr(f.Labels...))
	if fragment != "" {
		b.WriteString(" ")
		b.WriteString(fragment)
	}
	b.WriteString(")")

	if where := strings.TrimSpace(f.Where); where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	return b.String(), merged, nil
}

// ErrConflictingKeys reports that a filter's explicit parameter map reuses a
// name reserved for generated property bindings.
var ErrConflictingKeys = errors.New("conflicting parameter keys")
