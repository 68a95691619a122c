package driver

import (
	"fmt"

	"github.com/soundprediction/grafo/pkg/types"
)

// TypeConversionError represents an error during type conversion from
// query result values.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// AsNode safely converts a result value to types.Node.
// Returns the node and true if successful, zero value and false otherwise.
func AsNode(v any) (types.Node, bool) {
	if v == nil {
		return types.Node{}, false
	}
	node, ok := v.(types.Node)
	return node, ok
}

// AsRelationship safely converts a result value to types.Relationship.
// Returns the relationship and true if successful, zero value and false otherwise.
func AsRelationship(v any) (types.Relationship, bool) {
	if v == nil {
		return types.Relationship{}, false
	}
	rel, ok := v.(types.Relationship)
	return rel, ok
}

// AsPath safely converts a result value to types.Path.
// Returns the path and true if successful, zero value and false otherwise.
func AsPath(v any) (types.Path, bool) {
	if v == nil {
		return types.Path{}, false
	}
	path, ok := v.(types.Path)
	return path, ok
}

// AsString safely converts a result value to string.
// Returns the string and true if successful, empty string and false otherwise.
func AsString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// AsInt64 safely converts a result value to int64.
// Returns the int64 and true if successful, 0 and false otherwise.
func AsInt64(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

// AsFloat64 safely converts a result value to float64.
// Returns the float64 and true if successful, 0 and false otherwise.
func AsFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// AsBool safely converts a result value to bool.
// Returns the bool and true if successful, false and false otherwise.
func AsBool(v any) (bool, bool) {
	if v == nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// AsStringSlice safely converts a result value to []string. Bolt returns
// list values as []any, so a []any whose elements are all strings is
// accepted too. Returns the slice and true if successful, nil and false
// otherwise.
func AsStringSlice(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// AsAnySlice safely converts a result value to []any.
// Returns the slice and true if successful, nil and false otherwise.
func AsAnySlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// AsMap safely converts a result value to map[string]any.
// Returns the map and true if successful, nil and false otherwise.
func AsMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// MustNode converts a result value to types.Node or returns an error.
func MustNode(v any, field string) (types.Node, error) {
	node, ok := AsNode(v)
	if !ok {
		return types.Node{}, NewTypeConversionError("types.Node", fmt.Sprintf("%T", v), field)
	}
	return node, nil
}

// MustRelationship converts a result value to types.Relationship or returns an error.
func MustRelationship(v any, field string) (types.Relationship, error) {
	rel, ok := AsRelationship(v)
	if !ok {
		return types.Relationship{}, NewTypeConversionError("types.Relationship", fmt.Sprintf("%T", v), field)
	}
	return rel, nil
}

// MustString converts a result value to string or returns an error.
func MustString(v any, field string) (string, error) {
	s, ok := AsString(v)
	if !ok {
		return "", NewTypeConversionError("string", fmt.Sprintf("%T", v), field)
	}
	return s, nil
}

// MustInt64 converts a result value to int64 or returns an error.
func MustInt64(v any, field string) (int64, error) {
	i, ok := AsInt64(v)
	if !ok {
		return 0, NewTypeConversionError("int64", fmt.Sprintf("%T", v), field)
	}
	return i, nil
}

// MustStringSlice converts a result value to []string or returns an error.
func MustStringSlice(v any, field string) ([]string, error) {
	s, ok := AsStringSlice(v)
	if !ok {
		return nil, NewTypeConversionError("[]string", fmt.Sprintf("%T", v), field)
	}
	return s, nil
}
