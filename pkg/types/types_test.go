package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeHasLabel(t *testing.T) {
	n := Node{ID: 7, Labels: []string{"person", "client"}}

	assert.True(t, n.HasLabel("person"))
	assert.True(t, n.HasLabel("client"))
	assert.False(t, n.HasLabel("car"))
	assert.False(t, Node{}.HasLabel("person"))
}

func TestNodeProp(t *testing.T) {
	n := Node{Props: map[string]any{"color": "red", "doors": int64(4)}}

	v, ok := n.Prop("color")
	assert.True(t, ok)
	assert.Equal(t, "red", v)

	_, ok = n.Prop("missing")
	assert.False(t, ok)
}

func TestRecordGet(t *testing.T) {
	rec := &Record{
		Keys:   []string{"n", "count"},
		Values: []any{Node{ID: 1}, int64(3)},
	}

	v, ok := rec.Get("count")
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)

	_, ok = rec.Get("missing")
	assert.False(t, ok)
}

func TestRecordAsMap(t *testing.T) {
	rec := &Record{
		Keys:   []string{"a", "b"},
		Values: []any{"x", int64(2)},
	}

	m := rec.AsMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "x", m["a"])
	assert.Equal(t, int64(2), m["b"])
}

func TestSummaryContainsUpdates(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    bool
	}{
		{"empty", Summary{}, false},
		{"nodes created", Summary{NodesCreated: 2}, true},
		{"relationships deleted", Summary{RelationshipsDeleted: 1}, true},
		{"properties set", Summary{PropertiesSet: 5}, true},
		{"constraints added", Summary{ConstraintsAdded: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.summary.ContainsUpdates())
		})
	}
}
