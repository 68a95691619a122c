package frame

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/soundprediction/grafo/pkg/types"
)

// Frame is a rectangular view over heterogeneous rows. The zero value is
// an empty frame ready for use.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New returns an empty frame.
func New() *Frame {
	return &Frame{index: make(map[string]int)}
}

// FromRecords builds a frame from query records. Graph entities are
// reduced to their property maps, then every value is flattened: nested
// maps contribute dot-separated columns, lists contribute indexed
// columns. Column order follows the records' key order, with flattened
// children in sorted order after their parent's position.
func FromRecords(records []*types.Record) *Frame {
	f := New()
	for _, rec := range records {
		row := make(map[string]any)
		for i, key := range rec.Keys {
			flattenInto(row, key, types.Reduce(rec.Values[i]))
		}
		// Record keys give a deterministic base order; flattened
		// children are registered sorted.
		ordered := make([]string, 0, len(row))
		for _, key := range rec.Keys {
			for flat := range row {
				if flat == key || hasPrefixSegment(flat, key) {
					ordered = append(ordered, flat)
				}
			}
		}
		sortChildren(ordered, rec.Keys)
		for _, col := range ordered {
			f.ensureColumn(col)
		}
		f.appendRow(row)
	}
	return f
}

// FromMaps builds a frame from plain row maps. Unseen keys are registered
// in sorted order per row, since map iteration gives no stable order.
func FromMaps(rows []map[string]any) *Frame {
	f := New()
	for _, row := range rows {
		unseen := make([]string, 0, len(row))
		for key := range row {
			if _, ok := f.index[key]; !ok {
				unseen = append(unseen, key)
			}
		}
		sort.Strings(unseen)
		for _, key := range unseen {
			f.ensureColumn(key)
		}
		f.appendRow(row)
	}
	return f
}

// flattenInto writes value into row under col, recursing through maps and
// lists with dot-separated path segments.
func flattenInto(row map[string]any, col string, value any) {
	switch val := value.(type) {
	case map[string]any:
		if len(val) == 0 {
			row[col] = val
			return
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenInto(row, col+"."+k, val[k])
		}
	case []any:
		if len(val) == 0 {
			row[col] = val
			return
		}
		for i, item := range val {
			flattenInto(row, col+"."+strconv.Itoa(i), item)
		}
	default:
		row[col] = value
	}
}

// hasPrefixSegment reports whether flat is a flattened child of base,
// i.e. starts with base followed by a dot.
func hasPrefixSegment(flat, base string) bool {
	return len(flat) > len(base)+1 && flat[:len(base)] == base && flat[len(base)] == '.'
}

// sortChildren orders flattened column names by their base key's position
// in keys, then lexically.
func sortChildren(cols []string, keys []string) {
	pos := make(map[string]int, len(keys))
	for i, k := range keys {
		pos[k] = i
	}
	base := func(col string) int {
		for k, i := range pos {
			if col == k || hasPrefixSegment(col, k) {
				return i
			}
		}
		return len(pos)
	}
	sort.SliceStable(cols, func(i, j int) bool {
		bi, bj := base(cols[i]), base(cols[j])
		if bi != bj {
			return bi < bj
		}
		return cols[i] < cols[j]
	})
}

func (f *Frame) ensureColumn(name string) int {
	if f.index == nil {
		f.index = make(map[string]int)
	}
	if i, ok := f.index[name]; ok {
		return i
	}
	i := len(f.columns)
	f.columns = append(f.columns, name)
	f.index[name] = i
	for r := range f.rows {
		f.rows[r] = append(f.rows[r], nil)
	}
	return i
}

func (f *Frame) appendRow(row map[string]any) {
	cells := make([]any, len(f.columns))
	for key, value := range row {
		if i, ok := f.index[key]; ok {
			cells[i] = value
		}
	}
	f.rows = append(f.rows, cells)
}

// Append adds a row, registering unseen keys as new columns in sorted
// order.
func (f *Frame) Append(row map[string]any) {
	unseen := make([]string, 0, len(row))
	for key := range row {
		if _, ok := f.index[key]; !ok {
			unseen = append(unseen, key)
		}
	}
	sort.Strings(unseen)
	for _, key := range unseen {
		f.ensureColumn(key)
	}
	f.appendRow(row)
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int {
	return len(f.rows)
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int {
	return len(f.columns)
}

// Value returns the cell at row i, column col.
func (f *Frame) Value(i int, col string) (any, bool) {
	if i < 0 || i >= len(f.rows) {
		return nil, false
	}
	j, ok := f.index[col]
	if !ok {
		return nil, false
	}
	return f.rows[i][j], true
}

// Row returns row i as a map over all columns; missing cells are nil.
func (f *Frame) Row(i int) map[string]any {
	if i < 0 || i >= len(f.rows) {
		return nil
	}
	out := make(map[string]any, len(f.columns))
	for j, col := range f.columns {
		out[col] = f.rows[i][j]
	}
	return out
}

// Column returns the named column as a slice with one entry per row.
func (f *Frame) Column(name string) ([]any, bool) {
	j, ok := f.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(f.rows))
	for i := range f.rows {
		out[i] = f.rows[i][j]
	}
	return out, true
}

// Maps returns every row as a map, in order.
func (f *Frame) Maps() []map[string]any {
	out := make([]map[string]any, len(f.rows))
	for i := range f.rows {
		out[i] = f.Row(i)
	}
	return out
}

// frameJSON is the wire shape of a frame.
type frameJSON struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// MarshalJSON renders the frame as {"columns": [...], "data": [[...]]}.
func (f *Frame) MarshalJSON() ([]byte, error) {
	data := f.rows
	if data == nil {
		data = [][]any{}
	}
	columns := f.columns
	if columns == nil {
		columns = []string{}
	}
	return json.Marshal(frameJSON{Columns: columns, Data: data})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var wire frameJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	f.columns = wire.Columns
	f.index = make(map[string]int, len(wire.Columns))
	for i, col := range wire.Columns {
		f.index[col] = i
	}
	f.rows = wire.Data
	return nil
}
