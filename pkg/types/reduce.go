package types

// Reduce renders a result value without graph identity: nodes and
// relationships become their property maps, paths become the alternating
// sequence of node and relationship property maps, and containers are
// reduced element-wise. Scalars pass through unchanged.
func Reduce(v any) any {
	switch val := v.(type) {
	case Node:
		return val.Props
	case Relationship:
		return val.Props
	case Path:
		seq := make([]any, 0, len(val.Nodes)+len(val.Relationships))
		for i, node := range val.Nodes {
			seq = append(seq, node.Props)
			if i < len(val.Relationships) {
				seq = append(seq, val.Relationships[i].Props)
			}
		}
		return seq
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Reduce(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Reduce(item)
		}
		return out
	default:
		return v
	}
}
