package cypher

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultParamPrefix is the prefix used for generated parameter names.
const DefaultParamPrefix = "par_"

// backtickReplacer doubles embedded backticks, the Cypher escape for a
// backtick inside a quoted identifier.
var backtickReplacer = strings.NewReplacer("`", "``")

// Backtick quotes an identifier so it can be used verbatim in query text,
// tolerating blanks and punctuation in the name.
func Backtick(name string) string {
	return "`" + backtickReplacer.Replace(name) + "`"
}

// BindProps turns a property map into a Cypher map fragment plus its bound
// parameter map, suitable for use inside a node or relationship pattern.
//
//	BindProps(map[string]any{"cost": 65.99, "item description": "red"})
//
// returns
//
//	"{`cost`: $par_1, `item description`: $par_2}"
//	map[string]any{"par_1": 65.99, "par_2": "red"}
//
// Keys are emitted in sorted order so the generated text is deterministic.
// A nil or empty input yields an empty fragment and an empty map.
func BindProps(props map[string]any) (string, map[string]any) {
	return BindPropsAs(props, DefaultParamPrefix)
}

// BindPropsAs is BindProps with a caller-chosen parameter-name prefix. Use a
// distinct prefix when embedding more than one independently built fragment
// into a single query, so the generated names cannot collide.
func BindPropsAs(props map[string]any, prefix string) (string, map[string]any) {
	params := make(map[string]any, len(props))
	if len(props) == 0 {
		return "", params
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for i, k := range keys {
		token := fmt.Sprintf("%s%d", prefix, i+1)
		pairs = append(pairs, fmt.Sprintf("%s: $%s", Backtick(k), token))
		params[token] = props[k]
	}

	return "{" + strings.Join(pairs, ", ") + "}", params
}

// LabelExpr turns one or more labels into the Cypher label expression used
// inside a pattern, e.g. LabelExpr("car", "car manufacturer") yields
// ":`car`:`car manufacturer`". Blank labels are skipped; no labels yields an
// empty string, which matches every label. That escape hatch is expensive on
// large graphs and should be used deliberately.
func LabelExpr(labels ...string) string {
	var b strings.Builder
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		b.WriteString(":")
		b.WriteString(Backtick(label))
	}
	return b.String()
}

// RelationshipExpr renders a relationship pattern segment of the given type,
// with the two-character direction convention used throughout grafo: a
// trailing '>' points the relationship right, a leading '<' points it left.
//
//	RelationshipExpr("HAS_DATA", ">")  ->  "-[:`HAS_DATA`]->"
//	RelationshipExpr("HAS_DATA", "<")  ->  "<-[:`HAS_DATA`]-"
//	RelationshipExpr("HAS_DATA", "")   ->  "-[:`HAS_DATA`]-"
func RelationshipExpr(relType, direction string) string {
	left, right := "-", "-"
	switch direction {
	case ">":
		right = "->"
	case "<":
		left = "<-"
	}
	return left + "[:" + Backtick(relType) + "]" + right
}

// SanitizeRelType derives a conventional relationship type from free text:
// trimmed, uppercased, with whitespace runs collapsed to single
// underscores. The result still goes through Backtick when rendered, so
// remaining special characters are harmless.
func SanitizeRelType(text string) string {
	fields := strings.Fields(strings.ToUpper(text))
	return strings.Join(fields, "_")
}

// SplitRelSpec parses a relationship specification carrying an optional
// direction marker as prefix or suffix, e.g. "FROM_DATA>" or "<FROM_DATA".
// It returns the bare type and the direction ("<", ">", or "" when the spec
// names no direction). A spec carrying both markers is invalid.
func SplitRelSpec(spec string) (relType, direction string, err error) {
	hasLeft := strings.HasPrefix(spec, "<")
	hasRight := strings.HasSuffix(spec, ">")
	if hasLeft && hasRight {
		return "", "", fmt.Errorf("relationship spec %q carries both direction markers", spec)
	}
	switch {
	case hasLeft:
		return strings.TrimPrefix(spec, "<"), "<", nil
	case hasRight:
		return strings.TrimSuffix(spec, ">"), ">", nil
	default:
		return spec, "", nil
	}
}
