package grafo

import (
	"context"
	"fmt"
	"strings"

	"github.com/soundprediction/grafo/pkg/cypher"
	"github.com/soundprediction/grafo/pkg/driver"
)

// LinkOptions steers LinkEntities. The join between the two labels comes
// from exactly one of two condition forms:
//
//   - Via-node: ViaNode names an intermediate label, and LeftRel/RightRel
//     carry the relationship specs connecting each side to it, with an
//     optional direction marker ("FROM_DATA>", "<FROM_DATA"). Each hop
//     matches at zero or one length, so a side already carrying the via
//     label joins directly.
//   - Explicit query: Cypher is a statement returning the node pairs to
//     link under the aliases left and right; CypherParams binds its
//     $parameters. When Cypher is set the via-node fields are ignored.
//
// Relationship names the type to create; empty means HAS_<right label>,
// uppercased with whitespace collapsed to underscores.
type LinkOptions struct {
	Relationship string
	ViaNode      string
	LeftRel      string
	RightRel     string
	Cypher       string
	CypherParams map[string]any
}

// LinkEntities merges a relationship from every matched left-label node to
// its matched right-label counterpart. The pair selection runs server-side
// through apoc.periodic.iterate in batches of 10000; without the APOC
// plugin it fails with ErrFeatureUnavailable. MERGE keeps the operation
// idempotent.
func (c *Client) LinkEntities(ctx context.Context, leftLabel, rightLabel string, opts LinkOptions) error {
	relationship := opts.Relationship
	if relationship == "" {
		relationship = "HAS_" + cypher.SanitizeRelType(rightLabel)
	}

	var selectPart string
	innerParams := map[string]any{}
	switch {
	case opts.Cypher != "":
		if missing := unboundParamRefs(opts.Cypher, opts.CypherParams); len(missing) > 0 {
			return fmt.Errorf("%w: link condition references unbound parameters: %s",
				ErrInvalidConfiguration, strings.Join(missing, ", "))
		}
		selectPart = "CALL apoc.cypher.run($cypher, $cypher_dict) YIELD value " +
			"RETURN value.`left` AS left, value.`right` AS right"
		innerParams["cypher"] = opts.Cypher
		innerParams["cypher_dict"] = nonNilParams(opts.CypherParams)

	case opts.ViaNode != "" && opts.LeftRel != "" && opts.RightRel != "":
		leftType, leftDir, err := cypher.SplitRelSpec(opts.LeftRel)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		rightType, rightDir, err := cypher.SplitRelSpec(opts.RightRel)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		selectPart = fmt.Sprintf("MATCH (left)%s(via%s), (via)%s(right) WHERE left%s AND right%s RETURN left, right",
			varLengthRel(leftType, leftDir), cypher.LabelExpr(opts.ViaNode),
			varLengthRel(rightType, rightDir),
			cypher.LabelExpr(leftLabel), cypher.LabelExpr(rightLabel))

	default:
		return fmt.Errorf("%w: link needs either a via-node condition or an explicit cypher condition",
			ErrInvalidConfiguration)
	}

	params := map[string]any{
		"select_part":  selectPart,
		"action_part":  "MERGE (left)" + cypher.RelationshipExpr(relationship, ">") + "(right)",
		"inner_params": innerParams,
	}

	records, _, err := c.driver.ExecuteQuery(ctx, periodicIterateQuery, params)
	if err != nil {
		if driver.IsMissingProcedure(err) {
			return fmt.Errorf("entity linking needs the APOC plugin: %w: %w", ErrFeatureUnavailable, err)
		}
		return fmt.Errorf("link entities: %w: %w", ErrQueryFailed, err)
	}
	return c.checkBatchOutcome("entity linking", records)
}

// varLengthRel renders a zero-or-one length relationship segment, so the
// pattern also matches when the adjacent node itself satisfies the
// condition on the far side.
func varLengthRel(relType, direction string) string {
	left, right := "-", "-"
	switch direction {
	case ">":
		right = "->"
	case "<":
		left = "<-"
	}
	return left + "[:" + cypher.Backtick(relType) + "*0..1]" + right
}

// LinkNodesOnMatchingProperty merges a rel-typed relationship from every
// label1 node to every label2 node agreeing on a property value: prop1 on
// both sides, or prop1 on the first against an optional prop2 on the
// second.
func (c *Client) LinkNodesOnMatchingProperty(ctx context.Context, label1, label2, prop1, rel string, prop2 ...string) error {
	if len(prop2) > 1 {
		return fmt.Errorf("%w: at most one second property", ErrInvalidConfiguration)
	}
	second := prop1
	if len(prop2) == 1 && prop2[0] != "" {
		second = prop2[0]
	}

	query := fmt.Sprintf("MATCH (x%s), (y%s) WHERE x.%s = y.%s MERGE (x)%s(y)",
		cypher.LabelExpr(label1), cypher.LabelExpr(label2),
		cypher.Backtick(prop1), cypher.Backtick(second),
		cypher.RelationshipExpr(rel, ">"))

	if _, _, err := c.driver.ExecuteWrite(ctx, query, nil); err != nil {
		return fmt.Errorf("link nodes on matching property: %w: %w", ErrQueryFailed, err)
	}
	return nil
}

// LinkNodesOnMatchingPropertyValue merges a rel-typed relationship from
// every label1 node to every label2 node where the named property equals
// the given value on both sides. The value is parameter-bound, never
// written into the query text.
func (c *Client) LinkNodesOnMatchingPropertyValue(ctx context.Context, label1, label2, propName string, propValue any, rel string) error {
	query := fmt.Sprintf("MATCH (x%s), (y%s) WHERE x.%s = $prop_value AND y.%s = $prop_value MERGE (x)%s(y)",
		cypher.LabelExpr(label1), cypher.LabelExpr(label2),
		cypher.Backtick(propName), cypher.Backtick(propName),
		cypher.RelationshipExpr(rel, ">"))

	params := map[string]any{"prop_value": propValue}
	if _, _, err := c.driver.ExecuteWrite(ctx, query, params); err != nil {
		return fmt.Errorf("link nodes on matching property value: %w: %w", ErrQueryFailed, err)
	}
	return nil
}

// LinkNodesByIDs merges a rel-typed relationship between the two nodes
// with the given internal ids, carrying the optional properties. Nothing
// happens when either id matches no node. Property values are
// parameter-bound under names that cannot collide with the id bindings.
func (c *Client) LinkNodesByIDs(ctx context.Context, nodeID1, nodeID2 int64, rel string, relProps map[string]any) error {
	fragment, params := cypher.BindProps(relProps)

	var b strings.Builder
	b.WriteString("MATCH (x), (y) WHERE id(x) = $node_id1 AND id(y) = $node_id2 MERGE (x)-[:")
	b.WriteString(cypher.Backtick(rel))
	if fragment != "" {
		b.WriteString(" ")
		b.WriteString(fragment)
	}
	b.WriteString("]->(y)")

	params["node_id1"] = nodeID1
	params["node_id2"] = nodeID2

	if _, _, err := c.driver.ExecuteWrite(ctx, b.String(), params); err != nil {
		return fmt.Errorf("link nodes %d and %d: %w: %w", nodeID1, nodeID2, ErrQueryFailed, err)
	}
	return nil
}
