package grafo

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/soundprediction/grafo/pkg/cypher"
	"github.com/soundprediction/grafo/pkg/driver"
	"github.com/soundprediction/grafo/pkg/types"
)

// ExtractMode selects how extracted nodes come into being: merged (matched
// or created) or always created.
type ExtractMode string

const (
	ExtractMerge  ExtractMode = "merge"
	ExtractCreate ExtractMode = "create"
)

// Direction orients the relationship between a source node and the node
// extracted from it.
type Direction string

const (
	// ToExtracted points the relationship at the extracted node.
	ToExtracted Direction = ">"
	// FromExtracted points the relationship back at the source node.
	FromExtracted Direction = "<"
)

// ExtractSpec describes an entity extraction: which nodes to read, which
// properties to lift out of them, and how to label and link the nodes built
// from those properties.
//
// Exactly one of Label and Cypher selects the source nodes. A Cypher
// selector must return the internal id of each source node under the alias
// id(node), i.e. end in RETURN id(node); every $parameter it references
// must be bound in CypherParams. Properties lists source property keys to
// lift under their own names; RenameProperties maps source keys to new
// names on the extracted node and wins over Properties for keys named in
// both. Relationship and Direction are optional as a pair: when
// Relationship is empty no link back to the source is created, and an
// empty Direction defaults to FromExtracted.
type ExtractSpec struct {
	Mode             ExtractMode
	Label            string
	Cypher           string
	CypherParams     map[string]any
	TargetLabel      string
	Properties       []string
	RenameProperties map[string]string
	Relationship     string
	Direction        Direction
}

var paramRefPattern = regexp.MustCompile(`\$(\w+)`)

// unboundParamRefs lists the $name references in query that params does
// not bind, in order of first appearance.
func unboundParamRefs(query string, params map[string]any) []string {
	var missing []string
	seen := map[string]bool{}
	for _, m := range paramRefPattern.FindAllStringSubmatch(query, -1) {
		name := m[1]
		if _, bound := params[name]; !bound && !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
	}
	return missing
}

// normalize fills defaults, validates, and resolves the effective
// source-key to target-key mapping.
func (s *ExtractSpec) normalize() (map[string]string, error) {
	if s.Mode == "" {
		s.Mode = ExtractMerge
	}
	if s.Mode != ExtractMerge && s.Mode != ExtractCreate {
		return nil, fmt.Errorf("%w: unknown extract mode %q", ErrInvalidConfiguration, s.Mode)
	}
	if s.Relationship == "" {
		if s.Direction != "" {
			return nil, fmt.Errorf("%w: extract spec gives a direction but no relationship type",
				ErrInvalidConfiguration)
		}
	} else {
		if s.Direction == "" {
			s.Direction = FromExtracted
		}
		if s.Direction != ToExtracted && s.Direction != FromExtracted {
			return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidConfiguration, s.Direction)
		}
	}
	if s.TargetLabel == "" {
		return nil, fmt.Errorf("%w: extract spec needs a target label", ErrInvalidConfiguration)
	}
	if (s.Label == "") == (s.Cypher == "") {
		return nil, fmt.Errorf("%w: exactly one of Label and Cypher must select the source nodes",
			ErrInvalidConfiguration)
	}
	if s.Cypher != "" {
		if missing := unboundParamRefs(s.Cypher, s.CypherParams); len(missing) > 0 {
			return nil, fmt.Errorf("%w: cypher selector references unbound parameters: %s",
				ErrInvalidConfiguration, strings.Join(missing, ", "))
		}
	}

	mapping := make(map[string]string, len(s.Properties)+len(s.RenameProperties))
	for _, key := range s.Properties {
		mapping[key] = key
	}
	for from, to := range s.RenameProperties {
		mapping[from] = to
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("%w: extract spec lifts no properties", ErrInvalidConfiguration)
	}
	return mapping, nil
}

// Scaffolding shared by the extraction and linking batch operations. Both
// statements travel as parameters, so no quoting of the generated text is
// needed inside the outer call.
const periodicIterateQuery = `CALL apoc.periodic.iterate($select_part, $action_part,
  {batchSize: 10000, parallel: false, params: $inner_params})
YIELD total, batches, failedBatches
RETURN total, batches, failedBatches`

// ExtractEntities lifts properties out of the selected source nodes into
// nodes of their own, linking each source to the node extracted from it
// when the spec names a relationship. The work runs server-side through
// apoc.periodic.iterate in batches of 10000; without the APOC plugin it
// fails with ErrFeatureUnavailable.
//
// Merge mode is idempotent: re-running a spec converges on one extracted
// node per distinct combination of lifted values, and sources carrying
// none of the lifted keys are skipped. Create mode adds fresh nodes on
// every run, one per source.
func (c *Client) ExtractEntities(ctx context.Context, spec ExtractSpec) error {
	mapping, err := spec.normalize()
	if err != nil {
		return err
	}

	// Index the lifted keys up front; the merge path looks nodes up by
	// them. On the target label the renamed key is the one that matters.
	sourceKeys := make([]string, 0, len(mapping))
	for key := range mapping {
		sourceKeys = append(sourceKeys, key)
	}
	sort.Strings(sourceKeys)
	for _, key := range sourceKeys {
		if _, err := c.CreateIndex(ctx, spec.TargetLabel+"."+mapping[key]); err != nil {
			return err
		}
		if spec.Label != "" {
			if _, err := c.CreateIndex(ctx, spec.Label+"."+key); err != nil {
				return err
			}
		}
	}

	selectPart := "MATCH (data" + cypher.LabelExpr(spec.Label) + ") RETURN data"
	innerParams := map[string]any{
		"target_labels": []any{spec.TargetLabel},
		"mapping":       toAnyMap(mapping),
	}
	if spec.Cypher != "" {
		selectPart = "CALL apoc.cypher.run($cypher, $cypher_dict) YIELD value " +
			"MATCH (data) WHERE id(data) = value['id(node)'] RETURN data"
		innerParams["cypher"] = spec.Cypher
		innerParams["cypher_dict"] = nonNilParams(spec.CypherParams)
	}

	var action strings.Builder
	action.WriteString("WITH data, apoc.coll.intersection(keys($mapping), keys(data)) AS common_keys ")
	if spec.Mode == ExtractMerge {
		action.WriteString("WHERE size(common_keys) > 0 ")
	}
	action.WriteString("WITH data, apoc.map.fromLists([key IN common_keys | $mapping[key]], " +
		"[key IN common_keys | data[key]]) AS submap ")
	fmt.Fprintf(&action, "CALL apoc.%s.node($target_labels, submap) YIELD node", spec.Mode)
	if spec.Relationship != "" {
		fmt.Fprintf(&action, " MERGE (data)%s(node)",
			cypher.RelationshipExpr(spec.Relationship, string(spec.Direction)))
	} else {
		action.WriteString(" RETURN count(node)")
	}

	params := map[string]any{
		"select_part":  selectPart,
		"action_part":  action.String(),
		"inner_params": innerParams,
	}

	records, _, err := c.driver.ExecuteQuery(ctx, periodicIterateQuery, params)
	if err != nil {
		if driver.IsMissingProcedure(err) {
			return fmt.Errorf("entity extraction needs the APOC plugin: %w: %w", ErrFeatureUnavailable, err)
		}
		return fmt.Errorf("extract entities: %w: %w", ErrQueryFailed, err)
	}
	return c.checkBatchOutcome("entity extraction", records)
}

// checkBatchOutcome inspects the total/batches/failedBatches row that
// apoc.periodic.iterate reports. The procedure absorbs per-batch errors
// into a counter instead of failing the call, so a nonzero counter is the
// only trace of them.
func (c *Client) checkBatchOutcome(operation string, records []*types.Record) error {
	if len(records) == 0 {
		return nil
	}

	row := records[0].AsMap()
	total, _ := driver.AsInt64(row["total"])
	batches, _ := driver.AsInt64(row["batches"])
	failed, _ := driver.AsInt64(row["failedBatches"])
	if failed > 0 {
		return fmt.Errorf("%s: %w: %d of %d batches failed", operation, ErrQueryFailed, failed, batches)
	}

	c.logger.Debug("batched operation complete",
		"operation", operation, "total", total, "batches", batches)
	return nil
}

func toAnyMap[V any](in map[string]V) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func nonNilParams(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	return params
}
