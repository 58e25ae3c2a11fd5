package gaia

import (
	"fmt"

	"github.com/leapstack-labs/gaiac/pkg/dag"
)

// joinRelationKeys are required in every relation of a join node's configs.
var joinRelationKeys = []string{"left", "right", "method", "fields"}

// sourceConfigKeys are required in every source-query node's configs.
var sourceConfigKeys = []string{ConfigEngine, ConfigPSM, ConfigQueryBody}

// Validate runs the shared rule set over a graph. The compiler calls it
// before returning and the patch engine calls it after applying, so
// "legal graph" has exactly one definition. Each violation is a distinct
// {path, reason} error; duplicate edges are a warning only, and warnings
// never affect OK.
func Validate(g Graph) ValidationResult {
	var errs []RuleError
	var warnings []string

	// Node id uniqueness.
	seen := make(map[string]bool, len(g.Nodes))
	duplicated := false
	for _, n := range g.Nodes {
		if seen[n.ID] {
			duplicated = true
		}
		seen[n.ID] = true
	}
	if duplicated {
		errs = append(errs, RuleError{Path: "nodes", Reason: "duplicated node id"})
	}

	// Edge referential integrity.
	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			errs = append(errs, RuleError{
				Path:   fmt.Sprintf("edges[%s->%s]", e.Source, e.Target),
				Reason: "dangling edge",
			})
		}
	}

	// Acyclicity. Edges with missing endpoints were reported above and
	// are skipped here, matching the dangling-edge rule's ownership.
	d := dag.New()
	for _, n := range g.Nodes {
		d.AddNode(n.ID, nil)
	}
	for _, e := range g.Edges {
		if seen[e.Source] && seen[e.Target] {
			_ = d.AddEdge(e.Source, e.Target)
		}
	}
	if cycle, _ := d.HasCycle(); cycle {
		errs = append(errs, RuleError{Path: "edges", Reason: "cycle detected"})
	}

	// At least one source-query node.
	var sourceNodes []Node
	for _, n := range g.Nodes {
		if n.ComponentID == ComponentSourceQuery {
			sourceNodes = append(sourceNodes, n)
		}
	}
	if len(sourceNodes) == 0 {
		errs = append(errs, RuleError{Path: "nodes", Reason: "no SQL node found"})
	}

	// Source-query configs.
	for _, n := range sourceNodes {
		for _, key := range sourceConfigKeys {
			if emptyConfig(n.Configs[key]) {
				errs = append(errs, RuleError{
					Path:   fmt.Sprintf("nodes[%s].configs.%s", n.ID, key),
					Reason: "required field missing",
				})
			}
		}
	}

	// Field validity on every node.
	for _, n := range g.Nodes {
		for _, f := range n.FieldList {
			key := f.DataIndex
			if key == "" {
				key = "unknown"
			}
			path := fmt.Sprintf("nodes[%s].fieldList[%s]", n.ID, key)

			if f.AnalysisType != AnalysisDimension && f.AnalysisType != AnalysisMeasure {
				errs = append(errs, RuleError{Path: path + ".analysisType", Reason: "invalid analysisType"})
			}
			if !f.Type.Valid() {
				errs = append(errs, RuleError{Path: path + ".type", Reason: "invalid field type"})
			}
			if f.DataIndex == "" {
				errs = append(errs, RuleError{Path: path + ".dataIndex", Reason: "required field missing"})
			}
			if f.Expression == "" {
				errs = append(errs, RuleError{Path: path + ".expression", Reason: "required field missing"})
			}
			if f.Title == "" {
				errs = append(errs, RuleError{Path: path + ".title", Reason: "required field missing"})
			}
		}
	}

	// Join relations.
	for _, n := range g.Nodes {
		if n.ComponentID != ComponentJoin {
			continue
		}
		relations, _ := n.Configs["relations"].([]any)
		for i, rel := range relations {
			relMap, ok := rel.(map[string]any)
			path := fmt.Sprintf("nodes[%s].configs.relations[%d]", n.ID, i)
			if !ok {
				errs = append(errs, RuleError{Path: path, Reason: "relation must be an object"})
				continue
			}
			for _, key := range joinRelationKeys {
				if _, present := relMap[key]; !present {
					errs = append(errs, RuleError{Path: path + "." + key, Reason: "required field missing"})
				}
			}
		}
	}

	// Duplicate edges are tolerated but flagged.
	edgeKeys := make(map[string]bool, len(g.Edges))
	duplicateEdges := false
	for _, e := range g.Edges {
		if edgeKeys[e.Key()] {
			duplicateEdges = true
		}
		edgeKeys[e.Key()] = true
	}
	if duplicateEdges {
		warnings = append(warnings, "duplicate edges found")
	}

	return ValidationResult{OK: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// emptyConfig reports whether a required config value is absent.
// Empty strings count as missing; values of other types do not.
func emptyConfig(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
