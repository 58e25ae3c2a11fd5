package gaia

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ApplyOptions control a single patch application.
type ApplyOptions struct {
	// DryRun suppresses payload generation; the new graph is still built.
	DryRun bool
	// SkipValidate skips the final validation pass.
	SkipValidate bool
	// Version is echoed back for the caller's optimistic-lock handling.
	// The engine does not interpret it.
	Version string
}

// Apply applies a structured patch to a graph, producing a new graph
// under the same validity rules the compiler enforces. The input graph
// is deep-copied first; callers must not reuse the old reference after
// the call. Application order is fixed: remove_edges, remove_nodes
// (cascading edge removal), add_nodes, add_edges, update_nodes, edge
// dedup, validation, result assembly. The engine is a pure function of
// its inputs.
func Apply(old Graph, patch Patch, opts ApplyOptions) PatchResult {
	var errs []RuleError
	var warnings []string

	g, err := old.Clone()
	if err != nil {
		return PatchResult{
			OK:       false,
			Errors:   []RuleError{{Path: "", Reason: fmt.Sprintf("graph not serializable: %v", err)}},
			Warnings: []string{},
			Version:  opts.Version,
		}
	}

	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeIDs[n.ID] = true
	}

	// 1. Remove edges.
	for _, rm := range patch.RemoveEdges {
		g.Edges = removeEdge(g.Edges, rm)
	}

	// 2. Remove nodes, cascading removal of edges touching them.
	for _, ref := range patch.RemoveNodes {
		if ref.ID == "" {
			continue
		}
		idx := findNode(g.Nodes, ref.ID)
		if idx < 0 {
			warnings = append(warnings, fmt.Sprintf("remove_nodes: node %s not found", ref.ID))
			continue
		}
		g.Nodes = append(g.Nodes[:idx], g.Nodes[idx+1:]...)
		kept := g.Edges[:0]
		for _, e := range g.Edges {
			if e.Source != ref.ID && e.Target != ref.ID {
				kept = append(kept, e)
			}
		}
		g.Edges = kept
		delete(nodeIDs, ref.ID)
	}

	// 3. Add nodes. Identical re-add is a no-op warning; a conflicting
	// re-add is a hard error.
	for _, add := range patch.AddNodes {
		if add.ID == "" {
			continue
		}
		if nodeIDs[add.ID] {
			existing := g.Nodes[findNode(g.Nodes, add.ID)]
			same, cmpErr := sameNode(existing, add)
			if cmpErr != nil {
				errs = append(errs, RuleError{Path: fmt.Sprintf("nodes[%s]", add.ID), Reason: cmpErr.Error()})
			} else if same {
				warnings = append(warnings, fmt.Sprintf("add_nodes: node %s already exists (identical)", add.ID))
			} else {
				errs = append(errs, RuleError{Path: fmt.Sprintf("nodes[%s]", add.ID), Reason: "id conflict with different content"})
			}
			continue
		}
		g.Nodes = append(g.Nodes, add)
		nodeIDs[add.ID] = true
	}

	// 4. Add edges. Missing endpoints are an error; duplicates are
	// silently dropped.
	edgeKeys := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		edgeKeys[e.Key()] = true
	}
	for _, add := range patch.AddEdges {
		if !nodeIDs[add.Source] || !nodeIDs[add.Target] {
			errs = append(errs, RuleError{
				Path:   fmt.Sprintf("edges[%s->%s]", add.Source, add.Target),
				Reason: "dangling edge",
			})
			continue
		}
		if !edgeKeys[add.Key()] {
			g.Edges = append(g.Edges, Edge{Source: add.Source, Target: add.Target})
			edgeKeys[add.Key()] = true
		}
	}

	// 5. Update nodes.
	for _, upd := range patch.UpdateNodes {
		if upd.ID == "" {
			continue
		}
		idx := findNode(g.Nodes, upd.ID)
		if idx < 0 {
			errs = append(errs, RuleError{
				Path:   fmt.Sprintf("update_nodes[%s]", upd.ID),
				Reason: "node not found",
			})
			continue
		}
		warnings = append(warnings, updateNode(&g.Nodes[idx], upd)...)
	}

	// 6. Collapse duplicate (source, target) pairs, keeping first-seen order.
	seenEdges := make(map[string]bool, len(g.Edges))
	deduped := g.Edges[:0]
	for _, e := range g.Edges {
		if !seenEdges[e.Key()] {
			seenEdges[e.Key()] = true
			deduped = append(deduped, e)
		}
	}
	g.Edges = deduped

	// 7. Validation unless explicitly skipped.
	if !opts.SkipValidate {
		validation := Validate(g)
		errs = append(errs, validation.Errors...)
		warnings = append(warnings, validation.Warnings...)
	}

	// 8. Result assembly.
	ok := len(errs) == 0
	payload := ""
	if ok && !opts.DryRun {
		payload, err = g.Payload()
		if err != nil {
			ok = false
			errs = append(errs, RuleError{Path: "", Reason: fmt.Sprintf("payload not serializable: %v", err)})
		}
	}

	if errs == nil {
		errs = []RuleError{}
	}
	if warnings == nil {
		warnings = []string{}
	}

	return PatchResult{
		OK:          ok,
		GraphNew:    g,
		Payload:     payload,
		Errors:      errs,
		Warnings:    warnings,
		DiffApplied: diffApplied(patch),
		Version:     opts.Version,
	}
}

// updateNode applies the three independent sub-patches of a NodeUpdate.
// The node has already been deep-copied with the graph, so mutation in
// place is safe. Returns accumulated warnings.
func updateNode(node *Node, upd NodeUpdate) []string {
	var warnings []string

	// 5.1 Shallow set.
	for _, key := range sortedKeys(upd.Set) {
		if w := applyNodeSet(node, key, upd.Set[key]); w != "" {
			warnings = append(warnings, w)
		}
	}

	// 5.2 Configs patch.
	if upd.ConfigsPatch != nil {
		if node.Configs == nil {
			node.Configs = map[string]any{}
		}
		for _, key := range sortedKeys(upd.ConfigsPatch.Set) {
			node.Configs[key] = upd.ConfigsPatch.Set[key]
		}
		for _, key := range upd.ConfigsPatch.Unset {
			delete(node.Configs, key)
		}
	}

	// 5.3 FieldList patch.
	if upd.FieldListPatch != nil {
		fp := upd.FieldListPatch

		// Upsert by dataIndex; replacing an existing field is a warning.
		for _, add := range fp.Add {
			idx := findField(node.FieldList, add.DataIndex)
			if idx >= 0 {
				node.FieldList[idx] = add
				warnings = append(warnings, fmt.Sprintf("fieldList.add->replace %s", add.DataIndex))
			} else {
				node.FieldList = append(node.FieldList, add)
			}
		}

		for _, ref := range fp.Remove {
			idx := findField(node.FieldList, ref.DataIndex)
			if idx >= 0 {
				node.FieldList = append(node.FieldList[:idx], node.FieldList[idx+1:]...)
			} else {
				warnings = append(warnings, fmt.Sprintf("fieldList.remove miss %s", ref.DataIndex))
			}
		}

		for _, fu := range fp.Update {
			idx := findField(node.FieldList, fu.Where.DataIndex)
			if idx >= 0 {
				for _, key := range sortedKeys(fu.Set) {
					applyFieldSet(&node.FieldList[idx], key, fu.Set[key])
				}
			} else {
				warnings = append(warnings, fmt.Sprintf("fieldList.update miss %s", fu.Where.DataIndex))
			}
		}
	}

	return warnings
}

// applyNodeSet routes a shallow set onto the node's known wire keys;
// anything else lands in the passthrough map. Every key MarshalJSON
// owns must be routed here, or the set would be shadowed by the
// struct's zero value on the wire. A value that cannot take the key's
// wire shape leaves the node untouched and returns a warning.
func applyNodeSet(node *Node, key string, value any) string {
	switch key {
	case "id":
		node.ID = toString(value)
	case "componentId":
		node.ComponentID = toString(value)
	case "componentType":
		node.ComponentType = toInt(value)
	case "name":
		node.Name = toString(value)
	case "type":
		node.Type = toString(value)
	case "configs":
		m, ok := value.(map[string]any)
		if !ok {
			return fmt.Sprintf("set configs on %s: value is not an object", node.ID)
		}
		node.Configs = m
	case "fieldFromList":
		var list []any
		if err := reencode(value, &list); err != nil {
			return fmt.Sprintf("set fieldFromList on %s: value is not an array", node.ID)
		}
		node.FieldFromList = list
	case "fieldList":
		var fields []Field
		if err := reencode(value, &fields); err != nil {
			return fmt.Sprintf("set fieldList on %s: value is not a field array", node.ID)
		}
		node.FieldList = fields
	default:
		if node.Extra == nil {
			node.Extra = map[string]any{}
		}
		node.Extra[key] = value
	}
	return ""
}

// applyFieldSet routes a field update onto the field's known wire keys;
// anything else lands in the passthrough map.
func applyFieldSet(f *Field, key string, value any) {
	switch key {
	case "analysisType":
		f.AnalysisType = toString(value)
	case "title":
		f.Title = toString(value)
	case "type":
		f.Type = Type(toString(value))
	case "dataIndex":
		f.DataIndex = toString(value)
	case "expression":
		f.Expression = toString(value)
	case "calType":
		f.CalType = toString(value)
	case "dataPath":
		f.DataPath = toString(value)
	case "dateFormat":
		f.DateFormat = toString(value)
	case "extra":
		f.ExtraInfo = toString(value)
	case "help":
		f.Help = toString(value)
	case "id":
		f.ID = toString(value)
	case "nuwaAppId":
		f.NuwaAppID = toInt(value)
	case "nuwaAppIds":
		f.NuwaAppIDs = toString(value)
	case "nuwaId":
		f.NuwaID = toInt(value)
	case "nuwaUuid":
		f.NuwaUUID = toInt(value)
	case "showType":
		f.ShowType = toString(value)
	case "source":
		f.Source = toString(value)
	case "partitionFormat":
		f.PartitionFormat = toString(value)
	case "partitionFieldFlag":
		b, _ := value.(bool)
		f.PartitionFieldFlag = b
	default:
		if f.Extra == nil {
			f.Extra = map[string]any{}
		}
		f.Extra[key] = value
	}
}

// diffApplied echoes only the non-empty patch sections that were supplied.
func diffApplied(patch Patch) Patch {
	var diff Patch
	if len(patch.AddNodes) > 0 {
		diff.AddNodes = patch.AddNodes
	}
	if len(patch.RemoveNodes) > 0 {
		diff.RemoveNodes = patch.RemoveNodes
	}
	if len(patch.UpdateNodes) > 0 {
		diff.UpdateNodes = patch.UpdateNodes
	}
	if len(patch.AddEdges) > 0 {
		diff.AddEdges = patch.AddEdges
	}
	if len(patch.RemoveEdges) > 0 {
		diff.RemoveEdges = patch.RemoveEdges
	}
	return diff
}

func findNode(nodes []Node, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func findField(fields []Field, dataIndex string) int {
	if dataIndex == "" {
		return -1
	}
	for i, f := range fields {
		if f.DataIndex == dataIndex {
			return i
		}
	}
	return -1
}

func removeEdge(edges []Edge, rm Edge) []Edge {
	kept := edges[:0]
	for _, e := range edges {
		if e.Key() != rm.Key() {
			kept = append(kept, e)
		}
	}
	return kept
}

func sameNode(a, b Node) (bool, error) {
	ca, err := canonicalNodeJSON(a)
	if err != nil {
		return false, err
	}
	cb, err := canonicalNodeJSON(b)
	if err != nil {
		return false, err
	}
	return ca == cb, nil
}

// sortedKeys gives map application a stable order so identical inputs
// produce byte-identical outputs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// reencode converts a loosely typed JSON value into dst through its
// wire form.
func reencode(value, dst any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}
