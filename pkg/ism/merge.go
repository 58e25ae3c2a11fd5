package ism

import (
	"fmt"
	"strings"
)

// DefaultFieldOverlapThreshold is the empirical field-name overlap ratio
// above which two same-type candidates merge. Tunable via MergeOptions.
const DefaultFieldOverlapThreshold = 0.5

// MergeOptions tune the deduplicator. Zero values select the defaults.
type MergeOptions struct {
	// FieldOverlapThreshold is the minimum Jaccard ratio of field names
	// for a similarity merge.
	FieldOverlapThreshold float64
	// Tables overrides the keyword tables.
	Tables *Tables
}

// Merger reduces possibly-overlapping interface candidates from
// concurrent extraction to one canonical interface set.
type Merger struct {
	overlap float64
	tables  Tables
}

// NewMerger creates a merger with the given options.
func NewMerger(opts MergeOptions) *Merger {
	m := &Merger{
		overlap: opts.FieldOverlapThreshold,
		tables:  DefaultTables(),
	}
	if m.overlap <= 0 {
		m.overlap = DefaultFieldOverlapThreshold
	}
	if opts.Tables != nil {
		m.tables = *opts.Tables
	}
	return m
}

// group accumulates candidates that resolved to one interface.
type group struct {
	iface      Interface
	rawType    string
	fallback   bool
	fieldIndex map[string]int // lower(field name) -> index in iface.Fields
}

// Merge reduces an ordered candidate sequence to the canonical interface
// set. Batch-flagged candidates expand first; exact merge-key collisions
// merge immediately; otherwise a candidate merges into the first earlier
// group it is similar to. Filtering by type validity and the metadata
// heuristic runs after merging, so legitimate duplicates merge with each
// other before either is discarded. All tie-breaking is first-seen order.
func (m *Merger) Merge(candidates []Candidate) ([]Interface, Diagnostics) {
	var diag Diagnostics

	expanded := expandBatches(candidates)

	var groups []*group
	exact := make(map[string]*group)

	for _, cand := range expanded {
		for _, w := range cand.decodeWarnings {
			diag.Warnf("%s", w)
		}

		cand = m.standardize(cand)
		key := m.mergeKey(cand)

		if g, ok := exact[key]; ok {
			m.mergeInto(g, cand)
			continue
		}

		merged := false
		for _, g := range groups {
			ok, lowConfidence := m.shouldMerge(g, cand)
			if !ok {
				continue
			}
			if lowConfidence {
				diag.Warnf("low-confidence merge: %q into %q", cand.Name, g.iface.Name)
			}
			m.mergeInto(g, cand)
			merged = true
			break
		}
		if merged {
			continue
		}

		g := newGroup(cand, key)
		groups = append(groups, g)
		exact[key] = g
	}

	var result []Interface
	for _, g := range groups {
		if !m.tables.TypeAllowed(g.rawType) {
			diag.Warnf("discard interface %q: unsupported type %q", g.iface.Name, g.rawType)
			continue
		}
		if m.tables.IsMetadata(g.iface) {
			diag.Warnf("discard metadata interface %q", g.iface.Name)
			continue
		}
		result = append(result, g.iface)
	}

	return result, diag
}

// expandBatches flattens batch-flagged candidates into individual
// candidates tagged with source call and batch index. Nested batches
// expand recursively; each level extends the provenance tag with its
// own index.
func expandBatches(candidates []Candidate) []Candidate {
	var out []Candidate
	for _, cand := range candidates {
		if len(cand.Batch) == 0 {
			out = append(out, cand)
			continue
		}
		source := batchSource(cand)
		for i, sub := range cand.Batch {
			sub.BatchIndex = i
			sub.Provenance = appendUnique(sub.Provenance, fmt.Sprintf("%s#%d", source, i))
			if sub.ID == "" {
				sub.ID = fmt.Sprintf("interface_%s_batch_%d", source, i)
			}
			sub.decodeWarnings = append(sub.decodeWarnings, cand.decodeWarnings...)
			cand.decodeWarnings = nil
			out = append(out, expandBatches([]Candidate{sub})...)
		}
	}
	return out
}

func batchSource(cand Candidate) string {
	if len(cand.Provenance) > 0 {
		return cand.Provenance[0]
	}
	if cand.ID != "" {
		return cand.ID
	}
	return "batch"
}

// standardize fills the fields merging relies on. Types stay raw here;
// the normalizer applies its own defaults later.
func (m *Merger) standardize(cand Candidate) Candidate {
	if cand.Name == "" {
		cand.Name = DefaultInterfaceName
	}
	if cand.Type == "" {
		cand.Type = m.tables.InferInterfaceType(cand.Name)
	}
	if len(cand.Operations) == 0 {
		cand.Operations = DefaultOperations()
	}
	return cand
}

// mergeKey is the exact-collision identity of a candidate.
func (m *Merger) mergeKey(cand Candidate) string {
	return m.tables.NormalizeName(cand.Name) + "_" + m.tables.NormalizeType(cand.Type)
}

// shouldMerge decides whether cand joins an existing group despite a
// different merge key. A shared synonym group is a confident merge;
// field overlap and shared descriptive keywords are low-confidence and
// additionally require matching normalized types.
func (m *Merger) shouldMerge(g *group, cand Candidate) (ok, lowConfidence bool) {
	if m.tables.NormalizeName(g.iface.Name) == m.tables.NormalizeName(cand.Name) {
		return true, false
	}

	if m.tables.NormalizeType(g.rawType) != m.tables.NormalizeType(cand.Type) {
		return false, false
	}

	if fieldOverlap(g.iface.Fields, cand.Fields) >= m.overlap {
		return true, true
	}
	if m.tables.SharedDescriptiveKeyword(g.iface.Name, cand.Name) {
		return true, true
	}

	return false, false
}

// fieldOverlap is the Jaccard ratio of lowercased field names. Zero when
// either side has no named fields.
func fieldOverlap(a, b []Field) float64 {
	setA := fieldNameSet(a)
	setB := fieldNameSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	union := len(setB)
	for name := range setA {
		if setB[name] {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

func fieldNameSet(fields []Field) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		name := strings.ToLower(strings.TrimSpace(f.Name))
		if name != "" {
			set[name] = true
		}
	}
	return set
}

func newGroup(cand Candidate, key string) *group {
	g := &group{
		iface: Interface{
			ID:              cand.ID,
			Name:            cand.Name,
			Type:            cand.Type,
			Description:     cand.Description,
			Operations:      append([]string(nil), cand.Operations...),
			Provenance:      append([]string(nil), cand.Provenance...),
			containerErrors: append([]string(nil), cand.containerErrors...),
		},
		rawType:    cand.Type,
		fallback:   isFallback(cand),
		fieldIndex: make(map[string]int),
	}
	for _, f := range cand.Fields {
		g.addField(f)
	}
	return g
}

func (g *group) addField(f Field) {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	if name == "" {
		return
	}
	if idx, ok := g.fieldIndex[name]; ok {
		g.iface.Fields[idx] = mergeField(g.iface.Fields[idx], f)
		return
	}
	g.fieldIndex[name] = len(g.iface.Fields)
	g.iface.Fields = append(g.iface.Fields, f)
}

// mergeInto folds cand into g under the most-complete-wins policy.
func (m *Merger) mergeInto(g *group, cand Candidate) {
	for _, f := range cand.Fields {
		g.addField(f)
	}

	for _, op := range cand.Operations {
		g.iface.Operations = appendUnique(g.iface.Operations, op)
	}

	if betterDescription(cand.Description, g.iface.Description) {
		g.iface.Description = cand.Description
	}

	// When exactly one side is a fallback candidate, the non-fallback
	// side's identity wins.
	if g.fallback && !isFallback(cand) {
		if cand.ID != "" {
			g.iface.ID = cand.ID
		}
		if cand.Type != "" {
			g.iface.Type = cand.Type
			g.rawType = cand.Type
		}
		if cand.Name != "" {
			g.iface.Name = cand.Name
		}
		g.fallback = false
	}

	for _, p := range cand.Provenance {
		g.iface.Provenance = appendUnique(g.iface.Provenance, p)
	}
	g.iface.containerErrors = append(g.iface.containerErrors, cand.containerErrors...)
}

// mergeField prefers non-empty, then longer, values for the descriptive
// keys; required is a logical OR.
func mergeField(existing, incoming Field) Field {
	merged := existing
	if incoming.DataType != "" && (existing.DataType == "" || len(incoming.DataType) > len(existing.DataType)) {
		merged.DataType = incoming.DataType
	}
	if incoming.Expression != "" && (existing.Expression == "" || len(incoming.Expression) > len(existing.Expression)) {
		merged.Expression = incoming.Expression
	}
	if incoming.Description != "" && (existing.Description == "" || len(incoming.Description) > len(existing.Description)) {
		merged.Description = incoming.Description
	}
	if merged.Kind == "" {
		merged.Kind = incoming.Kind
	}
	merged.Required = existing.Required || incoming.Required
	return merged
}

// betterDescription prefers any description over none, non-degraded over
// degraded, and substantially longer over shorter.
func betterDescription(candidate, existing string) bool {
	if candidate == "" {
		return false
	}
	if existing == "" {
		return true
	}
	if strings.Contains(existing, "降级") && !strings.Contains(candidate, "降级") {
		return true
	}
	return float64(len(candidate)) > float64(len(existing))*1.2
}

// isFallback recognizes placeholder candidates produced by degraded
// extraction paths.
func isFallback(cand Candidate) bool {
	typ := strings.ToLower(cand.Type)
	if typ == "fallback" || typ == "emergency" {
		return true
	}
	id := strings.ToLower(cand.ID)
	if strings.Contains(id, "fallback") || strings.Contains(id, "emergency") {
		return true
	}
	for _, p := range cand.Provenance {
		lower := strings.ToLower(p)
		if strings.Contains(lower, "fallback") || strings.Contains(lower, "emergency") {
			return true
		}
	}
	return false
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
