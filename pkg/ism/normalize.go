package ism

import (
	"regexp"
	"strings"
)

// Noise stripped from extracted field names.
var (
	urlPattern       = regexp.MustCompile(`https?://\S+`)
	imagePattern     = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	referencePattern = regexp.MustCompile(`参考口径[:：].*$`)
)

// Normalizer canonicalizes a raw ISM into a stable, comparable form.
// A Normalizer never mutates itself after construction; one instance
// serves any number of concurrent callers.
type Normalizer struct {
	tables Tables
}

// NewNormalizer creates a normalizer. A nil tables selects the defaults.
func NewNormalizer(tables *Tables) *Normalizer {
	if tables != nil {
		return &Normalizer{tables: *tables}
	}
	return &Normalizer{tables: DefaultTables()}
}

// Normalize canonicalizes and validates one document. Normalization is
// idempotent: normalizing an already-normalized document changes
// nothing. Structural violations degrade only the offending interface
// and never abort the document.
func (n *Normalizer) Normalize(doc Document) (Document, Diagnostics) {
	var diag Diagnostics
	tables := n.tables

	normalized := make([]Interface, 0, len(doc.Interfaces))
	for _, iface := range doc.Interfaces {
		normalized = append(normalized, n.normalizeInterface(iface, tables, &diag))
	}
	doc.Interfaces = normalized

	for _, iface := range doc.Interfaces {
		n.validateStructure(iface, &diag)
		n.validateSemantics(iface, tables, &diag)
	}

	hash, err := ContentHash(doc)
	if err != nil {
		diag.Errorf("content hash: %v", err)
	} else {
		doc.ContentHash = hash
	}

	return doc, diag
}

func (n *Normalizer) normalizeInterface(iface Interface, tables Tables, diag *Diagnostics) Interface {
	if iface.Name == "" {
		iface.Name = DefaultInterfaceName
		diag.Fixupf("set default name for unnamed interface")
	}
	if iface.Type == "" {
		iface.Type = tables.InferInterfaceType(iface.Name)
		diag.Fixupf("interface %q missing type, defaulted to %q", iface.Name, iface.Type)
	}

	iface.Fields = n.normalizeFields(iface.Name, iface.Fields, tables, diag)

	if iface.ID == "" {
		iface.ID = StableID(iface.Name)
		diag.Fixupf("generated stable id for interface %q: %s", iface.Name, iface.ID)
	}

	return iface
}

// normalizeFields cleans, deduplicates and completes a field list,
// preserving first occurrence on duplicates.
func (n *Normalizer) normalizeFields(ifaceName string, fields []Field, tables Tables, diag *Diagnostics) []Field {
	out := make([]Field, 0, len(fields))
	seen := make(map[string]bool, len(fields))

	for _, f := range fields {
		f = n.normalizeField(f, tables, diag)

		// A field whose cleaned name and expression are both empty has
		// no dataIndex and can never compile.
		if f.Name == "" && f.Expression == "" {
			diag.Fixupf("drop field with empty name in interface %q", ifaceName)
			continue
		}

		key := f.DedupKey()
		if seen[key] {
			diag.Fixupf("skip duplicate field %q in interface %q", f.Name, ifaceName)
			continue
		}
		seen[key] = true
		out = append(out, f)
	}

	return out
}

func (n *Normalizer) normalizeField(f Field, tables Tables, diag *Diagnostics) Field {
	cleaned := cleanFieldName(f.Name)
	if cleaned != f.Name {
		f.Name = cleaned
	}

	if f.Expression == "" && f.Name != "" {
		f.Expression = n.synthesizeExpression(f.Name, tables)
		diag.Fixupf("generated expression for field %q: %s", f.Name, f.Expression)
	}

	if f.DataType == "" {
		f.DataType = inferDataType(f, tables)
		diag.Fixupf("inferred data type for field %q: %s", f.Name, f.DataType)
	}

	if f.Kind == "" {
		if f.DataType == "number" {
			f.Kind = KindMeasure
		} else {
			f.Kind = KindDimension
		}
	}

	if !f.Required && tables.IsRequiredName(f.Name) {
		f.Required = true
		diag.Fixupf("marked field %q as required", f.Name)
	}

	return f
}

// cleanFieldName strips URLs, image placeholders and reference-basis
// annotations, then trims whitespace.
func cleanFieldName(name string) string {
	name = urlPattern.ReplaceAllString(name, "")
	name = imagePattern.ReplaceAllString(name, "")
	name = referencePattern.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// synthesizeExpression maps a field name to an expression, lexicon
// first, slug fallback otherwise.
func (n *Normalizer) synthesizeExpression(name string, tables Tables) string {
	if expr, ok := tables.ExpressionLexicon[name]; ok {
		return expr
	}
	return Slugify(name)
}

// inferDataType classifies a field by name keywords: time-like names
// are dates, measures default to number, everything else to string.
func inferDataType(f Field, tables Tables) string {
	if tables.IsTimeLike(f.Name) {
		return "date"
	}
	if f.Kind == KindMeasure {
		return "number"
	}
	return "string"
}

// validateStructure emits errors for missing required top-level fields
// and wrong container types found at decode time.
func (n *Normalizer) validateStructure(iface Interface, diag *Diagnostics) {
	if iface.ID == "" {
		diag.Errorf("interface missing required field: id")
	}
	if iface.Name == "" {
		diag.Errorf("interface missing required field: name")
	}
	if iface.Type == "" {
		diag.Errorf("interface missing required field: type")
	}
	for _, containerErr := range iface.containerErrors {
		diag.Errorf("interface %q: %s", iface.Name, containerErr)
	}
}

// validateSemantics emits warnings: a trend interface without a time
// dimension, and duplicate field names or expressions.
func (n *Normalizer) validateSemantics(iface Interface, tables Tables, diag *Diagnostics) {
	if isTrendType(iface.Type, tables) {
		hasTimeDimension := false
		for _, f := range iface.Fields {
			if f.Kind == KindDimension && tables.IsTimeLike(f.Name) {
				hasTimeDimension = true
				break
			}
		}
		if !hasTimeDimension {
			diag.Warnf("trend interface %q missing time dimension", iface.Name)
		}
	}

	seenNames := make(map[string]bool, len(iface.Fields))
	seenExpressions := make(map[string]bool, len(iface.Fields))
	for _, f := range iface.Fields {
		if f.Name != "" && seenNames[f.Name] {
			diag.Warnf("interface %q has duplicate field name: %s", iface.Name, f.Name)
		}
		seenNames[f.Name] = true

		if f.Expression != "" && seenExpressions[f.Expression] {
			diag.Warnf("interface %q has duplicate expression: %s", iface.Name, f.Expression)
		}
		seenExpressions[f.Expression] = true
	}
}

// isTrendType reports whether an interface type denotes a trend.
func isTrendType(rawType string, tables Tables) bool {
	return tables.NormalizeType(rawType) == "trend" ||
		strings.Contains(strings.ToLower(rawType), "trend")
}
