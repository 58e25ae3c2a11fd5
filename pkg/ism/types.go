package ism

import "fmt"

// FieldKind classifies a field for downstream analysis projection.
type FieldKind string

const (
	// KindDimension marks grouping/filter fields.
	KindDimension FieldKind = "dimension"
	// KindMeasure marks aggregated metric fields.
	KindMeasure FieldKind = "measure"
)

// Defaults applied when extraction left a value blank.
const (
	DefaultInterfaceName = "未命名接口"
	DefaultInterfaceType = "data_display"
)

// DefaultOperations is the operation set assumed for a candidate that
// declares none.
func DefaultOperations() []string {
	return []string{"read"}
}

// Field is one dimension or metric of an interface.
// Fields are unique by (name, expression) within an interface.
type Field struct {
	Name        string    `json:"name"`
	Expression  string    `json:"expression,omitempty"`
	DataType    string    `json:"data_type,omitempty"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
	Kind        FieldKind `json:"kind,omitempty"`
}

// DedupKey is the identity under which duplicate fields collapse.
func (f Field) DedupKey() string {
	return f.Name + ":" + f.Expression
}

// Interface is one canonical data-facing interface. ID is a stable hash
// of Name: identical names produce identical ids across any run.
type Interface struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Operations  []string `json:"operations,omitempty"`
	Fields      []Field  `json:"fields"`
	Provenance  []string `json:"provenance,omitempty"`

	// containerErrors carries structural defects found while decoding
	// (e.g. a non-array field list), surfaced by the normalizer.
	containerErrors []string
}

// Document is one extracted document's interface set plus bookkeeping.
type Document struct {
	Interfaces []Interface `json:"interfaces"`
	// Pending lists malformed upstream candidates that were excluded
	// from the canonical set without aborting the document.
	Pending []string `json:"pending,omitempty"`
	// ContentHash is the whole-document hash used for idempotent
	// downstream comparison.
	ContentHash string `json:"content_hash,omitempty"`
}

// Candidate is one raw interface candidate from the upstream extractor.
// Candidates are owned transiently by the merger and never persisted.
type Candidate struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Fields      []Field  `json:"fields,omitempty"`
	Operations  []string `json:"operations,omitempty"`
	Provenance  []string `json:"provenance,omitempty"`
	// BatchIndex is the candidate's position inside its extraction
	// batch, or -1 when it arrived alone.
	BatchIndex int `json:"batchIndex,omitempty"`
	// Batch holds sub-candidates of a batched extraction response; the
	// merger expands them into individual candidates.
	Batch []Candidate `json:"batch,omitempty"`

	containerErrors []string
	decodeWarnings  []string
}

// Diagnostics accompanies an ISM through the pipeline. It is append-only
// and returned read-only to the caller; entries are never retroactively
// edited.
type Diagnostics struct {
	Fixups   []string `json:"fixups"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// Fixupf records an automatic correction applied to non-conforming input.
func (d *Diagnostics) Fixupf(format string, args ...any) {
	d.Fixups = append(d.Fixups, fmt.Sprintf(format, args...))
}

// Warnf records a non-fatal observation.
func (d *Diagnostics) Warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Errorf records a structural or semantic violation.
func (d *Diagnostics) Errorf(format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

// Extend appends all entries of other, preserving order.
func (d *Diagnostics) Extend(other Diagnostics) {
	d.Fixups = append(d.Fixups, other.Fixups...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Errors = append(d.Errors, other.Errors...)
}

// HasErrors reports whether any error was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}
